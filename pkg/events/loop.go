package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

var ErrLoopClosed = errors.New("event loop closed")

// Loop serialises work onto a single executor. Everything that touches the stores is posted
// here, including completions of remote calls, so mutations never interleave.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}

	exec sync.Mutex
	logg *logger.Logger
}

// NewLoop returns an idle loop. Work is executed by Run or Flush.
func NewLoop(logg *logger.Logger) *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		logg: logg,
	}
}

// Post queues fn for execution.
func (l *Loop) Post(fn func()) error {
	if fn == nil {
		return nil
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrLoopClosed
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Do posts fn and waits until it has run or ctx ends. It must not be called from work that is
// itself running on the loop.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if err := l.Post(func() {
		defer close(done)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes queued work until ctx ends. Work still queued at that point is executed before
// Run returns; later posts fail with ErrLoopClosed.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Flush()
		select {
		case <-ctx.Done():
			l.mu.Lock()
			l.closed = true
			l.mu.Unlock()
			l.Flush()
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Flush runs queued work on the calling goroutine, including work queued while flushing, and
// returns the number of tasks executed.
func (l *Loop) Flush() int {
	l.exec.Lock()
	defer l.exec.Unlock()

	ran := 0
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		if len(batch) == 0 {
			return ran
		}
		for _, fn := range batch {
			l.run(fn)
			ran++
		}
	}
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// run recovers task panics when a logger is set. State conflicts are logged and re-raised: they
// mean the stores and the flow disagree, and the loop must not keep running on that state.
func (l *Loop) run(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			if l.logg == nil {
				panic(rec)
			}
			ctx := l.logg.WithField(context.Background(), "panic", rec)
			if isStateConflict(rec) {
				l.logg.Error(ctx, "events.loop_state_conflict", rec.(error))
				panic(rec)
			}
			l.logg.Error(ctx, "events.loop_task_panic", fmt.Errorf("panic: %v", rec))
		}
	}()
	fn()
}

func isStateConflict(rec any) bool {
	err, ok := rec.(error)
	if !ok {
		return false
	}
	typed := pkgerrors.As(err)
	return typed != nil && typed.Code() == pkgerrors.CodeStateConflict
}
