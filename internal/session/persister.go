package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/storefront/internal/basket"
	"github.com/angelmondragon/storefront/pkg/enums"
	"github.com/angelmondragon/storefront/pkg/events"
	"github.com/angelmondragon/storefront/pkg/logger"
)

const defaultFinalSaveTimeout = 5 * time.Second

// PersisterParams configure the basket persister.
type PersisterParams struct {
	Bus       *events.Bus
	Basket    *basket.Store
	Repo      Repository
	SessionID string
	Logger    *logger.Logger
}

// Persister writes the basket snapshot on every basket:changed. Writes happen on the Run
// goroutine; only the latest pending snapshot is written.
type Persister struct {
	bus       *events.Bus
	basket    *basket.Store
	repo      Repository
	sessionID string
	logg      *logger.Logger

	mu      sync.Mutex
	pending *basket.Snapshot
	wake    chan struct{}

	subs []events.Subscription
}

func NewPersister(params PersisterParams) (*Persister, error) {
	switch {
	case params.Bus == nil:
		return nil, fmt.Errorf("bus required")
	case params.Basket == nil:
		return nil, fmt.Errorf("basket required")
	case params.Repo == nil:
		return nil, fmt.Errorf("repository required")
	case params.SessionID == "":
		return nil, fmt.Errorf("session id required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	p := &Persister{
		bus:       params.Bus,
		basket:    params.Basket,
		repo:      params.Repo,
		sessionID: params.SessionID,
		logg:      logg,
		wake:      make(chan struct{}, 1),
	}
	p.subs = append(p.subs, events.Subscribe(p.bus, enums.EventBasketChanged, p.onBasketChanged))
	return p, nil
}

// Close unsubscribes from the bus. Pending writes are still flushed by Run.
func (p *Persister) Close() {
	for _, sub := range p.subs {
		sub.Off()
	}
	p.subs = nil
}

func (p *Persister) onBasketChanged(basket.State) {
	snap := p.basket.Serialize()
	p.mu.Lock()
	p.pending = &snap
	p.mu.Unlock()
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Run writes snapshots until ctx ends, then makes one last write of anything pending.
func (p *Persister) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			finalCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultFinalSaveTimeout)
			err := p.Sync(finalCtx)
			cancel()
			if err != nil {
				p.logg.Error(p.logCtx(ctx), "session.final_save_failed", err)
			}
			return ctx.Err()
		case <-p.wake:
			if err := p.Sync(ctx); err != nil {
				p.logg.Warn(p.logg.WithField(p.logCtx(ctx), "error", err.Error()), "session.save_failed")
			}
		}
	}
}

// Sync writes the pending snapshot, if any. An empty basket deletes the stored snapshot.
func (p *Persister) Sync(ctx context.Context) error {
	p.mu.Lock()
	snap := p.pending
	p.pending = nil
	p.mu.Unlock()
	if snap == nil {
		return nil
	}
	var err error
	if snap.IsEmpty {
		err = p.repo.Delete(ctx, p.sessionID)
	} else {
		err = p.repo.Save(ctx, p.sessionID, *snap)
	}
	if err != nil {
		p.mu.Lock()
		if p.pending == nil {
			p.pending = snap
		}
		p.mu.Unlock()
	}
	return err
}

// Restore loads the stored snapshot into the basket and returns the ids that no longer exist
// in the catalog. Must run on the loop after the catalog is loaded.
func (p *Persister) Restore(ctx context.Context) ([]string, error) {
	snap, ok, err := p.repo.Load(ctx, p.sessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	dropped := p.basket.Restore(snap)
	if len(dropped) > 0 {
		p.logg.Info(p.logg.WithField(p.logCtx(ctx), "dropped", dropped), "session.restore_dropped_items")
	}
	return dropped, nil
}

// RestoreAfterCatalog restores the basket once, on the first catalog:loaded.
func (p *Persister) RestoreAfterCatalog(ctx context.Context) {
	var once sync.Once
	var sub events.Subscription
	sub = events.SubscribeSignal(p.bus, enums.EventCatalogLoaded, func() {
		once.Do(func() {
			sub.Off()
			if _, err := p.Restore(ctx); err != nil {
				p.logg.Error(p.logCtx(ctx), "session.restore_failed", err)
			}
		})
	})
	p.subs = append(p.subs, sub)
}

func (p *Persister) logCtx(ctx context.Context) context.Context {
	return p.logg.WithSessionID(ctx, p.sessionID)
}
