package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/events"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/types"
)

const intentDispatchTimeout = 5 * time.Second

type loopRunner interface {
	Do(ctx context.Context, fn func()) error
}

type eventEmitter interface {
	Emit(name enums.EventName, payload any) int
}

// PostIntent publishes a view intent on the bus from the event loop.
func PostIntent(loop loopRunner, bus eventEmitter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := validators.ParseIntent(chi.URLParam(r, "event"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload, err := validators.DecodeIntent(r, name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), intentDispatchTimeout)
		defer cancel()
		var handlers int
		if err := loop.Do(ctx, func() { handlers = bus.Emit(name, payload) }); err != nil {
			code := pkgerrors.CodeUnavailable
			if errors.Is(err, context.Canceled) {
				code = pkgerrors.CodeInternal
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(code, err, "intent not dispatched"))
			return
		}

		if logg != nil {
			logg.Debug(logg.WithEvent(r.Context(), name.String()), "intent.dispatched")
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, types.IntentAck{Event: name.String(), Handlers: handlers})
	}
}

var _ loopRunner = (*events.Loop)(nil)
