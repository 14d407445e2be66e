package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/internal/viewstate"
)

type projector interface {
	Snapshot() viewstate.Projection
}

// SessionState returns what the view layer currently shows.
func SessionState(view projector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, view.Snapshot())
	}
}
