// Package handlers exposes the grid engine over HTTP for the demo server.
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"weekgrid/internal/common/logging"
	"weekgrid/internal/models"
	"weekgrid/internal/storage/sqlite"
	"weekgrid/weekview"
)

type Handlers struct {
	view   *weekview.View
	store  *sqlite.Store
	logger logging.Logger
}

func New(view *weekview.View, store *sqlite.Store, logger logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Handlers{
		view:   view,
		store:  store,
		logger: logger,
	}
}

// Router builds the HTTP routing table.
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/events", h.CreateEvents).Methods(http.MethodPost)
	api.HandleFunc("/events", h.ListEvents).Methods(http.MethodGet)
	api.HandleFunc("/chips", h.GetChips).Methods(http.MethodGet)
	api.HandleFunc("/hit", h.GetHit).Methods(http.MethodGet)
	api.HandleFunc("/navigate", h.Navigate).Methods(http.MethodPost)
	api.HandleFunc("/refresh", h.Refresh).Methods(http.MethodPost)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	return r
}

// EventPayload is the JSON shape accepted and returned by the events API.
type EventPayload struct {
	models.ResolvedEvent
}

// ToResolvedEvent implements models.Displayable.
func (p EventPayload) ToResolvedEvent() models.ResolvedEvent {
	return p.ResolvedEvent
}
