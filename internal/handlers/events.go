package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"weekgrid/internal/common/pagination"
	"weekgrid/internal/interval"
	"weekgrid/internal/models"
)

// CreateEvents accepts a JSON array of events, persists them and submits
// the store's full event set to the grid.
func (h *Handlers) CreateEvents(w http.ResponseWriter, r *http.Request) {
	var payloads []EventPayload
	if err := json.NewDecoder(r.Body).Decode(&payloads); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	events := make([]*models.ResolvedEvent, len(payloads))
	for i := range payloads {
		ev := payloads[i].ToResolvedEvent()
		if !ev.Start.Before(ev.End) {
			http.Error(w, fmt.Sprintf("Event %d has start at or after end", ev.ID), http.StatusBadRequest)
			return
		}
		events[i] = &ev
	}

	if err := h.store.UpsertEvents(events); err != nil {
		h.logger.Error("failed to persist events", err)
		http.Error(w, "Failed to persist events", http.StatusInternalServerError)
		return
	}

	h.submitFromStore(w)
}

// ListEvents returns a page of stored events.
func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	params := pagination.ParseParams(r)

	events, total, err := h.store.EventsPage(params.Limit, params.Offset)
	if err != nil {
		h.logger.Error("failed to list events", err)
		http.Error(w, "Failed to list events", http.StatusInternalServerError)
		return
	}

	response := pagination.NewResponse(events, params.Page, params.PerPage, total)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// submitFromStore re-reads the store for the view's current fetch window
// and pushes it through the grid pipeline, then reports how many events are
// now live. The window query keeps the submission aligned with the
// paginated cache, which treats it as authoritative for all three periods.
func (h *Handlers) submitFromStore(w http.ResponseWriter) {
	first := h.view.FirstVisibleDate()
	r := interval.NewFetchRange(first)
	windowed, err := h.store.EventsBetween(r.Previous.Start(first.Location()), r.Next.End(first.Location()))
	if err != nil {
		h.logger.Error("failed to reload events", err)
		http.Error(w, "Failed to reload events", http.StatusInternalServerError)
		return
	}

	items := make([]models.Displayable, len(windowed))
	for i, ev := range windowed {
		items[i] = EventPayload{ResolvedEvent: *ev}
	}
	h.view.Submit(items)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"submitted": len(items)})
}
