package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"weekgrid/internal/chips"
	"weekgrid/internal/models"
)

// ChipResponse is the JSON shape of one laid-out chip.
type ChipResponse struct {
	Event   *models.ResolvedEvent `json:"event"`
	Column  int                   `json:"column"`
	Columns int                   `json:"columns"`
	AllDay  bool                  `json:"all_day"`
	Bounds  *chips.Rect           `json:"bounds,omitempty"`
}

func toChipResponse(chip *chips.EventChip) ChipResponse {
	resp := ChipResponse{
		Event:   chip.Event,
		Column:  chip.Column,
		Columns: chip.Columns,
		AllDay:  chip.Event.AllDay,
	}
	if bounds := chip.Bounds(); bounds != nil {
		b := *bounds
		resp.Bounds = &b
	}
	return resp
}

// GetChips arranges the visible window and returns its chips. Geometry can
// be overridden with day_width, hour_height and all_day_row_height query
// parameters; start/end (RFC 3339) narrow the returned range.
func (h *Handlers) GetChips(w http.ResponseWriter, r *http.Request) {
	geometry := chips.Geometry{
		DayWidth:        queryFloat(r, "day_width"),
		HourHeight:      queryFloat(r, "hour_height"),
		AllDayRowHeight: queryFloat(r, "all_day_row_height"),
	}
	if geometry.DayWidth <= 0 {
		geometry.DayWidth = 200
	}
	if geometry.HourHeight <= 0 {
		geometry.HourHeight = 60
	}
	if geometry.AllDayRowHeight <= 0 {
		geometry.AllDayRowHeight = 24
	}
	h.view.Arrange(geometry)

	start, end, err := rangeParams(r, h.view.VisibleDates())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	laidOut := h.view.ChipsInRange(start, end)
	responses := make([]ChipResponse, len(laidOut))
	for i, chip := range laidOut {
		responses[i] = toChipResponse(chip)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}

// GetHit resolves a grid coordinate to the chip under it, if any.
func (h *Handlers) GetHit(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		http.Error(w, "x and y query parameters are required", http.StatusBadRequest)
		return
	}

	chip, found := h.view.FindHitEvent(x, y)
	if !found {
		http.Error(w, "No event at coordinate", http.StatusNotFound)
		return
	}

	response := toChipResponse(chip)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Navigate jumps the visible window to the requested date.
func (h *Handlers) Navigate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	date, err := parseDate(body.Date)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid date: %v", err), http.StatusBadRequest)
		return
	}

	h.view.GoToDate(date)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"first_visible_date": h.view.FirstVisibleDate(),
		"visible_dates":      h.view.VisibleDates(),
	})
}

// Refresh forces the next load to bypass the event cache.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	h.view.Refresh()
	w.WriteHeader(http.StatusAccepted)
}

// Health reports server and store health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := h.store.Health(); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func queryFloat(r *http.Request, name string) float64 {
	value, _ := strconv.ParseFloat(r.URL.Query().Get(name), 64)
	return value
}

// rangeParams reads optional start/end query parameters, defaulting to the
// currently visible window.
func rangeParams(r *http.Request, visible []time.Time) (time.Time, time.Time, error) {
	start := visible[0]
	end := visible[len(visible)-1].AddDate(0, 0, 1)

	if raw := r.URL.Query().Get("start"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start: %w", err)
		}
		start = parsed
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end: %w", err)
		}
		end = parsed
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start must be before end")
	}
	return start, end, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", raw, time.Local)
}
