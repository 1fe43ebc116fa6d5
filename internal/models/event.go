// Package models holds the event types shared between the grid engine, the
// storage layer and the demo API.
package models

import (
	"reflect"
	"time"

	"weekgrid/internal/interval"
)

// Style describes how an event's chip is rendered. Colors are CSS-style hex
// strings; an empty string means the renderer's default.
type Style struct {
	BackgroundColor string `json:"background_color,omitempty"`
	BorderColor     string `json:"border_color,omitempty"`
	BorderWidth     int    `json:"border_width,omitempty"`
	TextColor       string `json:"text_color,omitempty"`
	StrikeThrough   bool   `json:"strike_through,omitempty"`
}

// ResolvedEvent is a fully resolved calendar event as consumed by the grid
// pipeline. Start and End are instants; End is exclusive. Events with
// Start >= End are dropped by the splitter rather than surfaced as errors.
type ResolvedEvent struct {
	ID       int64       `json:"id"`
	Title    string      `json:"title"`
	Subtitle string      `json:"subtitle,omitempty"`
	Start    time.Time   `json:"start"`
	End      time.Time   `json:"end"`
	AllDay   bool        `json:"all_day"`
	Style    Style       `json:"style"`
	Data     interface{} `json:"-"`
}

// Displayable is implemented by host-supplied items that can be turned into
// resolved events. Resolution must be a pure function of the item; it is
// invoked once per submission, never per draw frame.
type Displayable interface {
	ToResolvedEvent() ResolvedEvent
}

// IsMultiDay reports whether the event spans more than one calendar day.
// An event ending exactly at midnight of the following day still counts as
// multi-day here; the splitter handles that case separately.
func (e *ResolvedEvent) IsMultiDay() bool {
	return !interval.SameDay(e.Start, e.End.Add(-time.Nanosecond))
}

// Duration returns the event's length.
func (e *ResolvedEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Copy returns a shallow copy with the given start and end times. Used by
// the splitter to derive per-day sub-events.
func (e *ResolvedEvent) Copy(start, end time.Time) *ResolvedEvent {
	clone := *e
	clone.Start = start
	clone.End = end
	return &clone
}

// Equal reports whether two events match on every field, not just the id.
// The differ relies on this to tell an unchanged event apart from an
// updated one that kept its id.
func (e *ResolvedEvent) Equal(other *ResolvedEvent) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.ID == other.ID &&
		e.Title == other.Title &&
		e.Subtitle == other.Subtitle &&
		e.Start.Equal(other.Start) &&
		e.End.Equal(other.End) &&
		e.AllDay == other.AllDay &&
		e.Style == other.Style &&
		reflect.DeepEqual(e.Data, other.Data)
}
