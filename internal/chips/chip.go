// Package chips turns resolved events into positioned, drawable chips:
// the collision-based column layout, the concurrent day-keyed chip cache
// and the geometry pass that assigns pixel bounds.
package chips

import (
	"weekgrid/internal/models"
)

// Rect is an axis-aligned rectangle in draw space.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Width returns the rectangle's horizontal extent.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the rectangle's vertical extent.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Contains reports whether the point lies strictly inside the rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x > r.Left && x < r.Right && y > r.Top && y < r.Bottom
}

// EventChip is the drawable placement of one day-clipped sub-interval of an
// event. Event is the clipped sub-event actually drawn; OriginalEvent is the
// event as submitted by the host, so a multi-day event owns several chips
// that share an original. Chips belong exclusively to the chips cache and
// are handed out only as read-only references for drawing and hit testing.
type EventChip struct {
	Event         *models.ResolvedEvent `json:"event"`
	OriginalEvent *models.ResolvedEvent `json:"-"`

	// Column and Columns describe the chip's slot within its collision
	// group: the chip is drawn at horizontal offset Column/Columns with
	// fractional width 1/Columns of the day column.
	Column  int `json:"column"`
	Columns int `json:"columns"`

	// bounds is nil until a layout pass runs and is recomputed every pass.
	// Only the UI thread touches it.
	bounds *Rect
}

// Bounds returns the chip's draw rectangle, or nil if no layout pass has
// assigned one yet.
func (c *EventChip) Bounds() *Rect {
	return c.bounds
}

// SetBounds records the rectangle computed by a layout pass.
func (c *EventChip) SetBounds(r Rect) {
	c.bounds = &r
}

// ClearBounds invalidates the cached rectangle, forcing the next layout
// pass to recompute it.
func (c *EventChip) ClearBounds() {
	c.bounds = nil
}

// IsHit reports whether the point falls inside the chip's current bounds.
func (c *EventChip) IsHit(x, y float64) bool {
	return c.bounds != nil && c.bounds.Contains(x, y)
}

// StartsOnEarlierDay reports whether this chip continues an event that
// began on a previous day, letting renderers square off the top edge.
func (c *EventChip) StartsOnEarlierDay() bool {
	return !c.Event.Start.Equal(c.OriginalEvent.Start)
}

// EndsOnLaterDay reports whether the event continues past this chip's day,
// letting renderers square off the bottom edge.
func (c *EventChip) EndsOnLaterDay() bool {
	return !c.Event.End.Equal(c.OriginalEvent.End)
}
