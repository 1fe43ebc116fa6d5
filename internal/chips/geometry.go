package chips

import (
	"time"

	"weekgrid/internal/interval"
)

// Geometry describes the drawable area for one layout pass. The renderer
// owns these values; the engine only consumes them to place chips.
type Geometry struct {
	// TimeColumnWidth is the width of the hour label column on the left.
	TimeColumnWidth float64
	// HeaderHeight is the height of the date header, including the all-day
	// area above the timed grid.
	HeaderHeight float64
	// DayWidth is the width of a single day column.
	DayWidth float64
	// HourHeight is the height of one hour in the timed grid.
	HourHeight float64
	// AllDayRowHeight is the height of one stacked all-day row.
	AllDayRowHeight float64
	// MinHour and MaxHour bound the visible hour window.
	MinHour int
	MaxHour int
	// Days are the visible day starts, left to right.
	Days []time.Time
}

// Arranger performs the layout pass that turns column assignments into
// pixel bounds. It runs on the UI thread before every draw.
type Arranger struct {
	cache *Cache
}

// NewArranger creates an arranger over the given chips cache.
func NewArranger(cache *Cache) *Arranger {
	return &Arranger{cache: cache}
}

// Arrange recomputes the bounds of every chip on the visible days. Bounds
// of timed chips are invalidated first so chips scrolled out of the
// viewport stop hit-testing.
func (a *Arranger) Arrange(g Geometry) {
	a.cache.ClearSingleEventsCache()

	for i, day := range g.Days {
		dayLeft := g.TimeColumnWidth + float64(i)*g.DayWidth
		a.arrangeTimed(day, dayLeft, g)
		a.arrangeAllDay(day, dayLeft, g)
	}
}

func (a *Arranger) arrangeTimed(day time.Time, dayLeft float64, g Geometry) {
	windowStart := interval.AtHour(day, g.MinHour)
	windowEnd := interval.AtHour(day, g.MaxHour)

	for _, chip := range a.cache.TimedChipsForDay(day) {
		start, end := chip.Event.Start, chip.Event.End
		if !start.Before(windowEnd) || !end.After(windowStart) {
			continue
		}

		top := g.HeaderHeight + minutesFrom(windowStart, start)/60*g.HourHeight
		bottom := g.HeaderHeight + minutesFrom(windowStart, end)/60*g.HourHeight

		width := g.DayWidth / float64(chip.Columns)
		left := dayLeft + float64(chip.Column)*width

		r := Rect{Left: left, Top: top, Right: left + width, Bottom: bottom}
		if r.Width() <= 0 || r.Height() <= 0 {
			continue
		}
		chip.SetBounds(r)
	}
}

func (a *Arranger) arrangeAllDay(day time.Time, dayLeft float64, g Geometry) {
	for _, chip := range a.cache.AllDayChipsForDay(day) {
		top := float64(chip.Column) * g.AllDayRowHeight
		chip.SetBounds(Rect{
			Left:   dayLeft,
			Top:    top,
			Right:  dayLeft + g.DayWidth,
			Bottom: top + g.AllDayRowHeight,
		})
	}
}

func minutesFrom(origin, t time.Time) float64 {
	return t.Sub(origin).Minutes()
}
