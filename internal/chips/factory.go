package chips

import (
	"sort"
	"time"

	"weekgrid/internal/events"
	"weekgrid/internal/interval"
	"weekgrid/internal/models"
)

// Factory turns resolved events into chips: it splits each event into
// per-day sub-events, partitions them into all-day and timed chips and
// resolves horizontal overlap within each day into column assignments.
type Factory struct{}

// NewFactory creates a chip factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create produces one chip per day-clipped sub-event of the given events.
// Events whose splitter output is empty contribute no chips. The returned
// slice preserves submission order of the originating events.
func (f *Factory) Create(evs []*models.ResolvedEvent, minHour, maxHour int) []*EventChip {
	var result []*EventChip
	timedByDay := make(map[int64][]*EventChip)
	allDayByDay := make(map[int64][]*EventChip)
	var dayOrder []int64

	seen := func(key int64) {
		for _, k := range dayOrder {
			if k == key {
				return
			}
		}
		dayOrder = append(dayOrder, key)
	}

	for _, event := range evs {
		for _, sub := range events.Split(event, minHour, maxHour) {
			chip := &EventChip{
				Event:         sub,
				OriginalEvent: event,
				Columns:       1,
			}
			result = append(result, chip)
			key := interval.DayKey(sub.Start)
			seen(key)
			if sub.AllDay {
				allDayByDay[key] = append(allDayByDay[key], chip)
			} else {
				timedByDay[key] = append(timedByDay[key], chip)
			}
		}
	}

	for _, key := range dayOrder {
		layoutColumns(timedByDay[key])
		layoutAllDayRows(allDayByDay[key])
	}

	return result
}

// layoutColumns assigns each timed chip of one day to a column such that no
// two chips in the same column overlap in time. Chips are processed in
// (start, end) order with the original submission order preserved for equal
// keys; each chip takes the lowest-indexed column that has been free since
// before its start, opening a new column when none qualifies. A chip whose
// start equals another's end does not collide with it: the exclusive end
// boundary frees the column the instant the next chip begins.
func layoutColumns(dayChips []*EventChip) {
	if len(dayChips) == 0 {
		return
	}

	sort.SliceStable(dayChips, func(i, j int) bool {
		a, b := dayChips[i].Event, dayChips[j].Event
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.End.Before(b.End)
	})

	var (
		groupFirst int
		groupEnd   time.Time
		columnEnds []time.Time
	)

	// All chips of a collision group share the group's column count: the
	// group is closed once a chip starts at or after everything live so
	// far has ended.
	closeGroup := func(upTo int) {
		for i := groupFirst; i < upTo; i++ {
			dayChips[i].Columns = len(columnEnds)
		}
	}

	for i, chip := range dayChips {
		start, end := chip.Event.Start, chip.Event.End

		if i > groupFirst && !start.Before(groupEnd) {
			closeGroup(i)
			groupFirst = i
			columnEnds = columnEnds[:0]
		}

		placed := false
		for col, colEnd := range columnEnds {
			if !colEnd.After(start) {
				chip.Column = col
				columnEnds[col] = end
				placed = true
				break
			}
		}
		if !placed {
			chip.Column = len(columnEnds)
			columnEnds = append(columnEnds, end)
		}

		if end.After(groupEnd) {
			groupEnd = end
		}
	}
	closeGroup(len(dayChips))
}

// layoutAllDayRows stacks a day's all-day chips into rows in first-seen
// order. Column carries the row index and Columns the day's row count, which
// the caller uses to size the all-day header area.
func layoutAllDayRows(dayChips []*EventChip) {
	for i, chip := range dayChips {
		chip.Column = i
		chip.Columns = len(dayChips)
	}
}
