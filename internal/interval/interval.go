// Package interval provides the calendar arithmetic underneath the week grid:
// day boundaries, (year, month) periods that act as the fetch and cache
// granularity, and the three-period fetch window kept resident around the
// first visible date.
package interval

import (
	"fmt"
	"time"
)

// Period identifies a calendar month. It is an immutable value type; two
// periods are equal iff year and month match.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the period containing the given date.
func PeriodOf(date time.Time) Period {
	return Period{Year: date.Year(), Month: date.Month()}
}

// Previous returns the period one calendar month earlier.
func (p Period) Previous() Period {
	if p.Month == time.January {
		return Period{Year: p.Year - 1, Month: time.December}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// Next returns the period one calendar month later.
func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Start returns the first instant of the period in the given location.
func (p Period) Start(loc *time.Location) time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, loc)
}

// End returns the first instant of the following period in the given
// location. The period covers [Start, End).
func (p Period) End(loc *time.Location) time.Time {
	next := p.Next()
	return time.Date(next.Year, next.Month, 1, 0, 0, 0, 0, loc)
}

// Contains reports whether the date falls within the period.
func (p Period) Contains(date time.Time) bool {
	return PeriodOf(date) == p
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// FetchRange is the ordered triple of periods kept resident around a
// reference date: the month before it, the month containing it and the
// month after it.
type FetchRange struct {
	Previous Period
	Current  Period
	Next     Period
}

// NewFetchRange builds the fetch range around the given reference date.
func NewFetchRange(reference time.Time) FetchRange {
	current := PeriodOf(reference)
	return FetchRange{
		Previous: current.Previous(),
		Current:  current,
		Next:     current.Next(),
	}
}

// Periods returns the range's periods in order.
func (f FetchRange) Periods() [3]Period {
	return [3]Period{f.Previous, f.Current, f.Next}
}

// ContainsPeriod reports whether the period is one of the range's three
// periods.
func (f FetchRange) ContainsPeriod(p Period) bool {
	return p == f.Previous || p == f.Current || p == f.Next
}

// Contains reports whether the date's period is part of the range.
func (f FetchRange) Contains(date time.Time) bool {
	return f.ContainsPeriod(PeriodOf(date))
}

// Shift describes how a fetch range relates to the one it replaces.
type Shift int

const (
	// ShiftNone means the current period did not change.
	ShiftNone Shift = iota
	// ShiftBackward means the caller scrolled back by one period: the new
	// current period is the old previous one.
	ShiftBackward
	// ShiftForward means the caller scrolled ahead by one period: the new
	// current period is the old next one.
	ShiftForward
	// ShiftJump means the ranges are discontinuous and nothing from the old
	// range's position can be reused by position.
	ShiftJump
)

func (s Shift) String() string {
	switch s {
	case ShiftNone:
		return "none"
	case ShiftBackward:
		return "backward"
	case ShiftForward:
		return "forward"
	default:
		return "jump"
	}
}

// ShiftFrom classifies the transition from an old fetch range to this one.
func (f FetchRange) ShiftFrom(old FetchRange) Shift {
	switch f.Current {
	case old.Current:
		return ShiftNone
	case old.Previous:
		return ShiftBackward
	case old.Next:
		return ShiftForward
	default:
		return ShiftJump
	}
}

// StartOfDay truncates the time to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether both times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DayKey returns a stable key for the calendar day containing t.
func DayKey(t time.Time) int64 {
	return StartOfDay(t).Unix()
}

// AtHour returns the given hour boundary on t's calendar day. Hour 24 maps
// to midnight of the following day, which keeps exclusive end timestamps
// well-formed.
func AtHour(t time.Time, hour int) time.Time {
	if hour >= 24 {
		return StartOfDay(t).AddDate(0, 0, 1)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, hour, 0, 0, 0, t.Location())
}

// DaysBetween returns the sequence of day starts from the day containing
// start up to and including the day containing end.
func DaysBetween(start, end time.Time) []time.Time {
	var days []time.Time
	day := StartOfDay(start)
	last := StartOfDay(end)
	for !day.After(last) {
		days = append(days, day)
		day = day.AddDate(0, 0, 1)
	}
	return days
}
