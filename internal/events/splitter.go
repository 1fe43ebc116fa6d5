package events

import (
	"sort"
	"time"

	"weekgrid/internal/interval"
	"weekgrid/internal/models"
)

// Split clips an event into one sub-event per calendar day it spans, bounded
// by the visible hour window [minHour, maxHour). Events with a non-positive
// duration and events that fall entirely outside the window on every spanned
// day produce an empty result; that is deliberate best-effort behavior, not
// an error.
func Split(event *models.ResolvedEvent, minHour, maxHour int) []*models.ResolvedEvent {
	if !event.Start.Before(event.End) {
		return nil
	}

	// An event ending exactly at midnight of the day after it starts is a
	// same-day event in disguise. Shorten it to the end of the visible window
	// on its start day instead of producing an empty trailing day.
	if minHour == 0 && endsAtStartOfNextDay(event) {
		end := interval.AtHour(event.Start, maxHour)
		if !event.Start.Before(end) {
			return nil
		}
		return []*models.ResolvedEvent{event.Copy(event.Start, end)}
	}

	start := clipStart(event.Start, minHour, maxHour)
	end := clipEnd(event.End, minHour, maxHour)
	if !start.Before(end) {
		return nil
	}

	clipped := event.Copy(start, end)
	if !clipped.IsMultiDay() {
		return []*models.ResolvedEvent{clipped}
	}

	results := make([]*models.ResolvedEvent, 0, 2)
	results = append(results, event.Copy(start, interval.AtHour(start, maxHour)))

	lastDay := interval.StartOfDay(end.Add(-time.Nanosecond))
	for day := interval.StartOfDay(start).AddDate(0, 0, 1); day.Before(lastDay); day = day.AddDate(0, 0, 1) {
		results = append(results, event.Copy(interval.AtHour(day, minHour), interval.AtHour(day, maxHour)))
	}

	results = append(results, event.Copy(interval.AtHour(lastDay, minHour), end))

	sort.SliceStable(results, func(i, j int) bool {
		if !results[i].Start.Equal(results[j].Start) {
			return results[i].Start.Before(results[j].Start)
		}
		return results[i].End.Before(results[j].End)
	})
	return results
}

func endsAtStartOfNextDay(event *models.ResolvedEvent) bool {
	return event.End.Equal(interval.StartOfDay(event.Start).AddDate(0, 0, 1))
}

// clipStart moves a start time forward to the nearest instant inside the
// hour window: a start before the window opens snaps to the window start of
// the same day, a start at or past the window end rolls over to the window
// start of the following day.
func clipStart(t time.Time, minHour, maxHour int) time.Time {
	windowStart := interval.AtHour(t, minHour)
	windowEnd := interval.AtHour(t, maxHour)
	switch {
	case t.Before(windowStart):
		return windowStart
	case !t.Before(windowEnd):
		return interval.AtHour(t.AddDate(0, 0, 1), minHour)
	default:
		return t
	}
}

// clipEnd moves an exclusive end time backward to the nearest instant inside
// the hour window. The day under consideration is the one containing the
// last covered instant, so an end at exactly midnight belongs to the
// preceding day.
func clipEnd(t time.Time, minHour, maxHour int) time.Time {
	day := t.Add(-time.Nanosecond)
	windowStart := interval.AtHour(day, minHour)
	windowEnd := interval.AtHour(day, maxHour)
	switch {
	case t.After(windowEnd):
		return windowEnd
	case !t.After(windowStart):
		return interval.AtHour(day.AddDate(0, 0, -1), maxHour)
	default:
		return t
	}
}
