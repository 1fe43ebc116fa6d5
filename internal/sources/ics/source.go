// Package ics mirrors an ICS feed into the grid's submission pipeline:
// it fetches a calendar feed, expands recurring events within a requested
// window and hands the occurrences to the host as displayable items.
package ics

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"strings"
	"time"

	ics "github.com/emersion/go-ical"
	gocache "github.com/patrickmn/go-cache"
	"github.com/teambition/rrule-go"

	"weekgrid/internal/common/errors"
	"weekgrid/internal/common/logging"
	"weekgrid/internal/models"
)

// occurrenceCap bounds recurrence expansion per event so a malformed rule
// cannot produce an unbounded occurrence list.
const occurrenceCap = 5000

// FeedEvent is one concrete occurrence from the feed, ready for submission.
type FeedEvent struct {
	Event models.ResolvedEvent
}

// ToResolvedEvent implements models.Displayable.
func (f FeedEvent) ToResolvedEvent() models.ResolvedEvent {
	return f.Event
}

// Source fetches and expands an ICS feed. Fetched feeds are cached with a
// TTL so repeated month requests during a scroll do not hammer the server.
type Source struct {
	url    string
	client *http.Client
	cache  *gocache.Cache
	logger logging.Logger
}

// NewSource creates a feed source for the given URL.
func NewSource(feedURL string, cacheTTL time.Duration, logger logging.Logger) *Source {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Source{
		url:    feedURL,
		client: &http.Client{Timeout: 30 * time.Second},
		cache:  gocache.New(cacheTTL, 2*cacheTTL),
		logger: logger,
	}
}

// EventsBetween returns the feed's occurrences overlapping [start, end) as
// displayable items. Events that fail to parse are skipped, not fatal.
func (s *Source) EventsBetween(ctx context.Context, start, end time.Time) ([]models.Displayable, error) {
	cal, err := s.fetchCalendar(ctx)
	if err != nil {
		return nil, err
	}

	var items []models.Displayable
	for _, component := range cal.Children {
		if component.Name != ics.CompEvent {
			continue
		}
		occurrences, err := s.expandComponent(component, start, end)
		if err != nil {
			s.logger.Warn("skipping unparsable feed event", logging.Err(err))
			continue
		}
		for _, occ := range occurrences {
			items = append(items, FeedEvent{Event: occ})
		}
	}
	return items, nil
}

func (s *Source) fetchCalendar(ctx context.Context) (*ics.Calendar, error) {
	if cached, found := s.cache.Get(s.url); found {
		return cached.(*ics.Calendar), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, errors.ConnectionError("building feed request", err)
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.ConnectionError("fetching feed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.ConnectionError(fmt.Sprintf("feed returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, errors.ConnectionError("reading feed body", err)
	}

	cal, err := ics.NewDecoder(strings.NewReader(string(body))).Decode()
	if err != nil {
		return nil, errors.InternalError("decoding feed", err)
	}

	s.cache.SetDefault(s.url, cal)
	return cal, nil
}

// expandComponent turns one VEVENT into the occurrences that overlap
// [rangeStart, rangeEnd), expanding RRULEs with the original duration
// preserved.
func (s *Source) expandComponent(event *ics.Component, rangeStart, rangeEnd time.Time) ([]models.ResolvedEvent, error) {
	uid := propValue(event, ics.PropUID)
	if uid == "" {
		return nil, errors.InternalError("event without UID", nil)
	}

	start, allDay, err := parseEventTime(event, ics.PropDateTimeStart)
	if err != nil {
		return nil, err
	}
	end, _, err := parseEventTime(event, ics.PropDateTimeEnd)
	if err != nil {
		// DTEND is optional; all-day events default to one day, timed
		// events to one hour.
		if allDay {
			end = start.AddDate(0, 0, 1)
		} else {
			end = start.Add(time.Hour)
		}
	}

	base := models.ResolvedEvent{
		Title:    propValue(event, ics.PropSummary),
		Subtitle: propValue(event, ics.PropLocation),
		Start:    start,
		End:      end,
		AllDay:   allDay,
	}

	ruleStr := propValue(event, "RRULE")
	if ruleStr == "" {
		if !base.Start.Before(rangeEnd) || !base.End.After(rangeStart) {
			return nil, nil
		}
		base.ID = occurrenceID(uid, base.Start)
		return []models.ResolvedEvent{base}, nil
	}

	rule, err := rrule.StrToRRule(ruleStr)
	if err != nil {
		return nil, errors.InternalError("parsing RRULE", err)
	}
	rule.DTStart(start)

	duration := base.Duration()
	occTimes := rule.Between(rangeStart.In(start.Location()), rangeEnd.In(start.Location()), true)
	if len(occTimes) > occurrenceCap {
		s.logger.Warn("recurrence expansion capped",
			logging.String("uid", uid),
			logging.Int("cap", occurrenceCap),
		)
		occTimes = occTimes[:occurrenceCap]
	}

	occurrences := make([]models.ResolvedEvent, 0, len(occTimes))
	for _, occStart := range occTimes {
		occ := base
		occ.Start = occStart
		occ.End = occStart.Add(duration)
		occ.ID = occurrenceID(uid, occStart)
		occurrences = append(occurrences, occ)
	}
	return occurrences, nil
}

func propValue(event *ics.Component, name string) string {
	if prop := event.Props.Get(name); prop != nil {
		return prop.Value
	}
	return ""
}

// parseEventTime reads a DTSTART/DTEND property, recognizing date-only
// values (all-day), UTC timestamps and floating local timestamps.
func parseEventTime(event *ics.Component, name string) (time.Time, bool, error) {
	prop := event.Props.Get(name)
	if prop == nil {
		return time.Time{}, false, errors.InternalError(fmt.Sprintf("missing %s", name), nil)
	}

	value := prop.Value
	switch {
	case len(value) == 8:
		t, err := time.ParseInLocation("20060102", value, time.Local)
		return t, true, err
	case strings.HasSuffix(value, "Z"):
		t, err := time.Parse("20060102T150405Z", value)
		return t, false, err
	default:
		loc := time.Local
		if tzid := prop.Params.Get("TZID"); tzid != "" {
			if parsed, err := time.LoadLocation(tzid); err == nil {
				loc = parsed
			}
		}
		t, err := time.ParseInLocation("20060102T150405", value, loc)
		return t, false, err
	}
}

// occurrenceID derives a stable event id from the feed UID and the
// occurrence start, so recurring instances keep their identity across
// refreshes.
func occurrenceID(uid string, start time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(uid))
	h.Write([]byte(start.UTC().Format(time.RFC3339)))
	return int64(h.Sum64() &^ (1 << 63))
}
