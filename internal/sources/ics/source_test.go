package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedBody(lines ...string) string {
	all := append([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//weekgrid//test//EN",
	}, lines...)
	all = append(all, "END:VCALENDAR")
	return strings.Join(all, "\r\n") + "\r\n"
}

func serveFeed(t *testing.T, body string, hits *int32) *Source {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		w.Header().Set("Content-Type", "text/calendar")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return NewSource(server.URL, time.Minute, nil)
}

func TestEventsBetweenSingleEvent(t *testing.T) {
	source := serveFeed(t, feedBody(
		"BEGIN:VEVENT",
		"UID:standup@example.org",
		"SUMMARY:Standup",
		"LOCATION:Room 2",
		"DTSTART:20260302T100000Z",
		"DTEND:20260302T103000Z",
		"END:VEVENT",
	), nil)

	items, err := source.EventsBetween(context.Background(),
		time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC),
	)

	require.NoError(t, err)
	require.Len(t, items, 1)
	event := items[0].ToResolvedEvent()
	assert.Equal(t, "Standup", event.Title)
	assert.Equal(t, "Room 2", event.Subtitle)
	assert.False(t, event.AllDay)
	assert.True(t, event.Start.Equal(time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, 30*time.Minute, event.End.Sub(event.Start))
	assert.NotZero(t, event.ID)
}

func TestEventsBetweenFiltersByRange(t *testing.T) {
	source := serveFeed(t, feedBody(
		"BEGIN:VEVENT",
		"UID:early@example.org",
		"SUMMARY:Too early",
		"DTSTART:20260201T100000Z",
		"DTEND:20260201T110000Z",
		"END:VEVENT",
	), nil)

	items, err := source.EventsBetween(context.Background(),
		time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC),
	)

	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestEventsBetweenAllDay(t *testing.T) {
	source := serveFeed(t, feedBody(
		"BEGIN:VEVENT",
		"UID:holiday@example.org",
		"SUMMARY:Holiday",
		"DTSTART;VALUE=DATE:20260302",
		"DTEND;VALUE=DATE:20260303",
		"END:VEVENT",
	), nil)

	items, err := source.EventsBetween(context.Background(),
		time.Date(2026, time.March, 1, 0, 0, 0, 0, time.Local),
		time.Date(2026, time.April, 1, 0, 0, 0, 0, time.Local),
	)

	require.NoError(t, err)
	require.Len(t, items, 1)
	event := items[0].ToResolvedEvent()
	assert.True(t, event.AllDay)
	assert.Equal(t, 24*time.Hour, event.End.Sub(event.Start))
}

func TestEventsBetweenExpandsRecurrence(t *testing.T) {
	source := serveFeed(t, feedBody(
		"BEGIN:VEVENT",
		"UID:weekly@example.org",
		"SUMMARY:Weekly sync",
		"DTSTART:20260302T100000Z",
		"DTEND:20260302T110000Z",
		"RRULE:FREQ=WEEKLY;COUNT=10",
		"END:VEVENT",
	), nil)

	items, err := source.EventsBetween(context.Background(),
		time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC),
	)

	require.NoError(t, err)
	// March 2, 9, 16, 23, 30.
	require.Len(t, items, 5)

	ids := make(map[int64]bool)
	for i, item := range items {
		event := item.ToResolvedEvent()
		assert.Equal(t, "Weekly sync", event.Title)
		assert.Equal(t, time.Hour, event.End.Sub(event.Start))
		assert.False(t, ids[event.ID], "occurrence %d reuses an id", i)
		ids[event.ID] = true
	}

	first := items[0].ToResolvedEvent()
	assert.True(t, first.Start.Equal(time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)))
}

func TestOccurrenceIDsAreStable(t *testing.T) {
	start := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, occurrenceID("a@example.org", start), occurrenceID("a@example.org", start))
	assert.NotEqual(t, occurrenceID("a@example.org", start), occurrenceID("b@example.org", start))
	assert.NotEqual(t, occurrenceID("a@example.org", start), occurrenceID("a@example.org", start.Add(time.Hour)))

	t.Run("ids are non-negative", func(t *testing.T) {
		assert.GreaterOrEqual(t, occurrenceID("a@example.org", start), int64(0))
	})
}

func TestFetchCaching(t *testing.T) {
	var hits int32
	source := serveFeed(t, feedBody(
		"BEGIN:VEVENT",
		"UID:cached@example.org",
		"SUMMARY:Cached",
		"DTSTART:20260302T100000Z",
		"DTEND:20260302T110000Z",
		"END:VEVENT",
	), &hits)

	rangeStart := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	rangeEnd := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

	_, err := source.EventsBetween(context.Background(), rangeStart, rangeEnd)
	require.NoError(t, err)
	_, err = source.EventsBetween(context.Background(), rangeStart, rangeEnd)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestEventsBetweenSkipsUnparsableEvents(t *testing.T) {
	source := serveFeed(t, feedBody(
		"BEGIN:VEVENT",
		"UID:broken@example.org",
		"SUMMARY:No start",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:fine@example.org",
		"SUMMARY:Fine",
		"DTSTART:20260302T100000Z",
		"DTEND:20260302T110000Z",
		"END:VEVENT",
	), nil)

	items, err := source.EventsBetween(context.Background(),
		time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC),
	)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Fine", items[0].ToResolvedEvent().Title)
}

func TestFeedServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	source := NewSource(server.URL, time.Minute, nil)
	_, err := source.EventsBetween(context.Background(),
		time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC),
	)

	assert.Error(t, err)
}
