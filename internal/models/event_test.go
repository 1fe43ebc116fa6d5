package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sample() *ResolvedEvent {
	start := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.Local)
	return &ResolvedEvent{
		ID:       1,
		Title:    "event",
		Subtitle: "detail",
		Start:    start,
		End:      start.Add(time.Hour),
		Style:    Style{BackgroundColor: "#336699"},
		Data:     map[string]string{"key": "value"},
	}
}

func TestEqual(t *testing.T) {
	t.Run("identical events are equal", func(t *testing.T) {
		assert.True(t, sample().Equal(sample()))
	})

	t.Run("any field change breaks equality", func(t *testing.T) {
		mutations := map[string]func(*ResolvedEvent){
			"id":        func(e *ResolvedEvent) { e.ID = 2 },
			"title":     func(e *ResolvedEvent) { e.Title = "other" },
			"subtitle":  func(e *ResolvedEvent) { e.Subtitle = "other" },
			"start":     func(e *ResolvedEvent) { e.Start = e.Start.Add(time.Minute) },
			"end":       func(e *ResolvedEvent) { e.End = e.End.Add(time.Minute) },
			"all day":   func(e *ResolvedEvent) { e.AllDay = true },
			"style":     func(e *ResolvedEvent) { e.Style.StrikeThrough = true },
			"user data": func(e *ResolvedEvent) { e.Data = map[string]string{"key": "other"} },
		}
		for name, mutate := range mutations {
			t.Run(name, func(t *testing.T) {
				other := sample()
				mutate(other)
				assert.False(t, sample().Equal(other))
			})
		}
	})

	t.Run("same instant in different zones is equal", func(t *testing.T) {
		a, b := sample(), sample()
		b.Start = b.Start.UTC()
		b.End = b.End.UTC()
		assert.True(t, a.Equal(b))
	})

	t.Run("nil handling", func(t *testing.T) {
		var missing *ResolvedEvent
		assert.True(t, missing.Equal(nil))
		assert.False(t, sample().Equal(nil))
		assert.False(t, missing.Equal(sample()))
	})
}

func TestIsMultiDay(t *testing.T) {
	event := sample()
	assert.False(t, event.IsMultiDay())

	event.End = event.Start.AddDate(0, 0, 1).Add(2 * time.Hour)
	assert.True(t, event.IsMultiDay())

	t.Run("ending exactly at midnight stays single-day", func(t *testing.T) {
		event := sample()
		event.End = time.Date(2026, time.March, 3, 0, 0, 0, 0, time.Local)
		assert.False(t, event.IsMultiDay())
	})
}

func TestCopy(t *testing.T) {
	event := sample()
	newStart := event.Start.Add(time.Hour)
	newEnd := event.End.Add(2 * time.Hour)

	clone := event.Copy(newStart, newEnd)

	assert.True(t, clone.Start.Equal(newStart))
	assert.True(t, clone.End.Equal(newEnd))
	assert.Equal(t, event.ID, clone.ID)
	assert.Equal(t, event.Style, clone.Style)
	assert.True(t, event.Start.Equal(sample().Start), "original must not change")
}
