package chips

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekgrid/internal/models"
)

func at(d, hour, min int) time.Time {
	return time.Date(2026, time.March, d, hour, min, 0, 0, time.Local)
}

func timed(id int64, start, end time.Time) *models.ResolvedEvent {
	return &models.ResolvedEvent{ID: id, Title: "event", Start: start, End: end}
}

func allDay(id int64, d int) *models.ResolvedEvent {
	start := at(d, 0, 0)
	return &models.ResolvedEvent{ID: id, Title: "event", Start: start, End: start.AddDate(0, 0, 1), AllDay: true}
}

func chipsByID(chips []*EventChip) map[int64]*EventChip {
	byID := make(map[int64]*EventChip, len(chips))
	for _, chip := range chips {
		byID[chip.Event.ID] = chip
	}
	return byID
}

func TestCreateSingleChipPerDay(t *testing.T) {
	factory := NewFactory()

	original := timed(1, at(2, 10, 0), at(2, 11, 0))
	chips := factory.Create([]*models.ResolvedEvent{original}, 0, 24)

	require.Len(t, chips, 1)
	assert.Equal(t, 0, chips[0].Column)
	assert.Equal(t, 1, chips[0].Columns)
	assert.Same(t, original, chips[0].OriginalEvent)
}

func TestCreateMultiDayProducesOneChipPerDay(t *testing.T) {
	factory := NewFactory()
	original := timed(1, at(2, 18, 0), at(4, 9, 0))

	chips := factory.Create([]*models.ResolvedEvent{original}, 0, 24)

	require.Len(t, chips, 3)
	for _, chip := range chips {
		assert.Same(t, original, chip.OriginalEvent)
	}
	assert.True(t, chips[0].EndsOnLaterDay())
	assert.False(t, chips[0].StartsOnEarlierDay())
	assert.True(t, chips[1].StartsOnEarlierDay())
	assert.True(t, chips[1].EndsOnLaterDay())
	assert.True(t, chips[2].StartsOnEarlierDay())
	assert.False(t, chips[2].EndsOnLaterDay())
}

func TestCreateDropsEventsOutsideHourWindow(t *testing.T) {
	factory := NewFactory()

	chips := factory.Create([]*models.ResolvedEvent{
		timed(1, at(2, 22, 0), at(3, 6, 0)),
		timed(2, at(2, 10, 0), at(2, 11, 0)),
	}, 7, 21)

	require.Len(t, chips, 1)
	assert.Equal(t, int64(2), chips[0].Event.ID)
}

func TestLayoutNonOverlappingShareColumnZero(t *testing.T) {
	factory := NewFactory()

	chips := factory.Create([]*models.ResolvedEvent{
		timed(1, at(2, 9, 0), at(2, 10, 0)),
		timed(2, at(2, 11, 0), at(2, 12, 0)),
	}, 0, 24)

	byID := chipsByID(chips)
	assert.Equal(t, 0, byID[1].Column)
	assert.Equal(t, 1, byID[1].Columns)
	assert.Equal(t, 0, byID[2].Column)
	assert.Equal(t, 1, byID[2].Columns)
}

func TestLayoutOverlappingPairSplitsTheDay(t *testing.T) {
	factory := NewFactory()

	chips := factory.Create([]*models.ResolvedEvent{
		timed(1, at(2, 9, 0), at(2, 11, 0)),
		timed(2, at(2, 10, 0), at(2, 12, 0)),
	}, 0, 24)

	byID := chipsByID(chips)
	assert.Equal(t, 0, byID[1].Column)
	assert.Equal(t, 1, byID[2].Column)
	assert.Equal(t, 2, byID[1].Columns)
	assert.Equal(t, 2, byID[2].Columns)
}

func TestLayoutBoundaryTouchDoesNotCollide(t *testing.T) {
	factory := NewFactory()

	chips := factory.Create([]*models.ResolvedEvent{
		timed(1, at(2, 9, 0), at(2, 10, 0)),
		timed(2, at(2, 10, 0), at(2, 11, 0)),
	}, 0, 24)

	byID := chipsByID(chips)
	assert.Equal(t, 0, byID[1].Column)
	assert.Equal(t, 0, byID[2].Column)
	assert.Equal(t, 1, byID[1].Columns)
	assert.Equal(t, 1, byID[2].Columns)
}

func TestLayoutChainedOverlapFormsOneGroup(t *testing.T) {
	// A overlaps B and B overlaps C, but A and C are disjoint; the chain
	// keeps them in one group of two columns, with C reusing column 0.
	factory := NewFactory()

	chips := factory.Create([]*models.ResolvedEvent{
		timed(1, at(2, 9, 0), at(2, 10, 30)),
		timed(2, at(2, 10, 0), at(2, 11, 30)),
		timed(3, at(2, 11, 0), at(2, 12, 0)),
	}, 0, 24)

	byID := chipsByID(chips)
	assert.Equal(t, 0, byID[1].Column)
	assert.Equal(t, 1, byID[2].Column)
	assert.Equal(t, 0, byID[3].Column)
	for id := int64(1); id <= 3; id++ {
		assert.Equal(t, 2, byID[id].Columns)
	}
}

func TestLayoutGroupsAreIndependent(t *testing.T) {
	factory := NewFactory()

	chips := factory.Create([]*models.ResolvedEvent{
		timed(1, at(2, 9, 0), at(2, 11, 0)),
		timed(2, at(2, 9, 30), at(2, 10, 0)),
		timed(3, at(2, 10, 15), at(2, 10, 45)),
		timed(4, at(2, 14, 0), at(2, 15, 0)),
	}, 0, 24)

	byID := chipsByID(chips)

	// First group spans three chips across two columns.
	assert.Equal(t, 2, byID[1].Columns)
	assert.Equal(t, 2, byID[2].Columns)
	assert.Equal(t, 2, byID[3].Columns)
	assert.Equal(t, 1, byID[2].Column)
	assert.Equal(t, 1, byID[3].Column)

	// The afternoon event starts after everything live ended.
	assert.Equal(t, 0, byID[4].Column)
	assert.Equal(t, 1, byID[4].Columns)
}

func TestLayoutNoOverlapWithinColumn(t *testing.T) {
	factory := NewFactory()

	var evs []*models.ResolvedEvent
	starts := []int{9, 9, 9, 10, 10, 11, 12, 12, 13}
	durations := []int{3, 1, 2, 2, 1, 3, 1, 2, 4}
	for i := range starts {
		evs = append(evs, timed(int64(i+1), at(2, starts[i], 0), at(2, starts[i]+durations[i], 0)))
	}

	chips := factory.Create(evs, 0, 24)

	for i, a := range chips {
		for _, b := range chips[i+1:] {
			if a.Column != b.Column {
				continue
			}
			overlaps := a.Event.Start.Before(b.Event.End) && b.Event.Start.Before(a.Event.End)
			assert.False(t, overlaps, "chips %d and %d share column %d but overlap",
				a.Event.ID, b.Event.ID, a.Column)
		}
	}
}

func TestAllDayChipsStackIntoRows(t *testing.T) {
	factory := NewFactory()

	chips := factory.Create([]*models.ResolvedEvent{
		allDay(1, 2),
		allDay(2, 2),
		allDay(3, 3),
	}, 0, 24)

	byID := chipsByID(chips)
	assert.Equal(t, 0, byID[1].Column)
	assert.Equal(t, 1, byID[2].Column)
	assert.Equal(t, 2, byID[1].Columns)
	assert.Equal(t, 2, byID[2].Columns)
	assert.Equal(t, 0, byID[3].Column)
	assert.Equal(t, 1, byID[3].Columns)
}

func TestCreatePreservesSubmissionOrder(t *testing.T) {
	factory := NewFactory()

	chips := factory.Create([]*models.ResolvedEvent{
		timed(3, at(2, 12, 0), at(2, 13, 0)),
		timed(1, at(2, 9, 0), at(2, 10, 0)),
	}, 0, 24)

	require.Len(t, chips, 2)
	assert.Equal(t, int64(3), chips[0].Event.ID)
	assert.Equal(t, int64(1), chips[1].Event.ID)
}
