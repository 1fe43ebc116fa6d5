package chips

import (
	"sort"
	"sync"
	"time"

	"weekgrid/internal/interval"
)

// Cache is the concurrent-safe store of chips, keyed by the clipped start
// day and partitioned into timed and all-day buckets. Bucket slices are
// replaced wholesale on every mutation, never modified in place, so a
// reader on the UI thread always observes either the fully-pre-mutation or
// fully-post-mutation state of a day's bucket while the background worker
// mutates.
type Cache struct {
	mu     sync.RWMutex
	timed  map[int64][]*EventChip
	allDay map[int64][]*EventChip
}

// NewCache creates an empty chips cache.
func NewCache() *Cache {
	return &Cache{
		timed:  make(map[int64][]*EventChip),
		allDay: make(map[int64][]*EventChip),
	}
}

// AllChips returns every cached chip, timed buckets first, in ascending day
// order. The order is stable across calls as long as the cache does not
// change.
func (c *Cache) AllChips() []*EventChip {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var results []*EventChip
	for _, key := range sortedKeys(c.timed) {
		results = append(results, c.timed[key]...)
	}
	for _, key := range sortedKeys(c.allDay) {
		results = append(results, c.allDay[key]...)
	}
	return results
}

// TimedChipsForDay returns the timed chips whose clipped start falls on the
// given day. The returned slice must not be modified.
func (c *Cache) TimedChipsForDay(day time.Time) []*EventChip {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timed[interval.DayKey(day)]
}

// AllDayChipsForDay returns the all-day chips for the given day. The
// returned slice must not be modified.
func (c *Cache) AllDayChipsForDay(day time.Time) []*EventChip {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.allDay[interval.DayKey(day)]
}

// ChipsInRange returns all chips, all-day first per day, for the given
// sequence of days.
func (c *Cache) ChipsInRange(days []time.Time) []*EventChip {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var results []*EventChip
	for _, day := range days {
		key := interval.DayKey(day)
		results = append(results, c.allDay[key]...)
		results = append(results, c.timed[key]...)
	}
	return results
}

// AllDayChipsInRange returns the all-day chips for the given days, used to
// size the header area.
func (c *Cache) AllDayChipsInRange(days []time.Time) []*EventChip {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var results []*EventChip
	for _, day := range days {
		results = append(results, c.allDay[interval.DayKey(day)]...)
	}
	return results
}

// ReplaceAll clears the cache and stores the given chips.
func (c *Cache) ReplaceAll(chips []*EventChip) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timed = make(map[int64][]*EventChip)
	c.allDay = make(map[int64][]*EventChip)
	c.addAllLocked(chips)
}

// AddAll stores the given chips. A chip whose event id already exists in
// its day bucket replaces the old chip at its list position, keeping
// iteration order deterministic; otherwise it is appended.
func (c *Cache) AddAll(chips []*EventChip) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addAllLocked(chips)
}

func (c *Cache) addAllLocked(chips []*EventChip) {
	for _, chip := range chips {
		key := interval.DayKey(chip.Event.Start)
		if chip.Event.AllDay {
			c.allDay[key] = addOrReplace(c.allDay[key], chip)
		} else {
			c.timed[key] = addOrReplace(c.timed[key], chip)
		}
	}
}

// addOrReplace returns a fresh bucket slice with the chip replaced at the
// position of an existing chip for the same event, or appended.
func addOrReplace(bucket []*EventChip, chip *EventChip) []*EventChip {
	next := make([]*EventChip, len(bucket), len(bucket)+1)
	copy(next, bucket)
	for i, existing := range next {
		if existing.Event.ID == chip.Event.ID {
			next[i] = chip
			return next
		}
	}
	return append(next, chip)
}

// RemoveAll removes every chip whose originating event id is in the given
// set, across both buckets.
func (c *Cache) RemoveAll(eventIDs []int64) {
	if len(eventIDs) == 0 {
		return
	}
	ids := make(map[int64]struct{}, len(eventIDs))
	for _, id := range eventIDs {
		ids[id] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	removeFromBuckets(c.timed, ids)
	removeFromBuckets(c.allDay, ids)
}

func removeFromBuckets(buckets map[int64][]*EventChip, ids map[int64]struct{}) {
	for key, bucket := range buckets {
		var next []*EventChip
		for _, chip := range bucket {
			if _, drop := ids[chip.Event.ID]; !drop {
				next = append(next, chip)
			}
		}
		if len(next) == len(bucket) {
			continue
		}
		if len(next) == 0 {
			delete(buckets, key)
		} else {
			buckets[key] = next
		}
	}
}

// FindHitEvent returns the chip under the given point. If exactly two chips
// are hit, an all-day chip is overlapping a timed chip drawn beneath it and
// the all-day chip wins; otherwise the first candidate in iteration order
// is returned.
func (c *Cache) FindHitEvent(x, y float64) (*EventChip, bool) {
	var candidates []*EventChip
	for _, chip := range c.AllChips() {
		if chip.IsHit(x, y) {
			candidates = append(candidates, chip)
		}
	}
	switch {
	case len(candidates) == 0:
		return nil, false
	case len(candidates) == 2:
		for _, chip := range candidates {
			if chip.Event.AllDay {
				return chip, true
			}
		}
		return candidates[0], true
	default:
		return candidates[0], true
	}
}

// ClearSingleEventsCache invalidates the computed bounds of all timed
// chips, forcing the next layout pass to recompute them. All-day chips and
// the chips themselves are untouched.
func (c *Cache) ClearSingleEventsCache() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, bucket := range c.timed {
		for _, chip := range bucket {
			chip.ClearBounds()
		}
	}
}

// Clear discards all chips.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timed = make(map[int64][]*EventChip)
	c.allDay = make(map[int64][]*EventChip)
}

func sortedKeys(buckets map[int64][]*EventChip) []int64 {
	keys := make([]int64, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
