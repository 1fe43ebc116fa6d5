package events

import (
	"sort"
	"sync"
	"time"

	"weekgrid/internal/interval"
	"weekgrid/internal/models"
)

// Cache is the capability shared by both events cache variants. The
// processor dispatches on the concrete variant to decide between wholesale
// chip rebuilds and incremental diffing.
type Cache interface {
	// Update stores a newly submitted set of events. Semantics depend on the
	// variant: the simple cache replaces its contents wholesale, the
	// paginated cache replaces the slots of its current fetch range.
	Update(events []*models.ResolvedEvent)

	// AllEvents returns the cached events in a deterministic order.
	AllEvents() []*models.ResolvedEvent

	// EventsInRange returns cached events overlapping [start, end).
	EventsInRange(start, end time.Time) []*models.ResolvedEvent

	// ByID looks up a single event.
	ByID(id int64) (*models.ResolvedEvent, bool)

	// Clear discards everything, including any fetch bookkeeping.
	Clear()
}

// SimpleCache is the unbounded flat variant, used when the host always
// submits its complete set of known events.
type SimpleCache struct {
	mu     sync.RWMutex
	order  []int64
	events map[int64]*models.ResolvedEvent
}

// NewSimpleCache creates an empty simple events cache.
func NewSimpleCache() *SimpleCache {
	return &SimpleCache{events: make(map[int64]*models.ResolvedEvent)}
}

// Update replaces the cached set wholesale.
func (c *SimpleCache) Update(events []*models.ResolvedEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = c.order[:0]
	c.events = make(map[int64]*models.ResolvedEvent, len(events))
	for _, event := range events {
		if _, exists := c.events[event.ID]; !exists {
			c.order = append(c.order, event.ID)
		}
		c.events[event.ID] = event
	}
}

// AllEvents returns the events in submission order.
func (c *SimpleCache) AllEvents() []*models.ResolvedEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	results := make([]*models.ResolvedEvent, 0, len(c.order))
	for _, id := range c.order {
		results = append(results, c.events[id])
	}
	return results
}

// EventsInRange returns cached events overlapping [start, end).
func (c *SimpleCache) EventsInRange(start, end time.Time) []*models.ResolvedEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var results []*models.ResolvedEvent
	for _, id := range c.order {
		event := c.events[id]
		if event.Start.Before(end) && event.End.After(start) {
			results = append(results, event)
		}
	}
	return results
}

// ByID looks up a single event.
func (c *SimpleCache) ByID(id int64) (*models.ResolvedEvent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	event, ok := c.events[id]
	return event, ok
}

// Clear discards all cached events.
func (c *SimpleCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = nil
	c.events = make(map[int64]*models.ResolvedEvent)
}

// PaginatedCache keeps up to three period-keyed slots (previous, current,
// next around the last fetch range). A slot's presence in the map is
// distinct from an empty slot: an absent period has never been fetched,
// while a present empty slot holds zero events.
type PaginatedCache struct {
	mu      sync.RWMutex
	fetched *interval.FetchRange
	slots   map[interval.Period][]*models.ResolvedEvent
}

// NewPaginatedCache creates an empty paginated events cache.
func NewPaginatedCache() *PaginatedCache {
	return &PaginatedCache{slots: make(map[interval.Period][]*models.ResolvedEvent)}
}

// FetchedRange returns the fetch range the cache was last adjusted to.
func (c *PaginatedCache) FetchedRange() (interval.FetchRange, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.fetched == nil {
		return interval.FetchRange{}, false
	}
	return *c.fetched, true
}

// HasPeriod reports whether the period has a fetched slot, possibly empty.
func (c *PaginatedCache) HasPeriod(p interval.Period) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.slots[p]
	return ok
}

// MissingPeriods returns the periods of the given fetch range that have no
// fetched slot yet, in range order. Slots surviving a one-period shift are
// reused and not reported.
func (c *PaginatedCache) MissingPeriods(r interval.FetchRange) []interval.Period {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var missing []interval.Period
	for _, p := range r.Periods() {
		if _, ok := c.slots[p]; !ok {
			missing = append(missing, p)
		}
	}
	return missing
}

// AdjustToFetchRange records the new fetch range and evicts slots that fell
// out of it, so that a subsequent submission fills fresh slots rather than
// reviving stale ones.
func (c *PaginatedCache) AdjustToFetchRange(r interval.FetchRange) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetched = &r
	for p := range c.slots {
		if !r.ContainsPeriod(p) {
			delete(c.slots, p)
		}
	}
}

// Update replaces the slots of the current fetch range with the submitted
// events, grouped by the period of their start time. Periods of the range
// not covered by any event get an explicit empty slot; events outside the
// range are dropped, which keeps the cache bounded to three periods. If no
// fetch range has been recorded yet, one is derived from the first event.
func (c *PaginatedCache) Update(events []*models.ResolvedEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fetched == nil {
		if len(events) == 0 {
			return
		}
		r := interval.NewFetchRange(events[0].Start)
		c.fetched = &r
	}
	for _, p := range c.fetched.Periods() {
		c.slots[p] = []*models.ResolvedEvent{}
	}
	for _, event := range events {
		p := interval.PeriodOf(event.Start)
		if c.fetched.ContainsPeriod(p) {
			c.slots[p] = append(c.slots[p], event)
		}
	}
}

// AllEvents returns the cached events ordered by period, preserving
// submission order within each period.
func (c *PaginatedCache) AllEvents() []*models.ResolvedEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	periods := make([]interval.Period, 0, len(c.slots))
	for p := range c.slots {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool {
		if periods[i].Year != periods[j].Year {
			return periods[i].Year < periods[j].Year
		}
		return periods[i].Month < periods[j].Month
	})
	var results []*models.ResolvedEvent
	for _, p := range periods {
		results = append(results, c.slots[p]...)
	}
	return results
}

// EventsInRange returns cached events overlapping [start, end).
func (c *PaginatedCache) EventsInRange(start, end time.Time) []*models.ResolvedEvent {
	var results []*models.ResolvedEvent
	for _, event := range c.AllEvents() {
		if event.Start.Before(end) && event.End.After(start) {
			results = append(results, event)
		}
	}
	return results
}

// ByID looks up a single event across all slots.
func (c *PaginatedCache) ByID(id int64) (*models.ResolvedEvent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, slot := range c.slots {
		for _, event := range slot {
			if event.ID == id {
				return event, true
			}
		}
	}
	return nil, false
}

// Clear discards all slots and the recorded fetch range.
func (c *PaginatedCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetched = nil
	c.slots = make(map[interval.Period][]*models.ResolvedEvent)
}
