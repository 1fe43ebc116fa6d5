// Package weekview exposes the week grid engine. A View accepts displayable
// items from the host, keeps the event and chip caches coherent as the
// visible window moves and answers the renderer's queries for positioned
// chips. Drawing, gestures and animation are the host toolkit's concern.
package weekview

import (
	"sync"
	"time"

	"weekgrid/internal/chips"
	"weekgrid/internal/common/logging"
	"weekgrid/internal/config"
	"weekgrid/internal/events"
	"weekgrid/internal/interval"
	"weekgrid/internal/models"
	"weekgrid/internal/processor"
)

// Config configures a View. Host hooks are injected here explicitly; the
// engine has no ambient listeners.
type Config struct {
	// MinHour and MaxHour bound the visible hour window,
	// 0 <= MinHour < MaxHour <= 24.
	MinHour int
	MaxHour int

	// VisibleDays is the number of day columns in the viewport.
	VisibleDays int

	// FirstVisibleDate is the initial leftmost day. Zero means today.
	FirstVisibleDate time.Time

	// Paginated selects the windowed events cache with month-granular
	// fetching. When false, every submission must carry the host's complete
	// event set.
	Paginated bool

	// MainExecutor posts completion callbacks onto the host's UI context.
	// Nil means direct invocation, which is only suitable for tests.
	MainExecutor processor.Executor

	// OnInvalidate is the redraw signal, called on the main context when a
	// submission changed anything visible.
	OnInvalidate func()

	// OnEventClick and OnEventLongClick receive the chip under a tap.
	OnEventClick     func(*chips.EventChip)
	OnEventLongClick func(*chips.EventChip)

	Logger logging.Logger
}

// View is the grid engine facade.
type View struct {
	mu               sync.RWMutex
	minHour          int
	maxHour          int
	visibleDays      int
	firstVisibleDate time.Time

	cfg Config

	eventsCache events.Cache
	chipsCache  *chips.Cache
	factory     *chips.Factory
	arranger    *chips.Arranger
	proc        *processor.Processor
	loader      *events.Loader

	logger logging.Logger
}

// New creates a View. Hour window violations are rejected here, before any
// state exists.
func New(cfg Config) (*View, error) {
	if cfg.MaxHour == 0 && cfg.MinHour == 0 {
		cfg.MinHour, cfg.MaxHour = 0, 24
	}
	if err := config.ValidateHourRange(cfg.MinHour, cfg.MaxHour); err != nil {
		return nil, err
	}
	if cfg.VisibleDays <= 0 {
		cfg.VisibleDays = 7
	}
	if cfg.FirstVisibleDate.IsZero() {
		cfg.FirstVisibleDate = time.Now()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.GetGlobalLogger()
	}

	v := &View{
		minHour:          cfg.MinHour,
		maxHour:          cfg.MaxHour,
		visibleDays:      cfg.VisibleDays,
		firstVisibleDate: interval.StartOfDay(cfg.FirstVisibleDate),
		cfg:              cfg,
		chipsCache:       chips.NewCache(),
		factory:          chips.NewFactory(),
		logger:           cfg.Logger,
	}
	v.arranger = chips.NewArranger(v.chipsCache)

	if cfg.Paginated {
		paged := events.NewPaginatedCache()
		v.eventsCache = paged
		v.loader = events.NewLoader(paged, cfg.Logger)
	} else {
		v.eventsCache = events.NewSimpleCache()
	}

	v.proc = processor.New(v.eventsCache, v.factory, v.chipsCache, cfg.MainExecutor, cfg.Logger)
	return v, nil
}

// Close drains and stops the background worker.
func (v *View) Close() {
	v.proc.Close()
}

// Submit hands a batch of displayable items to the engine. It returns
// immediately; the heavy lifting happens on the background worker and the
// redraw signal fires on the main context only if anything changed.
func (v *View) Submit(items []models.Displayable) {
	v.mu.RLock()
	window := processor.HourWindow{MinHour: v.minHour, MaxHour: v.maxHour}
	v.mu.RUnlock()

	v.proc.Submit(items, window, func(changed bool) {
		if changed {
			v.invalidate()
		}
	})
}

// SetOnLoadMore registers the host callback the paging adapter uses to ask
// for a missing month. Without one, scrolling simply produces no chips for
// unfetched periods. It has no effect on a non-paginated view.
func (v *View) SetOnLoadMore(fn events.LoadMoreFunc) {
	if v.loader == nil {
		return
	}
	v.loader.SetOnLoadMore(fn)
	v.loader.LoadIfNecessary(v.FirstVisibleDate())
}

// GoToDate moves the first visible date and lets the paging adapter request
// whatever the new fetch range is missing.
func (v *View) GoToDate(date time.Time) {
	day := interval.StartOfDay(date)
	v.mu.Lock()
	v.firstVisibleDate = day
	v.mu.Unlock()

	if v.loader != nil {
		v.loader.LoadIfNecessary(day)
	}
}

// FirstVisibleDate returns the leftmost visible day.
func (v *View) FirstVisibleDate() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.firstVisibleDate
}

// VisibleDates returns the day starts currently in the viewport, left to
// right.
func (v *View) VisibleDates() []time.Time {
	v.mu.RLock()
	first := v.firstVisibleDate
	n := v.visibleDays
	v.mu.RUnlock()

	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = first.AddDate(0, 0, i)
	}
	return dates
}

// HourRange returns the visible hour window.
func (v *View) HourRange() (minHour, maxHour int) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.minHour, v.maxHour
}

// SetHourRange changes the visible hour window. Existing chips are rebuilt
// from the cached events against the new window; an invalid range is
// rejected without touching anything.
func (v *View) SetHourRange(minHour, maxHour int) error {
	if err := config.ValidateHourRange(minHour, maxHour); err != nil {
		return err
	}
	v.mu.Lock()
	v.minHour = minHour
	v.maxHour = maxHour
	v.mu.Unlock()

	v.chipsCache.ReplaceAll(v.factory.Create(v.eventsCache.AllEvents(), minHour, maxHour))
	v.invalidate()
	return nil
}

// Refresh discards the paginated cache on the next load pass and refetches
// the whole fetch range. It has no effect on a non-paginated view.
func (v *View) Refresh() {
	if v.loader == nil {
		return
	}
	v.loader.RequestRefresh()
	v.loader.LoadIfNecessary(v.FirstVisibleDate())
}

// Arrange runs the layout pass for the given geometry, assigning bounds to
// every chip on the visible days. Call it from the UI thread before
// drawing or hit testing.
func (v *View) Arrange(g chips.Geometry) {
	minHour, maxHour := v.HourRange()
	if g.MinHour == 0 && g.MaxHour == 0 {
		g.MinHour, g.MaxHour = minHour, maxHour
	}
	if g.Days == nil {
		g.Days = v.VisibleDates()
	}
	v.arranger.Arrange(g)
}

// ChipsInRange returns all chips, all-day first per day, for the days
// spanned by [start, end].
func (v *View) ChipsInRange(start, end time.Time) []*chips.EventChip {
	return v.chipsCache.ChipsInRange(interval.DaysBetween(start, end))
}

// AllDayChipsInRange returns the all-day chips for the days spanned by
// [start, end], used to size the header area.
func (v *View) AllDayChipsInRange(start, end time.Time) []*chips.EventChip {
	return v.chipsCache.AllDayChipsInRange(interval.DaysBetween(start, end))
}

// FindHitEvent returns the chip under the given point, if any.
func (v *View) FindHitEvent(x, y float64) (*chips.EventChip, bool) {
	return v.chipsCache.FindHitEvent(x, y)
}

// Tap routes a tap at the given point to the injected click hook.
func (v *View) Tap(x, y float64) {
	if v.cfg.OnEventClick == nil {
		return
	}
	if chip, ok := v.FindHitEvent(x, y); ok {
		v.cfg.OnEventClick(chip)
	}
}

// LongPress routes a long press at the given point to the injected hook.
func (v *View) LongPress(x, y float64) {
	if v.cfg.OnEventLongClick == nil {
		return
	}
	if chip, ok := v.FindHitEvent(x, y); ok {
		v.cfg.OnEventLongClick(chip)
	}
}

func (v *View) invalidate() {
	if v.cfg.OnInvalidate != nil {
		v.cfg.OnInvalidate()
	}
}
