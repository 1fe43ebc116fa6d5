package events

import (
	"sync"
	"time"

	"weekgrid/internal/common/logging"
	"weekgrid/internal/interval"
)

// LoadMoreFunc asks the host to provide events covering [start, end). The
// host is expected to eventually submit the requested events through the
// regular submission pipeline; nothing blocks on it.
type LoadMoreFunc func(start, end time.Time)

// Loader is the paging adapter: whenever the first visible date moves, it
// works out which periods of the new fetch range are missing from the
// paginated cache and requests exactly those from the host. Requests for an
// unchanged range are deduplicated so a slow host is not asked twice.
type Loader struct {
	cache  *PaginatedCache
	logger logging.Logger

	mu            sync.Mutex
	onLoadMore    LoadMoreFunc
	lastRequested *interval.FetchRange
	refresh       bool
}

// NewLoader creates a loader on top of the given paginated cache.
func NewLoader(cache *PaginatedCache, logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Loader{cache: cache, logger: logger}
}

// SetOnLoadMore registers the host callback. Without one, the loader treats
// every cycle as "no data available" and stays silent.
func (l *Loader) SetOnLoadMore(fn LoadMoreFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onLoadMore = fn
}

// RequestRefresh makes the next load pass discard the cache and refetch the
// whole fetch range.
func (l *Loader) RequestRefresh() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refresh = true
}

// LoadIfNecessary recomputes the fetch range around the first visible date
// and requests any missing periods from the host.
func (l *Loader) LoadIfNecessary(firstVisibleDate time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.onLoadMore == nil {
		return
	}

	newRange := interval.NewFetchRange(firstVisibleDate)

	if l.refresh {
		l.cache.Clear()
		l.lastRequested = nil
		l.refresh = false
	} else if l.lastRequested != nil && *l.lastRequested == newRange {
		return
	}

	if old, ok := l.cache.FetchedRange(); ok {
		shift := newRange.ShiftFrom(old)
		if shift != interval.ShiftNone {
			l.logger.Debug("fetch range moved",
				logging.String("shift", shift.String()),
				logging.String("current", newRange.Current.String()),
			)
		}
	}

	missing := l.cache.MissingPeriods(newRange)
	l.cache.AdjustToFetchRange(newRange)
	l.lastRequested = &newRange

	loc := firstVisibleDate.Location()
	for _, p := range missing {
		l.logger.Debug("requesting period from host", logging.String("period", p.String()))
		l.onLoadMore(p.Start(loc), p.End(loc))
	}
}
