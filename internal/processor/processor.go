// Package processor orchestrates event submissions: it resolves incoming
// items on a dedicated background worker, updates the events cache, diffs
// the result against the cached chips and applies only the incremental
// change before signalling the UI thread.
package processor

import (
	"sync"

	"weekgrid/internal/chips"
	"weekgrid/internal/common/logging"
	"weekgrid/internal/events"
	"weekgrid/internal/models"
)

// HourWindow is the configuration snapshot a submission is processed
// against. The UI thread owns the live configuration; the worker only ever
// reads the snapshot taken at submit time.
type HourWindow struct {
	MinHour int
	MaxHour int
}

// Executor posts a function onto an execution context. The main executor
// hands completion callbacks back to the UI thread.
type Executor func(func())

type job struct {
	seq        uint64
	items      []models.Displayable
	window     HourWindow
	onFinished func(changed bool)
}

// Processor runs submissions through resolution, caching, diffing and chip
// creation on a single background worker. Submissions are strictly
// serialized: each diff is computed against the state left behind by the
// previous submission.
type Processor struct {
	eventsCache events.Cache
	factory     *chips.Factory
	chipsCache  *chips.Cache
	mainExec    Executor
	logger      logging.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []job
	closed  bool
	nextSeq uint64

	// delivered guards against a stale completion overtaking a newer one on
	// the main context; completions below the high-water mark are dropped.
	deliveredMu sync.Mutex
	delivered   uint64

	done chan struct{}
}

// New creates a processor and starts its background worker. mainExec
// defaults to direct invocation when nil, which is only suitable for tests.
func New(eventsCache events.Cache, factory *chips.Factory, chipsCache *chips.Cache, mainExec Executor, logger logging.Logger) *Processor {
	if mainExec == nil {
		mainExec = func(fn func()) { fn() }
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	p := &Processor{
		eventsCache: eventsCache,
		factory:     factory,
		chipsCache:  chipsCache,
		mainExec:    mainExec,
		logger:      logger,
		done:        make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)
	go p.run()
	return p
}

// Submit enqueues a submission and returns immediately. onFinished is
// invoked on the main execution context once the caches have been updated;
// its argument reports whether anything changed and a redraw is needed.
func (p *Processor) Submit(items []models.Displayable, window HourWindow, onFinished func(changed bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.nextSeq++
	p.queue = append(p.queue, job{
		seq:        p.nextSeq,
		items:      items,
		window:     window,
		onFinished: onFinished,
	})
	p.cond.Signal()
}

// Close stops the worker after the queued submissions have drained.
func (p *Processor) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.cond.Signal()
	p.mu.Unlock()
	<-p.done
}

func (p *Processor) run() {
	defer close(p.done)
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 && p.closed {
			p.mu.Unlock()
			return
		}
		next := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		changed := p.process(next)
		p.finish(next, changed)
	}
}

func (p *Processor) process(j job) bool {
	resolved := events.Resolve(j.items)

	switch cache := p.eventsCache.(type) {
	case *events.SimpleCache:
		// Wholesale-replace semantics: the submission is the entire event
		// universe, so the chip cache is rebuilt rather than diffed.
		changed := !sameEventSet(resolved, cache.AllEvents())
		cache.Update(resolved)
		if changed {
			p.chipsCache.ReplaceAll(p.factory.Create(resolved, j.window.MinHour, j.window.MaxHour))
		}
		p.logger.Debug("processed submission",
			logging.Int("events", len(resolved)),
			logging.Bool("changed", changed),
		)
		return changed

	default:
		p.eventsCache.Update(resolved)
		diff := computeDiff(resolved, p.chipsCache.AllChips())
		if diff.isEmpty() {
			p.logger.Debug("processed submission",
				logging.Int("events", len(resolved)),
				logging.Bool("changed", false),
			)
			return false
		}
		p.chipsCache.RemoveAll(diff.toRemove)
		p.chipsCache.AddAll(p.factory.Create(diff.toAddOrUpdate, j.window.MinHour, j.window.MaxHour))
		p.logger.Debug("processed submission",
			logging.Int("events", len(resolved)),
			logging.Int("added_or_updated", len(diff.toAddOrUpdate)),
			logging.Int("removed", len(diff.toRemove)),
		)
		return true
	}
}

func (p *Processor) finish(j job, changed bool) {
	if j.onFinished == nil {
		return
	}
	p.mainExec(func() {
		p.deliveredMu.Lock()
		if j.seq <= p.delivered {
			p.deliveredMu.Unlock()
			return
		}
		p.delivered = j.seq
		p.deliveredMu.Unlock()
		j.onFinished(changed)
	})
}

func sameEventSet(submitted, existing []*models.ResolvedEvent) bool {
	if len(submitted) != len(existing) {
		return false
	}
	byID := make(map[int64]*models.ResolvedEvent, len(existing))
	for _, event := range existing {
		byID[event.ID] = event
	}
	for _, event := range submitted {
		if cached, ok := byID[event.ID]; !ok || !event.Equal(cached) {
			return false
		}
	}
	return true
}
