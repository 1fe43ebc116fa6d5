package app

import (
	"context"
	"time"

	"weekgrid/internal/common/logging"
	"weekgrid/internal/config"
	"weekgrid/internal/interval"
	"weekgrid/internal/models"
	"weekgrid/internal/scheduler"
	"weekgrid/internal/sources/ics"
	"weekgrid/internal/storage/sqlite"
	"weekgrid/weekview"
)

// App holds all the application dependencies
type App struct {
	Config    *config.Config
	Store     *sqlite.Store
	View      *weekview.View
	Source    *ics.Source
	Scheduler *scheduler.Scheduler
	Logger    logging.Logger
}

// New creates a new application instance with all dependencies
func New(cfg *config.Config) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logging.GetGlobalLogger().WithFields(logging.String("component", "app")),
	}

	store, err := sqlite.NewStore(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	app.Store = store

	view, err := weekview.New(weekview.Config{
		MinHour:     cfg.MinHour,
		MaxHour:     cfg.MaxHour,
		VisibleDays: cfg.VisibleDays,
		Paginated:   true,
		OnInvalidate: func() {
			app.Logger.Debug("grid invalidated")
		},
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	app.View = view

	if cfg.ICSFeedURL != "" {
		app.Source = ics.NewSource(cfg.ICSFeedURL, 5*time.Minute, app.Logger)
	}

	view.SetOnLoadMore(app.loadRange)

	if cfg.ICSFeedURL != "" && cfg.RefreshSchedule != "" {
		app.Scheduler = scheduler.New(app.Logger)
		if err := app.Scheduler.Schedule(cfg.RefreshSchedule, app.refresh); err != nil {
			app.Cleanup()
			return nil, err
		}
	}

	return app, nil
}

// loadRange answers the grid's request for a missing fetch window. Feed
// events are pulled first and persisted, then the store serves the window.
func (app *App) loadRange(start, end time.Time) {
	if app.Source != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		items, err := app.Source.EventsBetween(ctx, start, end)
		if err != nil {
			app.Logger.Error("feed fetch failed", err)
		} else if len(items) > 0 {
			feedEvents := make([]*models.ResolvedEvent, len(items))
			for i, item := range items {
				ev := item.ToResolvedEvent()
				feedEvents[i] = &ev
			}
			if err := app.Store.UpsertEvents(feedEvents); err != nil {
				app.Logger.Error("failed to persist feed events", err)
			}
		}
	}

	// The paginated cache treats each submission as authoritative for the
	// whole fetch window, so the submission must cover all three periods
	// around the current first visible date, not just the requested one.
	r := interval.NewFetchRange(app.View.FirstVisibleDate())
	loc := start.Location()
	stored, err := app.Store.EventsBetween(r.Previous.Start(loc), r.Next.End(loc))
	if err != nil {
		app.Logger.Error("failed to load stored events", err)
		return
	}

	items := make([]models.Displayable, len(stored))
	for i, ev := range stored {
		items[i] = storedEvent{event: *ev}
	}
	app.View.Submit(items)
}

// refresh is the scheduled feed refresh: it drops the cached window and
// reloads around the current date.
func (app *App) refresh() {
	app.View.Refresh()
	app.View.GoToDate(app.View.FirstVisibleDate())
}

// Cleanup releases all resources
func (app *App) Cleanup() {
	if app.Scheduler != nil {
		app.Scheduler.Stop()
	}
	if app.View != nil {
		app.View.Close()
	}
	if app.Store != nil {
		app.Store.Close()
	}
}

type storedEvent struct {
	event models.ResolvedEvent
}

func (s storedEvent) ToResolvedEvent() models.ResolvedEvent {
	return s.event
}
