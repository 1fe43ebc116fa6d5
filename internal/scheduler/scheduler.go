// Package scheduler runs the periodic feed refresh.
package scheduler

import (
	"github.com/robfig/cron/v3"

	"weekgrid/internal/common/errors"
	"weekgrid/internal/common/logging"
)

// Scheduler wraps a cron runner around a refresh callback.
type Scheduler struct {
	cron    *cron.Cron
	logger  logging.Logger
	entryID cron.EntryID
}

func New(logger logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Scheduler{
		cron:   cron.New(),
		logger: logger,
	}
}

// Schedule registers refresh to run on the given cron expression and
// starts the runner.
func (s *Scheduler) Schedule(spec string, refresh func()) error {
	id, err := s.cron.AddFunc(spec, func() {
		s.logger.Debug("running scheduled refresh")
		refresh()
	})
	if err != nil {
		return errors.ConfigError("invalid refresh schedule: " + err.Error())
	}
	s.entryID = id
	s.cron.Start()
	s.logger.Info("refresh scheduled", logging.String("spec", spec))
	return nil
}

// Stop halts the runner. Jobs already running are allowed to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
