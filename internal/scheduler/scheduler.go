// Package scheduler runs the optional in-process daily perfume push. Most
// deployments leave it off and trigger the push through the operator
// endpoint instead.
package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

func New(log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.Local)),
		log:  log,
	}
}

// Start registers pushFunc under spec (standard cron syntax) and starts the
// schedule. Push failures are logged; the schedule keeps running.
func (s *Scheduler) Start(spec string, pushFunc func() error) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.log.Info("daily perfume push triggered")
		if err := pushFunc(); err != nil {
			s.log.Warn("daily perfume push failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("scheduler started", zap.String("spec", spec))
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	s.log.Info("scheduler stopped")
}
