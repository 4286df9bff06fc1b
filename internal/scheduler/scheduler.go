package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"TradeGate/pkg/logger"
	"TradeGate/pkg/util"
)

// SessionControl is the slice of the engine the scheduler drives.
type SessionControl interface {
	OpenSession()
	CloseSession()
}

// Scheduler fires the session open and close boundaries on weekdays in the
// exchange timezone.
type Scheduler struct {
	cron *cron.Cron
	log  *logger.Logger
}

func New(loc *time.Location, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc)),
		log:  log,
	}
}

// ScheduleSession registers the open and close jobs.
func (s *Scheduler) ScheduleSession(openAt, closeAt util.Clock, engine SessionControl) error {
	openSpec := fmt.Sprintf("%d %d * * MON-FRI", openAt.Minute(), openAt.Hour())
	if _, err := s.cron.AddFunc(openSpec, func() {
		s.log.Info("scheduled session open")
		engine.OpenSession()
	}); err != nil {
		return fmt.Errorf("schedule session open: %w", err)
	}

	closeSpec := fmt.Sprintf("%d %d * * MON-FRI", closeAt.Minute(), closeAt.Hour())
	if _, err := s.cron.AddFunc(closeSpec, func() {
		s.log.Info("scheduled session close")
		engine.CloseSession()
	}); err != nil {
		return fmt.Errorf("schedule session close: %w", err)
	}
	return nil
}

// Start begins firing scheduled jobs.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
