// Package sweep runs the periodic alert-expiry job.
package sweep

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/soundcu/benefit-engine/internal/common"
	"github.com/soundcu/benefit-engine/internal/service"
)

// Sweeper expires pending alerts whose action window has passed.
type Sweeper interface {
	SweepAlerts(ctx context.Context, now time.Time) (int, error)
}

// Service schedules the alert sweep on a cron schedule.
type Service struct {
	engine   Sweeper
	cron     *cron.Cron
	schedule string
}

// NewService creates a sweep service. An empty schedule defaults to
// hourly.
func NewService(engine Sweeper, schedule string) *Service {
	if schedule == "" {
		schedule = "@hourly"
	}
	return &Service{
		engine:   engine,
		cron:     cron.New(),
		schedule: schedule,
	}
}

// Start registers the sweep job and starts the scheduler.
func (s *Service) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		s.runOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	slog.Info("Alert sweep scheduled", "schedule", s.schedule)
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Service) Stop() {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		slog.Warn("Timed out waiting for alert sweep to finish")
	}
}

// RunNow triggers one sweep pass immediately, outside the schedule.
func (s *Service) RunNow(ctx context.Context) {
	s.runOnce(ctx)
}

func (s *Service) runOnce(ctx context.Context) {
	err := common.WithRetry(ctx, func() error {
		_, sweepErr := s.engine.SweepAlerts(ctx, time.Now().UTC())
		return sweepErr
	}, service.RetryOptions{MaxAttempts: 3})
	if err != nil {
		slog.Error("Alert sweep failed", "error", err)
	}
}
