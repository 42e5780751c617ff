package leavebalance

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Resetter is the part of Service the scheduler drives.
type Resetter interface {
	ResetAnnual(ctx context.Context, year int) (int, error)
}

// ResetScheduler runs ResetAnnual on a cron schedule evaluated in the
// company timezone.
type ResetScheduler struct {
	resetter Resetter
	cron     *cron.Cron
	schedule string
	location *time.Location
	timeout  time.Duration
	logger   *slog.Logger
}

func NewResetScheduler(resetter Resetter, schedule string, location *time.Location, logger *slog.Logger) *ResetScheduler {
	if location == nil {
		location = time.UTC
	}
	return &ResetScheduler{
		resetter: resetter,
		cron:     cron.New(cron.WithLocation(location)),
		schedule: schedule,
		location: location,
		timeout:  30 * time.Minute,
		logger:   logger,
	}
}

// Start registers the job and starts the cron loop; it returns once scheduled.
func (s *ResetScheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		s.RunOnce(ctx, time.Now().In(s.location).Year())
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("leave reset scheduler started", "schedule", s.schedule, "timezone", s.location.String())
	return nil
}

// RunOnce resets balances for year with its own trace id and timeout.
func (s *ResetScheduler) RunOnce(ctx context.Context, year int) (int, error) {
	jobCtx, cancel := internal.WithTimeout(internal.ContextWithTraceID(ctx, uuid.New().String()), s.timeout)
	defer cancel()

	start := time.Now()
	n, err := s.resetter.ResetAnnual(jobCtx, year)
	if err != nil {
		s.logger.Error("leave reset run failed", "error", err, "year", year, "balances", n)
		return n, err
	}
	s.logger.Info("leave reset run completed", "year", year, "balances", n, "duration", time.Since(start))
	return n, nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *ResetScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("leave reset scheduler stopped")
}

// Next reports the next scheduled run, zero before Start.
func (s *ResetScheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
