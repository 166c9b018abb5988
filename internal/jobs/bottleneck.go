package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	trackingSvc "doctrack/internal/domain/services/tracking"
)

// BottleneckScheduler runs the bottleneck sweep once at startup and then
// on a cron schedule. Sweep failures are logged and never reach
// request-serving code paths.
type BottleneckScheduler struct {
	recalc   trackingSvc.BottleneckRecalculator
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewBottleneckScheduler creates a scheduler; schedule is a standard
// 5-field cron expression (default upstream: "0 * * * *", hourly).
func NewBottleneckScheduler(recalc trackingSvc.BottleneckRecalculator, schedule string, logger *slog.Logger) *BottleneckScheduler {
	return &BottleneckScheduler{
		recalc:   recalc,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start runs an immediate sweep and registers the recurring one.
func (s *BottleneckScheduler) Start(ctx context.Context) error {
	s.run(ctx)

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.logger.Info("running scheduled bottleneck sweep")
		s.run(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("bottleneck sweep scheduler started", "schedule", s.schedule)
	return nil
}

// Stop halts the recurring sweep. Safe to call once; a running sweep is
// allowed to finish.
func (s *BottleneckScheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *BottleneckScheduler) run(ctx context.Context) {
	// Errors already logged by the recalculator; the scheduler only
	// isolates them from the host process.
	_, _ = s.recalc.Sweep(ctx)
}
