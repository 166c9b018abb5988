package tracking

import (
	"context"
	"log/slog"
	"time"

	trackingRepo "doctrack/internal/domain/repositories/tracking"
	trackingSvc "doctrack/internal/domain/services/tracking"
)

// bottleneckRecalculator flags documents whose status has not changed
// for longer than the threshold. It is a batch writer, deliberately
// separate from the lifecycle engine: the flag is a derived signal, not
// a constraint, and a failed sweep only leaves it stale until the next
// run.
type bottleneckRecalculator struct {
	docRepo      trackingRepo.DocumentRepository
	threshold    time.Duration
	sweepTimeout time.Duration
	logger       *slog.Logger
}

// NewBottleneckRecalculator creates the sweep service. threshold is the
// staleness cutoff (default 24h upstream); sweepTimeout bounds one run
// so a hung store call cannot block the scheduler forever.
func NewBottleneckRecalculator(
	docRepo trackingRepo.DocumentRepository,
	threshold time.Duration,
	sweepTimeout time.Duration,
	logger *slog.Logger,
) trackingSvc.BottleneckRecalculator {
	return &bottleneckRecalculator{
		docRepo:      docRepo,
		threshold:    threshold,
		sweepTimeout: sweepTimeout,
		logger:       logger,
	}
}

// Sweep recomputes is_bottleneck for every non-terminal document.
func (r *bottleneckRecalculator) Sweep(ctx context.Context) (*trackingRepo.SweepSummary, error) {
	sweepCtx, cancel := context.WithTimeout(ctx, r.sweepTimeout)
	defer cancel()

	summary, err := r.docRepo.UpdateBottleneckFlags(sweepCtx, r.threshold)
	if err != nil {
		r.logger.Error("bottleneck sweep failed", "error", err)
		return nil, err
	}

	r.logger.Info("bottleneck sweep completed",
		"evaluated", summary.Evaluated,
		"flagged", summary.Flagged,
		"threshold_hours", r.threshold.Hours(),
	)
	return summary, nil
}

func (r *bottleneckRecalculator) Threshold() time.Duration {
	return r.threshold
}
