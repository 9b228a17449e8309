package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/scrcorp/taskmanager-server/internal/domain"
	"github.com/scrcorp/taskmanager-server/internal/observability/metrics"
)

// MissedSweep periodically flips assignments whose work date has elapsed and
// whose checklist is still incomplete to the terminal missed state. Completed
// assignments are never touched; the repository enforces that in its WHERE
// clause and the domain rejects the transition as well.
type MissedSweep struct {
	assignmentRepo domain.AssignmentRepository
	logger         *slog.Logger
	interval       time.Duration
	grace          time.Duration
	maxRetries     int
	now            func() time.Time
}

// NewMissedSweep creates a new sweep worker. Grace is how long after midnight
// of the following day an assignment may still be completed before the sweep
// claims it.
func NewMissedSweep(
	assignmentRepo domain.AssignmentRepository,
	logger *slog.Logger,
	interval time.Duration,
	grace time.Duration,
) *MissedSweep {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &MissedSweep{
		assignmentRepo: assignmentRepo,
		logger:         logger,
		interval:       interval,
		grace:          grace,
		maxRetries:     3,
		now:            time.Now,
	}
}

// Start runs the sweep loop until the context is cancelled.
func (w *MissedSweep) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("missed sweep started",
		slog.Duration("interval", w.interval),
		slog.Duration("grace", w.grace),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("missed sweep stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// cutoff returns the work-date boundary: assignments dated strictly before
// today (minus grace) are overdue.
func (w *MissedSweep) cutoff() time.Time {
	now := w.now().UTC().Add(-w.grace)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// sweep runs one pass with retry and backoff.
func (w *MissedSweep) sweep(ctx context.Context) {
	before := w.cutoff()

	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(attempt*attempt) * time.Second
			w.logger.Warn("retrying sweep", slog.Int("attempt", attempt), slog.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
		}

		marked, err := w.assignmentRepo.MarkMissed(ctx, before)
		if err != nil {
			w.logger.Error("sweep pass failed", slog.String("error", err.Error()))
			continue
		}

		if marked > 0 {
			w.logger.Info("marked overdue assignments missed",
				slog.Int64("count", marked),
				slog.Time("cutoff", before),
			)
		}
		metrics.ObserveSweepRun("success", marked)
		return
	}

	metrics.ObserveSweepRun("error", 0)
	w.logger.Error("sweep failed after retries", slog.Int("max_retries", w.maxRetries))
}
