package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type quotaPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Job prunes quota counter rows whose period is long past. Counters are
// keyed by period and never reset in place, so without this the table grows
// by one row per user per kind per day.
type Job struct {
	quotas    quotaPruner
	retention time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func New(quotas quotaPruner, retention time.Duration, logger *zap.Logger) *Job {
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		quotas:    quotas,
		retention: retention,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.quotas == nil {
		return nil
	}

	cutoff := j.now().UTC().Add(-j.retention)
	rows, err := j.quotas.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune stale quota rows: %w", err)
	}
	if rows > 0 {
		j.logger.Info("quota cleanup completed", zap.Int64("deleted", rows))
	}
	return nil
}

// RunPeriodically blocks until the context is canceled, running the prune on
// the given interval.
func (j *Job) RunPeriodically(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("quota cleanup failed", zap.Error(err))
			}
		}
	}
}
