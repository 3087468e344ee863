package localfs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor enforces the retention policy for the uploads directory. With a
// non-positive max age nothing is ever deleted, which makes unbounded growth
// an explicit configuration choice rather than an accident.
type Janitor struct {
	storage  *Storage
	maxAge   time.Duration
	schedule string
	logger   *slog.Logger
	cron     *cron.Cron
}

func NewJanitor(storage *Storage, maxAge time.Duration, schedule string, logger *slog.Logger) *Janitor {
	return &Janitor{
		storage:  storage,
		maxAge:   maxAge,
		schedule: schedule,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start registers the sweep on the configured cron schedule. It is a no-op
// under keep-forever retention.
func (j *Janitor) Start(ctx context.Context) error {
	if j.maxAge <= 0 {
		j.logger.Info("retention disabled, uploads are kept forever")
		return nil
	}
	if _, err := j.cron.AddFunc(j.schedule, func() { j.sweep(ctx) }); err != nil {
		return fmt.Errorf("register sweep schedule %q: %w", j.schedule, err)
	}
	j.cron.Start()
	j.logger.Info("retention sweep scheduled", "schedule", j.schedule, "max_age", j.maxAge.String())
	return nil
}

// Stop halts the schedule and waits for a sweep in flight.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}

func (j *Janitor) sweep(ctx context.Context) {
	removed, err := j.storage.Sweep(ctx, j.maxAge)
	if err != nil {
		j.logger.Error("retention sweep failed", "error", err)
		return
	}
	if removed > 0 {
		j.logger.Info("retention sweep removed stale uploads", "removed", removed)
	}
}
