package cleanup

import (
	"context"
	"time"

	"timetrack-session-svc/src/internal/config"

	"github.com/sirupsen/logrus"
)

// Scheduler invokes the cleanup job on a fixed interval. It carries no
// retry policy of its own: a failed run is logged and the next tick tries
// again from scratch.
type Scheduler struct {
	job      *Job
	interval time.Duration
}

func NewScheduler(job *Job, cfg *config.CleanupSettings) *Scheduler {
	minutes := cfg.IntervalMinutes
	if minutes <= 0 {
		minutes = config.DefaultCleanupIntervalMinutes
	}
	return &Scheduler{
		job:      job,
		interval: time.Duration(minutes) * time.Minute,
	}
}

// Start runs the schedule until ctx is cancelled. Blocks; callers run it
// in its own goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	logrus.WithField("interval", s.interval).Info("Session cleanup scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Session cleanup scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.job.Run(ctx); err != nil {
				logrus.WithError(err).Error("Scheduled cleanup run failed")
			}
		}
	}
}
