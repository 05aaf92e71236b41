package cleanup

import (
	"testing"
	"time"

	"timetrack-session-svc/src/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerIntervalFromConfig(t *testing.T) {
	job := newTestJob(newMemStore(), nil)

	s := NewScheduler(job, &config.CleanupSettings{IntervalMinutes: 5})
	assert.Equal(t, 5*time.Minute, s.interval)
}

func TestSchedulerIntervalDefault(t *testing.T) {
	job := newTestJob(newMemStore(), nil)

	s := NewScheduler(job, &config.CleanupSettings{})
	assert.Equal(t, time.Duration(config.DefaultCleanupIntervalMinutes)*time.Minute, s.interval)
}
