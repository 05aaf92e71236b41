package session

import (
	"testing"
	"time"

	"timetrack-session-svc/src/internal/config"
	"timetrack-session-svc/src/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassifier() *Classifier {
	return NewClassifier(&config.SessionSettings{RetentionDays: 30})
}

func TestClassifyExpiredBeatsInactive(t *testing.T) {
	c := newTestClassifier()
	now := time.Now()

	rec := &Record{
		SessionID: "s1",
		UserID:    "u1",
		IsActive:  false,
		ExpiresAt: now.Add(-time.Hour),
		CreatedAt: now.Add(-2 * time.Hour),
	}

	decision, err := c.Classify(rec, now)
	require.NoError(t, err)
	assert.True(t, decision.Reclaim)
	assert.Equal(t, ReasonExpired, decision.Reason)
}

func TestClassifyExpiredRegardlessOfActivity(t *testing.T) {
	c := newTestClassifier()
	now := time.Now()

	for _, active := range []bool{true, false} {
		rec := &Record{
			SessionID:    "s1",
			IsActive:     active,
			ExpiresAt:    now.Add(-time.Minute),
			CreatedAt:    now.Add(-time.Hour),
			LastActivity: now.Add(-time.Minute),
		}
		decision, err := c.Classify(rec, now)
		require.NoError(t, err)
		assert.True(t, decision.Reclaim)
		assert.Equal(t, ReasonExpired, decision.Reason)
	}
}

func TestClassifyInactiveWithFutureExpiry(t *testing.T) {
	c := newTestClassifier()
	now := time.Now()

	rec := &Record{
		SessionID:    "s1",
		IsActive:     false,
		ExpiresAt:    now.Add(time.Hour),
		CreatedAt:    now.Add(-time.Hour),
		LastActivity: now.Add(-time.Minute),
	}

	decision, err := c.Classify(rec, now)
	require.NoError(t, err)
	assert.True(t, decision.Reclaim)
	assert.Equal(t, ReasonInactive, decision.Reason)
}

func TestClassifyTimeoutReportsExpiredBucket(t *testing.T) {
	c := newTestClassifier()
	now := time.Now()

	rec := &Record{
		SessionID:      "s1",
		IsActive:       true,
		ExpiresAt:      now.Add(time.Hour),
		CreatedAt:      now.Add(-12 * time.Hour),
		LastActivity:   now.Add(-10 * time.Hour),
		SessionTimeout: 480,
	}

	decision, err := c.Classify(rec, now)
	require.NoError(t, err)
	assert.True(t, decision.Reclaim)
	assert.Equal(t, ReasonExpired, decision.Reason)
}

func TestClassifyTimeoutFallsBackToLoginTime(t *testing.T) {
	c := newTestClassifier()
	now := time.Now()

	rec := &Record{
		SessionID: "s1",
		IsActive:  true,
		ExpiresAt: now.Add(time.Hour),
		LoginTime: now.Add(-9 * time.Hour),
	}

	decision, err := c.Classify(rec, now)
	require.NoError(t, err)
	assert.True(t, decision.Reclaim)
	assert.Equal(t, ReasonExpired, decision.Reason)
}

func TestClassifyDefaultTimeoutIsEightHours(t *testing.T) {
	c := newTestClassifier()
	now := time.Now()

	// 7 hours idle, no timeout on the record: inside the 480-minute default
	rec := &Record{
		SessionID:    "s1",
		IsActive:     true,
		ExpiresAt:    now.Add(time.Hour),
		CreatedAt:    now.Add(-7 * time.Hour),
		LastActivity: now.Add(-7 * time.Hour),
	}

	decision, err := c.Classify(rec, now)
	require.NoError(t, err)
	assert.False(t, decision.Reclaim)
}

func TestClassifyOrphanedOverridesValidity(t *testing.T) {
	c := newTestClassifier()
	now := time.Now()

	rec := &Record{
		SessionID:    "s1",
		IsActive:     true,
		ExpiresAt:    now.Add(time.Hour),
		CreatedAt:    now.Add(-31 * 24 * time.Hour),
		LastActivity: now.Add(-time.Minute),
	}

	decision, err := c.Classify(rec, now)
	require.NoError(t, err)
	assert.True(t, decision.Reclaim)
	assert.Equal(t, ReasonOrphaned, decision.Reason)
}

func TestClassifyOrphanedViaLoginTimeFallback(t *testing.T) {
	c := newTestClassifier()
	now := time.Now()

	rec := &Record{
		SessionID:    "s1",
		IsActive:     true,
		ExpiresAt:    now.Add(time.Hour),
		LoginTime:    now.Add(-31 * 24 * time.Hour),
		LastActivity: now.Add(-time.Minute),
	}

	decision, err := c.Classify(rec, now)
	require.NoError(t, err)
	assert.True(t, decision.Reclaim)
	assert.Equal(t, ReasonOrphaned, decision.Reason)
}

func TestClassifyMissingExpiryIsNotExpired(t *testing.T) {
	c := newTestClassifier()
	now := time.Now()

	rec := &Record{
		SessionID:    "s1",
		IsActive:     true,
		CreatedAt:    now.Add(-time.Hour),
		LastActivity: now.Add(-time.Minute),
	}

	decision, err := c.Classify(rec, now)
	require.NoError(t, err)
	assert.False(t, decision.Reclaim)
}

func TestClassifyNoTimestampsKeepsWithError(t *testing.T) {
	c := newTestClassifier()
	now := time.Now()

	rec := &Record{
		SessionID: "s1",
		IsActive:  true,
	}

	decision, err := c.Classify(rec, now)
	assert.ErrorIs(t, err, models.ErrSessionNoTimeline)
	assert.False(t, decision.Reclaim)
}

func TestClassifyNoTimestampsButInactiveStillReclaimed(t *testing.T) {
	c := newTestClassifier()
	now := time.Now()

	// the inactive flag needs no timestamp to be trustworthy
	rec := &Record{
		SessionID: "s1",
		IsActive:  false,
	}

	decision, err := c.Classify(rec, now)
	require.NoError(t, err)
	assert.True(t, decision.Reclaim)
	assert.Equal(t, ReasonInactive, decision.Reason)
}

func TestClassifyFreshSessionKept(t *testing.T) {
	c := newTestClassifier()
	now := time.Now()

	rec := &Record{
		SessionID:      "s1",
		IsActive:       true,
		CreatedAt:      now.Add(-time.Minute),
		LastActivity:   now.Add(-time.Minute),
		ExpiresAt:      now.Add(8 * time.Hour),
		SessionTimeout: 480,
	}

	decision, err := c.Classify(rec, now)
	require.NoError(t, err)
	assert.False(t, decision.Reclaim)
}
