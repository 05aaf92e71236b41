package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"timetrack-session-svc/src/internal/config"
	"timetrack-session-svc/src/internal/models"
	"timetrack-session-svc/src/internal/session"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Service interface {
	GetActiveSession(ctx context.Context, userID, sessionID string) (*session.Record, error)
	CacheActiveSession(ctx context.Context, rec *session.Record) error
	UpdateSessionActivity(ctx context.Context, userID, sessionID string) error
	InvalidateSession(ctx context.Context, userID, sessionID string) error
}

type cacheService struct {
	client *redis.Client
	cfg    *config.CacheConfig
}

func NewCacheService(client *redis.Client, cfg *config.Configuration) Service {
	return &cacheService{
		client: client,
		cfg:    &cfg.Cache}
}

func (c *cacheService) sessionKey(userID, sessionID string) string {
	prefix := c.cfg.SessionKeyPrefix
	if prefix == "" {
		prefix = "session"
	}
	return fmt.Sprintf("%s:%s:%s", prefix, userID, sessionID)
}

func (c *cacheService) GetActiveSession(ctx context.Context, userID, sessionID string) (*session.Record, error) {
	key := c.sessionKey(userID, sessionID)
	logrus.WithField("key", key).Debug("Getting active session from cache")

	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			logrus.WithField("key", key).Debug("Session not found in cache")
			return nil, nil // Not an error, just not found
		}
		logrus.WithError(err).WithField("key", key).Error("Failed to get session from cache")
		return nil, models.ErrRedisGet
	}

	var rec session.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to unmarshal session from cache")
		return nil, models.ErrRedisGet
	}

	logrus.WithField("key", key).Debug("Session retrieved from cache successfully")
	return &rec, nil
}

func (c *cacheService) CacheActiveSession(ctx context.Context, rec *session.Record) error {
	key := c.sessionKey(rec.UserID, rec.SessionID)

	data, err := json.Marshal(rec)
	if err != nil {
		logrus.WithError(err).WithField("session_id", rec.SessionID).Error("Failed to marshal session for cache")
		return models.ErrRedisSet
	}

	expiration := time.Duration(c.cfg.SessionExpirationMinutes) * time.Minute
	if !rec.ExpiresAt.IsZero() {
		untilExpiry := time.Until(rec.ExpiresAt)
		if untilExpiry <= 0 {
			logrus.WithField("session_id", rec.SessionID).Warn("Session already expired, not caching")
			return nil
		}
		if untilExpiry < expiration {
			expiration = untilExpiry
		}
	}

	err = c.client.Set(ctx, key, data, expiration).Err()
	if err != nil {
		logrus.WithError(err).WithField("session_id", rec.SessionID).Error("Failed to cache session")
		return models.ErrRedisSet
	}

	logrus.WithField("session_id", rec.SessionID).Debug("Session cached successfully")
	return nil
}

func (c *cacheService) UpdateSessionActivity(ctx context.Context, userID, sessionID string) error {
	key := c.sessionKey(userID, sessionID)
	logrus.WithField("key", key).Debug("Updating session activity in cache")

	rec, err := c.GetActiveSession(ctx, userID, sessionID)
	if err != nil || rec == nil {
		return err
	}

	rec.LastActivity = time.Now()

	data, err := json.Marshal(rec)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal session for activity update")
		return models.ErrRedisSet
	}

	extendedTTL := time.Duration(c.cfg.SessionExpirationMinutes) * time.Minute
	err = c.client.Set(ctx, key, data, extendedTTL).Err()
	if err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to update session activity")
		return models.ErrRedisSet
	}

	logrus.WithField("key", key).Debug("Session activity updated successfully")
	return nil
}

func (c *cacheService) InvalidateSession(ctx context.Context, userID, sessionID string) error {
	key := c.sessionKey(userID, sessionID)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to invalidate cached session")
		return models.ErrRedisDelete
	}

	logrus.WithField("key", key).Debug("Cached session invalidated")
	return nil
}
