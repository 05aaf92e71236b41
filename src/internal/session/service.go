package session

import (
	"context"
	"time"

	"timetrack-session-svc/src/internal/config"
	"timetrack-session-svc/src/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Metadata is the optional descriptive payload recorded at login.
type Metadata struct {
	UserAgent string `json:"userAgent"`
	IPAddress string `json:"ipAddress"`
	Location  string `json:"location"`
}

// Cache is the hot-session cache capability admission needs. Implemented
// by the Redis cache service; a nil Cache disables caching.
type Cache interface {
	CacheActiveSession(ctx context.Context, rec *Record) error
	InvalidateSession(ctx context.Context, userID, sessionID string) error
}

// EventPublisher emits session lifecycle messages. A nil publisher
// disables events; admission never fails on a publish error.
type EventPublisher interface {
	PublishSessionEvent(userID, sessionID, serviceName, action, ipAddress, userAgent string) error
}

type Service interface {
	CreateSession(ctx context.Context, userID string, meta Metadata) (*Record, error)
	ListUserSessions(ctx context.Context, userID, currentSessionID string) ([]*Record, error)
	RevokeSession(ctx context.Context, userID, sessionID string) error
}

type service struct {
	store  Store
	cache  Cache
	events EventPublisher
	cfg    *config.SessionSettings
}

func NewSessionService(store Store, cache Cache, events EventPublisher, cfg *config.Configuration) Service {
	return &service{
		store:  store,
		cache:  cache,
		events: events,
		cfg:    &cfg.Session,
	}
}

// CreateSession admits a new session for the user. Concurrent sessions per
// user are a first-class feature: creation never looks at, or rejects on,
// the user's existing records.
func (s *service) CreateSession(ctx context.Context, userID string, meta Metadata) (*Record, error) {
	timeoutMinutes := s.cfg.TimeoutMinutes
	if timeoutMinutes <= 0 {
		timeoutMinutes = config.DefaultSessionTimeoutMinutes
	}

	now := time.Now()
	rec := &Record{
		SessionID:      uuid.NewString(),
		UserID:         userID,
		CreatedAt:      now,
		LoginTime:      now,
		LastActivity:   now,
		ExpiresAt:      now.Add(time.Duration(timeoutMinutes) * time.Minute),
		SessionTimeout: timeoutMinutes,
		IsActive:       true,
		UserAgent:      meta.UserAgent,
		IPAddress:      meta.IPAddress,
		Location:       meta.Location,
	}

	if err := s.store.Put(ctx, rec); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to persist new session")
		return nil, models.ErrSessionCreating
	}

	if s.cache != nil {
		if err := s.cache.CacheActiveSession(ctx, rec); err != nil {
			logrus.WithError(err).WithField("session_id", rec.SessionID).Warn("Failed to cache new session")
		}
	}

	s.publish(rec.UserID, rec.SessionID, models.ActionSessionCreated, meta)

	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"session_id": rec.SessionID,
		"expires_at": rec.ExpiresAt,
	}).Info("Session created")

	return rec, nil
}

// ListUserSessions returns all of a user's sessions with the one matching
// currentSessionID marked current. An empty or unmatched signal simply
// leaves no record marked.
func (s *service) ListUserSessions(ctx context.Context, userID, currentSessionID string) ([]*Record, error) {
	records, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ResolveCurrentSession(records, currentSessionID)
	return records, nil
}

// RevokeSession flags a session inactive without deleting it; the cleanup
// job reclaims the record on its next run.
func (s *service) RevokeSession(ctx context.Context, userID, sessionID string) error {
	rec, err := s.store.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if rec.UserID != userID {
		logrus.WithFields(logrus.Fields{
			"user_id":    userID,
			"session_id": sessionID,
		}).Warn("User attempted to revoke a session they do not own")
		return models.ErrUnauthorized
	}

	if err := s.store.Deactivate(ctx, sessionID); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateSession(ctx, userID, sessionID); err != nil {
			logrus.WithError(err).WithField("session_id", sessionID).Warn("Failed to invalidate cached session")
		}
	}

	s.publish(userID, sessionID, models.ActionSessionRevoked, Metadata{})

	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"session_id": sessionID,
	}).Info("Session revoked")

	return nil
}

func (s *service) publish(userID, sessionID, action string, meta Metadata) {
	if s.events == nil {
		return
	}
	err := s.events.PublishSessionEvent(userID, sessionID,
		models.ServiceSessionAdmission, action, meta.IPAddress, meta.UserAgent)
	if err != nil {
		logrus.WithError(err).WithField("action", action).Warn("Failed to publish session event")
	}
}

// ResolveCurrentSession marks exactly one record in the set as current,
// the one whose id matches the session authenticating the present request,
// and returns it. No matching signal yields nil, which is not an error.
func ResolveCurrentSession(records []*Record, currentSessionID string) *Record {
	var current *Record
	for _, rec := range records {
		rec.IsCurrent = currentSessionID != "" && rec.SessionID == currentSessionID
		if rec.IsCurrent {
			current = rec
		}
	}
	return current
}
