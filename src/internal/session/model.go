package session

import (
	"time"

	"timetrack-session-svc/src/internal/config"
)

// Record is one authenticated session, keyed by SessionID. A user may own
// any number of records at once; the store is the single source of truth.
type Record struct {
	SessionID      string    `bson:"session_id" json:"sessionId"`
	UserID         string    `bson:"user_id" json:"userId"`
	CreatedAt      time.Time `bson:"created_at,omitempty" json:"createdAt,omitempty"`
	LoginTime      time.Time `bson:"login_time,omitempty" json:"loginTime,omitempty"`
	LastActivity   time.Time `bson:"last_activity,omitempty" json:"lastActivity,omitempty"`
	ExpiresAt      time.Time `bson:"expires_at,omitempty" json:"expiresAt,omitempty"`
	SessionTimeout int       `bson:"session_timeout,omitempty" json:"sessionTimeout,omitempty"`
	IsActive       bool      `bson:"is_active" json:"isActive"`
	UserAgent      string    `bson:"user_agent,omitempty" json:"userAgent,omitempty"`
	IPAddress      string    `bson:"ip_address,omitempty" json:"ipAddress,omitempty"`
	Location       string    `bson:"location,omitempty" json:"location,omitempty"`

	// IsCurrent marks the record matching the session authenticating the
	// present request. Derived per request, never persisted.
	IsCurrent bool `bson:"-" json:"isCurrent"`
}

// CreationTime returns CreatedAt, or LoginTime when the record predates the
// created_at field. Zero when neither is set.
func (r *Record) CreationTime() time.Time {
	if !r.CreatedAt.IsZero() {
		return r.CreatedAt
	}
	return r.LoginTime
}

// LastSeen returns the last activity timestamp, falling back to LoginTime.
func (r *Record) LastSeen() time.Time {
	if !r.LastActivity.IsZero() {
		return r.LastActivity
	}
	return r.LoginTime
}

// TimeoutDuration returns the allowed inactivity window, defaulting to
// eight hours when the record carries no timeout of its own.
func (r *Record) TimeoutDuration() time.Duration {
	minutes := r.SessionTimeout
	if minutes <= 0 {
		minutes = config.DefaultSessionTimeoutMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// HasTimeline reports whether any timestamp at all can be derived from the
// record. Records without one cannot be classified and are never deleted.
func (r *Record) HasTimeline() bool {
	return !r.ExpiresAt.IsZero() || !r.LastActivity.IsZero() ||
		!r.LoginTime.IsZero() || !r.CreatedAt.IsZero()
}
