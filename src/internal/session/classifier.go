package session

import (
	"time"

	"timetrack-session-svc/src/internal/config"
	"timetrack-session-svc/src/internal/models"
)

// Reason explains why a record was marked for reclamation. Timeout-derived
// expiry reports ReasonExpired, the same bucket as absolute expiry.
type Reason string

const (
	ReasonExpired  Reason = "expired"
	ReasonInactive Reason = "inactive"
	ReasonOrphaned Reason = "orphaned"
)

// Decision is the outcome of classifying one record: keep it, or reclaim
// it for the given reason.
type Decision struct {
	Reclaim bool
	Reason  Reason
}

var keep = Decision{}

func reclaim(reason Reason) Decision {
	return Decision{Reclaim: true, Reason: reason}
}

// Classifier decides, for a record and a point in time, whether the record
// is still a valid session. It holds no state beyond the retention ceiling
// and never touches the store.
type Classifier struct {
	retention time.Duration
}

func NewClassifier(cfg *config.SessionSettings) *Classifier {
	days := cfg.RetentionDays
	if days <= 0 {
		days = config.DefaultRetentionDays
	}
	return &Classifier{retention: time.Duration(days) * 24 * time.Hour}
}

// Classify evaluates the reclamation rules in priority order: absolute
// expiry, the inactive flag, inactivity timeout (reported as expired), then
// the retention ceiling. The order decides which counter a record lands in,
// so it must not be rearranged. A record with no derivable timestamp is
// kept and reported as a classification error, never deleted on missing
// data.
func (c *Classifier) Classify(rec *Record, now time.Time) (Decision, error) {
	if !rec.ExpiresAt.IsZero() && !rec.ExpiresAt.After(now) {
		return reclaim(ReasonExpired), nil
	}

	if !rec.IsActive {
		return reclaim(ReasonInactive), nil
	}

	if lastSeen := rec.LastSeen(); !lastSeen.IsZero() {
		if now.Sub(lastSeen) > rec.TimeoutDuration() {
			return reclaim(ReasonExpired), nil
		}
	}

	if created := rec.CreationTime(); !created.IsZero() {
		if !created.After(now.Add(-c.retention)) {
			return reclaim(ReasonOrphaned), nil
		}
	}

	if !rec.HasTimeline() {
		return keep, models.ErrSessionNoTimeline
	}

	return keep, nil
}
