package cleanup

import (
	"context"
	"time"

	"timetrack-session-svc/src/internal/models"
	"timetrack-session-svc/src/internal/session"

	"github.com/sirupsen/logrus"
)

// ReportPublisher emits the counters of a finished run. A nil publisher
// disables reporting; publish failures never fail the run.
type ReportPublisher interface {
	PublishCleanupReport(report *models.CleanupReport) error
}

// Job is one scan-classify-reclaim pass over the session collection. It
// keeps no state between runs: rerunning is always safe because
// classification is a pure function of current time and record state.
type Job struct {
	store      session.Store
	classifier *session.Classifier
	reclaimer  *session.Reclaimer
	events     ReportPublisher
}

func NewJob(store session.Store, classifier *session.Classifier, reclaimer *session.Reclaimer, events ReportPublisher) *Job {
	return &Job{
		store:      store,
		classifier: classifier,
		reclaimer:  reclaimer,
		events:     events,
	}
}

// Run executes one cleanup pass and returns its counters. The only error
// it can return is a scan that could not start at all; every other fault
// degrades into the report's Errors counter.
func (j *Job) Run(ctx context.Context) (*models.CleanupReport, error) {
	records, err := j.store.ScanAll(ctx)
	if err != nil {
		logrus.WithError(err).Error("Cleanup aborted, session scan could not start")
		return nil, err
	}

	report := &models.CleanupReport{TotalSessions: len(records)}
	if len(records) == 0 {
		logrus.Debug("No sessions in store, nothing to clean up")
		return report, nil
	}

	now := time.Now()
	var candidates []string

	for _, rec := range records {
		decision, cerr := j.classifier.Classify(rec, now)
		if cerr != nil {
			logrus.WithError(cerr).WithField("session_id", rec.SessionID).Warn("Session could not be classified, leaving untouched")
			report.Errors++
			continue
		}
		if !decision.Reclaim {
			continue
		}

		candidates = append(candidates, rec.SessionID)
		switch decision.Reason {
		case session.ReasonExpired:
			report.ExpiredSessions++
		case session.ReasonInactive:
			report.InactiveSessions++
		case session.ReasonOrphaned:
			report.OrphanedSessions++
		}
	}

	if len(candidates) > 0 {
		report.DeletedSessions = j.reclaimer.Reclaim(ctx, candidates)
	}

	logrus.WithFields(logrus.Fields{
		"total":    report.TotalSessions,
		"expired":  report.ExpiredSessions,
		"inactive": report.InactiveSessions,
		"orphaned": report.OrphanedSessions,
		"deleted":  report.DeletedSessions,
		"errors":   report.Errors,
	}).Info("Cleanup run finished")

	if j.events != nil {
		if err := j.events.PublishCleanupReport(report); err != nil {
			logrus.WithError(err).Warn("Failed to publish cleanup report")
		}
	}

	return report, nil
}
