package cleanup

import (
	"context"
	"sync"
	"testing"
	"time"

	"timetrack-session-svc/src/internal/config"
	"timetrack-session-svc/src/internal/models"
	"timetrack-session-svc/src/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory session.Store with fault injection for scans.
// A non-nil scanOnly restricts ScanAll to those ids, imitating a scan that
// was truncated partway through.
type memStore struct {
	mu       sync.Mutex
	records  map[string]*session.Record
	scanErr  error
	scanOnly []string
}

func newMemStore(records ...*session.Record) *memStore {
	s := &memStore{records: make(map[string]*session.Record)}
	for _, rec := range records {
		s.records[rec.SessionID] = rec
	}
	return s
}

func (s *memStore) ScanAll(_ context.Context) ([]*session.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scanErr != nil {
		return nil, s.scanErr
	}
	if s.scanOnly != nil {
		out := make([]*session.Record, 0, len(s.scanOnly))
		for _, id := range s.scanOnly {
			if rec, ok := s.records[id]; ok {
				copied := *rec
				out = append(out, &copied)
			}
		}
		return out, nil
	}
	out := make([]*session.Record, 0, len(s.records))
	for _, rec := range s.records {
		copied := *rec
		out = append(out, &copied)
	}
	return out, nil
}

func (s *memStore) GetByID(_ context.Context, sessionID string) (*session.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[sessionID]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return rec, nil
}

func (s *memStore) ListByUser(_ context.Context, userID string) ([]*session.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*session.Record
	for _, rec := range s.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *memStore) Put(_ context.Context, rec *session.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.SessionID] = rec
	return nil
}

func (s *memStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, sessionID)
	return nil
}

func (s *memStore) Deactivate(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[sessionID]; ok {
		rec.IsActive = false
	}
	return nil
}

func (s *memStore) UpdateActivity(_ context.Context, sessionID string) error {
	return nil
}

func (s *memStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// capturingPublisher records published cleanup reports.
type capturingPublisher struct {
	mu      sync.Mutex
	reports []*models.CleanupReport
}

func (p *capturingPublisher) PublishCleanupReport(report *models.CleanupReport) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	copied := *report
	p.reports = append(p.reports, &copied)
	return nil
}

func newTestJob(store session.Store, events ReportPublisher) *Job {
	classifier := session.NewClassifier(&config.SessionSettings{RetentionDays: 30})
	reclaimer := session.NewReclaimer(store, &config.CleanupSettings{
		ReclaimBatchSize: 25,
		ReclaimPauseMs:   1,
	})
	return NewJob(store, classifier, reclaimer, events)
}

func TestRunEmptyStoreShortCircuits(t *testing.T) {
	store := newMemStore()
	job := newTestJob(store, nil)

	report, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &models.CleanupReport{}, report)
}

func TestRunFullScenario(t *testing.T) {
	now := time.Now()
	store := newMemStore(
		// A: absolutely expired, still flagged active
		&session.Record{
			SessionID: "A", UserID: "u1", IsActive: true,
			ExpiresAt: now.Add(-time.Hour),
			CreatedAt: now.Add(-2 * time.Hour), LastActivity: now.Add(-2 * time.Hour),
		},
		// B: future expiry but revoked out-of-band
		&session.Record{
			SessionID: "B", UserID: "u1", IsActive: false,
			ExpiresAt: now.Add(time.Hour),
			CreatedAt: now.Add(-time.Hour), LastActivity: now.Add(-time.Minute),
		},
		// C: idle past its 480-minute timeout
		&session.Record{
			SessionID: "C", UserID: "u2", IsActive: true,
			ExpiresAt: now.Add(time.Hour), SessionTimeout: 480,
			CreatedAt: now.Add(-11 * time.Hour), LastActivity: now.Add(-10 * time.Hour),
		},
		// D: perfectly valid, but past the 30-day retention ceiling
		&session.Record{
			SessionID: "D", UserID: "u3", IsActive: true,
			ExpiresAt: now.Add(time.Hour),
			CreatedAt: now.Add(-31 * 24 * time.Hour), LastActivity: now.Add(-time.Minute),
		},
		// E: healthy, must survive
		&session.Record{
			SessionID: "E", UserID: "u3", IsActive: true,
			ExpiresAt: now.Add(time.Hour),
			CreatedAt: now.Add(-time.Hour), LastActivity: now.Add(-time.Minute),
		},
	)

	events := &capturingPublisher{}
	job := newTestJob(store, events)

	report, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, report.TotalSessions)
	assert.Equal(t, 2, report.ExpiredSessions, "A and C share the expired bucket")
	assert.Equal(t, 1, report.InactiveSessions)
	assert.Equal(t, 1, report.OrphanedSessions)
	assert.Equal(t, 4, report.DeletedSessions)
	assert.Equal(t, 0, report.Errors)

	// only the healthy record remains
	assert.Equal(t, 1, store.size())
	_, err = store.GetByID(context.Background(), "E")
	assert.NoError(t, err)

	require.Len(t, events.reports, 1)
	assert.Equal(t, 4, events.reports[0].DeletedSessions)
}

func TestRunIsIdempotent(t *testing.T) {
	now := time.Now()
	store := newMemStore(
		&session.Record{
			SessionID: "stale", UserID: "u1", IsActive: true,
			ExpiresAt: now.Add(-time.Minute),
			CreatedAt: now.Add(-time.Hour),
		},
		&session.Record{
			SessionID: "fresh", UserID: "u1", IsActive: true,
			ExpiresAt: now.Add(time.Hour),
			CreatedAt: now.Add(-time.Minute), LastActivity: now.Add(-time.Minute),
		},
	)
	job := newTestJob(store, nil)

	first, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.DeletedSessions)

	second, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, second.TotalSessions)
	assert.Equal(t, 0, second.DeletedSessions)
	assert.Equal(t, 0, second.Candidates())
}

func TestRunCountsClassificationErrors(t *testing.T) {
	now := time.Now()
	store := newMemStore(
		// no timestamp at all: must be kept and counted as an error
		&session.Record{SessionID: "broken", UserID: "u1", IsActive: true},
		&session.Record{
			SessionID: "stale", UserID: "u1", IsActive: true,
			ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-time.Hour),
		},
	)
	job := newTestJob(store, nil)

	report, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Errors)
	assert.Equal(t, 1, report.DeletedSessions)

	// the unclassifiable record was never speculatively deleted
	_, err = store.GetByID(context.Background(), "broken")
	assert.NoError(t, err)
}

func TestRunProceedsOnPartialScan(t *testing.T) {
	now := time.Now()
	store := newMemStore(
		&session.Record{
			SessionID: "seen-stale", UserID: "u1", IsActive: true,
			ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-time.Hour),
		},
		&session.Record{
			SessionID: "unseen-stale", UserID: "u1", IsActive: true,
			ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-time.Hour),
		},
	)
	// only part of the collection made it through the scan
	store.scanOnly = []string{"seen-stale"}
	job := newTestJob(store, nil)

	report, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalSessions)
	assert.Equal(t, 1, report.DeletedSessions)

	// the unseen record is untouched until a later run sees the full view
	store.scanOnly = nil
	second, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, second.DeletedSessions)
	assert.Equal(t, 0, store.size())
}

func TestRunFailsOnlyWhenScanCannotStart(t *testing.T) {
	store := newMemStore()
	store.scanErr = models.ErrScanAborted
	job := newTestJob(store, nil)

	report, err := job.Run(context.Background())
	assert.ErrorIs(t, err, models.ErrScanAborted)
	assert.Nil(t, report)
}
