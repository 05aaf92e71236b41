package models

// CleanupReport is the full observable result of one cleanup run.
// Timeout-derived expiry is folded into ExpiredSessions together with
// absolute expiry; the two are not reported separately.
type CleanupReport struct {
	TotalSessions    int `json:"totalSessions"`
	ExpiredSessions  int `json:"expiredSessions"`
	InactiveSessions int `json:"inactiveSessions"`
	OrphanedSessions int `json:"orphanedSessions"`
	DeletedSessions  int `json:"deletedSessions"`
	Errors           int `json:"errors"`
}

// Candidates reports how many sessions were marked for reclamation.
func (r *CleanupReport) Candidates() int {
	return r.ExpiredSessions + r.InactiveSessions + r.OrphanedSessions
}
