package models

import "time"

// SessionEventMessage is published to RabbitMQ on session lifecycle
// transitions, consumed by the reporting side of the time-tracking backend.
type SessionEventMessage struct {
	UserID      string            `json:"user_id"`
	SessionID   string            `json:"session_id"`
	ServiceName string            `json:"service_name"`
	Action      string            `json:"action"`
	IPAddress   string            `json:"ip_address,omitempty"`
	UserAgent   string            `json:"user_agent,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// CleanupReportMessage carries the counters of a finished cleanup run.
type CleanupReportMessage struct {
	ServiceName string        `json:"service_name"`
	Report      CleanupReport `json:"report"`
	Timestamp   time.Time     `json:"timestamp"`
}

// Lifecycle action constants
const (
	ActionSessionCreated   = "session_created"
	ActionSessionRevoked   = "session_revoked"
	ActionSessionCheck     = "session_check"
	ActionCleanupCompleted = "cleanup_completed"
)

// Service name constants
const (
	ServiceSessionAdmission = "session.service.admission"
	ServiceSessionAuth      = "session.middleware.auth"
	ServiceSessionCleanup   = "session.cleanup.job"
)
