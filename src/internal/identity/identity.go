package identity

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Role constants
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// Keys looked up in the authorization context. The auth middleware stores
// claims under these names.
const (
	KeyUserID     = "user_id"
	KeySessionID  = "session_id"
	KeyEmail      = "user_email"
	KeyRole       = "user_role"
	KeyTeamID     = "team_id"
	KeyDepartment = "department"
)

// Identity is the normalized, request-scoped answer to "who is calling".
// It is derived per request from the authorization context and never
// persisted.
type Identity struct {
	UserID     string `json:"userId"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	TeamID     string `json:"teamId,omitempty"`
	Department string `json:"department,omitempty"`
}

// FromAuthContext extracts an identity from an opaque authorization
// context mapping. It never panics: a missing context or a context without
// a user id yields (nil, false) with a logged diagnostic. Role defaults to
// employee; team and department are optional passthroughs.
func FromAuthContext(authCtx map[string]any) (*Identity, bool) {
	if authCtx == nil {
		logrus.Debug("No authorization context on request")
		return nil, false
	}

	userID := stringValue(authCtx, KeyUserID)
	if userID == "" {
		logrus.Warn("Authorization context has no user id")
		return nil, false
	}

	role := stringValue(authCtx, KeyRole)
	if role == "" {
		role = RoleEmployee
	}

	return &Identity{
		UserID:     userID,
		Email:      stringValue(authCtx, KeyEmail),
		Role:       role,
		TeamID:     stringValue(authCtx, KeyTeamID),
		Department: stringValue(authCtx, KeyDepartment),
	}, true
}

// FromGinContext reads the keys the auth middleware stored on the request.
func FromGinContext(c *gin.Context) (*Identity, bool) {
	if c == nil {
		logrus.Debug("No request context to extract identity from")
		return nil, false
	}
	return FromAuthContext(c.Keys)
}

// IsAdmin reports whether the identity carries the admin role. Safe on a
// nil receiver: an unresolved identity has no privileges.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// IsManagerOrAdmin reports whether the identity carries at least manager
// privileges. Safe on a nil receiver.
func (i *Identity) IsManagerOrAdmin() bool {
	return i != nil && (i.Role == RoleAdmin || i.Role == RoleManager)
}

func stringValue(m map[string]any, key string) string {
	value, ok := m[key]
	if !ok {
		return ""
	}
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return s
}
