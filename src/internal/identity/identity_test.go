package identity

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAuthContextAbsent(t *testing.T) {
	ident, ok := FromAuthContext(nil)
	assert.False(t, ok)
	assert.Nil(t, ident)

	// predicates stay safe on the unresolved identity
	assert.False(t, ident.IsAdmin())
	assert.False(t, ident.IsManagerOrAdmin())
}

func TestFromAuthContextMissingUserID(t *testing.T) {
	ident, ok := FromAuthContext(map[string]any{
		KeyEmail: "a@example.com",
		KeyRole:  RoleAdmin,
	})
	assert.False(t, ok)
	assert.Nil(t, ident)
}

func TestFromAuthContextMalformedValues(t *testing.T) {
	// non-string values must not panic, just read as absent
	ident, ok := FromAuthContext(map[string]any{
		KeyUserID: 42,
	})
	assert.False(t, ok)
	assert.Nil(t, ident)
}

func TestFromAuthContextRoleDefaultsToEmployee(t *testing.T) {
	ident, ok := FromAuthContext(map[string]any{
		KeyUserID: "u1",
		KeyEmail:  "a@example.com",
	})
	require.True(t, ok)
	assert.Equal(t, RoleEmployee, ident.Role)
	assert.False(t, ident.IsAdmin())
	assert.False(t, ident.IsManagerOrAdmin())
}

func TestFromAuthContextOptionalPassthroughs(t *testing.T) {
	ident, ok := FromAuthContext(map[string]any{
		KeyUserID:     "u1",
		KeyRole:       RoleManager,
		KeyTeamID:     "team-9",
		KeyDepartment: "engineering",
	})
	require.True(t, ok)
	assert.Equal(t, "team-9", ident.TeamID)
	assert.Equal(t, "engineering", ident.Department)
	assert.False(t, ident.IsAdmin())
	assert.True(t, ident.IsManagerOrAdmin())
}

func TestPredicatesForAdmin(t *testing.T) {
	ident, ok := FromAuthContext(map[string]any{
		KeyUserID: "u1",
		KeyRole:   RoleAdmin,
	})
	require.True(t, ok)
	assert.True(t, ident.IsAdmin())
	assert.True(t, ident.IsManagerOrAdmin())
}

func TestFromGinContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	// no keys set yet
	ident, ok := FromGinContext(c)
	assert.False(t, ok)
	assert.Nil(t, ident)

	c.Set(KeyUserID, "u1")
	c.Set(KeyRole, RoleEmployee)

	ident, ok = FromGinContext(c)
	require.True(t, ok)
	assert.Equal(t, "u1", ident.UserID)
	assert.Equal(t, RoleEmployee, ident.Role)
}
