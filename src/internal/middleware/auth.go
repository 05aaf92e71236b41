package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"timetrack-session-svc/src/internal/cache"
	"timetrack-session-svc/src/internal/identity"
	"timetrack-session-svc/src/internal/models"
	"timetrack-session-svc/src/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// Claims represents JWT token claims issued by the identity provider
type Claims struct {
	UserID     string `json:"userId"`
	SessionID  string `json:"sessionId"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	TeamID     string `json:"teamId,omitempty"`
	Department string `json:"department,omitempty"`
	TokenType  string `json:"tokenType"`
	jwt.RegisteredClaims
}

// AuthMiddleware handles authentication and authorization
type AuthMiddleware struct {
	jwtSecret    string
	cacheService cache.Service
	sessionStore session.Store
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtSecret string, cacheService cache.Service, sessionStore session.Store) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret:    jwtSecret,
		cacheService: cacheService,
		sessionStore: sessionStore,
	}
}

// RequireToken validates the JWT only and stores its claims on the
// request context. Used by the session-creation endpoint, which runs
// before any session record exists.
func (m *AuthMiddleware) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := m.authenticate(c)
		if !ok {
			return
		}

		m.storeClaims(c, claims)
		c.Next()
	}
}

// RequireAuth validates JWT token and the backing session record
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := m.authenticate(c)
		if !ok {
			return
		}

		// Validate session from Redis/MongoDB
		isValidSession, err := m.validateSession(c.Request.Context(), claims.SessionID, claims.UserID)
		if err != nil {
			logrus.WithError(err).Error("Session validation failed")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Session validation error",
			})
			c.Abort()
			return
		}

		if !isValidSession {
			logrus.WithField("session_id", claims.SessionID).Warn("Session is invalid or expired")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Session expired - please login again",
			})
			c.Abort()
			return
		}

		m.storeClaims(c, claims)

		logrus.WithFields(logrus.Fields{
			"user_id":    claims.UserID,
			"session_id": claims.SessionID,
			"user_role":  claims.Role,
		}).Debug("User authenticated successfully")

		c.Next()
	}
}

// RequireAdminRights checks if the caller has admin privileges
func (m *AuthMiddleware) RequireAdminRights() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := identity.FromGinContext(c)
		if !ok {
			logrus.Error("Identity not found in context - ensure RequireAuth middleware runs first")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		if !ident.IsAdmin() {
			logrus.WithFields(logrus.Fields{
				"user_id":   ident.UserID,
				"user_role": ident.Role,
			}).Warn("User attempted to access admin endpoint without admin privileges")

			c.JSON(http.StatusForbidden, gin.H{
				"error": "Access forbidden - admin privileges required",
			})
			c.Abort()
			return
		}

		logrus.WithField("user_id", ident.UserID).Debug("Admin access granted")
		c.Next()
	}
}

// RequireManagerRights checks if the caller has at least manager privileges
func (m *AuthMiddleware) RequireManagerRights() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := identity.FromGinContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		if !ident.IsManagerOrAdmin() {
			logrus.WithFields(logrus.Fields{
				"user_id":   ident.UserID,
				"user_role": ident.Role,
			}).Warn("User attempted to access manager endpoint without privileges")

			c.JSON(http.StatusForbidden, gin.H{
				"error": "Access forbidden - manager privileges required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context) (*Claims, bool) {
	token := m.extractToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authorization token is required",
		})
		c.Abort()
		return nil, false
	}

	claims, err := m.validateJWTToken(token)
	if err != nil {
		logrus.WithError(err).Error("JWT token validation failed")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid or expired token",
		})
		c.Abort()
		return nil, false
	}

	return claims, true
}

func (m *AuthMiddleware) storeClaims(c *gin.Context, claims *Claims) {
	c.Set(identity.KeyUserID, claims.UserID)
	c.Set(identity.KeySessionID, claims.SessionID)
	c.Set(identity.KeyEmail, claims.Email)
	c.Set(identity.KeyRole, claims.Role)
	if claims.TeamID != "" {
		c.Set(identity.KeyTeamID, claims.TeamID)
	}
	if claims.Department != "" {
		c.Set(identity.KeyDepartment, claims.Department)
	}
}

// extractToken extracts JWT token from Authorization header
func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		logrus.Error("Authorization header missing")
		return ""
	}

	// Extract token from "Bearer <token>" format
	if !strings.HasPrefix(authHeader, "Bearer ") {
		logrus.Error("Invalid authorization header format")
		return ""
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		logrus.Error("Empty token")
		return ""
	}

	return token
}

// validateJWTToken parses and validates JWT token (checks signature and expiration)
func (m *AuthMiddleware) validateJWTToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(m.jwtSecret), nil
	})

	if err != nil {
		// JWT library automatically checks expiration
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("token expired")
		}
		return nil, errors.New("invalid token")
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	// Check token type (should be access token)
	if claims.TokenType != "access" {
		return nil, errors.New("invalid token type")
	}

	return claims, nil
}

// validateSession checks session validity in Redis first, then MongoDB fallback
func (m *AuthMiddleware) validateSession(ctx context.Context, sessionID, userID string) (bool, error) {
	rec, err := m.cacheService.GetActiveSession(ctx, userID, sessionID)
	if err == nil && rec != nil {
		logrus.WithField("session_id", sessionID).Debug("Session validated from cache")
		m.cacheService.UpdateSessionActivity(ctx, userID, sessionID)
		m.sessionStore.UpdateActivity(ctx, sessionID)
		return true, nil
	}

	rec, err = m.sessionStore.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			return false, nil
		}
		return false, err
	}

	// Check if session is active and not expired
	if !rec.IsActive {
		logrus.WithField("session_id", sessionID).Warn("Session is not active")
		return false, nil
	}

	if !rec.ExpiresAt.IsZero() && time.Now().After(rec.ExpiresAt) {
		logrus.WithField("session_id", sessionID).Warn("Session has expired")
		return false, nil
	}

	rec.LastActivity = time.Now()
	m.sessionStore.UpdateActivity(ctx, sessionID)
	m.cacheService.CacheActiveSession(ctx, rec)

	logrus.WithField("session_id", sessionID).Debug("Session validated from MongoDB")
	return true, nil
}
