package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"timetrack-session-svc/src/internal/config"
	"timetrack-session-svc/src/internal/identity"
	"timetrack-session-svc/src/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler interface {
	CreateSession(c *gin.Context)
	ListSessions(c *gin.Context)
	GetCurrentSession(c *gin.Context)
	RevokeSession(c *gin.Context)
}

type handler struct {
	config  *config.Configuration
	service Service
}

func NewHandler(cfg *config.Configuration, service Service) Handler {
	return &handler{
		config:  cfg,
		service: service,
	}
}

// CreateSession admits a session for the authenticated user. Called by the
// login flow right after the identity provider issues a token.
func (h *handler) CreateSession(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	ident, ok := identity.FromGinContext(c)
	if !ok {
		h.sendErrorResponse(c, http.StatusUnauthorized, "Authentication required", "No identity in request context")
		return
	}

	// metadata body is optional
	var meta Metadata
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&meta); err != nil {
			h.sendErrorResponse(c, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
	}
	if meta.UserAgent == "" {
		meta.UserAgent = c.Request.UserAgent()
	}
	if meta.IPAddress == "" {
		meta.IPAddress = c.ClientIP()
	}

	rec, err := h.service.CreateSession(ctx, ident.UserID, meta)
	if err != nil {
		logrus.WithError(err).WithField("user_id", ident.UserID).Error("Failed to create session")
		h.sendErrorResponse(c, http.StatusInternalServerError, "Failed to create session", err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    rec,
		"message": "Session created successfully",
	})
}

// ListSessions returns every session of the authenticated user, with the
// one backing the present request marked current.
func (h *handler) ListSessions(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	ident, ok := identity.FromGinContext(c)
	if !ok {
		h.sendErrorResponse(c, http.StatusUnauthorized, "Authentication required", "No identity in request context")
		return
	}

	records, err := h.service.ListUserSessions(ctx, ident.UserID, c.GetString("session_id"))
	if err != nil {
		logrus.WithError(err).WithField("user_id", ident.UserID).Error("Failed to list sessions")
		h.sendErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve sessions", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    records,
		"message": "Sessions retrieved successfully",
	})
}

func (h *handler) GetCurrentSession(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	ident, ok := identity.FromGinContext(c)
	if !ok {
		h.sendErrorResponse(c, http.StatusUnauthorized, "Authentication required", "No identity in request context")
		return
	}

	records, err := h.service.ListUserSessions(ctx, ident.UserID, c.GetString("session_id"))
	if err != nil {
		logrus.WithError(err).WithField("user_id", ident.UserID).Error("Failed to resolve current session")
		h.sendErrorResponse(c, http.StatusInternalServerError, "Failed to resolve current session", err.Error())
		return
	}

	// the service already marked the record backing this request
	var current *Record
	for _, rec := range records {
		if rec.IsCurrent {
			current = rec
			break
		}
	}
	if current == nil {
		h.sendErrorResponse(c, http.StatusNotFound, "No current session", "No session record matches this request")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    current,
		"message": "Current session resolved successfully",
	})
}

// RevokeSession deactivates one of the caller's sessions. The record stays
// in the store until the cleanup job reclaims it.
func (h *handler) RevokeSession(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	ident, ok := identity.FromGinContext(c)
	if !ok {
		h.sendErrorResponse(c, http.StatusUnauthorized, "Authentication required", "No identity in request context")
		return
	}

	sessionID := c.Param("id")
	if sessionID == "" {
		h.sendErrorResponse(c, http.StatusBadRequest, "Session ID is required", "Please provide a valid session ID")
		return
	}

	err := h.service.RevokeSession(ctx, ident.UserID, sessionID)
	if err != nil {
		h.handleRevokeError(c, ident.UserID, sessionID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Session revoked successfully",
	})
}

func (h *handler) handleRevokeError(c *gin.Context, userID, sessionID string, err error) {
	logrus.WithError(err).WithFields(logrus.Fields{
		"user_id":    userID,
		"session_id": sessionID,
	}).Error("Failed to revoke session")

	switch {
	case errors.Is(err, models.ErrSessionNotFound):
		h.sendErrorResponse(c, http.StatusNotFound, "Session not found", "No session found with the provided ID")
	case errors.Is(err, models.ErrUnauthorized):
		h.sendErrorResponse(c, http.StatusForbidden, "Access forbidden", "Session belongs to another user")
	default:
		h.sendErrorResponse(c, http.StatusInternalServerError, "Failed to revoke session", err.Error())
	}
}

func (h *handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
}

func (h *handler) sendErrorResponse(c *gin.Context, statusCode int, error, message string) {
	c.JSON(statusCode, gin.H{
		"error":   error,
		"success": false,
		"message": message,
	})
}
