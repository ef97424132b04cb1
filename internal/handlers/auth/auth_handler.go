// internal/handlers/auth/auth_handler.go
package auth

import (
	"context"
	"errors"
	"net/http"

	"bakery-popup/internal/middleware"
	"bakery-popup/internal/pkg/response"
	"bakery-popup/internal/pkg/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionStore is the subset of session.Manager the handler needs.
type SessionStore interface {
	Enabled() bool
	GetSession(ctx context.Context, jti string) (*session.OperatorSession, error)
	ActiveSessions(ctx context.Context, operatorID string) ([]*session.OperatorSession, error)
	InvalidateSession(ctx context.Context, jti string) error
	InvalidateAllOperatorSessions(ctx context.Context, operatorID string) (int, error)
}

var errSessionsDisabled = errors.New("session tracking requires redis")

type AuthHandler struct {
	sessions SessionStore
	logger   *zap.Logger
}

func NewAuthHandler(sessions SessionStore, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// ========== Profile ==========

// GetMe returns the authenticated operator
func (h *AuthHandler) GetMe(c *gin.Context) {
	operatorID, _ := middleware.GetOperatorID(c)

	response.Success(c, http.StatusOK, "operator retrieved", gin.H{
		"operator_id": operatorID,
		"roles":       middleware.GetRoles(c),
		"jti":         middleware.GetJTI(c),
	})
}

// ========== Logout ==========

// Logout revokes the token used for this request
func (h *AuthHandler) Logout(c *gin.Context) {
	if !h.requireSessions(c) {
		return
	}

	operatorID, _ := middleware.GetOperatorID(c)
	if err := h.sessions.InvalidateSession(c.Request.Context(), middleware.GetJTI(c)); err != nil {
		h.logger.Error("logout failed",
			zap.String("operator_id", operatorID),
			zap.Error(err),
		)
		response.Error(c, http.StatusInternalServerError, "logout failed", err)
		return
	}

	response.Success(c, http.StatusOK, "logout successful", nil)
}

// LogoutAll revokes every tracked token of the operator
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	if !h.requireSessions(c) {
		return
	}

	operatorID, _ := middleware.GetOperatorID(c)
	n, err := h.sessions.InvalidateAllOperatorSessions(c.Request.Context(), operatorID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "logout all failed", err)
		return
	}

	h.logger.Info("operator sessions revoked",
		zap.String("operator_id", operatorID),
		zap.Int("count", n),
	)
	response.Success(c, http.StatusOK, "all sessions logged out", gin.H{"revoked": n})
}

// ========== Session Management ==========

// GetActiveSessions returns the operator's unexpired tokens
func (h *AuthHandler) GetActiveSessions(c *gin.Context) {
	if !h.requireSessions(c) {
		return
	}

	operatorID, _ := middleware.GetOperatorID(c)
	sessions, err := h.sessions.ActiveSessions(c.Request.Context(), operatorID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to get sessions", err)
		return
	}

	response.Success(c, http.StatusOK, "sessions retrieved", sessions)
}

// RevokeSession revokes one of the operator's own tokens
func (h *AuthHandler) RevokeSession(c *gin.Context) {
	if !h.requireSessions(c) {
		return
	}

	operatorID, _ := middleware.GetOperatorID(c)
	jti := c.Param("jti")

	s, err := h.sessions.GetSession(c.Request.Context(), jti)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to revoke session", err)
		return
	}
	if s == nil || s.OperatorID != operatorID {
		response.Error(c, http.StatusNotFound, "session not found", nil)
		return
	}

	if err := h.sessions.InvalidateSession(c.Request.Context(), jti); err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to revoke session", err)
		return
	}

	response.Success(c, http.StatusOK, "session revoked", nil)
}

func (h *AuthHandler) requireSessions(c *gin.Context) bool {
	if h.sessions == nil || !h.sessions.Enabled() {
		response.Error(c, http.StatusServiceUnavailable, "session tracking is not available", errSessionsDisabled)
		return false
	}
	return true
}
