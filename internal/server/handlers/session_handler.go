package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/palmoil/internal/domain/models"
	"github.com/mamadbah2/palmoil/internal/service/session"
	"github.com/mamadbah2/palmoil/pkg/clients/backend"
)

// SessionManager is the session surface the HTTP layer needs.
type SessionManager interface {
	Login(ctx context.Context, username, password string) (*models.User, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Logout(ctx context.Context) error
	RefreshUser(ctx context.Context) (*models.User, error)
	CurrentUser() (*models.User, bool)
	IsAuthenticated() bool
}

// SessionHandler exposes login, logout and the current user.
type SessionHandler struct {
	sessions SessionManager
	logger   *zap.Logger
}

// NewSessionHandler constructs the session HTTP adapter.
func NewSessionHandler(sessions SessionManager, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{sessions: sessions, logger: logger}
}

// Login authenticates against the backend.
func (h *SessionHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.sessions.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Register creates an account; the caller logs in afterwards.
func (h *SessionHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid registration payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.sessions.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Logout ends the session. It always succeeds locally.
func (h *SessionHandler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context()); err != nil {
		h.logger.Warn("logout failed", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// Current reloads and returns the logged-in user. When the backend is
// unreachable the cached profile is served instead.
func (h *SessionHandler) Current(c *gin.Context) {
	if !h.sessions.IsAuthenticated() {
		unauthorized(c, "Authentication required")
		return
	}

	user, err := h.sessions.RefreshUser(c.Request.Context())
	if err != nil {
		cached, ok := h.sessions.CurrentUser()
		if !ok || errors.Is(err, backend.ErrUnauthenticated) || errors.Is(err, session.ErrNotAuthenticated) {
			respondError(c, h.logger, err)
			return
		}
		h.logger.Warn("could not refresh user, serving cached profile", zap.Error(err))
		user = cached
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "authenticated": true})
}

// Require rejects requests while no session is active.
func (h *SessionHandler) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.sessions.IsAuthenticated() {
			unauthorized(c, "Authentication required")
			return
		}
		c.Next()
	}
}
