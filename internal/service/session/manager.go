package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/palmoil/internal/domain/models"
)

// ErrNotAuthenticated is returned when an operation needs a logged-in user.
var ErrNotAuthenticated = errors.New("not authenticated")

// AuthAPI is the slice of the backend used for authentication.
type AuthAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
}

// Manager owns the current user and drives the token lifecycle.
type Manager struct {
	api    AuthAPI
	tokens *Tokens
	logger *zap.Logger

	mu   sync.RWMutex
	user *models.User
}

// NewManager wires api and tokens. The manager drops its user whenever the
// tokens expire.
func NewManager(api AuthAPI, tokens *Tokens, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{api: api, tokens: tokens, logger: logger}
	tokens.OnExpire(m.expired)
	return m
}

// Init restores a persisted session and confirms it with the backend.
// Any failure leaves the manager logged out.
func (m *Manager) Init(ctx context.Context) error {
	if err := m.tokens.Load(ctx); err != nil {
		return err
	}
	if !m.tokens.HasAccessToken() {
		return nil
	}

	user, err := m.api.Me(ctx)
	if err != nil {
		m.logger.Warn("persisted session rejected, clearing", zap.Error(err))
		m.reset(ctx)
		return nil
	}

	m.setUser(user)
	m.logger.Info("session restored", zap.String("username", user.Username))
	return nil
}

// Login authenticates and stores the issued tokens.
func (m *Manager) Login(ctx context.Context, username, password string) (*models.User, error) {
	resp, err := m.api.Login(ctx, models.LoginRequest{Username: strings.TrimSpace(username), Password: password})
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("login response carried no access token")
	}
	if err := m.tokens.Set(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
		m.logger.Warn("failed to persist tokens", zap.Error(err))
	}

	m.setUser(&resp.User)
	m.logger.Info("user logged in", zap.String("username", resp.User.Username))
	return m.snapshot(), nil
}

// Register creates an account. The caller still has to log in.
func (m *Manager) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	resp, err := m.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	user := resp.User
	return &user, nil
}

// Logout tells the backend, then clears local state even if the call failed.
func (m *Manager) Logout(ctx context.Context) error {
	if m.tokens.HasAccessToken() {
		if err := m.api.Logout(ctx); err != nil {
			m.logger.Warn("backend logout failed", zap.Error(err))
		}
	}
	m.reset(ctx)
	return nil
}

// RefreshUser reloads the profile of the current user.
func (m *Manager) RefreshUser(ctx context.Context) (*models.User, error) {
	if !m.tokens.HasAccessToken() {
		return nil, ErrNotAuthenticated
	}
	user, err := m.api.Me(ctx)
	if err != nil {
		return nil, err
	}
	m.setUser(user)
	return m.snapshot(), nil
}

// CurrentUser returns a copy of the logged-in user.
func (m *Manager) CurrentUser() (*models.User, bool) {
	user := m.snapshot()
	return user, user != nil
}

// IsAuthenticated reports whether a user is loaded and a token is held.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil && m.tokens.HasAccessToken()
}

func (m *Manager) snapshot() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	user := *m.user
	return &user
}

func (m *Manager) setUser(user *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user == nil {
		m.user = nil
		return
	}
	copied := *user
	m.user = &copied
}

func (m *Manager) dropUser() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
}

func (m *Manager) expired() {
	if user := m.snapshot(); user != nil {
		m.logger.Info("session expired", zap.String("username", user.Username))
	}
	m.dropUser()
}

func (m *Manager) reset(ctx context.Context) {
	if err := m.tokens.Clear(ctx); err != nil {
		m.logger.Warn("failed to clear tokens", zap.Error(err))
	}
	m.dropUser()
}
