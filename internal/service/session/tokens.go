package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Tokens holds the access/refresh pair in memory and writes every change
// through to a Store. It satisfies backend.Credentials.
type Tokens struct {
	mu       sync.RWMutex
	access   string
	refresh  string
	store    Store
	logger   *zap.Logger
	onExpire []func()
}

// NewTokens wraps store. A nil store keeps the tokens in memory only.
func NewTokens(store Store, logger *zap.Logger) *Tokens {
	if store == nil {
		store = NewMemoryStore()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tokens{store: store, logger: logger}
}

// Load hydrates the pair from the store.
func (t *Tokens) Load(ctx context.Context) error {
	access, err := t.store.Get(ctx, AccessTokenKey)
	if err != nil {
		return fmt.Errorf("load access token: %w", err)
	}
	refresh, err := t.store.Get(ctx, RefreshTokenKey)
	if err != nil {
		return fmt.Errorf("load refresh token: %w", err)
	}

	t.mu.Lock()
	t.access, t.refresh = access, refresh
	t.mu.Unlock()
	return nil
}

func (t *Tokens) AccessToken() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.access
}

func (t *Tokens) RefreshToken() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.refresh
}

// HasAccessToken reports whether a bearer token is available.
func (t *Tokens) HasAccessToken() bool {
	return t.AccessToken() != ""
}

// Set replaces both tokens.
func (t *Tokens) Set(ctx context.Context, access, refresh string) error {
	t.mu.Lock()
	t.access, t.refresh = access, refresh
	t.mu.Unlock()

	return errors.Join(
		t.store.Set(ctx, AccessTokenKey, access),
		t.store.Set(ctx, RefreshTokenKey, refresh),
	)
}

// UpdateAccessToken stores a refreshed access token, keeping the refresh token.
func (t *Tokens) UpdateAccessToken(ctx context.Context, token string) error {
	t.mu.Lock()
	t.access = token
	t.mu.Unlock()

	if err := t.store.Set(ctx, AccessTokenKey, token); err != nil {
		return fmt.Errorf("persist access token: %w", err)
	}
	return nil
}

// Clear drops both tokens.
func (t *Tokens) Clear(ctx context.Context) error {
	t.mu.Lock()
	t.access, t.refresh = "", ""
	t.mu.Unlock()

	if err := t.store.Delete(ctx, AccessTokenKey, RefreshTokenKey); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}

// Expire clears the pair after a failed refresh and notifies listeners.
func (t *Tokens) Expire(ctx context.Context) {
	if err := t.Clear(ctx); err != nil {
		t.logger.Warn("failed to clear persisted tokens", zap.Error(err))
	}

	t.mu.RLock()
	listeners := append([]func(){}, t.onExpire...)
	t.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}

// OnExpire registers fn to run whenever the session expires.
func (t *Tokens) OnExpire(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onExpire = append(t.onExpire, fn)
}
