package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/palmoil/internal/domain/models"
)

type fakeAuthAPI struct {
	mu         sync.Mutex
	loginResp  *models.LoginResponse
	loginErr   error
	meUser     *models.User
	meErr      error
	logoutErr  error
	logouts    int
	meCalls    int
	registered []models.RegisterRequest
}

func (f *fakeAuthAPI) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginResp, nil
}

func (f *fakeAuthAPI) Register(_ context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, req)
	return &models.RegisterResponse{Message: "User created", User: models.User{ID: 9, Username: req.Username}}, nil
}

func (f *fakeAuthAPI) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	return f.logoutErr
}

func (f *fakeAuthAPI) Me(context.Context) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++
	if f.meErr != nil {
		return nil, f.meErr
	}
	return f.meUser, nil
}

func seededStore(t *testing.T) Store {
	t.Helper()
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, AccessTokenKey, "persisted-access"))
	require.NoError(t, store.Set(ctx, RefreshTokenKey, "persisted-refresh"))
	return store
}

func TestInitRestoresPersistedSession(t *testing.T) {
	api := &fakeAuthAPI{meUser: &models.User{ID: 1, Username: "ada", RoleName: "Admin"}}
	tokens := NewTokens(seededStore(t), nil)
	mgr := NewManager(api, tokens, nil)

	require.NoError(t, mgr.Init(context.Background()))

	user, ok := mgr.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "ada", user.Username)
	assert.True(t, mgr.IsAuthenticated())
	assert.Equal(t, "persisted-access", tokens.AccessToken())
}

func TestInitClearsRejectedSession(t *testing.T) {
	store := seededStore(t)
	api := &fakeAuthAPI{meErr: errors.New("401")}
	tokens := NewTokens(store, nil)
	mgr := NewManager(api, tokens, nil)

	require.NoError(t, mgr.Init(context.Background()))

	assert.False(t, mgr.IsAuthenticated())
	_, ok := mgr.CurrentUser()
	assert.False(t, ok)
	assert.Empty(t, tokens.AccessToken())

	persisted, err := store.Get(context.Background(), RefreshTokenKey)
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestInitWithoutTokensSkipsBackend(t *testing.T) {
	api := &fakeAuthAPI{}
	mgr := NewManager(api, NewTokens(nil, nil), nil)

	require.NoError(t, mgr.Init(context.Background()))
	assert.Zero(t, api.meCalls)
	assert.False(t, mgr.IsAuthenticated())
}

func TestLoginStoresTokensAndUser(t *testing.T) {
	store := NewMemoryStore()
	api := &fakeAuthAPI{loginResp: &models.LoginResponse{
		AccessToken:  "a1",
		RefreshToken: "r1",
		User:         models.User{ID: 2, Username: "bola"},
	}}
	tokens := NewTokens(store, nil)
	mgr := NewManager(api, tokens, nil)

	user, err := mgr.Login(context.Background(), "  bola ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "bola", user.Username)
	assert.True(t, mgr.IsAuthenticated())

	access, err := store.Get(context.Background(), AccessTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "a1", access)
	refresh, err := store.Get(context.Background(), RefreshTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "r1", refresh)
}

func TestLoginFailureKeepsLoggedOut(t *testing.T) {
	api := &fakeAuthAPI{loginErr: errors.New("invalid username or password")}
	mgr := NewManager(api, NewTokens(nil, nil), nil)

	_, err := mgr.Login(context.Background(), "bola", "wrong")
	require.Error(t, err)
	assert.False(t, mgr.IsAuthenticated())
}

func TestLogoutClearsEvenWhenBackendFails(t *testing.T) {
	api := &fakeAuthAPI{
		loginResp: &models.LoginResponse{AccessToken: "a", RefreshToken: "r", User: models.User{Username: "ada"}},
		logoutErr: errors.New("backend down"),
	}
	tokens := NewTokens(nil, nil)
	mgr := NewManager(api, tokens, nil)

	_, err := mgr.Login(context.Background(), "ada", "pw")
	require.NoError(t, err)

	require.NoError(t, mgr.Logout(context.Background()))
	assert.Equal(t, 1, api.logouts)
	assert.False(t, mgr.IsAuthenticated())
	assert.Empty(t, tokens.RefreshToken())
}

func TestExpireDropsUser(t *testing.T) {
	api := &fakeAuthAPI{loginResp: &models.LoginResponse{AccessToken: "a", RefreshToken: "r", User: models.User{Username: "ada"}}}
	tokens := NewTokens(nil, nil)
	mgr := NewManager(api, tokens, nil)

	_, err := mgr.Login(context.Background(), "ada", "pw")
	require.NoError(t, err)

	tokens.Expire(context.Background())

	_, ok := mgr.CurrentUser()
	assert.False(t, ok)
	assert.False(t, mgr.IsAuthenticated())
	assert.Empty(t, tokens.AccessToken())
}

func TestRefreshUser(t *testing.T) {
	api := &fakeAuthAPI{
		loginResp: &models.LoginResponse{AccessToken: "a", RefreshToken: "r", User: models.User{Username: "ada", FullName: "Ada"}},
		meUser:    &models.User{Username: "ada", FullName: "Ada Obi"},
	}
	mgr := NewManager(api, NewTokens(nil, nil), nil)

	_, err := mgr.RefreshUser(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = mgr.Login(context.Background(), "ada", "pw")
	require.NoError(t, err)

	user, err := mgr.RefreshUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ada Obi", user.FullName)
}

func TestCurrentUserReturnsCopy(t *testing.T) {
	api := &fakeAuthAPI{loginResp: &models.LoginResponse{AccessToken: "a", User: models.User{Username: "ada"}}}
	mgr := NewManager(api, NewTokens(nil, nil), nil)

	_, err := mgr.Login(context.Background(), "ada", "pw")
	require.NoError(t, err)

	user, _ := mgr.CurrentUser()
	user.Username = "mallory"

	again, _ := mgr.CurrentUser()
	assert.Equal(t, "ada", again.Username)
}

func TestRegisterDoesNotLogIn(t *testing.T) {
	api := &fakeAuthAPI{}
	mgr := NewManager(api, NewTokens(nil, nil), nil)

	user, err := mgr.Register(context.Background(), models.RegisterRequest{Username: "new", Email: "n@example.com", Password: "secret1", FullName: "New", RoleID: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(9), user.ID)
	assert.False(t, mgr.IsAuthenticated())
}
