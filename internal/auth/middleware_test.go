package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mkarlsen/kontor/internal/errors"
	"github.com/mkarlsen/kontor/internal/token"
)

type fakePermissionStore struct {
	grants map[string]bool
	err    error
	calls  int
}

func (f *fakePermissionStore) HasPermission(_ context.Context, userID uuid.UUID, entity, action string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.grants[userID.String()+"/"+entity+"/"+action], nil
}

func (f *fakePermissionStore) Grant(context.Context, uuid.UUID, string, string) error  { return nil }
func (f *fakePermissionStore) Revoke(context.Context, uuid.UUID, string, string) error { return nil }

func newEchoContext(authHeader string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/organizations", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func countingHandler(calls *int) echo.HandlerFunc {
	return func(c echo.Context) error {
		*calls++
		return c.NoContent(http.StatusOK)
	}
}

func TestRequireAuth_NoHeader(t *testing.T) {
	m := NewMiddleware(&fakeVerifier{}, nil)
	c, _ := newEchoContext("")

	calls := 0
	err := m.RequireAuth(countingHandler(&calls))(c)

	require.Error(t, err)
	structured := apperrors.AsStructuredError(err)
	assert.Equal(t, http.StatusUnauthorized, structured.HTTPStatus())
	assert.Equal(t, string(ReasonMissingCredentials), structured.Message)
	assert.Zero(t, calls, "downstream handler must not be invoked")
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	m := NewMiddleware(&fakeVerifier{err: token.ErrInvalidToken}, nil)
	c, _ := newEchoContext("Bearer expired-or-garbage")

	calls := 0
	err := m.RequireAuth(countingHandler(&calls))(c)

	require.Error(t, err)
	structured := apperrors.AsStructuredError(err)
	assert.Equal(t, http.StatusUnauthorized, structured.HTTPStatus())
	assert.Equal(t, string(ReasonInvalidCredentials), structured.Message)
	assert.Zero(t, calls)
}

func TestRequireAuth_ValidToken(t *testing.T) {
	identity := &token.Identity{UserID: uuid.New(), Roles: []string{"accountant"}}
	m := NewMiddleware(&fakeVerifier{identity: identity}, nil)
	c, _ := newEchoContext("Bearer valid-token")

	calls := 0
	err := m.RequireAuth(countingHandler(&calls))(c)

	require.NoError(t, err)
	assert.Equal(t, 1, calls, "downstream handler invoked exactly once")
	assert.Same(t, identity, IdentityFrom(c))
	assert.Equal(t, identity.UserID.String(), c.Get("userID"))
}

func TestRequireAuth_NonBearerHeader(t *testing.T) {
	m := NewMiddleware(&fakeVerifier{identity: &token.Identity{}}, nil)
	c, _ := newEchoContext("Basic dXNlcjpwYXNz")

	calls := 0
	err := m.RequireAuth(countingHandler(&calls))(c)

	require.Error(t, err)
	assert.Zero(t, calls)
}

func TestRequireRoles_InsufficientRole(t *testing.T) {
	identity := &token.Identity{UserID: uuid.New(), Roles: []string{"client"}}
	m := NewMiddleware(&fakeVerifier{identity: identity}, nil)
	c, _ := newEchoContext("Bearer valid-token")

	calls := 0
	chain := m.RequireAuth(m.RequireRoles("admin", "manager")(countingHandler(&calls)))
	err := chain(c)

	require.Error(t, err)
	structured := apperrors.AsStructuredError(err)
	assert.Equal(t, http.StatusForbidden, structured.HTTPStatus())
	assert.Zero(t, calls)
}

func TestRequireRoles_MatchingRole(t *testing.T) {
	identity := &token.Identity{UserID: uuid.New(), Roles: []string{"manager"}}
	m := NewMiddleware(&fakeVerifier{identity: identity}, nil)
	c, _ := newEchoContext("Bearer valid-token")

	calls := 0
	chain := m.RequireAuth(m.RequireRoles("admin", "manager")(countingHandler(&calls)))
	err := chain(c)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRequireRoles_WithoutAuth(t *testing.T) {
	m := NewMiddleware(&fakeVerifier{}, nil)
	c, _ := newEchoContext("")

	calls := 0
	err := m.RequireRoles("admin")(countingHandler(&calls))(c)

	require.Error(t, err)
	structured := apperrors.AsStructuredError(err)
	assert.Equal(t, http.StatusUnauthorized, structured.HTTPStatus())
	assert.Zero(t, calls)
}

func TestRequirePermission(t *testing.T) {
	userID := uuid.New()
	identity := &token.Identity{UserID: userID, Roles: []string{"accountant"}}

	t.Run("grant present", func(t *testing.T) {
		store := &fakePermissionStore{grants: map[string]bool{
			userID.String() + "/bank_account/write": true,
		}}
		cache := NewPermissionCache(store, clockwork.NewFakeClock())
		m := NewMiddleware(&fakeVerifier{identity: identity}, cache)
		c, _ := newEchoContext("Bearer valid-token")

		calls := 0
		chain := m.RequireAuth(m.RequirePermission("bank_account", "write")(countingHandler(&calls)))
		require.NoError(t, chain(c))
		assert.Equal(t, 1, calls)
	})

	t.Run("zero matching grants is forbidden", func(t *testing.T) {
		store := &fakePermissionStore{grants: map[string]bool{}}
		cache := NewPermissionCache(store, clockwork.NewFakeClock())
		m := NewMiddleware(&fakeVerifier{identity: identity}, cache)
		c, _ := newEchoContext("Bearer valid-token")

		calls := 0
		chain := m.RequireAuth(m.RequirePermission("bank_account", "write")(countingHandler(&calls)))
		err := chain(c)

		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, apperrors.AsStructuredError(err).HTTPStatus())
		assert.Zero(t, calls)
	})
}

func TestPermissionCache_CachesWithinTTL(t *testing.T) {
	userID := uuid.New()
	store := &fakePermissionStore{grants: map[string]bool{
		userID.String() + "/document/read": true,
	}}
	clock := clockwork.NewFakeClock()
	cache := NewPermissionCache(store, clock)

	for range 3 {
		allowed, err := cache.HasPermission(context.Background(), userID, "document", "read")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	assert.Equal(t, 1, store.calls, "repeated lookups within TTL hit the cache")

	clock.Advance(permissionCacheTTL + time.Second)
	_, err := cache.HasPermission(context.Background(), userID, "document", "read")
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls, "expired entry goes back to the store")
}

func TestPermissionCache_Invalidate(t *testing.T) {
	userID := uuid.New()
	store := &fakePermissionStore{grants: map[string]bool{
		userID.String() + "/document/read": true,
	}}
	cache := NewPermissionCache(store, clockwork.NewFakeClock())

	_, err := cache.HasPermission(context.Background(), userID, "document", "read")
	require.NoError(t, err)

	cache.Invalidate(userID)

	_, err = cache.HasPermission(context.Background(), userID, "document", "read")
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls)
}
