package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avelesov/urlwords/internal/models"
	"github.com/avelesov/urlwords/internal/repo"
	"github.com/avelesov/urlwords/internal/tokens"
)

func newTestGate(t *testing.T) (*AuthGate, *repo.GormRepo, *tokens.Codec) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open in-memory db")
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RefreshToken{}))

	codec, err := tokens.NewCodec([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	r := repo.New(db)
	return NewAuthGate(codec, r), r, codec
}

func callGate(t *testing.T, gate *AuthGate, authHeader string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := gate.RequireAuth(func(c echo.Context) error {
		user := CurrentUser(c)
		require.NotNil(t, user)
		return c.JSON(http.StatusOK, echo.Map{"username": user.Username})
	})
	return rec, handler(c)
}

func TestRequireAuth_AcceptsValidToken(t *testing.T) {
	t.Parallel()
	gate, r, codec := newTestGate(t)

	user := &models.User{Username: "alice", Email: "alice@x.com", PasswordHash: "digest"}
	require.NoError(t, r.DB.Create(user).Error)

	token, err := codec.Issue("alice", 15*time.Minute)
	require.NoError(t, err)

	rec, err := callGate(t, gate, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice")
}

func TestRequireAuth_RejectsMissingAndMalformedHeaders(t *testing.T) {
	t.Parallel()
	gate, _, codec := newTestGate(t)

	token, err := codec.Issue("alice", 15*time.Minute)
	require.NoError(t, err)

	for _, header := range []string{"", token, "Basic " + token, "Bearer not-a-jwt"} {
		_, err := callGate(t, gate, header)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok, "expected HTTPError for header %q", header)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	}
}

func TestRequireAuth_RejectsExpiredToken(t *testing.T) {
	t.Parallel()
	gate, r, codec := newTestGate(t)

	user := &models.User{Username: "alice", Email: "alice@x.com", PasswordHash: "digest"}
	require.NoError(t, r.DB.Create(user).Error)

	token, err := codec.Issue("alice", -time.Second)
	require.NoError(t, err)

	_, err = callGate(t, gate, "Bearer "+token)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireAuth_RejectsVanishedUser(t *testing.T) {
	t.Parallel()
	gate, _, codec := newTestGate(t)

	// token is valid but its subject was never registered
	token, err := codec.Issue("ghost", 15*time.Minute)
	require.NoError(t, err)

	_, err = callGate(t, gate, "Bearer "+token)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}
