package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/avelesov/urlwords/internal/models"
	"github.com/avelesov/urlwords/internal/repo"
	"github.com/avelesov/urlwords/internal/tokens"
)

const userContextKey = "current_user"

// AuthGate turns a bearer access token into an authenticated user.
// It only reads: decode the token, load the user by the embedded
// username. Every failure is the same 401.
type AuthGate struct {
	Codec *tokens.Codec
	Repo  *repo.GormRepo
}

func NewAuthGate(codec *tokens.Codec, r *repo.GormRepo) *AuthGate {
	return &AuthGate{Codec: codec, Repo: r}
}

func (g *AuthGate) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		const prefix = "Bearer "
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if !strings.HasPrefix(header, prefix) {
			return unauthorized()
		}

		username, err := g.Codec.Decode(strings.TrimPrefix(header, prefix))
		if err != nil {
			return unauthorized()
		}

		user, err := g.Repo.UserByUsername(c.Request().Context(), username)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return unauthorized()
			}
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}

		c.Set(userContextKey, user)
		return next(c)
	}
}

func unauthorized() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
}

// CurrentUser returns the user placed into the context by RequireAuth,
// or nil on routes that skipped the gate.
func CurrentUser(c echo.Context) *models.User {
	if u, ok := c.Get(userContextKey).(*models.User); ok {
		return u
	}
	return nil
}
