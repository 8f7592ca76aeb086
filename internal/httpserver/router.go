package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avelesov/urlwords/internal/middleware"
)

type Deps struct {
	Auth *AuthHTTP
	URLs *URLHTTP
	Gate *middleware.AuthGate
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.Auth.Register)
	v1.POST("/login", d.Auth.Login)
	v1.POST("/refresh", d.Auth.Refresh)
	v1.POST("/logout", d.Auth.Logout)

	urls := v1.Group("/urls", d.Gate.RequireAuth)
	urls.POST("/analyze", d.URLs.Analyze)
	urls.GET("/history", d.URLs.History)
	urls.GET("/history/all", d.URLs.HistoryAll)
	urls.GET("/search", d.URLs.Search)
}
