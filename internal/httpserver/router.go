package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avolkov/streamtube/internal/middleware"
)

type Deps struct {
	AuthHandler   *AuthHTTP
	SearchHandler *SearchHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	users := e.Group("/api/v1/users")

	users.POST("/register", d.AuthHandler.Register)
	users.POST("/login", d.AuthHandler.Login)
	users.POST("/refresh", d.AuthHandler.Refresh)
	if d.SearchHandler != nil {
		users.GET("/search", d.SearchHandler.Search)
	}

	private := users.Group("", middleware.RequireAuth)
	private.POST("/logout", d.AuthHandler.LogOut)
}
