package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/avolkov/streamtube/internal/config"
	"github.com/avolkov/streamtube/internal/tokens"
)

// RequireAuth attaches the authenticated user identity to the request context
// or halts with 401. The access token is taken from the cookie or, for
// non-cookie clients, from the Authorization header.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := ""
		if cookie, err := c.Cookie("accessToken"); err == nil {
			raw = cookie.Value
		}
		if raw == "" {
			if auth := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
				raw = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, config.LoadTokenSettings().AccessSecret)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired access token")
		}

		c.Set("user_id", claims.Subject)
		c.Set("username", claims.Username)

		return next(c)
	}
}
