package httpserver

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/avolkov/streamtube/internal/logging"
	"github.com/avolkov/streamtube/internal/service"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_register")

	in := service.RegisterInput{
		Username: c.FormValue("userName"),
		Email:    c.FormValue("email"),
		FullName: c.FormValue("fullName"),
		Password: c.FormValue("password"),
	}
	if fh, err := c.FormFile("avatar"); err == nil {
		in.Avatar = fh
	}
	if fh, err := c.FormFile("coverImage"); err == nil {
		in.CoverImage = fh
	}

	user, err := h.Svc.Register(ctx, in)
	if err != nil {
		l.Warn("register_failed", "error", err)
		return err
	}

	return respond(c, http.StatusCreated, user, "user registered successfully")
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_login")

	var req struct {
		Username string `json:"userName" form:"userName"`
		Email    string `json:"email"    form:"email"`
		Password string `json:"password" form:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed body", service.ErrValidation)
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		l.Warn("login_failed", "error", err)
		return err
	}

	c.SetCookie(createCookie(accessCookieName, res.Pair.AccessToken, "/", res.Pair.AccessExp))
	c.SetCookie(createCookie(refreshCookieName, res.Pair.RefreshToken, "/", res.Pair.RefreshExp))

	return respond(c, http.StatusOK, echo.Map{
		"user":         res.User,
		"accessToken":  res.Pair.AccessToken,
		"refreshToken": res.Pair.RefreshToken,
	}, "user logged in successfully")
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()

	rawID, ok := c.Get("user_id").(string)
	if !ok || rawID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication context")
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid authentication context")
	}

	if err := h.Svc.Logout(ctx, userID); err != nil {
		return err
	}

	c.SetCookie(deleteCookie(accessCookieName, "/"))
	c.SetCookie(deleteCookie(refreshCookieName, "/"))

	return respond(c, http.StatusOK, echo.Map{}, "user logged out successfully")
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "token_refresh")

	// Cookie takes precedence over the request body.
	presented := ""
	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		presented = cookie.Value
	}
	if presented == "" {
		var req struct {
			RefreshToken string `json:"refreshToken" form:"refreshToken"`
		}
		if err := c.Bind(&req); err == nil {
			presented = req.RefreshToken
		}
	}
	if presented == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}

	pair, err := h.Svc.Refresh(ctx, presented)
	if err != nil {
		l.Warn("refresh_failed", "error", err)
		return err
	}

	c.SetCookie(createCookie(accessCookieName, pair.AccessToken, "/", pair.AccessExp))
	c.SetCookie(createCookie(refreshCookieName, pair.RefreshToken, "/", pair.RefreshExp))

	return respond(c, http.StatusOK, echo.Map{
		"accessToken":     pair.AccessToken,
		"newRefreshToken": pair.RefreshToken,
	}, "access token refreshed")
}
