package controller

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rryowa/foodcombo/internal/models"
)

// (POST /auth/register).
func (c *Controller) Register(ctx echo.Context) error {
	var req models.RegisterRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	session, err := c.authService.Register(ctx.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return err
	}

	c.setRefreshCookie(ctx, session.RefreshToken, session.RefreshExpiresAt)
	return ctx.JSON(http.StatusCreated, models.AuthResponse{AccessToken: session.AccessToken, User: session.User})
}

// (POST /auth/login).
func (c *Controller) Login(ctx echo.Context) error {
	var req models.LoginRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	session, err := c.authService.Login(ctx.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.setRefreshCookie(ctx, session.RefreshToken, session.RefreshExpiresAt)
	return ctx.JSON(http.StatusOK, models.AuthResponse{AccessToken: session.AccessToken, User: session.User})
}

// (POST /auth/refresh).
func (c *Controller) Refresh(ctx echo.Context) error {
	accessToken, err := c.authService.Refresh(ctx.Request().Context(), refreshCookie(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, models.AccessTokenResponse{AccessToken: accessToken})
}

// (POST /auth/logout).
func (c *Controller) Logout(ctx echo.Context) error {
	token := refreshCookie(ctx)
	c.clearRefreshCookie(ctx)

	if err := c.authService.Logout(ctx.Request().Context(), token); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, models.MessageResponse{Message: "Logged out"})
}

// (GET /auth/profile).
func (c *Controller) Profile(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, models.ProfileResponse{User: p})
}

func refreshCookie(ctx echo.Context) string {
	cookie, err := ctx.Cookie(models.RefreshTokenCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (c *Controller) setRefreshCookie(ctx echo.Context, token string, expiresAt time.Time) {
	ctx.SetCookie(c.refreshCookieTemplate(token, int(c.refreshTTL.Seconds()), expiresAt))
}

func (c *Controller) clearRefreshCookie(ctx echo.Context) {
	ctx.SetCookie(c.refreshCookieTemplate("", -1, time.Unix(0, 0)))
}

func (c *Controller) refreshCookieTemplate(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     models.RefreshTokenCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		HttpOnly: true,
		Secure:   c.cookieSecure,
		SameSite: http.SameSiteNoneMode,
	}
}
