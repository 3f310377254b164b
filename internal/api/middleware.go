package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/rryowa/foodcombo/internal/models"
	"github.com/rryowa/foodcombo/internal/util"
)

type Authenticator interface {
	Authenticate(ctx context.Context, bearer, refreshToken string) (models.Authentication, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// AuthGateMiddleware accepts a valid access token or, failing that, a live
// refresh token cookie. In the second case a new access token is returned in
// the x-new-access-token header.
func AuthGateMiddleware(auth Authenticator) echo.MiddlewareFunc {
	return gate(auth, true)
}

// AccessTokenMiddleware accepts a valid access token only.
func AccessTokenMiddleware(auth Authenticator) echo.MiddlewareFunc {
	return gate(auth, false)
}

func gate(auth Authenticator, allowRefresh bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			bearer := extractBearerToken(c.Request().Header.Get(echo.HeaderAuthorization))

			var refreshToken string
			if allowRefresh {
				if cookie, err := c.Cookie(models.RefreshTokenCookie); err == nil {
					refreshToken = cookie.Value
				}
			}

			result, err := auth.Authenticate(c.Request().Context(), bearer, refreshToken)
			if err != nil {
				return err
			}

			if result.RotatedAccessToken != "" {
				c.Response().Header().Set(models.NewAccessTokenHeader, result.RotatedAccessToken)
			}
			c.Set(models.MwPrincipalKey, result.Principal)

			return next(c)
		}
	}
}

// RateLimitMiddleware limits requests per client IP. Limiter failures let the
// request through.
func RateLimitMiddleware(limiter RateLimiter, log *zap.SugaredLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if limiter == nil {
			return next
		}
		return func(c echo.Context) error {
			allowed, err := limiter.Allow(c.Request().Context(), c.RealIP())
			if err != nil {
				log.Errorw("Rate limiter unavailable", "error", err)
				return next(c)
			}
			if !allowed {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}

func extractBearerToken(header string) string {
	token, ok := strings.CutPrefix(header, util.BearerPrefix)
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func GetLoggerMiddlewareConfig(a *API) echomiddleware.RequestLoggerConfig {
	return echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogError:     true,
		LogRequestID: true,
		LogLatency:   true,

		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"request_id", v.RequestID,
				"latency", v.Latency,
			}
			if v.Error != nil {
				fields = append(fields, "error", v.Error)
				a.log.Errorw("Request", fields...)
				return nil
			}
			a.log.Infow("Request", fields...)
			return nil
		},
	}
}
