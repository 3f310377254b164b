package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rryowa/foodcombo/internal/controller"
	"github.com/rryowa/foodcombo/internal/models"
	"github.com/rryowa/foodcombo/internal/service"
	"github.com/rryowa/foodcombo/internal/util"
)

type countingLimiter struct {
	limit int
	hits  map[string]int
	err   error
}

func (l *countingLimiter) Allow(_ context.Context, key string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	l.hits[key]++
	return l.hits[key] <= l.limit, nil
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := &countingLimiter{limit: 5, hits: make(map[string]int)}
	s := newTestServer(t, limiter)
	body := `{"email":"a@b.com","password":"secret123"}`

	for i := 0; i < 5; i++ {
		rec := s.do(t, http.MethodPost, "/auth/login", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "request %d", i+1)
	}

	rec := s.do(t, http.MethodPost, "/auth/login", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Other routes are not limited.
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/ping", "").Code)
}

func TestRateLimitMiddleware_IgnoresForwardedHeaders(t *testing.T) {
	limiter := &countingLimiter{limit: 1, hits: make(map[string]int)}
	s := newTestServer(t, limiter)
	body := `{"email":"a@b.com","password":"secret123"}`

	var codes []int
	for i := 0; i < 5; i++ {
		rec := s.do(t, http.MethodPost, "/auth/login", body,
			withRemoteAddr("203.0.113.7:4321"),
			withHeader(echo.HeaderXForwardedFor, fmt.Sprintf("10.0.0.%d", i)),
			withHeader(echo.HeaderXRealIP, fmt.Sprintf("10.0.1.%d", i)),
		)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{
		http.StatusUnauthorized,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
	}, codes)
	assert.Equal(t, map[string]int{"203.0.113.7": 5}, limiter.hits)
}

func TestRateLimitMiddleware_TrustedProxy(t *testing.T) {
	_, proxyNet, err := net.ParseCIDR("10.0.0.0/8")
	require.NoError(t, err)

	limiter := &countingLimiter{limit: 1, hits: make(map[string]int)}
	s := newTestServer(t, limiter, func(cfg *util.Config) {
		cfg.Server.TrustedProxies = []*net.IPNet{proxyNet}
	})
	body := `{"email":"a@b.com","password":"secret123"}`

	viaProxy := []requestOption{
		withRemoteAddr("10.1.2.3:4321"),
		withHeader(echo.HeaderXForwardedFor, "198.51.100.9"),
	}
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/auth/login", body, viaProxy...).Code)
	assert.Equal(t, http.StatusTooManyRequests, s.do(t, http.MethodPost, "/auth/login", body, viaProxy...).Code)

	// An untrusted peer cannot pick its key through the header.
	direct := s.do(t, http.MethodPost, "/auth/login", body,
		withRemoteAddr("203.0.113.7:4321"),
		withHeader(echo.HeaderXForwardedFor, "198.51.100.10"),
	)
	assert.Equal(t, http.StatusUnauthorized, direct.Code)

	assert.Equal(t, map[string]int{"198.51.100.9": 2, "203.0.113.7": 1}, limiter.hits)
}

func TestRateLimitMiddleware_FailOpen(t *testing.T) {
	limiter := &countingLimiter{err: errors.New("redis down")}
	mw := RateLimitMiddleware(limiter, zap.NewNop().Sugar())

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/login", nil), httptest.NewRecorder())
	called := false
	err := mw(func(echo.Context) error { called = true; return nil })(c)

	require.NoError(t, err)
	assert.True(t, called)
}

type stubAuthenticator struct {
	result     models.Authentication
	err        error
	gotBearer  string
	gotRefresh string
}

func (a *stubAuthenticator) Authenticate(_ context.Context, bearer, refreshToken string) (models.Authentication, error) {
	a.gotBearer, a.gotRefresh = bearer, refreshToken
	return a.result, a.err
}

func TestGateMiddleware(t *testing.T) {
	principal := models.Principal{ID: 7, Email: "a@b.com"}

	tests := []struct {
		name        string
		mw          func(Authenticator) echo.MiddlewareFunc
		result      models.Authentication
		err         error
		wantRefresh string
		wantHeader  string
		wantErr     error
	}{
		{
			name:        "dual gate passes cookie and sets header",
			mw:          AuthGateMiddleware,
			result:      models.Authentication{Principal: principal, RotatedAccessToken: "new-token"},
			wantRefresh: "refresh",
			wantHeader:  "new-token",
		},
		{
			name:   "access-only gate ignores cookie",
			mw:     AccessTokenMiddleware,
			result: models.Authentication{Principal: principal},
		},
		{
			name:        "rejected",
			mw:          AuthGateMiddleware,
			err:         service.ErrNotAuthenticated,
			wantRefresh: "refresh",
			wantErr:     service.ErrNotAuthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &stubAuthenticator{result: tt.result, err: tt.err}

			req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
			req.Header.Set(echo.HeaderAuthorization, "Bearer access")
			req.AddCookie(&http.Cookie{Name: models.RefreshTokenCookie, Value: "refresh"})
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(req, rec)

			var got models.Principal
			err := tt.mw(auth)(func(c echo.Context) error {
				got = c.Get(models.MwPrincipalKey).(models.Principal)
				return nil
			})(c)

			assert.Equal(t, "access", auth.gotBearer)
			assert.Equal(t, tt.wantRefresh, auth.gotRefresh)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, principal, got)
			assert.Equal(t, tt.wantHeader, rec.Header().Get(models.NewAccessTokenHeader))
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{header: "Bearer abc", want: "abc"},
		{header: "bearer abc", want: ""},
		{header: "BEARER abc", want: ""},
		{header: "Bearer ", want: ""},
		{header: "Basic abc", want: ""},
		{header: "abc", want: ""},
		{header: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, extractBearerToken(tt.header))
		})
	}
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{name: "unauthorized", err: service.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized, wantReason: "invalid credentials"},
		{name: "wrapped unauthorized", err: fmt.Errorf("ctx: %w", service.ErrTokenExpired), wantStatus: http.StatusUnauthorized},
		{name: "conflict", err: service.ErrUserExists, wantStatus: http.StatusConflict},
		{name: "order not found", err: service.ErrOrderNotFound, wantStatus: http.StatusNotFound},
		{name: "invalid order", err: fmt.Errorf("%w: no items", service.ErrInvalidOrder), wantStatus: http.StatusBadRequest},
		{name: "provider", err: fmt.Errorf("%w: status 500: secret detail", service.ErrPaymentProvider), wantStatus: http.StatusBadGateway, wantReason: "payment provider error"},
		{name: "response error", err: util.BadRequest("bad %s", "input"), wantStatus: http.StatusBadRequest, wantReason: "bad input"},
		{name: "echo error", err: echo.NewHTTPError(http.StatusTooManyRequests, "too many requests"), wantStatus: http.StatusTooManyRequests, wantReason: "too many requests"},
		{name: "echo error without string", err: echo.ErrNotFound, wantStatus: http.StatusNotFound, wantReason: "Not Found"},
		{name: "unknown", err: errors.New("db exploded"), wantStatus: http.StatusInternalServerError, wantReason: "internal server error"},
	}

	handler := ErrorHandler(zap.NewNop().Sugar())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			handler(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body controller.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, body.Reason)
			} else {
				assert.NotEmpty(t, body.Reason)
			}
		})
	}
}
