package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	middleware "github.com/oapi-codegen/echo-middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/rryowa/foodcombo/internal/controller"
	"github.com/rryowa/foodcombo/internal/models"
	"github.com/rryowa/foodcombo/internal/util"
)

type API struct {
	server          *echo.Echo
	log             *zap.SugaredLogger
	gracefulTimeout time.Duration
	cleanupFuncs    []func()
}

// NewAPI builds the echo server with every route registered. A nil limiter
// disables rate limiting.
func NewAPI(
	c *controller.Controller,
	auth Authenticator,
	limiter RateLimiter,
	cfg *util.Config,
	l *zap.SugaredLogger,
	cleanupFuncs []func(),
) (*API, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Server.Addr = cfg.Server.ServerAddr
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout
	e.HTTPErrorHandler = ErrorHandler(l)
	e.IPExtractor = ipExtractor(cfg.Server.TrustedProxies)

	a := &API{
		server:          e,
		log:             l,
		gracefulTimeout: cfg.Server.GracefulTimeout,
		cleanupFuncs:    cleanupFuncs,
	}

	swagger, err := controller.GetSwagger()
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI specification: %w", err)
	}
	swagger.Servers = nil

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{models.NewAccessTokenHeader},
		AllowCredentials: true,
	})

	e.Pre(echo.WrapMiddleware(corsHandler.Handler))
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomiddleware.RequestLoggerWithConfig(GetLoggerMiddlewareConfig(a)))
	e.Use(middleware.OapiRequestValidator(swagger))

	controller.RegisterHandlers(e, c, controller.RouteMiddleware{
		Gate:       AuthGateMiddleware(auth),
		AccessOnly: AccessTokenMiddleware(auth),
		RateLimit:  RateLimitMiddleware(limiter, l),
	})

	return a, nil
}

// ipExtractor reads X-Forwarded-For only from the configured proxies.
func ipExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, ipNet := range trusted {
		opts = append(opts, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.server.ServeHTTP(w, r)
}

// Run serves until SIGINT or SIGTERM, then shuts down and runs the cleanup funcs.
func (a *API) Run(ctxBackground context.Context) {
	ctx, stop := signal.NotifyContext(ctxBackground, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.ListenGracefulShutdown(ctx)

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}
}

func (a *API) ListenGracefulShutdown(ctx context.Context) {
	go func() {
		err := a.server.Start(a.server.Server.Addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()
	a.log.Infof("Listening on: %s", a.server.Server.Addr)

	<-ctx.Done()
	a.log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.Errorf("shutdown: %v", err)
		return
	}
	a.log.Info("server shutdown completed")
}
