package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/rryowa/foodcombo/internal/api"
	"github.com/rryowa/foodcombo/internal/controller"
	"github.com/rryowa/foodcombo/internal/migrations"
	"github.com/rryowa/foodcombo/internal/service"
	"github.com/rryowa/foodcombo/internal/storage"
	"github.com/rryowa/foodcombo/internal/storage/memory"
	"github.com/rryowa/foodcombo/internal/storage/postgres"
	"github.com/rryowa/foodcombo/internal/storage/redis"
	"github.com/rryowa/foodcombo/internal/util"
)

func main() {
	ctx := context.Background()

	cfg, err := util.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := util.NewZapLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	var cleanupFuncs []func()

	var store storage.Storage
	switch cfg.DB.Driver {
	case util.StorageDriverMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		store = memory.NewStorage(logger)
	default:
		db, dbCleanup, err := util.NewDBConnection(logger, cfg.DB)
		if err != nil {
			logger.Fatal(zap.Error(err))
		}
		cleanupFuncs = append(cleanupFuncs, dbCleanup)
		if err := migrations.RunMigrations(ctx, db, logger); err != nil {
			logger.Fatal(zap.Error(err))
		}
		store = postgres.NewStorage(db)
	}

	var limiter api.RateLimiter
	if cfg.Redis.Addr != "" {
		redisClient, redisCleanup, err := util.NewRedisClient(ctx, logger, cfg.Redis)
		if err != nil {
			logger.Fatal(zap.Error(err))
		}
		cleanupFuncs = append(cleanupFuncs, redisCleanup)
		limiter = redis.NewRateLimiter(redisClient, cfg.RateLimiter.Limit, cfg.RateLimiter.Interval, cfg.RateLimiter.BlockTime)
	} else {
		logger.Warn("REDIS_ADDR is not set, rate limiting is disabled")
	}

	tokenService := service.NewTokenService(cfg.Token)
	authService := service.NewAuthService(store, tokenService, logger)
	paymentClient := service.NewPaymentClient(logger, cfg.Payment)
	orderService := service.NewOrderService(store, paymentClient, logger)
	menuService := service.NewMenuService()

	ctrl := controller.NewController(logger, authService, orderService, paymentClient, menuService, cfg)

	apiServer, err := api.NewAPI(ctrl, authService, limiter, cfg, logger, cleanupFuncs)
	if err != nil {
		logger.Fatal(zap.Error(err))
	}
	apiServer.Run(ctx)
}
