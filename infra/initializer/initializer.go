package initializer

import (
	"context"
	"fmt"
	"log/slog"

	infra_cache "github.com/amirasaad/fxconverter/infra/cache"
	infra_provider "github.com/amirasaad/fxconverter/infra/provider"
	"github.com/amirasaad/fxconverter/infra/provider/exchangeratehost"
	"github.com/amirasaad/fxconverter/pkg/app"
	"github.com/amirasaad/fxconverter/pkg/config"
)

// InitializeDependencies initializes all the application dependencies and
// installs the configured logger as the slog default.
func InitializeDependencies(cfg *config.App) (*app.Deps, error) {
	return BuildDeps(context.Background(), cfg, SetupLogger(cfg.Log))
}

// BuildDeps wires the live quote source and, when a cache TTL is set, the
// quote cache in front of it. Redis backs the cache when REDIS_URL is set and
// memory otherwise.
func BuildDeps(ctx context.Context, cfg *config.App, logger *slog.Logger) (*app.Deps, error) {
	deps := &app.Deps{Logger: logger}

	if cfg.ExchangeRateApi.ApiKey == "" {
		logger.Warn("EXCHANGE_RATE_API_KEY is not set; live quotes may be refused by the provider")
	}
	live := exchangeratehost.New(cfg.ExchangeRateApi, logger)
	deps.Exchange = live

	ttl := cfg.ExchangeRateCache.TTL
	if ttl <= 0 {
		logger.Info("Exchange rate cache disabled")
		return deps, nil
	}

	if cfg.Redis != nil && cfg.Redis.URL != "" {
		redisCache, err := infra_cache.NewRedisCache(cfg.Redis, cfg.ExchangeRateCache.Prefix, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis exchange rate cache: %w", err)
		}
		if err := redisCache.Ping(ctx); err != nil {
			_ = redisCache.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		deps.RateCache = redisCache
		deps.Closers = append(deps.Closers, redisCache)
		logger.Info("Exchange rate cache enabled", "backend", "redis", "ttl", ttl)
	} else {
		memCache := infra_cache.NewMemoryCache(infra_cache.DefaultCleanupInterval)
		deps.RateCache = memCache
		deps.Closers = append(deps.Closers, memCache)
		logger.Info("Exchange rate cache enabled", "backend", "memory", "ttl", ttl)
	}

	deps.Exchange = infra_provider.NewCachedExchangeRate(live, deps.RateCache, ttl, logger)
	return deps, nil
}
