package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/config"
	"fintrack/internal/core"
)

// DashboardCache is the summary cache, the generation tokens its keys are
// built from, and what is needed to release both.
type DashboardCache struct {
	Cache       cache.Cache[core.DashboardSummary]
	Generations *cache.Generations
	Cleanup     CleanupFunc
}

// NewDashboardCache builds the cache selected by CACHE_BACKEND. The memory
// cache gets a periodic expiry sweep that Cleanup stops. Generation tokens
// live in the same backend and outlast the summaries keyed by them.
func NewDashboardCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*DashboardCache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.CacheBackend {
	case "", "none":
		return &DashboardCache{
			Cache:       cache.Noop[core.DashboardSummary]{},
			Generations: cache.NewGenerations(nil),
			Cleanup:     func() error { return nil },
		}, nil
	case "memory":
		lru := cache.NewLRUCache[core.DashboardSummary](cfg.CacheSize, cfg.CacheTTL)
		tokens := cache.NewLRUCache[string](cfg.CacheSize, generationTTL(cfg.CacheTTL))
		mgr := cache.NewManager(logger)
		mgr.Register(lru)
		mgr.Register(tokens)
		mgr.StartCleanup(cleanupInterval(cfg.CacheTTL))
		logger.InfoContext(ctx, "Initialized in-memory dashboard cache", "size", cfg.CacheSize, "ttl", cfg.CacheTTL)
		return &DashboardCache{
			Cache:       lru,
			Generations: cache.NewGenerations(tokens),
			Cleanup:     func() error { mgr.Stop(); return nil },
		}, nil
	case "redis":
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis cache: %w", err)
		}
		logger.InfoContext(ctx, "Initialized Redis dashboard cache", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
		return &DashboardCache{
			Cache:       cache.NewRedisCache[core.DashboardSummary](client, cfg.CacheTTL),
			Generations: cache.NewGenerations(cache.NewRedisCache[string](client, generationTTL(cfg.CacheTTL))),
			Cleanup:     client.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", cfg.CacheBackend)
	}
}

// generationTTL keeps a token alive well past the summaries built under it.
func generationTTL(ttl time.Duration) time.Duration {
	return 4 * ttl
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl < 2*time.Second {
		return time.Second
	}
	return ttl / 2
}
