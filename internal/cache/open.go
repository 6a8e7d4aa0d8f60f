package cache

import (
	"context"
	"log/slog"

	"github.com/albapepper/soccerscore/internal/config"
)

// Open builds the cache selected by cfg. A disabled cache is an in-memory
// no-op; an unreachable Redis is an error.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Cache, error) {
	if !cfg.CacheEnabled || cfg.CacheBackend != config.CacheRedis {
		return NewMemory(cfg.CacheEnabled), nil
	}
	return NewRedis(ctx, cfg.RedisURL, logger)
}
