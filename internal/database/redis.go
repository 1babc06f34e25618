package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/config"
)

// ConnectRedis opens the session token store and pings it before
// handing the client back.
func ConnectRedis(ctx context.Context, cfg config.RedisCfg, logger *zap.SugaredLogger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout.Std())
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Infow("connected to Redis", "addr", cfg.Addr, "db", cfg.DB)
	return rdb, nil
}
