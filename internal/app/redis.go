package app

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/adanyl0v/go-todo-sync/internal/config"
)

var globalRedisClient *redis.Client

// MustConnectRedis connects to the task list cache when REDIS_URL is set.
func MustConnectRedis() {
	cfg := config.Global().Redis
	if cfg.URL == "" {
		return
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to parse redis url")
		panic(err)
	}
	globalRedisClient = redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	err = globalRedisClient.Ping(ctx).Err()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to ping redis")
		panic(err)
	}
	globalLogger.Info().
		Str("addr", opts.Addr).
		Dur("ttl", cfg.TTL).
		Msg("connected to redis")
}

func DisconnectRedis() {
	if globalRedisClient == nil {
		return
	}
	err := globalRedisClient.Close()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to close redis client")
		return
	}
	globalLogger.Info().Msg("disconnected from redis")
}
