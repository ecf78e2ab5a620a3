package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/civicvoice/complaint-service/internal/config"
	"github.com/civicvoice/complaint-service/internal/realtime"
)

const redisDialTimeout = 2 * time.Second

// Redis carries the realtime channels. The service runs without it; messages are then dropped.
type Redis struct {
	Client *redis.Client
	logger *zap.Logger
}

// NewRedis builds the client and reports reachability. It never fails startup.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: redisDialTimeout,
	})
	r := &Redis{Client: client, logger: logger}

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := r.Ping(ctx); err != nil {
		logger.Warn("redis unreachable; realtime channels disabled", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	}
	return r
}

// Publisher returns the realtime publisher, or a no-op one while Redis is unreachable.
func (r *Redis) Publisher(ctx context.Context) realtime.Publisher {
	if err := r.Ping(ctx); err != nil {
		return realtime.Nop{}
	}
	return realtime.NewRedisPublisher(r.Client)
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity for the readiness check.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	if err := r.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
