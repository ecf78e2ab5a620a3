package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/civicvoice/complaint-service/internal/config"
	"github.com/civicvoice/complaint-service/internal/realtime"
)

func TestRedisUnreachableFallsBackToNop(t *testing.T) {
	r := NewRedis(config.RedisConfig{Addr: "127.0.0.1:1"}, zap.NewNop())
	defer r.Close()

	ctx := context.Background()
	assert.Error(t, r.Ping(ctx))
	assert.IsType(t, realtime.Nop{}, r.Publisher(ctx))
}

func TestNilRedisPing(t *testing.T) {
	var r *Redis
	assert.EqualError(t, r.Ping(context.Background()), "redis client not configured")
	r.Close()
}
