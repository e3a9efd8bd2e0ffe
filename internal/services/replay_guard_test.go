package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisReplayGuard(t *testing.T) {
	mr, client := setupMiniredis(t)
	guard := NewRedisReplayGuard(client, time.Hour)
	ctx := context.Background()

	assert.False(t, guard.Seen(ctx, "coinpay", "T1"))
	require.NoError(t, guard.Mark(ctx, "coinpay", "T1"))
	assert.True(t, guard.Seen(ctx, "coinpay", "T1"))
	assert.False(t, guard.Seen(ctx, "other", "T1"))
	assert.True(t, mr.Exists("payment:notified:coinpay:T1"))

	mr.FastForward(2 * time.Hour)
	assert.False(t, guard.Seen(ctx, "coinpay", "T1"))
}

func TestRedisReplayGuardUnavailable(t *testing.T) {
	mr, client := setupMiniredis(t)
	guard := NewRedisReplayGuard(client, time.Hour)
	mr.Close()

	assert.False(t, guard.Seen(context.Background(), "coinpay", "T1"))

	var nilGuard *RedisReplayGuard
	assert.False(t, nilGuard.Seen(context.Background(), "coinpay", "T1"))
	assert.NoError(t, nilGuard.Mark(context.Background(), "coinpay", "T1"))
}
