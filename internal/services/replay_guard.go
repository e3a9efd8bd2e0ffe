package services

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const replayKeyPrefix = "payment:notified:"

// RedisReplayGuard marks trade numbers whose credit has been committed so
// that gateway retries can be acknowledged without touching the database.
type RedisReplayGuard struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisReplayGuard(client *redis.Client, ttl time.Duration) *RedisReplayGuard {
	return &RedisReplayGuard{Client: client, TTL: ttl}
}

func replayKey(provider, tradeNo string) string {
	return replayKeyPrefix + provider + ":" + tradeNo
}

// Seen treats Redis errors as "not seen" so the ledger decides.
func (g *RedisReplayGuard) Seen(ctx context.Context, provider, tradeNo string) bool {
	if g == nil || g.Client == nil {
		return false
	}
	n, err := g.Client.Exists(ctx, replayKey(provider, tradeNo)).Result()
	return err == nil && n > 0
}

func (g *RedisReplayGuard) Mark(ctx context.Context, provider, tradeNo string) error {
	if g == nil || g.Client == nil {
		return nil
	}
	return g.Client.Set(ctx, replayKey(provider, tradeNo), 1, g.TTL).Err()
}
