package dedup

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "charger-alert:report:"

// RedisGuard marks report IDs as seen so an at-least-once redelivery of the
// same report is skipped before any side effect.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisGuard(addr string, ttl time.Duration) *RedisGuard {
	return &RedisGuard{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// FirstDelivery returns true the first time a report ID is seen within the
// TTL window.
func (g *RedisGuard) FirstDelivery(ctx context.Context, reportID string) (bool, error) {
	return g.client.SetNX(ctx, keyPrefix+reportID, 1, g.ttl).Result()
}

func (g *RedisGuard) Close() error {
	return g.client.Close()
}
