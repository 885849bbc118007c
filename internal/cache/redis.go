// Package cache wires the optional Redis read cache. A failed connection at
// startup returns a nil client and callers degrade by skipping the cache.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewClient pings addr with a short timeout and returns nil when Redis is
// unreachable or addr is empty.
func NewClient(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, caching disabled", "addr", addr, "err", err)
		_ = client.Close()
		return nil
	}
	return client
}
