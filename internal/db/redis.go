// internal/db/redis.go
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"referee-dashboard/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to REDIS_ADDR. A comma separated list of
// addresses yields a cluster client, a single address a plain client.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (redis.UniversalClient, error) {
	addrs := splitAddrs(cfg.Addr)
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no Redis address provided")
	}

	opts := &redis.UniversalOptions{
		Addrs:    addrs,
		Password: cfg.Password,
		PoolSize: cfg.PoolSize,
	}
	if len(addrs) == 1 {
		opts.DB = cfg.DB
	}
	client := redis.NewUniversalClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

func splitAddrs(raw string) []string {
	var addrs []string
	for _, a := range strings.Split(raw, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	return addrs
}
