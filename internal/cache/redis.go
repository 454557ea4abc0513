package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisBlocklist struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisBlocklist создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "smilecook:revoked:".
func NewRedisBlocklist(ctx context.Context, redisURL, prefix string) (Blocklist, error) {
	if prefix == "" {
		prefix = "smilecook:revoked:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &redisBlocklist{rdb: rdb, prefix: prefix}, nil
}

func (c *redisBlocklist) key(jti string) string { return c.prefix + jti }

// Revoke пишет ключ "1" с TTL, равным остатку жизни токена (SET ... EX).
func (c *redisBlocklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	return c.rdb.Set(ctx, c.key(jti), "1", ttl).Err()
}

func (c *redisBlocklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, c.key(jti)).Result()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func (c *redisBlocklist) Close() error { return c.rdb.Close() }
