package helpers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient initializes a redis client
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// KeyDenylist is the Redis key for a revoked token id
func KeyDenylist(jti string) string {
	return "auth:denylist:" + jti
}

// DenylistToken marks a token id as revoked until its natural expiry.
// A nil client turns revocation into a no-op (dev mode).
func DenylistToken(ctx context.Context, rdb *redis.Client, jti string, expiresAt time.Time) error {
	if rdb == nil || jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return rdb.Set(ctx, KeyDenylist(jti), "1", ttl).Err()
}

// TokenDenylisted reports whether a token id has been revoked.
func TokenDenylisted(ctx context.Context, rdb *redis.Client, jti string) (bool, error) {
	if rdb == nil || jti == "" {
		return false, nil
	}
	n, err := rdb.Exists(ctx, KeyDenylist(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
