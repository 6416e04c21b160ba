package token

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisRevocationStore keeps revoked token hashes in Redis so logout
// survives process restarts and is shared between replicas. Keys carry
// a TTL equal to the token's remaining validity, so the set cannot
// grow without bound the way a plain in-memory blacklist would.
type redisRevocationStore struct {
	client *redis.Client
	prefix string
}

// NewRedisRevocationStore wraps a Redis client as a RevocationStore.
func NewRedisRevocationStore(client *redis.Client) RevocationStore {
	return &redisRevocationStore{client: client, prefix: "revoked:token:"}
}

func (r *redisRevocationStore) Revoke(ctx context.Context, raw string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Minute // token already expired; keep a short tombstone
	}
	return r.client.Set(ctx, r.prefix+hashToken(raw), 1, ttl).Err()
}

func (r *redisRevocationStore) IsRevoked(ctx context.Context, raw string) bool {
	n, err := r.client.Exists(ctx, r.prefix+hashToken(raw)).Result()
	if err != nil {
		// If Redis is unreachable the safe answer for a blacklist read
		// is "not revoked"; signature and expiry checks still apply.
		return false
	}
	return n > 0
}
