package helpers

import (
	"context"
	"errors"
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

func keyRevokedSession(jti string) string { return "session:revoked:" + jti }

// SessionBlacklist records revoked token ids until their natural expiry.
type SessionBlacklist struct {
	rdb *redis.Client
}

func NewSessionBlacklist(rdb *redis.Client) *SessionBlacklist {
	return &SessionBlacklist{rdb: rdb}
}

func (b *SessionBlacklist) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 || jti == "" {
		return nil
	}
	return b.rdb.Set(ctx, keyRevokedSession(jti), "1", ttl).Err()
}

func (b *SessionBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	_, err := b.rdb.Get(ctx, keyRevokedSession(jti)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
