package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store backs the JWT denylist. Logout writes the token's jti here with a
// TTL matching the token's remaining lifetime; the auth middleware checks
// membership on every request.
type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func denyKey(jti string) string { return "token:deny:" + jti }

func (s *Store) DenyToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token already expired; nothing to deny.
		return nil
	}
	return s.rdb.Set(ctx, denyKey(jti), "1", ttl).Err()
}

func (s *Store) IsTokenDenied(ctx context.Context, jti string) (bool, error) {
	err := s.rdb.Get(ctx, denyKey(jti)).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
