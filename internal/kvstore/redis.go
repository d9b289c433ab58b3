package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/osse101/reelfaucet/internal/domain"
)

// RedisStore keeps records as plain string values. Writes under the
// expiring prefix refresh the key's TTL, so stale demo records expire
// without a prune job. Other keys never expire.
type RedisStore struct {
	rdb            redis.UniversalClient
	ttl            time.Duration
	expiringPrefix string
}

// NewRedisClient creates a client for addr
func NewRedisClient(addr, password string, db int) redis.UniversalClient {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewRedisStore creates a store whose keys under expiringPrefix expire
// ttl after their last write. A zero ttl keeps every record forever.
func NewRedisStore(rdb redis.UniversalClient, ttl time.Duration, expiringPrefix string) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, expiringPrefix: expiringPrefix}
}

func (s *RedisStore) ttlFor(key string) time.Duration {
	if s.expiringPrefix != "" && strings.HasPrefix(key, s.expiringPrefix) {
		return s.ttl
	}
	return 0
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", ErrMsgGetRecordFailed, key, err)
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, key, value, s.ttlFor(key)).Err(); err != nil {
		return fmt.Errorf("%s %s: %w", ErrMsgSetRecordFailed, key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s %s: %w", ErrMsgDeleteRecordFailed, key, err)
	}
	return nil
}

// Ping checks redis connectivity
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
