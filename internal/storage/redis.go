package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fintrack/internal/log"
	"fintrack/internal/session"
)

// DefaultRedisPrefix namespaces session keys in a shared Redis.
const DefaultRedisPrefix = "fintrack:session:"

// RedisStorage keeps session blobs in Redis. Values never expire; logout
// deletes them.
type RedisStorage struct {
	rdb    *redis.Client
	prefix string
	logger *log.Logger
}

var _ session.BlobStorage = (*RedisStorage)(nil)

// NewRedisStorage connects to addr and pings it once.
func NewRedisStorage(ctx context.Context, addr, prefix string, logger *log.Logger) (*RedisStorage, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return newRedisStorage(ctx, rdb, prefix, logger)
}

func newRedisStorage(ctx context.Context, rdb *redis.Client, prefix string, logger *log.Logger) (*RedisStorage, error) {
	if logger == nil {
		logger = log.Nop()
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	logger = logger.WithComponent(log.ComponentStorage)
	logger.DebugContext(ctx, "Session storage ready", "redis", rdb.Options().Addr)
	return &RedisStorage{rdb: rdb, prefix: prefix, logger: logger}, nil
}

func (s *RedisStorage) key(k string) string { return s.prefix + k }

func (s *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.rdb.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	s.logger.DebugContext(ctx, "Session blob stored", "key", key)
	return nil
}

func (s *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	s.logger.DebugContext(ctx, "Session blob deleted", "key", key)
	return nil
}

func (s *RedisStorage) Close() error {
	return s.rdb.Close()
}
