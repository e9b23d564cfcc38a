package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"finpulse/internal/log"
)

// RedisStore keeps cached responses in Redis so several instances share
// one cache. Entries carry a server-side TTL; lookups degrade to misses
// when Redis is unreachable.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

// NewRedisStore connects and pings the server before returning, so a bad
// address fails at startup rather than on first request.
func NewRedisStore(addr string, db int, ttl time.Duration, logger *log.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: logger.WithComponent(log.ComponentCache),
	}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.WarnContext(ctx, "Redis get failed, treating as miss", log.FieldError, err.Error())
		}
		return nil, false
	}
	return data, true
}

func (s *RedisStore) Set(ctx context.Context, key string, data []byte) {
	if err := s.client.SetEx(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "Redis set failed", log.FieldError, err.Error())
	}
}

func (s *RedisStore) Delete(ctx context.Context, key string) {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.WarnContext(ctx, "Redis delete failed", log.FieldError, err.Error())
	}
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
