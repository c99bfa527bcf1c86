package ephemeral

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/projectmanager/internal/common"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "pm:ephemeral:"

// ErrTokenCollision is returned by RedisStore.Put when the key already exists.
var ErrTokenCollision = errors.New("ephemeral token already exists")

// RedisStore keeps tokens in Redis with a native TTL. Consume relies on GETDEL,
// which reads and removes the key in one server-side step.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(purpose Purpose, token string) string {
	return redisKeyPrefix + string(purpose) + ":" + token
}

func (s *RedisStore) Put(ctx context.Context, purpose Purpose, token, email string) error {
	ok, err := s.client.SetNX(ctx, redisKey(purpose, token), email, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	if !ok {
		return ErrTokenCollision
	}
	return nil
}

func (s *RedisStore) Consume(ctx context.Context, purpose Purpose, token string) (string, error) {
	email, err := s.client.GetDel(ctx, redisKey(purpose, token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("redis error: %w", err)
	}
	return email, nil
}

// NewRedisClient connects to addr and pings it.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: failed to ping server: %w", err)
	}
	return client, nil
}
