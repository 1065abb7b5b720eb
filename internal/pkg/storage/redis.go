package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ SeenStore = (*RedisSeenStore)(nil)

// RedisSeenStore keeps seen keys in Redis so dedup survives restarts.
type RedisSeenStore struct {
	client *redis.Client
	prefix string
}

func NewRedisSeenStore(addr, password string, db int, prefix string) (*RedisSeenStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Check connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSeenStore{client: client, prefix: prefix}, nil
}

func (r *RedisSeenStore) MarkIfNew(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.prefix+key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark %q: %w", key, err)
	}
	return ok, nil
}

func (r *RedisSeenStore) Forget(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to forget %q: %w", key, err)
	}
	return nil
}

func (r *RedisSeenStore) Close() error {
	return r.client.Close()
}

// Ping checks the connection.
func (r *RedisSeenStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
