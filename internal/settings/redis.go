package settings

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores settings blobs as plain string keys.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend wraps an existing client. prefix namespaces the keys.
func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

func (b *RedisBackend) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (b *RedisBackend) Save(ctx context.Context, key string, data []byte) error {
	return b.client.Set(ctx, b.prefix+key, data, 0).Err()
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
