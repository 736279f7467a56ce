package kvstore

import (
	"context"

	"github.com/go-redis/redis/v8"
)

var _ Blobs = (*RedisBlobs)(nil)

// RedisBlobs keeps the values as plain redis strings, under an optional key prefix.
type RedisBlobs struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisBlobs(client redis.UniversalClient, prefix string) *RedisBlobs {
	return &RedisBlobs{client: client, prefix: prefix}
}

func (b *RedisBlobs) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (b *RedisBlobs) Set(ctx context.Context, key string, data []byte) error {
	return b.client.Set(ctx, b.prefix+key, data, 0).Err()
}

func (b *RedisBlobs) Delete(ctx context.Context, key string) error {
	return b.client.Del(ctx, b.prefix+key).Err()
}
