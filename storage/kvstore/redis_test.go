package kvstore

import (
	"context"
	"os"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestRedis connects to TRACKED_TEST_REDIS_ADDR; tests are skipped when it is unset.
// Every test writes under its own key prefix, removed afterwards.
func openTestRedis(t *testing.T) (*RedisBlobs, redis.UniversalClient, string) {
	t.Helper()
	addr := os.Getenv("TRACKED_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TRACKED_TEST_REDIS_ADDR is not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())

	prefix := "tracked-test:" + uuid.NewString() + ":"
	t.Cleanup(func() {
		ctx := context.Background()
		stored, err := client.Keys(ctx, prefix+"*").Result()
		if err == nil && len(stored) > 0 {
			client.Del(ctx, stored...)
		}
		_ = client.Close()
	})
	return NewRedisBlobs(client, prefix), client, prefix
}

func TestRedisBlobs(t *testing.T) {
	ctx := context.Background()
	blobs, client, prefix := openTestRedis(t)

	_, ok, err := blobs.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, blobs.Set(ctx, "k", []byte("[1]")))
	require.NoError(t, blobs.Set(ctx, "k", []byte("[1,2]")))
	data, ok, err := blobs.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[1,2]", string(data))

	// values are plain strings under the prefixed key
	raw, err := client.Get(ctx, prefix+"k").Result()
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", raw)

	require.NoError(t, blobs.Delete(ctx, "k"))
	require.NoError(t, blobs.Delete(ctx, "k"))
	_, ok, err = blobs.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisBlobs_Store(t *testing.T) {
	ctx := context.Background()
	blobs, client, prefix := openTestRedis(t)

	_, err := New(blobs).Create(ctx, Modules, Record{"title": "Cells", "teacher_id": "t1"})
	require.NoError(t, err)
	_, err = New(blobs).CreateUnique(ctx, Users, "email", "a@test.test", Record{"email": "a@test.test"})
	require.NoError(t, err)

	// a second store over the same keys sees the records
	store := New(NewRedisBlobs(client, prefix))
	recs, err := store.List(ctx, Modules)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Cells", recs[0].String("title"))

	_, err = store.CreateUnique(ctx, Users, "email", "A@test.test", Record{"email": "A@test.test"})
	assert.Equal(t, ErrDuplicate, err)

	require.NoError(t, store.Delete(ctx, Modules, recs[0].ID()))
	recs, err = store.List(ctx, Modules)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
