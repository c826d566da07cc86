package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/core/sessionstore"
	"github.com/dmitrymomot/sessionkit/integration/database/redis"
)

func testClient(t *testing.T) (*miniredis.Miniredis, *redis.Config) {
	t.Helper()

	mr := miniredis.RunT(t)
	return mr, &redis.Config{
		ConnectionURL:  "redis://" + mr.Addr(),
		RetryAttempts:  1,
		RetryInterval:  10 * time.Millisecond,
		ConnectTimeout: 5 * time.Second,
	}
}

func TestConnect(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		_, cfg := testClient(t)
		client, err := redis.Connect(context.Background(), *cfg)
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })

		assert.NoError(t, client.Ping(context.Background()).Err())
	})

	t.Run("empty url", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Connect(context.Background(), redis.Config{})
		assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Connect(context.Background(), redis.Config{
			ConnectionURL: "http://localhost:6379",
		})
		assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
	})

	t.Run("unreachable server", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Connect(context.Background(), redis.Config{
			ConnectionURL:  "redis://127.0.0.1:1",
			RetryAttempts:  2,
			RetryInterval:  10 * time.Millisecond,
			ConnectTimeout: time.Second,
		})
		assert.ErrorIs(t, err, redis.ErrRedisNotReady)
	})
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	mr, cfg := testClient(t)
	client, err := redis.Connect(context.Background(), *cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	check := redis.Healthcheck(client)
	require.NoError(t, check(context.Background()))

	mr.Close()
	assert.ErrorIs(t, check(context.Background()), redis.ErrHealthcheckFailed)
}

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()

	_, cfg := testClient(t)
	client, err := redis.Connect(context.Background(), *cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	store := redis.NewStore(client)
	require.NoError(t, store.Open(ctx, "/ignored", "app"))

	data, err := store.Read(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, data)

	require.NoError(t, store.Write(ctx, "k1", `{"payload":1}`))

	data, err = store.Read(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, `{"payload":1}`, data)

	// Overwrite.
	require.NoError(t, store.Write(ctx, "k1", `{"payload":2}`))
	data, err = store.Read(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, `{"payload":2}`, data)

	destroyed, err := store.Destroy(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, destroyed)

	destroyed, err = store.Destroy(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, destroyed)
}

func TestStore_NamespaceIsolation(t *testing.T) {
	t.Parallel()

	_, cfg := testClient(t)
	client, err := redis.Connect(context.Background(), *cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()

	first := redis.NewStore(client)
	require.NoError(t, first.Open(ctx, "", "alpha"))
	second := redis.NewStore(client)
	require.NoError(t, second.Open(ctx, "", "beta"))

	require.NoError(t, first.Write(ctx, "shared", "alpha-data"))

	data, err := second.Read(ctx, "shared")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestStore_PayloadExpiry(t *testing.T) {
	t.Parallel()

	mr, cfg := testClient(t)
	client, err := redis.Connect(context.Background(), *cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	store := redis.NewStore(client, redis.WithPayloadTTL(time.Minute))
	require.NoError(t, store.Open(ctx, "", "app"))

	require.NoError(t, store.Write(ctx, "k1", "data"))

	mr.FastForward(30 * time.Second)
	data, err := store.Read(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "data", data)

	// A rewrite resets the clock.
	require.NoError(t, store.Write(ctx, "k1", "data"))
	mr.FastForward(45 * time.Second)
	data, err = store.Read(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "data", data)

	mr.FastForward(time.Minute)
	data, err = store.Read(ctx, "k1")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestStore_GCDelegates(t *testing.T) {
	t.Parallel()

	_, cfg := testClient(t)
	client, err := redis.Connect(context.Background(), *cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store := redis.NewStore(client)
	n, err := store.GC(context.Background(), time.Hour)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, sessionstore.ErrNoResult)
}
