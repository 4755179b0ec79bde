package kv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedis(client), mr
}

func TestPutNX(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	first, err := store.PutNX(ctx, "k", "v1", time.Minute)
	require.NoError(t, err)
	require.True(t, first)

	// Second writer loses and the value is untouched.
	first, err = store.PutNX(ctx, "k", "v2", time.Minute)
	require.NoError(t, err)
	require.False(t, first)

	value, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v1", value)

	require.Equal(t, time.Minute, mr.TTL("k"))
}

func TestGetAbsent(t *testing.T) {
	store, _ := newTestStore(t)

	_, found, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	require.False(t, found)
}

func TestIncrWithTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := store.IncrWithTTL(ctx, "counter", time.Hour)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	require.Equal(t, time.Hour, mr.TTL("counter"))
}

func TestUnavailableStore(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	mr.Close()

	_, err := store.PutNX(ctx, "k", "v", time.Minute)
	require.ErrorIs(t, err, ErrUnavailable)

	_, _, err = store.Get(ctx, "k")
	require.ErrorIs(t, err, ErrUnavailable)

	_, err = store.IncrWithTTL(ctx, "k", time.Minute)
	require.ErrorIs(t, err, ErrUnavailable)
}
