package external

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_Expiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c := NewMemoryCache(0, 5*time.Minute)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 5*time.Minute))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(5 * time.Minute)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_Bounded(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c := NewMemoryCache(2, 5*time.Minute)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 2*time.Minute))
	require.NoError(t, c.Set(ctx, "c", []byte("3"), 3*time.Minute))

	assert.Equal(t, 2, c.Len())
	_, ok, _ := c.Get(ctx, "a")
	assert.False(t, ok, "least recently used entry is evicted")

	// reading b makes c the eviction candidate
	_, ok, _ = c.Get(ctx, "b")
	assert.True(t, ok)
	require.NoError(t, c.Set(ctx, "d", []byte("4"), time.Minute))
	_, ok, _ = c.Get(ctx, "c")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "b")
	assert.True(t, ok)
}

func TestMemoryCache_ZeroTTLIsNoop(t *testing.T) {
	c := NewMemoryCache(0, 5*time.Minute)
	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), 0))
	assert.Equal(t, 0, c.Len())
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	c := NewRedisCache(client)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 5*time.Minute))
	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)
	assert.Equal(t, 5*time.Minute, mr.TTL("k"))

	mr.FastForward(5 * time.Minute)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = c.Get(ctx, "")
	assert.Error(t, err)
}

func TestCacheKey_ScopedByToken(t *testing.T) {
	a := cacheKey("GET", "https://api/x", "t1")
	b := cacheKey("GET", "https://api/x", "t2")
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, cacheKey("GET", "https://api/x", "t1"))
	assert.Contains(t, a, "external:get:")
}
