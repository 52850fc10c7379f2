package db

import (
	"context"
	"testing"

	"referee-dashboard/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitAddrs(t *testing.T) {
	assert.Empty(t, splitAddrs(""))
	assert.Equal(t, []string{"a:6379"}, splitAddrs(" a:6379 "))
	assert.Equal(t, []string{"a:1", "b:2"}, splitAddrs("a:1, ,b:2"))
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), config.RedisConfig{Addr: mr.Addr(), PoolSize: 2})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewRedisClient_Errors(t *testing.T) {
	_, err := NewRedisClient(context.Background(), config.RedisConfig{})
	require.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedisClient(context.Background(), config.RedisConfig{Addr: addr})
	require.Error(t, err)
}
