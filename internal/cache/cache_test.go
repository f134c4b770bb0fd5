package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

func newTestCache(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedis(rdb, "test:"), mr
}

func TestRedis_SetGetDelete(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "acme", snapshot{Name: "Acme", Tags: []string{"b2b"}}, time.Hour))
	assert.True(t, mr.Exists("test:acme"))

	var got snapshot
	require.NoError(t, c.Get(ctx, "acme", &got))
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, []string{"b2b"}, got.Tags)

	require.NoError(t, c.Delete(ctx, "acme"))
	assert.ErrorIs(t, c.Get(ctx, "acme", &got), ErrNotFound)
}

func TestRedis_Expires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	mr.FastForward(2 * time.Minute)

	var s string
	assert.ErrorIs(t, c.Get(ctx, "k", &s), ErrNotFound)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := Connect(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	_ = rdb.Close()

	_, err = Connect(context.Background(), "::not a url")
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	assert.NoError(t, c.Set(context.Background(), "k", 1, 0))
	var v int
	assert.ErrorIs(t, c.Get(context.Background(), "k", &v), ErrNotFound)
}
