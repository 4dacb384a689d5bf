package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KevDevLee/namens-tinder/internal/config"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()
	c := NewRedisCache(cfg)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestGetMissAndGetDel(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	v, err := c.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, c.Set(ctx, "flag", "true", 0))
	v, err = c.GetDel(ctx, "flag")
	require.NoError(t, err)
	assert.Equal(t, "true", v)

	v, err = c.GetDel(ctx, "flag")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestStatsSnapshot(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	var got map[string]int
	ok, err := c.GetStats(ctx, &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetStats(ctx, map[string]int{"like": 3}))
	assert.True(t, mr.TTL(statsKey) > 0)

	ok, err = c.GetStats(ctx, &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, got["like"])

	require.NoError(t, c.InvalidateStats(ctx))
	ok, _ = c.GetStats(ctx, &got)
	assert.False(t, ok)
}

func TestKeyForPreference(t *testing.T) {
	c, _ := newTestCache(t)
	assert.Equal(t, "prefs:7:last_name", c.KeyForPreference(7, "last_name"))
}
