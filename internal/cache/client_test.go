package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClient_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient(10, 0)
	defer c.Close()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClient_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryClient(10, 0)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	now = now.Add(2 * time.Second)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	c.sweep()
	assert.Equal(t, 0, c.Len())
}

func TestMemoryClient_EvictsEarliestExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient(2, 0)

	require.NoError(t, c.Set(ctx, "short", []byte("1"), time.Second))
	require.NoError(t, c.Set(ctx, "long", []byte("2"), time.Hour))
	require.NoError(t, c.Set(ctx, "new", []byte("3"), time.Hour))

	assert.Equal(t, 2, c.Len())
	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)

	// Overwriting an existing key never evicts.
	require.NoError(t, c.Set(ctx, "long", []byte("4"), time.Hour))
	assert.Equal(t, 2, c.Len())
}

func TestMemoryClient_DeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient(10, 0)

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Set(ctx, CacheKey("resp", "a", fmt.Sprint(i)), []byte("x"), time.Minute))
	}
	require.NoError(t, c.Set(ctx, CacheKey("resp", "b", "0"), []byte("x"), time.Minute))

	require.NoError(t, c.DeleteByPrefix(ctx, "resp:a:"))
	assert.Equal(t, 1, c.Len())
}

func TestMemoryClient_CopiesValues(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient(10, 0)

	buf := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", buf, time.Minute))
	buf[0] = 'z'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestMemoryClient_CloseIdempotent(t *testing.T) {
	c := NewMemoryClient(10, time.Millisecond)
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "resp:build:search", CacheKey("resp", "build", "search"))
	assert.Equal(t, "", CacheKey())
}
