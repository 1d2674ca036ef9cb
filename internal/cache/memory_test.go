package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_Expiry(t *testing.T) {
	now := time.Now()
	m := NewMemoryCache(10)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", cachedTask{Title: "a"}, time.Second))

	var got cachedTask
	require.NoError(t, m.Get(ctx, "k", &got))
	assert.Equal(t, "a", got.Title)

	now = now.Add(2 * time.Second)
	assert.ErrorIs(t, m.Get(ctx, "k", &got), ErrCacheMiss)
	assert.Equal(t, 0, m.Stats()["entries"])
}

func TestMemoryCache_ValuesAreCopied(t *testing.T) {
	m := NewMemoryCache(0)
	ctx := context.Background()
	task := cachedTask{Title: "original"}
	require.NoError(t, m.Set(ctx, "k", task, 0))
	task.Title = "mutated"

	var got cachedTask
	require.NoError(t, m.Get(ctx, "k", &got))
	assert.Equal(t, "original", got.Title)
}

func TestMemoryCache_Eviction(t *testing.T) {
	m := NewMemoryCache(2)
	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "a", 1, 0))
	require.NoError(t, m.Set(ctx, "b", 2, 0))
	require.NoError(t, m.Set(ctx, "c", 3, 0))

	assert.Equal(t, 2, m.Stats()["entries"])
	var v int
	assert.NoError(t, m.Get(ctx, "c", &v))
}

func TestMemoryCache_DeletePattern(t *testing.T) {
	m := NewMemoryCache(10)
	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "tasks:list:u1:x", 1, 0))
	require.NoError(t, m.Set(ctx, "tasks:list:u2:x", 1, 0))
	require.NoError(t, m.Set(ctx, "task:1", 1, 0))

	require.NoError(t, m.DeletePattern(ctx, "tasks:list:*"))
	var v int
	assert.ErrorIs(t, m.Get(ctx, "tasks:list:u1:x", &v), ErrCacheMiss)
	assert.NoError(t, m.Get(ctx, "task:1", &v))

	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Get(ctx, "task:1", &v), ErrCacheMiss)
}
