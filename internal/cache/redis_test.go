package cache

import (
	"context"
	"testing"
	"time"

	"task-manager/api/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedTask struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := DefaultCacheConfig()
	cfg.Addr = mr.Addr()
	cfg.MinIdleConns = 0

	rc := NewRedisCache(NewRedisClient(cfg), cfg.KeyPrefix)
	t.Cleanup(func() { rc.Close() })
	return rc, mr
}

func TestDefaultCacheConfig(t *testing.T) {
	cfg := DefaultCacheConfig()
	assert.Equal(t, "localhost:6379", cfg.Addr)
	assert.Equal(t, 10, cfg.PoolSize)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.Equal(t, "tm:", cfg.KeyPrefix)
}

func TestCacheConfigFromConfig(t *testing.T) {
	cfg := &config.Config{Redis: config.RedisConfig{Host: "redis", Port: "6380", DB: 2, PoolSize: 20}}
	cc := CacheConfigFromConfig(cfg)
	assert.Equal(t, "redis:6380", cc.Addr)
	assert.Equal(t, 2, cc.DB)
	assert.Equal(t, 20, cc.PoolSize)
}

func TestRedisCache_SetGet(t *testing.T) {
	rc, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, rc.Set(ctx, "task:1", cachedTask{ID: "1", Title: "Write tests"}, time.Minute))
	assert.True(t, mr.Exists("tm:task:1"), "keys are stored under the prefix")

	var got cachedTask
	require.NoError(t, rc.Get(ctx, "task:1", &got))
	assert.Equal(t, "Write tests", got.Title)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, rc.Get(ctx, "task:1", &got), ErrCacheMiss)
}

func TestRedisCache_Miss(t *testing.T) {
	rc, _ := setupTestRedis(t)
	var got cachedTask
	assert.ErrorIs(t, rc.Get(context.Background(), "missing", &got), ErrCacheMiss)
}

func TestRedisCache_DeleteAndPattern(t *testing.T) {
	rc, mr := setupTestRedis(t)
	ctx := context.Background()

	for _, k := range []string{"tasks:list:a:1", "tasks:list:a:2", "tasks:list:b:1", "task:9"} {
		require.NoError(t, rc.Set(ctx, k, "v", time.Minute))
	}

	require.NoError(t, rc.DeletePattern(ctx, "tasks:list:a:*"))
	assert.False(t, mr.Exists("tm:tasks:list:a:1"))
	assert.False(t, mr.Exists("tm:tasks:list:a:2"))
	assert.True(t, mr.Exists("tm:tasks:list:b:1"))

	require.NoError(t, rc.Delete(ctx, "task:9", "tasks:list:b:1"))
	assert.False(t, mr.Exists("tm:task:9"))
	assert.False(t, mr.Exists("tm:tasks:list:b:1"))
	assert.NoError(t, rc.Delete(ctx))
}

func TestRedisCache_HealthAndStats(t *testing.T) {
	rc, mr := setupTestRedis(t)
	ctx := context.Background()

	assert.NoError(t, rc.Health(ctx))
	assert.Contains(t, rc.Stats(), "pool_total")

	mr.Close()
	assert.Error(t, rc.Health(ctx))
}
