package cache

import (
	"context"
	"errors"
	"log"
	"time"
)

type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
	Health(ctx context.Context) error
	Stats() map[string]interface{}
	Close() error
}

const defaultL1TTL = 30 * time.Second

// MultiLevelCache reads through a short-lived process-local L1 to redis (L2).
// The L2 tier sits behind a circuit breaker; when it is open the cache keeps
// working from L1 alone.
type MultiLevelCache struct {
	l1      *MemoryCache
	l2      *RedisCache
	breaker *CircuitBreaker
	metrics *CacheMetrics
	l1TTL   time.Duration
}

func NewMultiLevelCache(l2 *RedisCache) *MultiLevelCache {
	return &MultiLevelCache{
		l1:      NewMemoryCache(defaultMemoryEntries),
		l2:      l2,
		breaker: NewCircuitBreaker(nil),
		metrics: NewCacheMetrics(),
		l1TTL:   defaultL1TTL,
	}
}

func (c *MultiLevelCache) l1Expiry(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > c.l1TTL {
		return c.l1TTL
	}
	return ttl
}

func (c *MultiLevelCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.metrics.RecordSet()
	if err := c.l1.Set(ctx, key, value, c.l1Expiry(ttl)); err != nil {
		c.metrics.RecordError()
		return err
	}
	if c.l2 == nil {
		return nil
	}
	err := c.breaker.Execute(func() error { return c.l2.Set(ctx, key, value, ttl) })
	if err != nil {
		c.metrics.RecordError()
	}
	return err
}

func (c *MultiLevelCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := c.l1.Get(ctx, key, dest); err == nil {
		c.metrics.RecordHit()
		return nil
	}
	if c.l2 == nil {
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	miss := false
	err := c.breaker.Execute(func() error {
		err := c.l2.Get(ctx, key, dest)
		if errors.Is(err, ErrCacheMiss) {
			miss = true
			return nil
		}
		return err
	})
	switch {
	case err != nil:
		c.metrics.RecordError()
		c.metrics.RecordMiss()
		return ErrCacheMiss
	case miss:
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	c.metrics.RecordHit()
	if err := c.l1.Set(ctx, key, dest, c.l1TTL); err != nil {
		log.Printf("cache: failed to promote %s to L1: %v", key, err)
	}
	return nil
}

func (c *MultiLevelCache) Delete(ctx context.Context, keys ...string) error {
	c.metrics.RecordDelete()
	_ = c.l1.Delete(ctx, keys...)
	if c.l2 == nil {
		return nil
	}
	return c.breaker.Execute(func() error { return c.l2.Delete(ctx, keys...) })
}

func (c *MultiLevelCache) DeletePattern(ctx context.Context, pattern string) error {
	c.metrics.RecordDelete()
	_ = c.l1.DeletePattern(ctx, pattern)
	if c.l2 == nil {
		return nil
	}
	return c.breaker.Execute(func() error { return c.l2.DeletePattern(ctx, pattern) })
}

func (c *MultiLevelCache) Health(ctx context.Context) error {
	if c.l2 == nil {
		return nil
	}
	if c.breaker.State() == CircuitBreakerOpen {
		return ErrCacheDown
	}
	return c.l2.Health(ctx)
}

func (c *MultiLevelCache) Stats() map[string]interface{} {
	stats := map[string]interface{}{
		"l1":      c.l1.Stats(),
		"metrics": c.metrics.Snapshot(),
		"breaker": c.breaker.Stats(),
	}
	if c.l2 != nil {
		stats["l2"] = c.l2.Stats()
	}
	return stats
}

func (c *MultiLevelCache) Close() error {
	_ = c.l1.Close()
	if c.l2 != nil {
		return c.l2.Close()
	}
	return nil
}
