// Package memcache is an in-process ports.CacheService for deployments
// without Valkey.
package memcache

import (
	"context"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	go_cache "github.com/eko/gocache/store/go_cache/v4"
	gocache "github.com/patrickmn/go-cache"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/ports"
)

// Cache implements ports.CacheService on top of an in-memory go-cache store.
type Cache struct {
	manager *cache.Cache[[]byte]
}

// New creates a cache whose entries default to defaultTTL and are swept every
// cleanupInterval.
func New(defaultTTL, cleanupInterval time.Duration) *Cache {
	client := gocache.New(defaultTTL, cleanupInterval)
	return &Cache{manager: cache.New[[]byte](go_cache.NewGoCache(client))}
}

// Get retrieves a value by key. Absent or expired keys yield ports.ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := c.manager.Get(ctx, key)
	if err != nil {
		return nil, ports.ErrCacheMiss
	}
	return v, nil
}

// Set stores a value. ttlSeconds <= 0 uses the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	var opts []store.Option
	if ttlSeconds > 0 {
		opts = append(opts, store.WithExpiration(time.Duration(ttlSeconds)*time.Second))
	}
	return c.manager.Set(ctx, key, value, opts...)
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.manager.Delete(ctx, key)
}

// Clear drops every entry.
func (c *Cache) Clear(ctx context.Context) error {
	return c.manager.Clear(ctx)
}

// Ping always succeeds; the store lives in process.
func (c *Cache) Ping(context.Context) error { return nil }
