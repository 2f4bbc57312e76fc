// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps listings in process memory.
type MemoryCache struct {
	items   *gocache.Cache
	maxSize int
	closed  atomic.Bool
}

// MemoryCacheOptions configures NewMemoryCache. A zero DefaultTTL never
// expires entries; a zero CleanupInterval disables the janitor.
type MemoryCacheOptions struct {
	DefaultTTL      time.Duration
	MaxSize         int
	CleanupInterval time.Duration
}

// NewMemoryCache creates an empty memory cache.
func NewMemoryCache(opts MemoryCacheOptions) *MemoryCache {
	ttl := opts.DefaultTTL
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemoryCache{items: gocache.New(ttl, opts.CleanupInterval), maxSize: opts.MaxSize}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}
	v, ok := c.items.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	return bytes.Clone(v.([]byte)), nil
}

// Set stores a copy of value. When the cache holds MaxSize entries it first
// drops expired ones, then everything if it is still full.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	if c.maxSize > 0 && c.items.ItemCount() >= c.maxSize {
		c.items.DeleteExpired()
		if _, present := c.items.Get(key); !present && c.items.ItemCount() >= c.maxSize {
			c.items.Flush()
		}
	}
	c.items.Set(key, bytes.Clone(value), ttl)
	return nil
}

func (c *MemoryCache) DeleteByPrefix(_ context.Context, prefix string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	for key := range c.items.Items() {
		if strings.HasPrefix(key, prefix) {
			c.items.Delete(key)
		}
	}
	return nil
}

// Len reports the number of unexpired entries.
func (c *MemoryCache) Len() int {
	return c.items.ItemCount()
}

// Close empties the cache; later calls fail with ErrCacheClosed.
func (c *MemoryCache) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		c.items.Flush()
	}
	return nil
}

var _ Cacher = (*MemoryCache)(nil)
