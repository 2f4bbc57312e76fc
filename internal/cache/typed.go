// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Listing stores JSON-encoded result lists in a Cacher. Entries that fail
// to decode are treated as misses.
type Listing[T any] struct {
	cache Cacher
	ttl   time.Duration
}

// NewListing wraps c. ttl applies to every entry it stores.
func NewListing[T any](c Cacher, ttl time.Duration) *Listing[T] {
	return &Listing[T]{cache: c, ttl: ttl}
}

// Get returns the list stored under key.
func (l *Listing[T]) Get(ctx context.Context, key string) ([]T, bool) {
	data, err := l.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	return items, true
}

// Set stores items under key. A nil list is stored as empty.
func (l *Listing[T]) Set(ctx context.Context, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return l.cache.Set(ctx, key, data, l.ttl)
}

// GetOrLoad returns the cached list, or calls load and caches its result.
// A failed write is ignored; the loaded list is returned either way.
func (l *Listing[T]) GetOrLoad(ctx context.Context, key string, load func() ([]T, error)) ([]T, error) {
	if items, ok := l.Get(ctx, key); ok {
		return items, nil
	}
	items, err := load()
	if err != nil {
		return nil, err
	}
	_ = l.Set(ctx, key, items)
	return items, nil
}
