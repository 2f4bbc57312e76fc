// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"testing"
	"time"
)

func TestUpcomingEventsKey(t *testing.T) {
	if got := UpcomingEventsKey("2026-05-01", 10); got != "events:upcoming:2026-05-01:10" {
		t.Errorf("UpcomingEventsKey() = %q", got)
	}
}

func TestInvalidate(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour})
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	_ = c.Set(ctx, UpcomingEventsKey("2026-05-01", 10), []byte("[]"), 0)
	_ = c.Set(ctx, KeyDirectory, []byte("[]"), 0)

	Invalidate(ctx, c, PrefixEvents)

	if _, err := c.Get(ctx, UpcomingEventsKey("2026-05-01", 10)); err == nil {
		t.Error("events listing survived invalidation")
	}
	if _, err := c.Get(ctx, KeyDirectory); err != nil {
		t.Error("directory listing should be untouched")
	}

	// A nil cache is a no-op.
	Invalidate(ctx, nil, PrefixUsers)
}
