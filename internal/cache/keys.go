// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// Key prefixes, one per cached collection.
const (
	PrefixEvents          = "events:"
	PrefixUsers           = "users:"
	PrefixMembershipTypes = "membership-types:"
)

// Listing keys.
const (
	KeyDirectory              = PrefixUsers + "directory"
	KeyBoard                  = PrefixUsers + "board"
	KeyActiveMembershipTypes  = PrefixMembershipTypes + "active"
	keyUpcomingEventsTemplate = PrefixEvents + "upcoming:%s:%d"
)

// UpcomingEventsKey returns the key of the upcoming events listing starting
// on day (YYYY-MM-DD) with at most limit entries.
func UpcomingEventsKey(day string, limit int) string {
	return fmt.Sprintf(keyUpcomingEventsTemplate, day, limit)
}

// Invalidate drops every cached listing under prefix. Failures are logged;
// stale listings expire with their TTL anyway.
func Invalidate(ctx context.Context, c Cacher, prefix string) {
	if c == nil {
		return
	}
	if err := c.DeleteByPrefix(ctx, prefix); err != nil {
		slog.Warn("cache invalidation failed", "prefix", prefix, "error", err)
	}
}
