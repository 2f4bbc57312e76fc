// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type listItem struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

func newTestListing(t *testing.T) (*Listing[listItem], *MemoryCache) {
	t.Helper()
	mc := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour})
	t.Cleanup(func() { _ = mc.Close() })
	return NewListing[listItem](mc, time.Hour), mc
}

func TestListing_SetGet(t *testing.T) {
	l, _ := newTestListing(t)
	ctx := context.Background()

	if _, ok := l.Get(ctx, "events:upcoming"); ok {
		t.Fatal("Get on empty cache reported a hit")
	}

	want := []listItem{{ID: 1, Title: "Mixer"}, {ID: 2, Title: "Hike"}}
	if err := l.Set(ctx, "events:upcoming", want); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := l.Get(ctx, "events:upcoming")
	if !ok {
		t.Fatal("Get after Set missed")
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Get = %v, want %v", got, want)
	}
}

func TestListing_NilStoredAsEmpty(t *testing.T) {
	l, _ := newTestListing(t)
	ctx := context.Background()

	if err := l.Set(ctx, "k", nil); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := l.Get(ctx, "k")
	if !ok || got == nil || len(got) != 0 {
		t.Errorf("Get = %v, %v; want empty non-nil hit", got, ok)
	}
}

func TestListing_CorruptEntryIsMiss(t *testing.T) {
	l, mc := newTestListing(t)
	ctx := context.Background()

	if err := mc.Set(ctx, "k", []byte("{not json"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok := l.Get(ctx, "k"); ok {
		t.Error("corrupt entry reported as a hit")
	}
}

func TestListing_GetOrLoad(t *testing.T) {
	l, _ := newTestListing(t)
	ctx := context.Background()

	loads := 0
	load := func() ([]listItem, error) {
		loads++
		return []listItem{{ID: 7, Title: "Board"}}, nil
	}
	for range 3 {
		items, err := l.GetOrLoad(ctx, "board", load)
		if err != nil {
			t.Fatalf("GetOrLoad: %v", err)
		}
		if len(items) != 1 || items[0].ID != 7 {
			t.Errorf("GetOrLoad = %v", items)
		}
	}
	if loads != 1 {
		t.Errorf("load called %d times, want 1", loads)
	}
}

func TestListing_GetOrLoadError(t *testing.T) {
	l, _ := newTestListing(t)
	ctx := context.Background()
	boom := errors.New("boom")

	if _, err := l.GetOrLoad(ctx, "k", func() ([]listItem, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if _, ok := l.Get(ctx, "k"); ok {
		t.Error("failed load was cached")
	}
}
