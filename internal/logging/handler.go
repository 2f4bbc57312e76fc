// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that mirrors warnings and errors
// into the activity log so operators can audit them from the API.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/olegiv/ypng-go/internal/model"
	"github.com/olegiv/ypng-go/internal/store"
)

// ActivityLogHandler is a slog.Handler that wraps another handler and also
// writes records at or above its level to the activity_log table.
type ActivityLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level
	attrs   []slog.Attr // attributes bound with WithAttrs
	group   string
}

// NewActivityLogHandler wraps inner, persisting WARN and above.
func NewActivityLogHandler(inner slog.Handler, db *sql.DB) *ActivityLogHandler {
	return NewActivityLogHandlerWithLevel(inner, db, slog.LevelWarn)
}

// NewActivityLogHandlerWithLevel wraps inner, persisting level and above.
func NewActivityLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *ActivityLogHandler {
	return &ActivityLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   level,
	}
}

// Enabled implements slog.Handler.
func (h *ActivityLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level) || level >= h.level
}

// Handle implements slog.Handler.
func (h *ActivityLogHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error
	if h.inner.Enabled(ctx, r.Level) {
		err = h.inner.Handle(ctx, r)
	}
	if r.Level >= h.level {
		h.persist(r)
	}
	return err
}

// WithAttrs implements slog.Handler.
func (h *ActivityLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.inner = h.inner.WithAttrs(attrs)
	c.attrs = append(append([]slog.Attr(nil), h.attrs...), h.qualify(attrs)...)
	return &c
}

// WithGroup implements slog.Handler.
func (h *ActivityLogHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.inner = h.inner.WithGroup(name)
	if name != "" {
		c.group = h.qualifyKey(name)
	}
	return &c
}

func (h *ActivityLogHandler) qualifyKey(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}

func (h *ActivityLogHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if h.group == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: h.qualifyKey(a.Key), Value: a.Value}
	}
	return out
}

// persist writes r to the activity log. It runs with a background context so
// a cancelled request still leaves its trace, and it never logs its own
// failures.
func (h *ActivityLogHandler) persist(r slog.Record) {
	attrs := append([]slog.Attr(nil), h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, h.qualify([]slog.Attr{a})...)
		return true
	})

	category := ""
	var userID sql.NullInt64
	meta := make(map[string]string, len(attrs))
	for _, a := range attrs {
		v := a.Value.Resolve()
		switch a.Key {
		case "category":
			category = v.String()
			continue
		case "user_id":
			if v.Kind() == slog.KindInt64 {
				userID = sql.NullInt64{Int64: v.Int64(), Valid: true}
			}
		}
		meta[a.Key] = v.String()
	}
	if category == "" {
		category = inferCategory(r.Message, meta)
	}

	metadata := "{}"
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			metadata = string(b)
		}
	}

	_, _ = h.queries.CreateActivity(context.Background(), store.CreateActivityParams{
		Level:     activityLevel(r.Level),
		Category:  category,
		Message:   r.Message,
		UserID:    userID,
		Metadata:  metadata,
		CreatedAt: r.Time,
	})
}

func activityLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.ActivityLevelError
	case level >= slog.LevelWarn:
		return model.ActivityLevelWarning
	default:
		return model.ActivityLevelInfo
	}
}

// categoryHints maps message keywords to categories, checked in order.
var categoryHints = []struct {
	category string
	words    []string
}{
	{model.ActivityCategoryAuth, []string{"auth", "login", "token", "password", "locked"}},
	{model.ActivityCategoryRegistration, []string{"registration", "waitlist", "confirmation"}},
	{model.ActivityCategoryMembership, []string{"membership", "renewal", "member number"}},
	{model.ActivityCategoryEvent, []string{"event", "platform"}},
	{model.ActivityCategoryMedia, []string{"media", "upload", "image"}},
	{model.ActivityCategorySignal, []string{"signal", "delivery", "webhook"}},
	{model.ActivityCategoryUser, []string{"user", "billing", "welcome"}},
}

// inferCategory picks a category from the message, then from identifying
// attributes, defaulting to system.
func inferCategory(msg string, meta map[string]string) string {
	msg = strings.ToLower(msg)
	for _, hint := range categoryHints {
		for _, w := range hint.words {
			if strings.Contains(msg, w) {
				return hint.category
			}
		}
	}
	switch {
	case meta["registration"] != "" || meta["registration_id"] != "":
		return model.ActivityCategoryRegistration
	case meta["event_id"] != "":
		return model.ActivityCategoryEvent
	case meta["media_id"] != "":
		return model.ActivityCategoryMedia
	}
	return model.ActivityCategorySystem
}
