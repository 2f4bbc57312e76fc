// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Activity levels
const (
	ActivityLevelInfo    = "info"
	ActivityLevelWarning = "warning"
	ActivityLevelError   = "error"
)

// Activity categories
const (
	ActivityCategoryAuth         = "auth"
	ActivityCategoryEvent        = "event"
	ActivityCategoryRegistration = "registration"
	ActivityCategoryUser         = "user"
	ActivityCategoryMembership   = "membership"
	ActivityCategoryMedia        = "media"
	ActivityCategorySignal       = "signal"
	ActivityCategorySystem       = "system"
)

// Activity is an audit log entry.
type Activity struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	Metadata  string // JSON string
	CreatedAt time.Time
}
