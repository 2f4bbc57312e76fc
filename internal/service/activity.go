// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/olegiv/ypng-go/internal/model"
	"github.com/olegiv/ypng-go/internal/store"
)

// ActivityService writes and prunes the audit log.
type ActivityService struct {
	*base
}

// Log creates a new activity log entry.
func (s *ActivityService) Log(ctx context.Context, level, category, message string, userID *int64, metadata map[string]any) error {
	var nullUserID sql.NullInt64
	if userID != nil {
		nullUserID = sql.NullInt64{Int64: *userID, Valid: true}
	}

	metadataJSON := "{}"
	if metadata != nil {
		jsonBytes, err := json.Marshal(metadata)
		if err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	_, err := s.queries.CreateActivity(ctx, store.CreateActivityParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    nullUserID,
		Metadata:  metadataJSON,
		CreatedAt: s.now(),
	})
	if err != nil {
		s.logger.Error("failed to log activity", "error", err)
		return fmt.Errorf("logging activity: %w", err)
	}

	return nil
}

// LogInfo logs an info-level entry.
func (s *ActivityService) LogInfo(ctx context.Context, category, message string, userID *int64, metadata map[string]any) error {
	return s.Log(ctx, model.ActivityLevelInfo, category, message, userID, metadata)
}

// LogWarning logs a warning-level entry.
func (s *ActivityService) LogWarning(ctx context.Context, category, message string, userID *int64, metadata map[string]any) error {
	return s.Log(ctx, model.ActivityLevelWarning, category, message, userID, metadata)
}

// LogError logs an error-level entry.
func (s *ActivityService) LogError(ctx context.Context, category, message string, userID *int64, metadata map[string]any) error {
	return s.Log(ctx, model.ActivityLevelError, category, message, userID, metadata)
}

// Recent returns the newest entries, at most limit of them.
func (s *ActivityService) Recent(ctx context.Context, actor model.Actor, limit int64) ([]model.Activity, error) {
	if !actor.IsAdmin() {
		return nil, denied("activity", model.OpRead, actor)
	}
	return s.queries.ListActivity(ctx, limit)
}

// DeleteOld removes entries older than olderThan and returns how many were removed.
func (s *ActivityService) DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.now().Add(-olderThan)
	return s.queries.DeleteActivityBefore(ctx, cutoff)
}
