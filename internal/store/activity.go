// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/ypng-go/internal/model"
)

// CreateActivityParams holds the columns of a new activity log entry.
type CreateActivityParams struct {
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	Metadata  string
	CreatedAt time.Time
}

const createActivity = `INSERT INTO activity_log (level, category, message, user_id, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?)`

// CreateActivity appends an entry to the activity log.
func (q *Queries) CreateActivity(ctx context.Context, arg CreateActivityParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createActivity,
		arg.Level,
		arg.Category,
		arg.Message,
		arg.UserID,
		arg.Metadata,
		arg.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const listActivity = `SELECT id, level, category, message, user_id, metadata, created_at
FROM activity_log ORDER BY created_at DESC, id DESC LIMIT ?`

// ListActivity returns the newest activity entries.
func (q *Queries) ListActivity(ctx context.Context, limit int64) ([]model.Activity, error) {
	rows, err := q.db.QueryContext(ctx, listActivity, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []model.Activity
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.Level, &a.Category, &a.Message, &a.UserID, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteActivityBefore = `DELETE FROM activity_log WHERE created_at < ?`

// DeleteActivityBefore prunes entries older than cutoff.
func (q *Queries) DeleteActivityBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteActivityBefore, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
