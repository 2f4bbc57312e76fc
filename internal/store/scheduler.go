// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const getSchedulerOverride = `SELECT override_schedule FROM scheduler_overrides WHERE name = ?`

// GetSchedulerOverride returns the stored schedule of a job.
func (q *Queries) GetSchedulerOverride(ctx context.Context, name string) (string, error) {
	var schedule string
	err := q.db.QueryRowContext(ctx, getSchedulerOverride, name).Scan(&schedule)
	return schedule, err
}

const upsertSchedulerOverride = `INSERT INTO scheduler_overrides (name, override_schedule, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (name) DO UPDATE SET override_schedule = excluded.override_schedule, updated_at = excluded.updated_at`

// UpsertSchedulerOverride stores the schedule of a job.
func (q *Queries) UpsertSchedulerOverride(ctx context.Context, name, schedule string, now time.Time) error {
	_, err := q.db.ExecContext(ctx, upsertSchedulerOverride, name, schedule, now)
	return err
}

const deleteSchedulerOverride = `DELETE FROM scheduler_overrides WHERE name = ?`

// DeleteSchedulerOverride drops the stored schedule of a job.
func (q *Queries) DeleteSchedulerOverride(ctx context.Context, name string) error {
	_, err := q.db.ExecContext(ctx, deleteSchedulerOverride, name)
	return err
}
