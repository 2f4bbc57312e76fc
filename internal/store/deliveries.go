// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Signal delivery statuses.
const (
	DeliveryPending   = "pending"
	DeliveryDelivered = "delivered"
	DeliveryDead      = "dead"
	DeliveryLogged    = "logged"
)

// SignalDelivery is one persisted outbound signal.
type SignalDelivery struct {
	ID             int64
	IdempotencyKey string
	Signal         string
	Payload        string
	Status         string
	Attempts       int64
	NextRetryAt    sql.NullTime
	ResponseCode   sql.NullInt64
	ResponseBody   sql.NullString
	ErrorMessage   sql.NullString
	DeliveredAt    sql.NullTime
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const deliveryColumns = `id, idempotency_key, signal, payload, status, attempts, next_retry_at,
	response_code, response_body, error_message, delivered_at, created_at, updated_at`

// CreateSignalDeliveryParams holds the columns of a new delivery.
type CreateSignalDeliveryParams struct {
	IdempotencyKey string
	Signal         string
	Payload        string
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const createSignalDelivery = `INSERT INTO signal_deliveries (idempotency_key, signal, payload, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`

// CreateSignalDelivery persists a delivery and returns it.
func (q *Queries) CreateSignalDelivery(ctx context.Context, arg CreateSignalDeliveryParams) (SignalDelivery, error) {
	res, err := q.db.ExecContext(ctx, createSignalDelivery,
		arg.IdempotencyKey,
		arg.Signal,
		arg.Payload,
		arg.Status,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	if err != nil {
		return SignalDelivery{}, asDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return SignalDelivery{}, err
	}
	return q.GetSignalDelivery(ctx, id)
}

const getSignalDelivery = `SELECT ` + deliveryColumns + ` FROM signal_deliveries WHERE id = ?`

// GetSignalDelivery returns the delivery with id, or sql.ErrNoRows.
func (q *Queries) GetSignalDelivery(ctx context.Context, id int64) (SignalDelivery, error) {
	return scanDelivery(q.db.QueryRowContext(ctx, getSignalDelivery, id))
}

// UpdateDeliverySuccessParams records a successful attempt.
type UpdateDeliverySuccessParams struct {
	ResponseCode sql.NullInt64
	ResponseBody sql.NullString
	DeliveredAt  sql.NullTime
	UpdatedAt    time.Time
	ID           int64
}

const updateDeliverySuccess = `UPDATE signal_deliveries
SET status = 'delivered', attempts = attempts + 1, response_code = ?, response_body = ?,
    delivered_at = ?, next_retry_at = NULL, updated_at = ?
WHERE id = ?`

// UpdateDeliverySuccess marks the delivery delivered.
func (q *Queries) UpdateDeliverySuccess(ctx context.Context, arg UpdateDeliverySuccessParams) error {
	_, err := q.db.ExecContext(ctx, updateDeliverySuccess,
		arg.ResponseCode,
		arg.ResponseBody,
		arg.DeliveredAt,
		arg.UpdatedAt,
		arg.ID,
	)
	return err
}

// UpdateDeliveryRetryParams records a failed attempt that will be retried.
type UpdateDeliveryRetryParams struct {
	ResponseCode sql.NullInt64
	ResponseBody sql.NullString
	ErrorMessage sql.NullString
	NextRetryAt  sql.NullTime
	UpdatedAt    time.Time
	ID           int64
}

const updateDeliveryRetry = `UPDATE signal_deliveries
SET attempts = attempts + 1, response_code = ?, response_body = ?, error_message = ?,
    next_retry_at = ?, updated_at = ?
WHERE id = ?`

// UpdateDeliveryRetry schedules the next attempt.
func (q *Queries) UpdateDeliveryRetry(ctx context.Context, arg UpdateDeliveryRetryParams) error {
	_, err := q.db.ExecContext(ctx, updateDeliveryRetry,
		arg.ResponseCode,
		arg.ResponseBody,
		arg.ErrorMessage,
		arg.NextRetryAt,
		arg.UpdatedAt,
		arg.ID,
	)
	return err
}

// UpdateDeliveryDeadParams records a delivery that will not be retried.
type UpdateDeliveryDeadParams struct {
	ErrorMessage sql.NullString
	UpdatedAt    time.Time
	ID           int64
}

const updateDeliveryDead = `UPDATE signal_deliveries
SET status = 'dead', attempts = attempts + 1, error_message = ?, next_retry_at = NULL, updated_at = ?
WHERE id = ?`

// UpdateDeliveryDead gives up on the delivery.
func (q *Queries) UpdateDeliveryDead(ctx context.Context, arg UpdateDeliveryDeadParams) error {
	_, err := q.db.ExecContext(ctx, updateDeliveryDead, arg.ErrorMessage, arg.UpdatedAt, arg.ID)
	return err
}

const listPendingDeliveries = `SELECT ` + deliveryColumns + ` FROM signal_deliveries
WHERE status = 'pending'
ORDER BY id
LIMIT ?`

// ListPendingDeliveries returns pending deliveries, oldest first. Callers
// decide which are due by NextRetryAt.
func (q *Queries) ListPendingDeliveries(ctx context.Context, limit int64) ([]SignalDelivery, error) {
	rows, err := q.db.QueryContext(ctx, listPendingDeliveries, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []SignalDelivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteDeliveriesBefore = `DELETE FROM signal_deliveries WHERE status IN ('delivered', 'dead', 'logged') AND updated_at < ?`

// DeleteDeliveriesBefore prunes finished deliveries last touched before cutoff.
func (q *Queries) DeleteDeliveriesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteDeliveriesBefore, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanDelivery(s scanner) (SignalDelivery, error) {
	var d SignalDelivery
	err := s.Scan(
		&d.ID, &d.IdempotencyKey, &d.Signal, &d.Payload, &d.Status, &d.Attempts, &d.NextRetryAt,
		&d.ResponseCode, &d.ResponseBody, &d.ErrorMessage, &d.DeliveredAt, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}
