// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/olegiv/ypng-go/internal/store"
)

const (
	MaxAttempts    = 5
	InitialBackoff = time.Minute
	MaxBackoff     = 24 * time.Hour
	RequestTimeout = 30 * time.Second
	MaxResponseLen = 10 << 10 // bytes of response body kept on the record
	UserAgent      = "ypng-signals/1.0"
)

// outcome is the result of one POST to the signal endpoint.
type outcome struct {
	status    int
	body      string
	err       error
	retryable bool
}

func (o outcome) ok() bool { return o.err == nil }

func (o outcome) message() string {
	if o.err == nil {
		return ""
	}
	return o.err.Error()
}

// processDelivery sends one pending delivery and records what happened.
// Deliveries no longer pending are skipped, so a signal picked up by both
// the queue and the retry sweep is sent once.
func (d *Dispatcher) processDelivery(ctx context.Context, q *QueuedDelivery) {
	rec, err := d.queries.GetSignalDelivery(ctx, q.DeliveryID)
	if err != nil {
		d.logger.Error("failed to load signal delivery", "error", err, "delivery_id", q.DeliveryID)
		return
	}
	if rec.Status != store.DeliveryPending {
		d.logger.Debug("signal delivery already settled", "delivery_id", q.DeliveryID, "status", rec.Status)
		return
	}

	res := d.send(ctx, q)
	attempts := rec.Attempts + 1
	log := d.logger.With("delivery_id", q.DeliveryID, "signal", q.Signal)

	switch {
	case res.ok():
		err = d.markDelivered(ctx, q.DeliveryID, res)
		if err == nil {
			log.Info("signal delivered", "status_code", res.status)
		}
	case !res.retryable || attempts >= MaxAttempts:
		err = d.queries.UpdateDeliveryDead(ctx, store.UpdateDeliveryDeadParams{
			ErrorMessage: nullString(res.message()),
			UpdatedAt:    d.now(),
			ID:           q.DeliveryID,
		})
		if err == nil {
			log.Warn("signal delivery abandoned", "category", "signal", "attempts", attempts, "reason", res.message())
		}
	default:
		wait := backoff(attempts)
		next := d.now().Add(wait)
		err = d.queries.UpdateDeliveryRetry(ctx, store.UpdateDeliveryRetryParams{
			ResponseCode: sql.NullInt64{Int64: int64(res.status), Valid: res.status > 0},
			ResponseBody: nullString(res.body),
			ErrorMessage: nullString(res.message()),
			NextRetryAt:  sql.NullTime{Time: next, Valid: true},
			UpdatedAt:    d.now(),
			ID:           q.DeliveryID,
		})
		if err == nil {
			log.Info("signal delivery will be retried", "attempt", attempts, "next_retry_at", next.Format(time.RFC3339), "backoff", wait.String())
		}
	}
	if err != nil {
		log.Error("failed to record signal delivery", "error", err)
	}
}

func (d *Dispatcher) markDelivered(ctx context.Context, id int64, res outcome) error {
	now := d.now()
	return d.queries.UpdateDeliverySuccess(ctx, store.UpdateDeliverySuccessParams{
		ResponseCode: sql.NullInt64{Int64: int64(res.status), Valid: true},
		ResponseBody: sql.NullString{String: res.body, Valid: true},
		DeliveredAt:  sql.NullTime{Time: now, Valid: true},
		UpdatedAt:    now,
		ID:           id,
	})
}

// send POSTs the signed payload. Network errors, 408, 429 and 5xx are
// retryable; any other non-2xx status is final.
func (d *Dispatcher) send(ctx context.Context, q *QueuedDelivery) outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(q.Payload))
	if err != nil {
		return outcome{err: fmt.Errorf("building request: %w", err)}
	}
	h := req.Header
	h.Set("Content-Type", "application/json")
	h.Set("User-Agent", UserAgent)
	h.Set("X-Signal-Signature", GenerateSignature(q.Payload, d.secret))
	h.Set("X-Signal-Type", q.Signal)
	h.Set("X-Signal-Delivery-ID", strconv.FormatInt(q.DeliveryID, 10))
	h.Set("Idempotency-Key", q.Key)

	resp, err := d.client.Do(req)
	if err != nil {
		return outcome{err: fmt.Errorf("posting signal: %w", err), retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))
	res := outcome{status: resp.StatusCode, body: string(body)}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return res
	}
	res.err = fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	res.retryable = resp.StatusCode >= 500 ||
		resp.StatusCode == http.StatusRequestTimeout ||
		resp.StatusCode == http.StatusTooManyRequests
	return res
}

// backoff doubles from InitialBackoff per attempt, capped at MaxBackoff.
func backoff(attempt int64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	wait := InitialBackoff
	for i := int64(1); i < attempt; i++ {
		wait *= 2
		if wait >= MaxBackoff {
			return MaxBackoff
		}
	}
	return wait
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
