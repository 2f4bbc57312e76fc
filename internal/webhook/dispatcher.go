// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/olegiv/ypng-go/internal/store"
	"github.com/olegiv/ypng-go/internal/util"
)

// Dispatcher persists signals and delivers them to the configured endpoint.
type Dispatcher struct {
	queries  *store.Queries
	logger   *slog.Logger
	queue    chan *QueuedDelivery
	workers  int
	endpoint string
	secret   string
	client   *http.Client
	now      func() time.Time
	wg       sync.WaitGroup
	done     chan struct{}
	mu       sync.RWMutex
	running  bool
}

// QueuedDelivery represents a delivery queued for processing.
type QueuedDelivery struct {
	DeliveryID int64
	Signal     string
	Key        string
	Payload    []byte
}

// Config holds dispatcher configuration.
type Config struct {
	Workers   int    // Number of concurrent delivery workers
	QueueSize int    // Buffered deliveries before falling back to the retry sweep
	Endpoint  string // Signal endpoint URL; empty logs signals only
	Secret    string // HMAC key for the signature header
	// AllowPrivateEndpoints disables the SSRF guard on outbound connections.
	AllowPrivateEndpoints bool
}

// DefaultConfig returns default dispatcher configuration.
func DefaultConfig() Config {
	return Config{
		Workers:   3,
		QueueSize: 100,
	}
}

// NewDispatcher creates a new signal dispatcher.
func NewDispatcher(db *sql.DB, logger *slog.Logger, cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if logger == nil {
		logger = slog.Default()
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if !cfg.AllowPrivateEndpoints {
		transport.DialContext = util.SSRFSafeDialContext(&net.Dialer{Timeout: 10 * time.Second})
	}

	return &Dispatcher{
		queries:  store.New(db),
		logger:   logger,
		queue:    make(chan *QueuedDelivery, cfg.QueueSize),
		workers:  cfg.Workers,
		endpoint: cfg.Endpoint,
		secret:   cfg.Secret,
		client:   &http.Client{Timeout: RequestTimeout, Transport: transport},
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Enabled reports whether an endpoint is configured.
func (d *Dispatcher) Enabled() bool {
	return d.endpoint != ""
}

// Start starts the dispatcher workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	d.logger.Info("starting signal dispatcher", "workers", d.workers, "endpoint_configured", d.Enabled())

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
}

// Stop stops the dispatcher and waits for workers to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	d.logger.Info("stopping signal dispatcher")
	close(d.done)
	d.wg.Wait()
	d.logger.Info("signal dispatcher stopped")
}

func (d *Dispatcher) isRunning() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

// worker processes queued deliveries.
func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	d.logger.Debug("signal worker started", "worker_id", id)

	for {
		select {
		case <-d.done:
			d.logger.Debug("signal worker stopping", "worker_id", id)
			return
		case <-ctx.Done():
			d.logger.Debug("signal worker context cancelled", "worker_id", id)
			return
		case delivery := <-d.queue:
			d.processDelivery(ctx, delivery)
		}
	}
}

// Dispatch persists sig and queues it for delivery. Without an endpoint the
// signal is recorded as logged and never sent. The returned ID identifies
// the delivery row.
func (d *Dispatcher) Dispatch(ctx context.Context, sig *Signal) (int64, error) {
	payload, err := json.Marshal(sig)
	if err != nil {
		return 0, fmt.Errorf("marshaling signal %s: %w", sig.Type, err)
	}

	status := store.DeliveryPending
	if !d.Enabled() {
		status = store.DeliveryLogged
	}

	now := d.now()
	delivery, err := d.queries.CreateSignalDelivery(ctx, store.CreateSignalDeliveryParams{
		IdempotencyKey: sig.Key,
		Signal:         sig.Type,
		Payload:        string(payload),
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return 0, fmt.Errorf("recording signal %s: %w", sig.Type, err)
	}

	if !d.Enabled() {
		d.logger.Info("signal recorded without endpoint",
			"delivery_id", delivery.ID,
			"signal", sig.Type,
			"payload", string(payload))
		return delivery.ID, nil
	}

	d.enqueue(&QueuedDelivery{
		DeliveryID: delivery.ID,
		Signal:     sig.Type,
		Key:        sig.Key,
		Payload:    payload,
	})
	return delivery.ID, nil
}

// Emit is a convenience method to dispatch a signal with the given type and data.
func (d *Dispatcher) Emit(ctx context.Context, signalType string, data any) error {
	_, err := d.Dispatch(ctx, NewSignal(signalType, data))
	return err
}

func (d *Dispatcher) enqueue(qd *QueuedDelivery) bool {
	if !d.isRunning() {
		d.logger.Debug("dispatcher not running, delivery left for retry sweep", "delivery_id", qd.DeliveryID)
		return false
	}
	select {
	case d.queue <- qd:
		d.logger.Debug("delivery queued", "delivery_id", qd.DeliveryID)
		return true
	default:
		d.logger.Warn("delivery queue full, delivery will be retried later", "delivery_id", qd.DeliveryID)
		return false
	}
}

// RetryPending re-queues pending deliveries whose retry time has come and
// returns how many were queued.
func (d *Dispatcher) RetryPending(ctx context.Context) (int, error) {
	if !d.Enabled() {
		return 0, nil
	}
	pending, err := d.queries.ListPendingDeliveries(ctx, int64(cap(d.queue)))
	if err != nil {
		return 0, fmt.Errorf("listing pending deliveries: %w", err)
	}

	now := d.now()
	queued := 0
	for _, p := range pending {
		if p.NextRetryAt.Valid && p.NextRetryAt.Time.After(now) {
			continue
		}
		if d.enqueue(&QueuedDelivery{
			DeliveryID: p.ID,
			Signal:     p.Signal,
			Key:        p.IdempotencyKey,
			Payload:    []byte(p.Payload),
		}) {
			queued++
		}
	}
	return queued, nil
}

// DeleteOld prunes finished deliveries older than olderThan and returns how
// many were removed.
func (d *Dispatcher) DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	return d.queries.DeleteDeliveriesBefore(ctx, d.now().Add(-olderThan))
}

// GenerateSignature generates an HMAC-SHA256 signature for the payload.
func GenerateSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature verifies an HMAC-SHA256 signature.
func VerifySignature(payload []byte, signature, secret string) bool {
	expectedSig := GenerateSignature(payload, secret)
	return hmac.Equal([]byte(signature), []byte(expectedSig))
}
