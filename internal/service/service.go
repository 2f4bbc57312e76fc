// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service runs every create and update through the same pipeline:
// access control, derivation, validation, persistence and hooks. Failures
// before persistence never mutate state; hook failures are logged and never
// undo a committed record.
package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/olegiv/ypng-go/internal/access"
	"github.com/olegiv/ypng-go/internal/cache"
	"github.com/olegiv/ypng-go/internal/derive"
	"github.com/olegiv/ypng-go/internal/imaging"
	"github.com/olegiv/ypng-go/internal/model"
	"github.com/olegiv/ypng-go/internal/store"
)

// Notifier sends member-facing notifications.
type Notifier interface {
	SendRegistrationConfirmation(ctx context.Context, reg model.EventRegistration) error
	SendWelcomeEmail(ctx context.Context, u model.User) error
	CreateBillingCustomer(ctx context.Context, u model.User) error
	SendRenewalReminder(ctx context.Context, u model.User, daysLeft int) error
}

// PlatformSyncer publishes events to external listing platforms.
type PlatformSyncer interface {
	Publish(ctx context.Context, p model.Platform, eventID int64) error
}

// Deps holds the collaborators shared by all services. Only DB is required.
type Deps struct {
	DB        *sql.DB
	Logger    *slog.Logger
	Derive    *derive.Engine
	Notifier  Notifier
	Syncer    PlatformSyncer
	Cache     cache.Cacher
	CacheTTL  time.Duration
	Processor *imaging.Processor
	Now       func() time.Time
}

// Services bundles one service per collection.
type Services struct {
	Events          *EventService
	Registrations   *RegistrationService
	Users           *UserService
	MembershipTypes *MembershipTypeService
	Media           *MediaService
	Activity        *ActivityService
}

// New wires every service onto the same dependencies.
func New(d Deps) *Services {
	b := newBase(d)
	return &Services{
		Events:          &EventService{base: b},
		Registrations:   &RegistrationService{base: b},
		Users:           &UserService{base: b},
		MembershipTypes: &MembershipTypeService{base: b},
		Media:           &MediaService{base: b, processor: d.Processor},
		Activity:        &ActivityService{base: b},
	}
}

type base struct {
	db       *sql.DB
	queries  *store.Queries
	logger   *slog.Logger
	derive   *derive.Engine
	notifier Notifier
	syncer   PlatformSyncer
	cache    cache.Cacher
	cacheTTL time.Duration
	now      func() time.Time
}

func newBase(d Deps) *base {
	b := &base{
		db:       d.DB,
		queries:  store.New(d.DB),
		logger:   d.Logger,
		derive:   d.Derive,
		notifier: d.Notifier,
		syncer:   d.Syncer,
		cache:    d.Cache,
		cacheTTL: d.CacheTTL,
		now:      d.Now,
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.derive == nil {
		b.derive = derive.New()
		b.derive.Now = b.now
	}
	if b.notifier == nil {
		b.notifier = nopNotifier{}
	}
	if b.syncer == nil {
		b.syncer = nopSyncer{}
	}
	if b.cacheTTL <= 0 {
		b.cacheTTL = 5 * time.Minute
	}
	return b
}

// authorize evaluates record-level access and turns a denial into an error.
func authorize(collection string, op model.Operation, actor model.Actor) (access.Decision, error) {
	d := access.Authorize(collection, op, actor)
	if d.Denied() {
		return d, denied(collection, op, actor)
	}
	return d, nil
}

// filterOf returns the row predicate of a filtered decision, or nil.
func filterOf(d access.Decision) *access.Predicate {
	if !d.Filtered() {
		return nil
	}
	f := d.Filter
	return &f
}

// mergePatch applies a JSON patch onto a deep copy of prev. Fields absent
// from the patch keep their previous values.
func mergePatch[T any](collection string, prev T, patch []byte) (T, error) {
	var next T
	raw, err := json.Marshal(prev)
	if err != nil {
		return next, err
	}
	if err := json.Unmarshal(raw, &next); err != nil {
		return next, err
	}
	if len(bytes.TrimSpace(patch)) == 0 {
		return next, nil
	}
	if err := json.Unmarshal(patch, &next); err != nil {
		return next, invalidField(collection, "body", "Invalid JSON: "+err.Error())
	}
	return next, nil
}

// saveWithRetry runs save once more after regenerate when the first attempt
// collides on field. An empty field disables the retry.
func saveWithRetry[T any](collection, field string, save func() (T, error), regenerate func()) (T, error) {
	rec, err := save()
	var dup *store.DuplicateError
	if err != nil && field != "" && errors.As(err, &dup) && dup.Field == field {
		regenerate()
		rec, err = save()
	}
	if err != nil {
		var zero T
		return zero, saveErr(collection, err)
	}
	return rec, nil
}

// hook runs a post-commit side effect. Failures are logged only.
func (b *base) hook(ctx context.Context, name string, fn func(ctx context.Context) error) {
	if err := fn(ctx); err != nil {
		b.logger.Warn("hook failed", "hook", name, "error", err)
	}
}

func (b *base) invalidate(ctx context.Context, prefix string) {
	cache.Invalidate(ctx, b.cache, prefix)
}

// cachedList serves a public listing through the cache when one is configured.
func cachedList[T any](ctx context.Context, b *base, key string, load func() ([]T, error)) ([]T, error) {
	if b.cache == nil {
		return load()
	}
	return cache.NewListing[T](b.cache, b.cacheTTL).GetOrLoad(ctx, key, load)
}

type nopNotifier struct{}

func (nopNotifier) SendRegistrationConfirmation(context.Context, model.EventRegistration) error {
	return nil
}

func (nopNotifier) SendWelcomeEmail(context.Context, model.User) error { return nil }

func (nopNotifier) CreateBillingCustomer(context.Context, model.User) error { return nil }

func (nopNotifier) SendRenewalReminder(context.Context, model.User, int) error { return nil }

type nopSyncer struct{}

func (nopSyncer) Publish(context.Context, model.Platform, int64) error { return nil }
