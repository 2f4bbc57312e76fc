// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/ypng-go/internal/access"
	"github.com/olegiv/ypng-go/internal/cache"
	"github.com/olegiv/ypng-go/internal/model"
	"github.com/olegiv/ypng-go/internal/schema"
	"github.com/olegiv/ypng-go/internal/store"
	"github.com/olegiv/ypng-go/internal/validation"
	"github.com/olegiv/ypng-go/internal/workflow"
)

const collEvents = model.CollectionEvents

// EventService manages events and their publication to external platforms.
type EventService struct {
	*base
}

// Create stores a new event. A slug derived from the title that is already
// taken is retried once with a random suffix.
func (s *EventService) Create(ctx context.Context, actor model.Actor, ev model.Event) (model.Event, error) {
	if _, err := authorize(collEvents, model.OpCreate, actor); err != nil {
		return model.Event{}, err
	}

	slugDerived := ev.Slug == ""
	ev = access.RestrictEventCreate(ev)
	ev.ID = 0
	ev = s.derive.Event(ev, model.OpCreate)

	now := s.now()
	if errs := validation.Event(ev, nil, now); len(errs) > 0 {
		return model.Event{}, invalid(collEvents, errs)
	}
	ev.CreatedAt, ev.UpdatedAt = now, now

	retryField := ""
	if slugDerived {
		retryField = "slug"
	}
	slug := ev.Slug
	saved, err := saveWithRetry(collEvents, retryField, func() (model.Event, error) {
		return s.queries.CreateEvent(ctx, ev)
	}, func() {
		ev.Slug = s.derive.SlugVariant(slug)
	})
	if err != nil {
		return model.Event{}, err
	}

	s.invalidate(ctx, cache.PrefixEvents)
	return saved, nil
}

// Update applies a JSON patch to an event. Written-back platform IDs cannot
// be changed through an update.
func (s *EventService) Update(ctx context.Context, actor model.Actor, id int64, patch []byte) (model.Event, error) {
	if _, err := authorize(collEvents, model.OpUpdate, actor); err != nil {
		return model.Event{}, err
	}

	prev, err := s.queries.GetEvent(ctx, id)
	if err != nil {
		return model.Event{}, lookupErr(collEvents, id, err)
	}

	next, err := mergePatch(collEvents, prev, patch)
	if err != nil {
		return model.Event{}, err
	}
	next = access.KeepEventSystemFields(prev, next)
	next = s.derive.Event(next, model.OpUpdate)

	now := s.now()
	if errs := validation.Event(next, &prev, now); len(errs) > 0 {
		return model.Event{}, invalid(collEvents, errs)
	}
	next.UpdatedAt = now

	saved, err := s.queries.UpdateEvent(ctx, next)
	if err != nil {
		return model.Event{}, saveErr(collEvents, err)
	}

	s.afterSave(ctx, saved)
	return saved, nil
}

// afterSave publishes an updated event to platforms still awaiting an ID and
// drops cached listings. Creation never syncs, even when the event is
// created already published.
func (s *EventService) afterSave(ctx context.Context, ev model.Event) {
	for _, p := range workflow.PlatformsToSync(ev) {
		s.hook(ctx, "platform sync "+string(p), func(ctx context.Context) error {
			return s.syncer.Publish(ctx, p, ev.ID)
		})
	}
	s.invalidate(ctx, cache.PrefixEvents)
}

// Get returns an event by ID.
func (s *EventService) Get(ctx context.Context, actor model.Actor, id int64) (model.Event, error) {
	if _, err := authorize(collEvents, model.OpRead, actor); err != nil {
		return model.Event{}, err
	}
	ev, err := s.queries.GetEvent(ctx, id)
	if err != nil {
		return model.Event{}, lookupErr(collEvents, id, err)
	}
	return ev, nil
}

// GetBySlug returns an event by slug.
func (s *EventService) GetBySlug(ctx context.Context, actor model.Actor, slug string) (model.Event, error) {
	if _, err := authorize(collEvents, model.OpRead, actor); err != nil {
		return model.Event{}, err
	}
	ev, err := s.queries.GetEventBySlug(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, &NotFoundError{Collection: collEvents, Key: slug}
	}
	if err != nil {
		return model.Event{}, fmt.Errorf("loading event %q: %w", slug, err)
	}
	return ev, nil
}

// List returns a page of events, most recent date first.
func (s *EventService) List(ctx context.Context, actor model.Actor, limit, offset int64) ([]model.Event, error) {
	d, err := authorize(collEvents, model.OpRead, actor)
	if err != nil {
		return nil, err
	}
	return s.queries.ListEvents(ctx, store.ListParams{Filter: filterOf(d), Limit: limit, Offset: offset})
}

// Upcoming returns published events dated today or later in the default
// event timezone, soonest first.
func (s *EventService) Upcoming(ctx context.Context, limit int) ([]model.Event, error) {
	today := localDay(s.now(), schema.DefaultString(collEvents, "timezone"))
	key := cache.UpcomingEventsKey(today.Format("2006-01-02"), limit)
	return cachedList(ctx, s.base, key, func() ([]model.Event, error) {
		return s.queries.ListUpcomingEvents(ctx, today, int64(limit))
	})
}

// Delete removes an event and, through the foreign key, its registrations.
func (s *EventService) Delete(ctx context.Context, actor model.Actor, id int64) error {
	if _, err := authorize(collEvents, model.OpDelete, actor); err != nil {
		return err
	}
	if _, err := s.queries.GetEvent(ctx, id); err != nil {
		return lookupErr(collEvents, id, err)
	}
	if err := s.queries.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("deleting event %d: %w", id, err)
	}
	s.invalidate(ctx, cache.PrefixEvents)
	return nil
}

// RecordExternalID writes back the ID a platform assigned to a published
// event. IDs are read-only once set.
func (s *EventService) RecordExternalID(ctx context.Context, actor model.Actor, id int64, p model.Platform, externalID string) (model.Event, error) {
	if !actor.IsPrivileged() {
		return model.Event{}, denied(collEvents, model.OpUpdate, actor)
	}
	if !model.IsValidPlatform(p) {
		return model.Event{}, invalidField(collEvents, "platforms", fmt.Sprintf("Unknown platform %q", p))
	}
	if externalID == "" {
		return model.Event{}, invalidField(collEvents, externalIDField(p), "External ID is required")
	}

	ev, err := s.queries.GetEvent(ctx, id)
	if err != nil {
		return model.Event{}, lookupErr(collEvents, id, err)
	}
	if !workflow.CanRecordExternalID(ev, p) {
		return model.Event{}, denied(collEvents, model.OpUpdate, actor, externalIDField(p))
	}

	ev.Platforms.SetExternalID(p, externalID)
	ev.UpdatedAt = s.now()
	saved, err := s.queries.UpdateEvent(ctx, ev)
	if err != nil {
		return model.Event{}, saveErr(collEvents, err)
	}
	s.invalidate(ctx, cache.PrefixEvents)
	return saved, nil
}

// CompletePastEvents marks published events whose date has passed in their
// own timezone as completed and returns how many were changed.
func (s *EventService) CompletePastEvents(ctx context.Context) (int, error) {
	now := s.now()
	// US timezones trail UTC, so the UTC date bounds every local date.
	candidates, err := s.queries.ListPastPublishedEvents(ctx, now.UTC().AddDate(0, 0, 1))
	if err != nil {
		return 0, fmt.Errorf("listing past events: %w", err)
	}

	completed := 0
	for _, ev := range candidates {
		if !ev.EventDate.Before(localDay(now, ev.Timezone)) {
			continue
		}
		if err := s.queries.UpdateEventStatus(ctx, ev.ID, model.EventStatusCompleted, now); err != nil {
			return completed, fmt.Errorf("completing event %d: %w", ev.ID, err)
		}
		completed++
	}
	if completed > 0 {
		s.invalidate(ctx, cache.PrefixEvents)
	}
	return completed, nil
}

func externalIDField(p model.Platform) string {
	return "platforms." + string(p) + "_id"
}

// localDay returns midnight UTC of the calendar date now falls on in tz.
// Event dates are stored as midnight UTC of their calendar date.
func localDay(now time.Time, tz string) time.Time {
	loc, err := time.LoadLocation(tz)
	if err != nil || tz == "" {
		loc = time.UTC
	}
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
