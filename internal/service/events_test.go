// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ypng-go/internal/cache"
	"github.com/olegiv/ypng-go/internal/model"
)

func TestEventCreateDerivesSlugAndDefaults(t *testing.T) {
	f := newFixture(t)

	ev, err := f.svc.Events.Create(f.ctx, staff, f.newEvent("Fall Mixer"))
	require.NoError(t, err)

	assert.NotZero(t, ev.ID)
	assert.Equal(t, "fall-mixer", ev.Slug)
	assert.Equal(t, model.EventStatusDraft, ev.Status)
	assert.Equal(t, model.TimezonePacific, ev.Timezone)
	assert.True(t, ev.Registration.IsEnabled())
	assert.Contains(t, ev.DescriptionHTML, "<strong>conversation</strong>")
	assert.Empty(t, f.rec.published, "drafts are never synced")
}

func TestEventCreateAnonymousDenied(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Events.Create(f.ctx, model.Anonymous(), f.newEvent("Fall Mixer"))
	aerr := requireDenied(t, err)
	assert.True(t, aerr.Anonymous)
}

func TestEventCreateValidation(t *testing.T) {
	f := newFixture(t)

	ev := f.newEvent("")
	ev.EventDate = f.day(-1)
	ev.StartTime = "25:00"
	_, err := f.svc.Events.Create(f.ctx, admin, ev)

	verr := requireValidation(t, err, "title")
	assert.True(t, verr.Errors.Has("event_date"))
	assert.True(t, verr.Errors.Has("start_time"))
}

func TestEventDerivedSlugCollisionIsRetried(t *testing.T) {
	f := newFixture(t)
	f.eng.IntN = func(int) int { return 42 }

	first, err := f.svc.Events.Create(f.ctx, admin, f.newEvent("Fall Mixer"))
	require.NoError(t, err)
	second, err := f.svc.Events.Create(f.ctx, admin, f.newEvent("Fall Mixer"))
	require.NoError(t, err)

	assert.Equal(t, "fall-mixer", first.Slug)
	assert.Equal(t, "fall-mixer-0042", second.Slug)
}

func TestEventExplicitSlugConflict(t *testing.T) {
	f := newFixture(t)

	ev := f.newEvent("Fall Mixer")
	ev.Slug = "mixer"
	_, err := f.svc.Events.Create(f.ctx, admin, ev)
	require.NoError(t, err)

	_, err = f.svc.Events.Create(f.ctx, admin, ev)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "slug", conflict.Field)
}

func TestEventSlugKeptOnTitleChange(t *testing.T) {
	f := newFixture(t)

	ev, err := f.svc.Events.Create(f.ctx, admin, f.newEvent("Fall Mixer"))
	require.NoError(t, err)

	updated, err := f.svc.Events.Update(f.ctx, admin, ev.ID, []byte(`{"title":"Winter Mixer"}`))
	require.NoError(t, err)
	assert.Equal(t, "Winter Mixer", updated.Title)
	assert.Equal(t, "fall-mixer", updated.Slug)
}

func TestEventUpdateKeepsPastDate(t *testing.T) {
	f := newFixture(t)

	ev, err := f.svc.Events.Create(f.ctx, admin, f.newEvent("Fall Mixer"))
	require.NoError(t, err)
	f.clock.Advance(30 * 24 * time.Hour)

	_, err = f.svc.Events.Update(f.ctx, admin, ev.ID, []byte(`{"summary":"Recap"}`))
	require.NoError(t, err, "an unchanged past date must not fail validation")
}

func TestEventUpdateNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Events.Update(f.ctx, admin, 404, []byte(`{}`))
	requireNotFound(t, err)
}

func TestEventPublicationSyncsEachPlatformOnce(t *testing.T) {
	f := newFixture(t)

	ev := f.newEvent("Fall Mixer")
	ev.Platforms = model.PlatformSettings{Meetup: true, Eventbrite: true}
	ev, err := f.svc.Events.Create(f.ctx, admin, ev)
	require.NoError(t, err)
	assert.Empty(t, f.rec.published)

	_, err = f.svc.Events.Update(f.ctx, admin, ev.ID, []byte(`{"status":"published"}`))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"meetup:1", "eventbrite:1"}, f.rec.published)

	_, err = f.svc.Events.RecordExternalID(f.ctx, admin, ev.ID, model.PlatformMeetup, "mu-77")
	require.NoError(t, err)
	f.rec.published = nil

	updated, err := f.svc.Events.Update(f.ctx, admin, ev.ID, []byte(`{"summary":"Updated","platforms":{"meetup":true,"eventbrite":true,"meetup_id":""}}`))
	require.NoError(t, err)
	assert.Equal(t, "mu-77", updated.Platforms.MeetupID, "external IDs survive updates")
	assert.Equal(t, []string{"eventbrite:1"}, f.rec.published)
}

func TestEventCreatedPublishedIsNotSynced(t *testing.T) {
	f := newFixture(t)

	ev := f.newEvent("Fall Mixer")
	ev.Status = model.EventStatusPublished
	ev.Platforms = model.PlatformSettings{WildApricot: true, Meetup: true}
	ev, err := f.svc.Events.Create(f.ctx, admin, ev)
	require.NoError(t, err)
	assert.Empty(t, f.rec.published, "sync runs on update only")

	_, err = f.svc.Events.Update(f.ctx, admin, ev.ID, []byte(`{"summary":"Now with snacks"}`))
	require.NoError(t, err)
	assert.Len(t, f.rec.published, 2)
}

func TestRecordExternalIDIsReadOnlyOnceSet(t *testing.T) {
	f := newFixture(t)
	ev := f.publishedEvent(t, "Fall Mixer", 0)

	_, err := f.svc.Events.RecordExternalID(f.ctx, admin, ev.ID, model.PlatformWildApricot, "wa-1")
	require.NoError(t, err)

	_, err = f.svc.Events.RecordExternalID(f.ctx, admin, ev.ID, model.PlatformWildApricot, "wa-2")
	aerr := requireDenied(t, err)
	assert.Equal(t, []string{"platforms.wild_apricot_id"}, aerr.Fields)

	_, err = f.svc.Events.RecordExternalID(f.ctx, admin, ev.ID, model.Platform("facebook"), "fb-1")
	requireValidation(t, err, "platforms")

	member := f.signUp(t, "pat@example.com")
	_, err = f.svc.Events.RecordExternalID(f.ctx, member, ev.ID, model.PlatformMeetup, "mu-1")
	requireDenied(t, err)
}

func TestEventGetBySlug(t *testing.T) {
	f := newFixture(t)
	ev := f.publishedEvent(t, "Fall Mixer", 0)

	got, err := f.svc.Events.GetBySlug(f.ctx, model.Anonymous(), "fall-mixer")
	require.NoError(t, err)
	assert.Equal(t, ev.ID, got.ID)

	_, err = f.svc.Events.GetBySlug(f.ctx, model.Anonymous(), "missing")
	requireNotFound(t, err)
}

func TestEventDeleteIsAdminOnly(t *testing.T) {
	f := newFixture(t)
	ev := f.publishedEvent(t, "Fall Mixer", 0)

	requireDenied(t, f.svc.Events.Delete(f.ctx, staff, ev.ID))
	require.NoError(t, f.svc.Events.Delete(f.ctx, admin, ev.ID))

	_, err := f.svc.Events.Get(f.ctx, admin, ev.ID)
	requireNotFound(t, err)
}

func TestCompletePastEvents(t *testing.T) {
	f := newFixture(t)
	past := f.publishedEvent(t, "Fall Mixer", 0)
	draft, err := f.svc.Events.Create(f.ctx, admin, f.newEvent("Draft Night"))
	require.NoError(t, err)

	n, err := f.svc.Events.CompletePastEvents(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clock.Advance(8 * 24 * time.Hour)
	n, err = f.svc.Events.CompletePastEvents(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.svc.Events.Get(f.ctx, admin, past.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusCompleted, got.Status)
	got, err = f.svc.Events.Get(f.ctx, admin, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusDraft, got.Status)
}

func TestUpcomingIsCachedAndInvalidated(t *testing.T) {
	c := cache.NewMemoryCache(cache.MemoryCacheOptions{})
	t.Cleanup(func() { _ = c.Close() })
	f := newFixture(t, withCache(c))

	f.publishedEvent(t, "Fall Mixer", 0)
	events, err := f.svc.Events.Upcoming(f.ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	key := cache.UpcomingEventsKey(f.day(0).Format("2006-01-02"), 10)
	_, err = c.Get(f.ctx, key)
	require.NoError(t, err, "listing should be cached")

	f.publishedEvent(t, "Winter Mixer", 0)
	_, err = c.Get(f.ctx, key)
	require.ErrorIs(t, err, cache.ErrCacheMiss, "publishing should drop the listing")
	events, err = f.svc.Events.Upcoming(f.ctx, 10)
	require.NoError(t, err)
	slugs := make([]string, 0, len(events))
	for _, ev := range events {
		slugs = append(slugs, ev.Slug)
	}
	assert.ElementsMatch(t, []string{"fall-mixer", "winter-mixer"}, slugs)
}
