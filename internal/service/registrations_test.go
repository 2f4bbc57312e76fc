// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ypng-go/internal/model"
)

func TestRegistrationCreateDefaults(t *testing.T) {
	f := newFixture(t)
	ev := f.publishedEvent(t, "Fall Mixer", 0)
	member := f.signUp(t, "pat@example.com")

	reg, err := f.svc.Registrations.Create(f.ctx, member, model.EventRegistration{EventID: ev.ID})
	require.NoError(t, err)

	assert.Equal(t, member.ID, reg.UserID)
	assert.Regexp(t, `^REG-20251010-\d{4}$`, reg.RegistrationNumber)
	assert.Equal(t, model.RegistrationPending, reg.Status)
	assert.Equal(t, model.RegistrationTypeMember, reg.RegistrationType)
	assert.Equal(t, model.PaymentFree, reg.Payment.Method)
	assert.False(t, reg.EmailConfirmationSent)
	assert.Empty(t, f.rec.confirmations)
}

func TestRegistrationMemberCannotSetStatus(t *testing.T) {
	f := newFixture(t)
	ev := f.publishedEvent(t, "Fall Mixer", 0)
	member := f.signUp(t, "pat@example.com")

	reg, err := f.svc.Registrations.Create(f.ctx, member, model.EventRegistration{
		EventID: ev.ID,
		Status:  model.RegistrationConfirmed,
		Notes:   "vip",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationPending, reg.Status)
	assert.Empty(t, reg.Notes)
}

func TestRegistrationMemberRegistersOnlyThemselves(t *testing.T) {
	f := newFixture(t)
	ev := f.publishedEvent(t, "Fall Mixer", 0)
	pat := f.signUp(t, "pat@example.com")
	sam := f.signUp(t, "sam@example.com")

	_, err := f.svc.Registrations.Create(f.ctx, pat, model.EventRegistration{EventID: ev.ID, UserID: sam.ID})
	aerr := requireDenied(t, err)
	assert.Equal(t, []string{"user"}, aerr.Fields)

	_, err = f.svc.Registrations.Create(f.ctx, staff, model.EventRegistration{EventID: ev.ID, UserID: sam.ID})
	require.NoError(t, err)
}

func TestRegistrationAnonymousDenied(t *testing.T) {
	f := newFixture(t)
	ev := f.publishedEvent(t, "Fall Mixer", 0)

	_, err := f.svc.Registrations.Create(f.ctx, model.Anonymous(), model.EventRegistration{EventID: ev.ID, UserID: 1})
	requireDenied(t, err)
}

func TestRegistrationReferences(t *testing.T) {
	f := newFixture(t)
	member := f.signUp(t, "pat@example.com")

	_, err := f.svc.Registrations.Create(f.ctx, member, model.EventRegistration{EventID: 404})
	requireValidation(t, err, "event")

	ev := f.publishedEvent(t, "Fall Mixer", 0)
	_, err = f.svc.Registrations.Create(f.ctx, staff, model.EventRegistration{EventID: ev.ID, UserID: 404})
	requireValidation(t, err, "user")

	_, err = f.svc.Registrations.Create(f.ctx, staff, model.EventRegistration{})
	verr := requireValidation(t, err, "event")
	assert.True(t, verr.Errors.Has("user"))
}

func TestRegistrationClosedEvents(t *testing.T) {
	f := newFixture(t)
	member := f.signUp(t, "pat@example.com")

	draft, err := f.svc.Events.Create(f.ctx, admin, f.newEvent("Draft Night"))
	require.NoError(t, err)
	_, err = f.svc.Registrations.Create(f.ctx, member, model.EventRegistration{EventID: draft.ID})
	requireValidation(t, err, "event")

	// Staff may register attendees before publication.
	_, err = f.svc.Registrations.Create(f.ctx, staff, model.EventRegistration{EventID: draft.ID, UserID: member.ID})
	require.NoError(t, err)

	closed := f.newEvent("Closed Night")
	closed.Status = model.EventStatusPublished
	closed.Registration.Enabled = model.Bool(false)
	closed, err = f.svc.Events.Create(f.ctx, admin, closed)
	require.NoError(t, err)
	_, err = f.svc.Registrations.Create(f.ctx, staff, model.EventRegistration{EventID: closed.ID, UserID: member.ID})
	requireValidation(t, err, "event")

	late := f.newEvent("Late Night")
	late.Status = model.EventStatusPublished
	deadline := f.day(-1)
	late.Registration.Deadline = &deadline
	late, err = f.svc.Events.Create(f.ctx, admin, late)
	require.NoError(t, err)
	_, err = f.svc.Registrations.Create(f.ctx, member, model.EventRegistration{EventID: late.ID})
	requireValidation(t, err, "event")
}

func TestRegistrationOverCapacityIsWaitlisted(t *testing.T) {
	f := newFixture(t)
	ev := f.publishedEvent(t, "Fall Mixer", 1)
	pat := f.signUp(t, "pat@example.com")
	sam := f.signUp(t, "sam@example.com")

	first, err := f.svc.Registrations.Create(f.ctx, pat, model.EventRegistration{EventID: ev.ID})
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationPending, first.Status)

	second, err := f.svc.Registrations.Create(f.ctx, sam, model.EventRegistration{EventID: ev.ID})
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationWaitlisted, second.Status)

	// Promotion is rejected while the seat is taken.
	_, err = f.svc.Registrations.Transition(f.ctx, staff, second.ID, model.RegistrationConfirmed)
	requireValidation(t, err, "status")

	_, err = f.svc.Registrations.Transition(f.ctx, staff, first.ID, model.RegistrationCancelled)
	require.NoError(t, err)
	promoted, err := f.svc.Registrations.Transition(f.ctx, staff, second.ID, model.RegistrationConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationConfirmed, promoted.Status)
}

func TestRegistrationConfirmationSentOnce(t *testing.T) {
	f := newFixture(t)
	ev := f.publishedEvent(t, "Fall Mixer", 0)
	member := f.signUp(t, "pat@example.com")

	reg, err := f.svc.Registrations.Create(f.ctx, member, model.EventRegistration{EventID: ev.ID})
	require.NoError(t, err)

	confirmed, err := f.svc.Registrations.Transition(f.ctx, staff, reg.ID, model.RegistrationConfirmed)
	require.NoError(t, err)
	assert.True(t, confirmed.EmailConfirmationSent)
	assert.Equal(t, []int64{reg.ID}, f.rec.confirmations)

	_, err = f.svc.Registrations.Update(f.ctx, staff, reg.ID, []byte(`{"notes":"front row","emailConfirmationSent":false}`))
	require.NoError(t, err)
	assert.Len(t, f.rec.confirmations, 1, "re-saving must not resend")

	stored, err := f.svc.Registrations.Get(f.ctx, staff, reg.ID)
	require.NoError(t, err)
	assert.True(t, stored.EmailConfirmationSent)
	assert.Equal(t, "front row", stored.Notes)
}

// gatedNotifier holds the first confirmation until release is closed.
type gatedNotifier struct {
	*recorder
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedNotifier) SendRegistrationConfirmation(ctx context.Context, reg model.EventRegistration) error {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return g.recorder.SendRegistrationConfirmation(ctx, reg)
}

func TestRegistrationConfirmationOnceUnderOverlappingSaves(t *testing.T) {
	gate := &gatedNotifier{recorder: &recorder{}, entered: make(chan struct{}), release: make(chan struct{})}
	f := newFixture(t, func(d *Deps) { d.Notifier = gate })
	ev := f.publishedEvent(t, "Fall Mixer", 0)
	member := f.signUp(t, "pat@example.com")

	reg, err := f.svc.Registrations.Create(f.ctx, member, model.EventRegistration{EventID: ev.ID})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var confirmErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, confirmErr = f.svc.Registrations.Transition(f.ctx, staff, reg.ID, model.RegistrationConfirmed)
	}()
	<-gate.entered

	// The confirmation is in flight; another save of the same record must
	// neither resend it nor clear the flag.
	updated, err := f.svc.Registrations.Update(f.ctx, admin, reg.ID, []byte(`{"notes":"front row"}`))
	require.NoError(t, err)
	assert.True(t, updated.EmailConfirmationSent)

	close(gate.release)
	wg.Wait()
	require.NoError(t, confirmErr)

	_, err = f.svc.Registrations.Update(f.ctx, admin, reg.ID, []byte(`{"specialRequests":"aisle seat"}`))
	require.NoError(t, err)

	gate.mu.Lock()
	sent := append([]int64(nil), gate.confirmations...)
	gate.mu.Unlock()
	assert.Equal(t, []int64{reg.ID}, sent)

	stored, err := f.svc.Registrations.Get(f.ctx, admin, reg.ID)
	require.NoError(t, err)
	assert.True(t, stored.EmailConfirmationSent)
	assert.Equal(t, "front row", stored.Notes)
}

func TestRegistrationConfirmationFailureIsRetried(t *testing.T) {
	f := newFixture(t)
	ev := f.publishedEvent(t, "Fall Mixer", 0)
	member := f.signUp(t, "pat@example.com")
	f.rec.fail = errors.New("smtp down")

	reg, err := f.svc.Registrations.Create(f.ctx, staff, model.EventRegistration{
		EventID: ev.ID,
		UserID:  member.ID,
		Status:  model.RegistrationConfirmed,
	})
	require.NoError(t, err, "notification failures never fail the write")
	assert.False(t, reg.EmailConfirmationSent)

	f.rec.fail = nil
	reg, err = f.svc.Registrations.Update(f.ctx, staff, reg.ID, []byte(`{"specialRequests":"aisle seat"}`))
	require.NoError(t, err)
	assert.True(t, reg.EmailConfirmationSent)
	assert.Equal(t, []int64{reg.ID}, f.rec.confirmations)
}

func TestRegistrationLifecycle(t *testing.T) {
	f := newFixture(t)
	ev := f.publishedEvent(t, "Fall Mixer", 0)
	member := f.signUp(t, "pat@example.com")

	reg, err := f.svc.Registrations.Create(f.ctx, member, model.EventRegistration{EventID: ev.ID})
	require.NoError(t, err)

	_, err = f.svc.Registrations.Transition(f.ctx, member, reg.ID, model.RegistrationCancelled)
	requireDenied(t, err)

	_, err = f.svc.Registrations.Transition(f.ctx, staff, reg.ID, model.RegistrationAttended)
	requireValidation(t, err, "status")

	_, err = f.svc.Registrations.Transition(f.ctx, staff, reg.ID, model.RegistrationCancelled)
	require.NoError(t, err)

	_, err = f.svc.Registrations.Transition(f.ctx, admin, reg.ID, model.RegistrationPending)
	requireValidation(t, err, "status")
}

func TestRegistrationCreateRejectsTerminalStatus(t *testing.T) {
	f := newFixture(t)
	ev := f.publishedEvent(t, "Fall Mixer", 0)
	member := f.signUp(t, "pat@example.com")

	_, err := f.svc.Registrations.Create(f.ctx, staff, model.EventRegistration{
		EventID: ev.ID,
		UserID:  member.ID,
		Status:  model.RegistrationAttended,
	})
	requireValidation(t, err, "status")
}

func TestRegistrationCheckInStamps(t *testing.T) {
	f := newFixture(t)
	ev := f.publishedEvent(t, "Fall Mixer", 0)
	member := f.signUp(t, "pat@example.com")

	reg, err := f.svc.Registrations.Create(f.ctx, staff, model.EventRegistration{
		EventID: ev.ID,
		UserID:  member.ID,
		Status:  model.RegistrationConfirmed,
	})
	require.NoError(t, err)

	reg, err = f.svc.Registrations.Update(f.ctx, staff, reg.ID, []byte(`{"status":"attended","checkIn":{"checkedIn":true}}`))
	require.NoError(t, err)
	require.NotNil(t, reg.CheckIn.CheckedInAt)
	assert.True(t, reg.CheckIn.CheckedInAt.Equal(f.clock.Now()))
	require.NotNil(t, reg.CheckIn.CheckedInBy)
	assert.Equal(t, staff.ID, *reg.CheckIn.CheckedInBy)
}

func TestRegistrationVisibility(t *testing.T) {
	f := newFixture(t)
	ev := f.publishedEvent(t, "Fall Mixer", 0)
	pat := f.signUp(t, "pat@example.com")
	sam := f.signUp(t, "sam@example.com")

	mine, err := f.svc.Registrations.Create(f.ctx, pat, model.EventRegistration{EventID: ev.ID})
	require.NoError(t, err)
	theirs, err := f.svc.Registrations.Create(f.ctx, sam, model.EventRegistration{EventID: ev.ID})
	require.NoError(t, err)

	list, err := f.svc.Registrations.List(f.ctx, pat, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	_, err = f.svc.Registrations.Get(f.ctx, pat, theirs.ID)
	requireNotFound(t, err)

	forEvent, err := f.svc.Registrations.ListForEvent(f.ctx, staff, ev.ID)
	require.NoError(t, err)
	assert.Len(t, forEvent, 2)

	_, err = f.svc.Registrations.Update(f.ctx, pat, mine.ID, []byte(`{"dietaryRestrictions":"vegan"}`))
	requireDenied(t, err)

	requireDenied(t, f.svc.Registrations.Delete(f.ctx, staff, mine.ID))
	require.NoError(t, f.svc.Registrations.Delete(f.ctx, admin, mine.ID))
}

func TestRegistrationGuestLimit(t *testing.T) {
	f := newFixture(t)
	ev := f.publishedEvent(t, "Fall Mixer", 0)
	mt := f.membershipType(t, model.MembershipType{
		Name:     "Individual",
		Features: model.Features{MaxGuests: model.Int(1)},
	})
	member := f.signUp(t, "pat@example.com")
	_, err := f.svc.Users.ActivateMembership(f.ctx, admin, member.ID, mt.ID)
	require.NoError(t, err)

	_, err = f.svc.Registrations.Create(f.ctx, member, model.EventRegistration{
		EventID:        ev.ID,
		NumberOfGuests: 2,
		GuestNames:     []model.Guest{{Name: "Ann"}, {Name: "Bo"}},
	})
	requireValidation(t, err, "numberOfGuests")

	_, err = f.svc.Registrations.Create(f.ctx, member, model.EventRegistration{
		EventID:        ev.ID,
		NumberOfGuests: 1,
		GuestNames:     []model.Guest{{Name: "Ann"}},
	})
	require.NoError(t, err)
}

func TestRegistrationNumberCollisionIsRetried(t *testing.T) {
	f := newFixture(t)
	ev := f.publishedEvent(t, "Fall Mixer", 0)
	pat := f.signUp(t, "pat@example.com")
	sam := f.signUp(t, "sam@example.com")

	seq := []int{7, 7, 8}
	f.eng.IntN = func(int) int {
		n := seq[0]
		seq = seq[1:]
		return n
	}

	first, err := f.svc.Registrations.Create(f.ctx, pat, model.EventRegistration{EventID: ev.ID})
	require.NoError(t, err)
	second, err := f.svc.Registrations.Create(f.ctx, sam, model.EventRegistration{EventID: ev.ID})
	require.NoError(t, err)

	assert.Equal(t, "REG-20251010-0007", first.RegistrationNumber)
	assert.Equal(t, "REG-20251010-0008", second.RegistrationNumber)
}
