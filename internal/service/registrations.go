// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/olegiv/ypng-go/internal/access"
	"github.com/olegiv/ypng-go/internal/model"
	"github.com/olegiv/ypng-go/internal/store"
	"github.com/olegiv/ypng-go/internal/validation"
	"github.com/olegiv/ypng-go/internal/workflow"
)

const collRegistrations = model.CollectionRegistrations

// RegistrationService manages event registrations, their lifecycle and
// event capacity.
type RegistrationService struct {
	*base

	// mu serializes seat counting with the write that takes the seat.
	mu sync.Mutex
}

// Create registers a user for an event. Members register only themselves
// and always start pending; a registration that would exceed capacity is
// waitlisted.
func (s *RegistrationService) Create(ctx context.Context, actor model.Actor, reg model.EventRegistration) (model.EventRegistration, error) {
	if _, err := authorize(collRegistrations, model.OpCreate, actor); err != nil {
		return model.EventRegistration{}, err
	}
	if !access.CanRegisterFor(actor, reg.UserID) {
		return model.EventRegistration{}, denied(collRegistrations, model.OpCreate, actor, "user")
	}

	numberDerived := reg.RegistrationNumber == ""
	reg = access.RestrictRegistrationCreate(reg, actor)
	reg.ID = 0
	reg = s.derive.Registration(reg, model.OpCreate, actor)

	if !workflow.IsValidInitialState(reg.Status) {
		return model.EventRegistration{}, invalidField(collRegistrations, "status",
			fmt.Sprintf("Registrations cannot be created as %s", reg.Status))
	}

	ev, errs, err := s.checkReferences(ctx, actor, reg)
	if err != nil {
		return model.EventRegistration{}, err
	}
	errs = append(errs, validation.Registration(reg)...)
	if len(errs) > 0 {
		return model.EventRegistration{}, invalid(collRegistrations, errs)
	}

	now := s.now()
	reg.CreatedAt, reg.UpdatedAt = now, now

	retryField := ""
	if numberDerived {
		retryField = "registrationNumber"
	}

	s.mu.Lock()
	var saved model.EventRegistration
	err = store.InTx(ctx, s.db, func(q *store.Queries) error {
		taken, err := q.CountEventRegistrations(ctx, reg.EventID, workflow.CountedStates(), 0)
		if err != nil {
			return fmt.Errorf("counting registrations: %w", err)
		}
		if workflow.PlaceOnCreate(ev, reg, taken) == workflow.PlaceWaitlisted {
			reg.Status = model.RegistrationWaitlisted
		}
		saved, err = saveWithRetry(collRegistrations, retryField, func() (model.EventRegistration, error) {
			return q.CreateRegistration(ctx, reg)
		}, func() {
			reg.RegistrationNumber = s.derive.RegistrationNumber()
		})
		return err
	})
	s.mu.Unlock()
	if err != nil {
		return model.EventRegistration{}, err
	}

	if saved.Status == model.RegistrationWaitlisted {
		s.logger.Info("registration waitlisted", "registration", saved.RegistrationNumber, "event_id", saved.EventID)
	}
	return s.confirm(ctx, saved), nil
}

// checkReferences loads the event and user a new registration points at and
// checks the event is open and the guest count within the membership limit.
// Missing targets and closed events are reported as field errors.
func (s *RegistrationService) checkReferences(ctx context.Context, actor model.Actor, reg model.EventRegistration) (model.Event, validation.Errors, error) {
	var errs validation.Errors
	var ev model.Event

	if reg.EventID != 0 {
		var err error
		ev, err = s.queries.GetEvent(ctx, reg.EventID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			errs.Add("event", "Event not found")
		case err != nil:
			return ev, nil, fmt.Errorf("loading event %d: %w", reg.EventID, err)
		default:
			if err := workflow.CheckOpen(ev, s.now(), actor); err != nil {
				errs.Add("event", err.Error())
			}
		}
	}

	if reg.UserID != 0 {
		u, err := s.queries.GetUser(ctx, reg.UserID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			errs.Add("user", "User not found")
		case err != nil:
			return ev, nil, fmt.Errorf("loading user %d: %w", reg.UserID, err)
		default:
			limit, ok, err := s.guestLimit(ctx, u)
			if err != nil {
				return ev, nil, err
			}
			if ok && reg.NumberOfGuests > limit {
				errs.Add("numberOfGuests", fmt.Sprintf("Your membership allows at most %d guests", limit))
			}
		}
	}

	return ev, errs, nil
}

func (s *RegistrationService) guestLimit(ctx context.Context, u model.User) (int, bool, error) {
	if !u.HasActiveMembership() || u.Membership.TypeID == nil {
		return 0, false, nil
	}
	mt, err := s.queries.GetMembershipType(ctx, *u.Membership.TypeID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("loading membership type: %w", err)
	}
	limit, ok := workflow.GuestLimit(&mt)
	return limit, ok, nil
}

// Update applies a JSON patch to a registration. Status changes follow the
// lifecycle and the capacity policy.
func (s *RegistrationService) Update(ctx context.Context, actor model.Actor, id int64, patch []byte) (model.EventRegistration, error) {
	d, err := authorize(collRegistrations, model.OpUpdate, actor)
	if err != nil {
		return model.EventRegistration{}, err
	}
	prev, err := s.load(ctx, d, id)
	if err != nil {
		return model.EventRegistration{}, err
	}

	next, err := mergePatch(collRegistrations, prev, patch)
	if err != nil {
		return model.EventRegistration{}, err
	}
	next = access.KeepRegistrationSystemFields(prev, next)
	if v := access.Violations(collRegistrations, access.RegistrationChanges(prev, next), actor); len(v) > 0 {
		return model.EventRegistration{}, denied(collRegistrations, model.OpUpdate, actor, v...)
	}
	return s.save(ctx, actor, prev, next)
}

// Transition moves a registration to status.
func (s *RegistrationService) Transition(ctx context.Context, actor model.Actor, id int64, status string) (model.EventRegistration, error) {
	d, err := authorize(collRegistrations, model.OpUpdate, actor)
	if err != nil {
		return model.EventRegistration{}, err
	}
	prev, err := s.load(ctx, d, id)
	if err != nil {
		return model.EventRegistration{}, err
	}
	next := prev
	next.Status = status
	return s.save(ctx, actor, prev, next)
}

func (s *RegistrationService) save(ctx context.Context, actor model.Actor, prev, next model.EventRegistration) (model.EventRegistration, error) {
	if err := workflow.CheckTransition(prev.Status, next.Status, actor); err != nil {
		if errors.Is(err, workflow.ErrTransitionForbidden) {
			return model.EventRegistration{}, denied(collRegistrations, model.OpUpdate, actor, "status")
		}
		return model.EventRegistration{}, invalidField(collRegistrations, "status", err.Error())
	}

	next = s.derive.Registration(next, model.OpUpdate, actor)
	if errs := validation.Registration(next); len(errs) > 0 {
		return model.EventRegistration{}, invalid(collRegistrations, errs)
	}
	next.UpdatedAt = s.now()

	s.mu.Lock()
	var saved model.EventRegistration
	err := store.InTx(ctx, s.db, func(q *store.Queries) error {
		if next.Status != prev.Status {
			ev, err := q.GetEvent(ctx, next.EventID)
			if err != nil {
				return lookupErr(collEvents, next.EventID, err)
			}
			taken, err := q.CountEventRegistrations(ctx, ev.ID, workflow.CountedStates(), next.ID)
			if err != nil {
				return fmt.Errorf("counting registrations: %w", err)
			}
			if workflow.PlaceOnTransition(ev, prev.Status, next.Status, taken) == workflow.PlaceRejected {
				return invalidField(collRegistrations, "status", "Event is at capacity")
			}
		}
		var err error
		saved, err = q.UpdateRegistration(ctx, next)
		if err != nil {
			return saveErr(collRegistrations, err)
		}
		return nil
	})
	s.mu.Unlock()
	if err != nil {
		return model.EventRegistration{}, err
	}

	return s.confirm(ctx, saved), nil
}

// confirm emits the confirmation signal once per registration. The flag is
// claimed in the store before sending, so overlapping saves of the same
// registration send at most one signal; a failed send releases the claim
// for the next save.
func (s *RegistrationService) confirm(ctx context.Context, reg model.EventRegistration) model.EventRegistration {
	if !workflow.ShouldSendConfirmation(reg) {
		return reg
	}
	claimed, err := s.queries.ClaimConfirmation(ctx, reg.ID)
	if err != nil {
		s.logger.Warn("hook failed", "hook", "registration confirmation", "error", fmt.Errorf("claiming confirmation: %w", err))
		return reg
	}
	if !claimed {
		reg.EmailConfirmationSent = true
		return reg
	}

	sent := true
	s.hook(ctx, "registration confirmation", func(ctx context.Context) error {
		if err := s.notifier.SendRegistrationConfirmation(ctx, reg); err != nil {
			sent = false
			if rerr := s.queries.ReleaseConfirmation(ctx, reg.ID); rerr != nil {
				return errors.Join(err, fmt.Errorf("releasing confirmation: %w", rerr))
			}
			return err
		}
		return nil
	})
	reg.EmailConfirmationSent = sent
	return reg
}

// load fetches a registration the decision admits. Records outside a row
// filter are reported as not found.
func (s *RegistrationService) load(ctx context.Context, d access.Decision, id int64) (model.EventRegistration, error) {
	reg, err := s.queries.GetRegistration(ctx, id)
	if err != nil {
		return model.EventRegistration{}, lookupErr(collRegistrations, id, err)
	}
	if !d.Permits(reg) {
		return model.EventRegistration{}, &NotFoundError{Collection: collRegistrations, ID: id}
	}
	return reg, nil
}

// Get returns a registration visible to actor.
func (s *RegistrationService) Get(ctx context.Context, actor model.Actor, id int64) (model.EventRegistration, error) {
	d, err := authorize(collRegistrations, model.OpRead, actor)
	if err != nil {
		return model.EventRegistration{}, err
	}
	reg, err := s.load(ctx, d, id)
	if err != nil {
		return model.EventRegistration{}, err
	}
	return access.RedactRegistration(reg, actor), nil
}

// List returns a page of the registrations visible to actor, newest first.
func (s *RegistrationService) List(ctx context.Context, actor model.Actor, limit, offset int64) ([]model.EventRegistration, error) {
	d, err := authorize(collRegistrations, model.OpRead, actor)
	if err != nil {
		return nil, err
	}
	items, err := s.queries.ListRegistrations(ctx, store.ListParams{Filter: filterOf(d), Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("listing registrations: %w", err)
	}
	return redactRegistrations(items, actor), nil
}

// ListForEvent returns the registrations of one event visible to actor.
func (s *RegistrationService) ListForEvent(ctx context.Context, actor model.Actor, eventID int64) ([]model.EventRegistration, error) {
	d, err := authorize(collRegistrations, model.OpRead, actor)
	if err != nil {
		return nil, err
	}
	items, err := s.queries.ListEventRegistrations(ctx, eventID, filterOf(d))
	if err != nil {
		return nil, fmt.Errorf("listing registrations of event %d: %w", eventID, err)
	}
	return redactRegistrations(items, actor), nil
}

// Delete removes a registration.
func (s *RegistrationService) Delete(ctx context.Context, actor model.Actor, id int64) error {
	d, err := authorize(collRegistrations, model.OpDelete, actor)
	if err != nil {
		return err
	}
	if _, err := s.load(ctx, d, id); err != nil {
		return err
	}
	if err := s.queries.DeleteRegistration(ctx, id); err != nil {
		return fmt.Errorf("deleting registration %d: %w", id, err)
	}
	return nil
}

func redactRegistrations(items []model.EventRegistration, actor model.Actor) []model.EventRegistration {
	for i := range items {
		items[i] = access.RedactRegistration(items[i], actor)
	}
	return items
}
