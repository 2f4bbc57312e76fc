// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package workflow holds the registration lifecycle state machine, the
// capacity policy and the event publication rule. Everything here is pure;
// callers perform the side effects the functions ask for.
package workflow

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/olegiv/ypng-go/internal/model"
)

// Transition errors.
var (
	// ErrTerminalState is returned when leaving cancelled, attended or no-show.
	ErrTerminalState = errors.New("registration is in a terminal state")
	// ErrInvalidTransition is returned for a move the lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid registration status transition")
	// ErrTransitionForbidden is returned when the actor may not move registrations.
	ErrTransitionForbidden = errors.New("only admin or staff can change registration status")
)

// transitions lists the allowed target states of each non-terminal state.
var transitions = map[string][]string{
	model.RegistrationPending:    {model.RegistrationConfirmed, model.RegistrationWaitlisted, model.RegistrationCancelled},
	model.RegistrationWaitlisted: {model.RegistrationConfirmed, model.RegistrationCancelled},
	model.RegistrationConfirmed:  {model.RegistrationAttended, model.RegistrationNoShow, model.RegistrationCancelled},
}

// initialStates are the statuses a registration may be created with by admin or staff.
var initialStates = []string{model.RegistrationPending, model.RegistrationConfirmed, model.RegistrationWaitlisted}

// countedStates hold a seat against event capacity.
var countedStates = []string{model.RegistrationPending, model.RegistrationConfirmed, model.RegistrationAttended}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status string) bool {
	return status == model.RegistrationCancelled ||
		status == model.RegistrationAttended ||
		status == model.RegistrationNoShow
}

// NextStates returns the statuses reachable from status in one step.
func NextStates(status string) []string {
	return slices.Clone(transitions[status])
}

// CanTransition reports whether from → to is a lifecycle edge.
func CanTransition(from, to string) bool {
	return slices.Contains(transitions[from], to)
}

// CheckTransition validates a status change by actor. Keeping the same
// status is always allowed.
func CheckTransition(from, to string, actor model.Actor) error {
	if from == to {
		return nil
	}
	if !actor.IsPrivileged() {
		return ErrTransitionForbidden
	}
	if IsTerminal(from) {
		return fmt.Errorf("%w: %s", ErrTerminalState, from)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// IsValidInitialState reports whether a registration may be created with status.
func IsValidInitialState(status string) bool {
	return slices.Contains(initialStates, status)
}

// Counts reports whether a registration in status holds a seat.
func Counts(status string) bool {
	return slices.Contains(countedStates, status)
}

// CountedStates returns the statuses that hold a seat.
func CountedStates() []string {
	return slices.Clone(countedStates)
}

// ShouldSendConfirmation reports whether saving next must emit the
// confirmation signal: it is confirmed and the sent flag is still false.
// Once the flag is set, further saves never fire again.
func ShouldSendConfirmation(next model.EventRegistration) bool {
	return next.Status == model.RegistrationConfirmed && !next.EmailConfirmationSent
}

// Placement is the capacity outcome for a registration.
type Placement int

// Placements.
const (
	// PlaceAccepted keeps the requested status.
	PlaceAccepted Placement = iota
	// PlaceWaitlisted moves the registration to the waitlist.
	PlaceWaitlisted
	// PlaceRejected refuses the registration.
	PlaceRejected
)

// PlaceOnCreate applies the capacity policy to a new registration. taken is
// the number of registrations already holding a seat. A registration that
// would exceed capacity is waitlisted; one that does not count is accepted.
func PlaceOnCreate(ev model.Event, reg model.EventRegistration, taken int) Placement {
	if !ev.Registration.Limited() || !Counts(reg.Status) {
		return PlaceAccepted
	}
	if taken+1 > *ev.Registration.Capacity {
		return PlaceWaitlisted
	}
	return PlaceAccepted
}

// PlaceOnTransition applies the capacity policy to a status change. A move
// from a non-counted state into a counted one is rejected when full.
func PlaceOnTransition(ev model.Event, from, to string, taken int) Placement {
	if !ev.Registration.Limited() || Counts(from) || !Counts(to) {
		return PlaceAccepted
	}
	if taken+1 > *ev.Registration.Capacity {
		return PlaceRejected
	}
	return PlaceAccepted
}

// Registration openness failures.
var (
	ErrRegistrationClosed = errors.New("registration is not enabled for this event")
	ErrEventNotPublished  = errors.New("event is not open for registration")
	ErrDeadlinePassed     = errors.New("registration deadline has passed")
)

// CheckOpen reports why ev does not accept new registrations at now, or nil.
// Admin and staff may register attendees regardless of publication and deadline.
func CheckOpen(ev model.Event, now time.Time, actor model.Actor) error {
	if !ev.Registration.IsEnabled() {
		return ErrRegistrationClosed
	}
	if actor.IsPrivileged() {
		return nil
	}
	if !ev.IsPublished() {
		return ErrEventNotPublished
	}
	if d := ev.Registration.Deadline; d != nil {
		y, m, day := d.Date()
		endOfDay := time.Date(y, m, day, 23, 59, 59, 0, d.Location())
		if now.After(endOfDay) {
			return ErrDeadlinePassed
		}
	}
	return nil
}

// GuestLimit returns the guest cap granted by a membership type, and false
// when the type sets none.
func GuestLimit(mt *model.MembershipType) (int, bool) {
	if mt == nil || mt.Features.MaxGuests == nil {
		return 0, false
	}
	return *mt.Features.MaxGuests, true
}
