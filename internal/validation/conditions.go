// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package validation

import (
	"github.com/olegiv/ypng-go/internal/model"
)

// Conditional field predicates. Each takes the full record and reports
// whether a dependent field applies (is shown and, where it carries a
// requirement, required). Clients use the same predicates to decide what to
// display, so they stay free of rendering concerns.

// GuestNamesRequired reports whether the guest list must be filled in.
func GuestNamesRequired(reg model.EventRegistration) bool {
	return reg.NumberOfGuests > 0
}

// PaymentReferenceRequired reports whether the external payment reference is required.
func PaymentReferenceRequired(reg model.EventRegistration) bool {
	return reg.Payment.Method == model.PaymentCreditCard
}

// PaidAtApplies reports whether the paid-at timestamp is meaningful.
func PaidAtApplies(reg model.EventRegistration) bool {
	return reg.Payment.Method != model.PaymentFree
}

// CheckInDetailsRequired reports whether check-in time and staff are required.
func CheckInDetailsRequired(reg model.EventRegistration) bool {
	return reg.CheckIn.CheckedIn
}

// PriceReferenceRequired reports whether the external price reference is required.
func PriceReferenceRequired(mt model.MembershipType) bool {
	return mt.Price > 0
}

// RenewalReminderApplies reports whether a renewal reminder lead time is meaningful.
func RenewalReminderApplies(mt model.MembershipType) bool {
	return !mt.IsLifetime()
}

// MaxMembersApplies reports whether a member cap can be set on the type.
func MaxMembersApplies(mt model.MembershipType) bool {
	return mt.SupportsMaxMembers()
}

// ImageURLApplies reports whether the external image URL is used.
func ImageURLApplies(ev model.Event) bool {
	return ev.ImageID == nil
}

// RegistrationDetailsApply reports whether capacity, price and deadline are shown.
func RegistrationDetailsApply(ev model.Event) bool {
	return ev.Registration.IsEnabled()
}

// PermissionsApply reports whether fine-grained permissions can be assigned to the user.
func PermissionsApply(u model.User) bool {
	return u.Role == model.RoleStaff || u.Role == model.RoleBoard
}

// ExpirationApplies reports whether the membership has an expiration date.
func ExpirationApplies(u model.User) bool {
	return !u.Membership.Lifetime
}
