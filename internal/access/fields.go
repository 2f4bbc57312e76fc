// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package access

import (
	"slices"
	"time"

	"github.com/olegiv/ypng-go/internal/model"
	"github.com/olegiv/ypng-go/internal/schema"
)

// CanWriteField reports whether actor may set field. System-maintained
// fields are never writable by clients.
func CanWriteField(collection, field string, actor model.Actor) bool {
	f := schema.Lookup(collection).Field(field)
	switch {
	case f.ReadOnly:
		return false
	case f.AdminOnly:
		return actor.IsAdmin()
	case f.Privileged, f.StaffOnly:
		return actor.IsPrivileged()
	}
	return true
}

// FieldVisible reports whether actor may see field.
func FieldVisible(collection, field string, actor model.Actor) bool {
	if schema.Lookup(collection).Field(field).Privileged {
		return actor.IsPrivileged()
	}
	return true
}

// Violations returns the changed fields actor is not allowed to write.
// Immutable fields reported as changed are always violations.
func Violations(collection string, changed []string, actor model.Actor) []string {
	c := schema.Lookup(collection)
	var out []string
	for _, name := range changed {
		if c.Field(name).Immutable || !CanWriteField(collection, name, actor) {
			out = append(out, name)
		}
	}
	return out
}

// UserChanges returns the protected user fields that differ between prev and next.
func UserChanges(prev, next model.User) []string {
	var d diff
	d.add("role", prev.Role != next.Role)
	d.add("status", prev.Status != next.Status)
	d.add("permissions", !slices.Equal(prev.Permissions, next.Permissions))
	d.add("emailVerified", !timeEqual(prev.EmailVerifiedAt, next.EmailVerifiedAt))
	d.add("membership.status", prev.Membership.Status != next.Membership.Status)
	d.add("membership.type", !int64Equal(prev.Membership.TypeID, next.Membership.TypeID))
	d.add("membership.memberNumber", prev.Membership.MemberNumber != "" &&
		prev.Membership.MemberNumber != next.Membership.MemberNumber)
	d.add("membership.joinDate", !timeEqual(prev.Membership.JoinDate, next.Membership.JoinDate))
	d.add("membership.renewalDate", !timeEqual(prev.Membership.RenewalDate, next.Membership.RenewalDate))
	d.add("membership.expirationDate", !timeEqual(prev.Membership.ExpirationDate, next.Membership.ExpirationDate))
	d.add("membership.lifetime", prev.Membership.Lifetime != next.Membership.Lifetime)
	d.add("notes", prev.Notes != next.Notes)
	d.add("tags", !slices.Equal(prev.Tags, next.Tags))
	return d.fields
}

// RegistrationChanges returns the protected registration fields that differ between prev and next.
func RegistrationChanges(prev, next model.EventRegistration) []string {
	var d diff
	d.add("registrationNumber", prev.RegistrationNumber != "" && prev.RegistrationNumber != next.RegistrationNumber)
	d.add("event", prev.EventID != 0 && prev.EventID != next.EventID)
	d.add("status", prev.Status != next.Status)
	d.add("payment.paidAt", !timeEqual(prev.Payment.PaidAt, next.Payment.PaidAt))
	d.add("checkIn.checkedIn", prev.CheckIn.CheckedIn != next.CheckIn.CheckedIn)
	d.add("checkIn.checkedInAt", !timeEqual(prev.CheckIn.CheckedInAt, next.CheckIn.CheckedInAt))
	d.add("checkIn.checkedInBy", !int64Equal(prev.CheckIn.CheckedInBy, next.CheckIn.CheckedInBy))
	d.add("notes", prev.Notes != next.Notes)
	return d.fields
}

// RestrictUserCreate clears the fields of an incoming user that actor may
// not set, so they take their defaults instead.
func RestrictUserCreate(u model.User, actor model.Actor) model.User {
	u = clearUserSystemFields(u)
	if !actor.IsAdmin() {
		u.Role = ""
		u.Status = ""
		u.Permissions = nil
	}
	if !actor.IsPrivileged() {
		u.EmailVerifiedAt = nil
		u.Notes = ""
		u.Tags = nil
		u.Membership = model.Membership{AutoRenew: u.Membership.AutoRenew}
	}
	return u
}

func clearUserSystemFields(u model.User) model.User {
	u.LoginAttempts = 0
	u.LockUntil = nil
	u.LastLogin = nil
	u.LoginCount = 0
	u.Billing = model.Billing{}
	u.Membership.MemberNumber = ""
	u.DisplayName = ""
	return u
}

// KeepUserSystemFields copies system-maintained fields from prev onto next.
func KeepUserSystemFields(prev, next model.User) model.User {
	next.ID = prev.ID
	next.PasswordHash = prev.PasswordHash
	next.LoginAttempts = prev.LoginAttempts
	next.LockUntil = prev.LockUntil
	next.LastLogin = prev.LastLogin
	next.LoginCount = prev.LoginCount
	next.Billing = prev.Billing
	next.CreatedAt = prev.CreatedAt
	if prev.Membership.MemberNumber != "" {
		next.Membership.MemberNumber = prev.Membership.MemberNumber
	}
	return next
}

// RestrictRegistrationCreate clears the fields of an incoming registration
// that actor may not set.
func RestrictRegistrationCreate(reg model.EventRegistration, actor model.Actor) model.EventRegistration {
	reg.EmailConfirmationSent = false
	if !actor.IsPrivileged() {
		reg.Status = ""
		reg.CheckIn = model.CheckIn{}
		reg.Payment.PaidAt = nil
		reg.Notes = ""
	}
	return reg
}

// KeepRegistrationSystemFields copies system-maintained fields from prev onto next.
func KeepRegistrationSystemFields(prev, next model.EventRegistration) model.EventRegistration {
	next.ID = prev.ID
	next.EmailConfirmationSent = prev.EmailConfirmationSent
	next.CreatedAt = prev.CreatedAt
	return next
}

// CanRegisterFor reports whether actor may create a registration for userID.
// Members register themselves only; admin and staff register anyone.
func CanRegisterFor(actor model.Actor, userID int64) bool {
	return actor.IsPrivileged() || userID == 0 || userID == actor.ID
}

// RestrictEventCreate clears the platform IDs, which only the platform
// write-back may set.
func RestrictEventCreate(ev model.Event) model.Event {
	for _, p := range model.Platforms {
		ev.Platforms.SetExternalID(p, "")
	}
	return ev
}

// KeepEventSystemFields copies the written-back platform IDs from prev onto next.
func KeepEventSystemFields(prev, next model.Event) model.Event {
	next.ID = prev.ID
	for _, p := range model.Platforms {
		next.Platforms.SetExternalID(p, prev.Platforms.ExternalID(p))
	}
	next.CreatedAt = prev.CreatedAt
	return next
}

// RedactUser hides the fields actor may not see. Permissions are shown only
// for staff and board subjects.
func RedactUser(u model.User, actor model.Actor) model.User {
	if !FieldVisible(model.CollectionUsers, "notes", actor) {
		u.Notes = ""
	}
	if !FieldVisible(model.CollectionUsers, "tags", actor) {
		u.Tags = nil
	}
	if u.Role != model.RoleStaff && u.Role != model.RoleBoard {
		u.Permissions = nil
	}
	return u
}

// RedactRegistration hides the fields actor may not see.
func RedactRegistration(reg model.EventRegistration, actor model.Actor) model.EventRegistration {
	if !FieldVisible(model.CollectionRegistrations, "notes", actor) {
		reg.Notes = ""
	}
	return reg
}

type diff struct {
	fields []string
}

func (d *diff) add(field string, changed bool) {
	if changed {
		d.fields = append(d.fields, field)
	}
}

func timeEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func int64Equal(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
