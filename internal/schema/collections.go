// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package schema

import (
	"github.com/olegiv/ypng-go/internal/model"
)

func init() {
	registerUsers()
	registerEvents()
	registerRegistrations()
	registerMedia()
	registerMembershipTypes()
}

func registerUsers() {
	register(model.CollectionUsers,
		Field{Name: "email", Type: TypeEmail, Required: true, Unique: true},
		Field{Name: "password", Type: TypeText},
		Field{Name: "firstName", Type: TypeText, Required: true},
		Field{Name: "lastName", Type: TypeText, Required: true},
		Field{Name: "displayName", Type: TypeText, ReadOnly: true},
		Field{Name: "bio", Type: TypeTextarea, MaxLength: 500},
		Field{Name: "avatar", Type: TypeUpload, RelationTo: model.CollectionMedia},
		Field{Name: "phone", Type: TypeText},
		Field{Name: "dateOfBirth", Type: TypeDate},
		Field{Name: "role", Type: TypeSelect, Required: true, AdminOnly: true, Default: model.RoleMember,
			Options: []string{model.RoleAdmin, model.RoleStaff, model.RoleBoard, model.RoleMember, model.RoleGuest}},
		Field{Name: "permissions", Type: TypeSelect, HasMany: true, AdminOnly: true,
			Options: []string{"manage_events", "manage_members", "view_reports", "send_emails", "manage_payments", "edit_website"}},
		Field{Name: "emailVerified", Type: TypeDate, StaffOnly: true},
		Field{Name: "loginAttempts", Type: TypeNumber, ReadOnly: true},
		Field{Name: "lockUntil", Type: TypeDate, ReadOnly: true},
		Field{Name: "membership.status", Type: TypeSelect, StaffOnly: true, Default: model.MembershipNone,
			Options: []string{model.MembershipActive, model.MembershipExpired, model.MembershipPending, model.MembershipCancelled, model.MembershipNone}},
		Field{Name: "membership.type", Type: TypeRelationship, StaffOnly: true, RelationTo: model.CollectionMembershipTypes},
		Field{Name: "membership.memberNumber", Type: TypeText, Unique: true, ReadOnly: true, Immutable: true},
		Field{Name: "membership.joinDate", Type: TypeDate, StaffOnly: true},
		Field{Name: "membership.renewalDate", Type: TypeDate, StaffOnly: true},
		Field{Name: "membership.expirationDate", Type: TypeDate, StaffOnly: true},
		Field{Name: "membership.autoRenew", Type: TypeCheckbox, Default: false},
		Field{Name: "membership.lifetime", Type: TypeCheckbox, StaffOnly: true, Default: false},
		Field{Name: "billing.customerId", Type: TypeText, ReadOnly: true},
		Field{Name: "billing.paymentMethods", Type: TypeArray, ReadOnly: true},
		Field{Name: "billing.totalDonated", Type: TypeNumber, ReadOnly: true, Default: 0},
		Field{Name: "billing.totalPaid", Type: TypeNumber, ReadOnly: true, Default: 0},
		Field{Name: "preferences.newsletter", Type: TypeCheckbox, Default: true},
		Field{Name: "preferences.eventNotifications", Type: TypeCheckbox, Default: true},
		Field{Name: "preferences.renewalReminders", Type: TypeCheckbox, Default: true},
		Field{Name: "preferences.showInDirectory", Type: TypeCheckbox, Default: true},
		Field{Name: "preferences.shareContactInfo", Type: TypeCheckbox, Default: false},
		Field{Name: "interests", Type: TypeSelect, HasMany: true,
			Options: []string{"networking", "education", "volunteering", "social", "professional", "mentorship"}},
		Field{Name: "lastLogin", Type: TypeDate, ReadOnly: true},
		Field{Name: "loginCount", Type: TypeNumber, ReadOnly: true, Default: 0},
		Field{Name: "notes", Type: TypeTextarea, Privileged: true},
		Field{Name: "tags", Type: TypeSelect, HasMany: true, Privileged: true,
			Options: []string{"vip", "volunteer", "donor", "board_alumni", "founding"}},
		Field{Name: "status", Type: TypeSelect, AdminOnly: true, Default: model.AccountActive,
			Options: []string{model.AccountActive, model.AccountInactive, model.AccountSuspended, model.AccountBanned}},
	)
}

func registerEvents() {
	register(model.CollectionEvents,
		Field{Name: "title", Type: TypeText, Required: true, MinLength: 1, MaxLength: 100},
		Field{Name: "slug", Type: TypeText, Unique: true},
		Field{Name: "summary", Type: TypeTextarea, Required: true, MinLength: 1, MaxLength: 200},
		Field{Name: "description", Type: TypeRichText, Required: true},
		Field{Name: "location.name", Type: TypeText, Required: true},
		Field{Name: "location.address", Type: TypeText, Required: true},
		Field{Name: "location.coordinates", Type: TypePoint},
		Field{Name: "event_date", Type: TypeDate, Required: true},
		Field{Name: "start_time", Type: TypeText, Required: true},
		Field{Name: "end_time", Type: TypeText, Required: true},
		Field{Name: "timezone", Type: TypeSelect, Default: model.TimezonePacific,
			Options: []string{model.TimezonePacific, model.TimezoneMountain, model.TimezoneCentral, model.TimezoneEastern, model.TimezoneUTC}},
		Field{Name: "image", Type: TypeUpload, RelationTo: model.CollectionMedia},
		Field{Name: "image_url", Type: TypeText},
		Field{Name: "platforms.wild_apricot", Type: TypeCheckbox, Default: false},
		Field{Name: "platforms.meetup", Type: TypeCheckbox, Default: false},
		Field{Name: "platforms.eventbrite", Type: TypeCheckbox, Default: false},
		Field{Name: "platforms.wild_apricot_id", Type: TypeText, ReadOnly: true, Immutable: true},
		Field{Name: "platforms.meetup_id", Type: TypeText, ReadOnly: true, Immutable: true},
		Field{Name: "platforms.eventbrite_id", Type: TypeText, ReadOnly: true, Immutable: true},
		Field{Name: "registration.enabled", Type: TypeCheckbox, Default: true},
		Field{Name: "registration.capacity", Type: TypeNumber, Min: bound(0)},
		Field{Name: "registration.price", Type: TypeNumber, Min: bound(0), Default: 0},
		Field{Name: "registration.registration_deadline", Type: TypeDate},
		Field{Name: "status", Type: TypeSelect, Default: model.EventStatusDraft,
			Options: []string{model.EventStatusDraft, model.EventStatusPublished, model.EventStatusCancelled, model.EventStatusCompleted}},
	)
}

func registerRegistrations() {
	register(model.CollectionRegistrations,
		Field{Name: "registrationNumber", Type: TypeText, Required: true, Unique: true, Immutable: true},
		Field{Name: "event", Type: TypeRelationship, Required: true, Immutable: true, RelationTo: model.CollectionEvents},
		Field{Name: "user", Type: TypeRelationship, Required: true, RelationTo: model.CollectionUsers},
		Field{Name: "status", Type: TypeSelect, Required: true, StaffOnly: true, Default: model.RegistrationPending,
			Options: []string{model.RegistrationPending, model.RegistrationConfirmed, model.RegistrationWaitlisted,
				model.RegistrationCancelled, model.RegistrationAttended, model.RegistrationNoShow}},
		Field{Name: "registrationType", Type: TypeSelect, Required: true, Default: model.RegistrationTypeMember,
			Options: []string{model.RegistrationTypeMember, model.RegistrationTypeNonMember, model.RegistrationTypeStudent,
				model.RegistrationTypeVIP, model.RegistrationTypeSponsor, model.RegistrationTypeSpeaker}},
		Field{Name: "numberOfGuests", Type: TypeNumber, Default: 0, Min: bound(0), Max: bound(model.MaxGuests)},
		Field{Name: "guestNames", Type: TypeArray},
		Field{Name: "payment.amount", Type: TypeNumber, Required: true, Default: 0, Min: bound(0)},
		Field{Name: "payment.method", Type: TypeSelect, Default: model.PaymentFree,
			Options: []string{model.PaymentFree, model.PaymentCreditCard, model.PaymentCash, model.PaymentCheck, model.PaymentComp}},
		Field{Name: "payment.stripePaymentId", Type: TypeText},
		Field{Name: "payment.paidAt", Type: TypeDate, StaffOnly: true},
		Field{Name: "dietaryRestrictions", Type: TypeTextarea},
		Field{Name: "specialRequests", Type: TypeTextarea},
		Field{Name: "checkIn.checkedIn", Type: TypeCheckbox, StaffOnly: true, Default: false},
		Field{Name: "checkIn.checkedInAt", Type: TypeDate, StaffOnly: true},
		Field{Name: "checkIn.checkedInBy", Type: TypeRelationship, StaffOnly: true, RelationTo: model.CollectionUsers},
		Field{Name: "notes", Type: TypeTextarea, Privileged: true},
		Field{Name: "emailConfirmationSent", Type: TypeCheckbox, ReadOnly: true, Default: false},
	)
}

func registerMedia() {
	register(model.CollectionMedia,
		Field{Name: "alt", Type: TypeText, Required: true},
		Field{Name: "caption", Type: TypeText},
		Field{Name: "category", Type: TypeSelect, Default: model.MediaCategoryGeneral,
			Options: []string{model.MediaCategoryEvent, model.MediaCategoryBoard, model.MediaCategoryMember, model.MediaCategoryGeneral}},
		Field{Name: "credit", Type: TypeText},
		Field{Name: "filename", Type: TypeText, ReadOnly: true},
		Field{Name: "mimeType", Type: TypeText, ReadOnly: true},
		Field{Name: "sizes", Type: TypeJSON, ReadOnly: true},
	)
}

func registerMembershipTypes() {
	register(model.CollectionMembershipTypes,
		Field{Name: "name", Type: TypeText, Required: true},
		Field{Name: "slug", Type: TypeText, Required: true, Unique: true},
		Field{Name: "description", Type: TypeTextarea, Required: true},
		Field{Name: "price", Type: TypeNumber, Required: true, Min: bound(0)},
		Field{Name: "stripePriceId", Type: TypeText},
		Field{Name: "duration", Type: TypeSelect, Required: true, Default: model.DurationAnnual,
			Options: []string{model.DurationMonthly, model.DurationQuarterly, model.DurationAnnual, model.DurationLifetime}},
		Field{Name: "benefits", Type: TypeArray, Required: true, MinRows: 1},
		Field{Name: "benefits.included", Type: TypeCheckbox, Default: true},
		Field{Name: "features.eventDiscountPercentage", Type: TypeNumber, Min: bound(0), Max: bound(100)},
		Field{Name: "features.maxGuests", Type: TypeNumber, Min: bound(0)},
		Field{Name: "features.canAccessMemberDirectory", Type: TypeCheckbox, Default: true},
		Field{Name: "features.canPostJobs", Type: TypeCheckbox, Default: false},
		Field{Name: "features.canSponsorEvents", Type: TypeCheckbox, Default: false},
		Field{Name: "features.priorityRegistration", Type: TypeCheckbox, Default: false},
		Field{Name: "eligibility.minAge", Type: TypeNumber, Min: bound(0)},
		Field{Name: "eligibility.maxAge", Type: TypeNumber, Min: bound(0)},
		Field{Name: "eligibility.requiresVerification", Type: TypeCheckbox, Default: false},
		Field{Name: "eligibility.requirements", Type: TypeTextarea},
		Field{Name: "sortOrder", Type: TypeNumber, Default: 0},
		Field{Name: "isActive", Type: TypeCheckbox, Default: true},
		Field{Name: "isFeatured", Type: TypeCheckbox, Default: false},
		Field{Name: "maxMembers", Type: TypeNumber, Min: bound(0)},
		Field{Name: "renewalReminder", Type: TypeNumber, Default: 30},
		Field{Name: "color", Type: TypeText},
	)
}
