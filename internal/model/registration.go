// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"time"
)

// Registration statuses.
const (
	RegistrationPending    = "pending"
	RegistrationConfirmed  = "confirmed"
	RegistrationWaitlisted = "waitlisted"
	RegistrationCancelled  = "cancelled"
	RegistrationAttended   = "attended"
	RegistrationNoShow     = "no-show"
)

// Registration types.
const (
	RegistrationTypeMember    = "member"
	RegistrationTypeNonMember = "non-member"
	RegistrationTypeStudent   = "student"
	RegistrationTypeVIP       = "vip"
	RegistrationTypeSponsor   = "sponsor"
	RegistrationTypeSpeaker   = "speaker"
)

// Payment methods.
const (
	PaymentFree       = "free"
	PaymentCreditCard = "credit-card"
	PaymentCash       = "cash"
	PaymentCheck      = "check"
	PaymentComp       = "comp"
)

// MaxGuests is the upper bound on additional guests per registration.
const MaxGuests = 10

// EventRegistration is one attendee's registration for one event.
type EventRegistration struct {
	ID                    int64     `json:"id"`
	RegistrationNumber    string    `json:"registrationNumber"`
	EventID               int64     `json:"event"`
	UserID                int64     `json:"user"`
	Status                string    `json:"status"`
	RegistrationType      string    `json:"registrationType"`
	NumberOfGuests        int       `json:"numberOfGuests"`
	GuestNames            []Guest   `json:"guestNames,omitempty"`
	Payment               Payment   `json:"payment"`
	DietaryRestrictions   string    `json:"dietaryRestrictions,omitempty"`
	SpecialRequests       string    `json:"specialRequests,omitempty"`
	CheckIn               CheckIn   `json:"checkIn"`
	Notes                 string    `json:"notes,omitempty"`
	EmailConfirmationSent bool      `json:"emailConfirmationSent"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// Guest is an additional attendee named on a registration.
type Guest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Payment is the payment sub-record of a registration.
type Payment struct {
	Amount            float64    `json:"amount"`
	Method            string     `json:"method"`
	ExternalPaymentID string     `json:"stripePaymentId,omitempty"`
	PaidAt            *time.Time `json:"paidAt,omitempty"`
}

// CheckIn records attendance at the event.
type CheckIn struct {
	CheckedIn   bool       `json:"checkedIn"`
	CheckedInAt *time.Time `json:"checkedInAt,omitempty"`
	CheckedInBy *int64     `json:"checkedInBy,omitempty"`
}
