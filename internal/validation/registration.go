// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package validation

import (
	"fmt"
	"strings"

	"github.com/olegiv/ypng-go/internal/model"
)

const collRegistrations = model.CollectionRegistrations

// Registration validates an event registration.
func Registration(reg model.EventRegistration) Errors {
	var errs Errors

	if reg.RegistrationNumber == "" {
		errs.Add("registrationNumber", "Registration number is required")
	}
	if reg.EventID == 0 {
		errs.Add("event", "Event is required")
	}
	if reg.UserID == 0 {
		errs.Add("user", "User is required")
	}

	if reg.Status == "" {
		errs.Add("status", "Status is required")
	}
	checkOption(&errs, collRegistrations, "status", reg.Status)
	if reg.RegistrationType == "" {
		errs.Add("registrationType", "Registration type is required")
	}
	checkOption(&errs, collRegistrations, "registrationType", reg.RegistrationType)

	checkRange(&errs, collRegistrations, "numberOfGuests", float64(reg.NumberOfGuests))
	if GuestNamesRequired(reg) {
		if len(reg.GuestNames) == 0 {
			errs.Add("guestNames", "Guest names are required when bringing guests")
		} else if len(reg.GuestNames) > reg.NumberOfGuests {
			errs.Add("guestNames", fmt.Sprintf("At most %d guests can be named", reg.NumberOfGuests))
		}
	} else if len(reg.GuestNames) > 0 {
		errs.Add("guestNames", "Guest names given but number of guests is 0")
	}
	for i, g := range reg.GuestNames {
		if strings.TrimSpace(g.Name) == "" {
			errs.Add(fmt.Sprintf("guestNames.%d.name", i), "Guest name is required")
		}
		if g.Email != "" && !IsValidEmail(g.Email) {
			errs.Add(fmt.Sprintf("guestNames.%d.email", i), "Invalid email format")
		}
	}

	checkRange(&errs, collRegistrations, "payment.amount", reg.Payment.Amount)
	checkOption(&errs, collRegistrations, "payment.method", reg.Payment.Method)
	if PaymentReferenceRequired(reg) && reg.Payment.ExternalPaymentID == "" {
		errs.Add("payment.stripePaymentId", "Payment reference is required for credit card payments")
	}

	if CheckInDetailsRequired(reg) {
		if reg.CheckIn.CheckedInAt == nil {
			errs.Add("checkIn.checkedInAt", "Check-in time is required")
		}
		if reg.CheckIn.CheckedInBy == nil {
			errs.Add("checkIn.checkedInBy", "Checked in by is required")
		}
	}

	return errs
}
