// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package validation

import (
	"github.com/olegiv/ypng-go/internal/model"
)

const collUsers = model.CollectionUsers

// User validates a user record. The password is checked separately by
// Password because only its hash is stored on the record.
func User(u model.User) Errors {
	var errs Errors

	if u.Email == "" {
		errs.Add("email", "Email is required")
	} else if !IsValidEmail(u.Email) {
		errs.Add("email", "Invalid email format")
	}

	if u.FirstName == "" {
		errs.Add("firstName", "First name is required")
	}
	if u.LastName == "" {
		errs.Add("lastName", "Last name is required")
	}
	checkMaxLength(&errs, collUsers, "bio", u.Bio)

	if u.Role == "" {
		errs.Add("role", "Role is required")
	}
	checkOption(&errs, collUsers, "role", u.Role)
	checkOption(&errs, collUsers, "status", u.Status)

	if len(u.Permissions) > 0 {
		if PermissionsApply(u) {
			checkOptions(&errs, collUsers, "permissions", u.Permissions)
		} else {
			errs.Add("permissions", "Permissions can only be assigned to staff and board members")
		}
	}
	checkOptions(&errs, collUsers, "interests", u.Interests)
	checkOptions(&errs, collUsers, "tags", u.Tags)

	m := u.Membership
	checkOption(&errs, collUsers, "membership.status", m.Status)
	if m.JoinDate != nil {
		if m.RenewalDate != nil && m.RenewalDate.Before(*m.JoinDate) {
			errs.Add("membership.renewalDate", "Renewal date must be after the join date")
		}
		if ExpirationApplies(u) && m.ExpirationDate != nil && m.ExpirationDate.Before(*m.JoinDate) {
			errs.Add("membership.expirationDate", "Expiration date must be after the join date")
		}
	}

	return errs
}
