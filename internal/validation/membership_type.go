// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package validation

import (
	"fmt"
	"strings"

	"github.com/olegiv/ypng-go/internal/model"
	"github.com/olegiv/ypng-go/internal/schema"
	"github.com/olegiv/ypng-go/internal/util"
)

const collMembershipTypes = model.CollectionMembershipTypes

// MembershipType validates a membership type.
func MembershipType(mt model.MembershipType) Errors {
	var errs Errors

	if mt.Name == "" {
		errs.Add("name", "Name is required")
	}
	if mt.Slug == "" {
		errs.Add("slug", "Slug is required")
	} else if !util.IsValidSlug(mt.Slug) {
		errs.Add("slug", "Invalid slug format (use lowercase letters, numbers, and hyphens)")
	}
	if mt.Description == "" {
		errs.Add("description", "Description is required")
	}

	checkRange(&errs, collMembershipTypes, "price", mt.Price)
	if PriceReferenceRequired(mt) && mt.ExternalPriceID == "" {
		errs.Add("stripePriceId", "Price reference is required for paid memberships")
	}

	if mt.Duration == "" {
		errs.Add("duration", "Duration is required")
	}
	checkOption(&errs, collMembershipTypes, "duration", mt.Duration)

	if len(mt.Benefits) < schema.Lookup(collMembershipTypes).Field("benefits").MinRows {
		errs.Add("benefits", "At least one benefit is required")
	}
	for i, b := range mt.Benefits {
		if strings.TrimSpace(b.Text) == "" {
			errs.Add(fmt.Sprintf("benefits.%d.benefit", i), "Benefit text is required")
		}
	}

	f := mt.Features
	if f.EventDiscountPercentage != nil {
		checkRange(&errs, collMembershipTypes, "features.eventDiscountPercentage", *f.EventDiscountPercentage)
	}
	if f.MaxGuests != nil {
		checkRange(&errs, collMembershipTypes, "features.maxGuests", float64(*f.MaxGuests))
	}

	el := mt.Eligibility
	if el.MinAge != nil {
		checkRange(&errs, collMembershipTypes, "eligibility.minAge", float64(*el.MinAge))
	}
	if el.MaxAge != nil {
		checkRange(&errs, collMembershipTypes, "eligibility.maxAge", float64(*el.MaxAge))
	}
	if el.MinAge != nil && el.MaxAge != nil && *el.MinAge > *el.MaxAge {
		errs.Add("eligibility.maxAge", "Maximum age must not be below minimum age")
	}

	if mt.MaxMembers != nil && MaxMembersApplies(mt) {
		checkRange(&errs, collMembershipTypes, "maxMembers", float64(*mt.MaxMembers))
	}
	if mt.RenewalReminder != nil && RenewalReminderApplies(mt) && *mt.RenewalReminder < 0 {
		errs.Add("renewalReminder", "Must be at least 0")
	}

	if mt.Color != "" && !IsValidColor(mt.Color) {
		errs.Add("color", "Color must be a hex value such as #1a2b3c")
	}

	return errs
}
