// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"time"
)

// Membership durations.
const (
	DurationMonthly   = "monthly"
	DurationQuarterly = "quarterly"
	DurationAnnual    = "annual"
	DurationLifetime  = "lifetime"
)

// MembershipType is a purchasable membership tier.
type MembershipType struct {
	ID              int64       `json:"id"`
	Name            string      `json:"name"`
	Slug            string      `json:"slug"`
	Description     string      `json:"description"`
	Price           float64     `json:"price"`
	ExternalPriceID string      `json:"stripePriceId,omitempty"`
	Duration        string      `json:"duration"`
	Benefits        []Benefit   `json:"benefits"`
	Features        Features    `json:"features"`
	Eligibility     Eligibility `json:"eligibility"`
	SortOrder       int         `json:"sortOrder"`
	IsActive        *bool       `json:"isActive,omitempty"`
	IsFeatured      bool        `json:"isFeatured"`
	MaxMembers      *int        `json:"maxMembers,omitempty"`
	RenewalReminder *int        `json:"renewalReminder,omitempty"` // days before expiration
	Color           string      `json:"color,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// Benefit is one line in a membership type's benefit list.
type Benefit struct {
	Text     string `json:"benefit"`
	Included *bool  `json:"included,omitempty"`
}

// Features are the feature flags granted by a membership type.
type Features struct {
	EventDiscountPercentage  *float64 `json:"eventDiscountPercentage,omitempty"`
	MaxGuests                *int     `json:"maxGuests,omitempty"`
	CanAccessMemberDirectory *bool    `json:"canAccessMemberDirectory,omitempty"`
	CanPostJobs              bool     `json:"canPostJobs"`
	CanSponsorEvents         bool     `json:"canSponsorEvents"`
	PriorityRegistration     bool     `json:"priorityRegistration"`
}

// Eligibility constrains who may hold a membership type.
type Eligibility struct {
	MinAge               *int   `json:"minAge,omitempty"`
	MaxAge               *int   `json:"maxAge,omitempty"`
	RequiresVerification bool   `json:"requiresVerification"`
	Requirements         string `json:"requirements,omitempty"`
}

// IsLifetime reports whether the membership never expires.
func (m *MembershipType) IsLifetime() bool {
	return m.Duration == DurationLifetime
}

// SupportsMaxMembers reports whether a member cap applies to this type.
// Only group-style tiers carry one.
func (m *MembershipType) SupportsMaxMembers() bool {
	return m.Slug == "corporate" || m.Slug == "group"
}

// Term returns the membership period starting at from, and false for lifetime memberships.
func (m *MembershipType) Term(from time.Time) (time.Time, bool) {
	switch m.Duration {
	case DurationMonthly:
		return from.AddDate(0, 1, 0), true
	case DurationQuarterly:
		return from.AddDate(0, 3, 0), true
	case DurationAnnual:
		return from.AddDate(1, 0, 0), true
	default:
		return time.Time{}, false
	}
}
