// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain entities of the membership site
// (users, events, registrations, media, membership types) and their enumerations.
package model

import (
	"time"
)

// User roles.
const (
	RoleAdmin  = "admin"
	RoleStaff  = "staff"
	RoleBoard  = "board"
	RoleMember = "member"
	RoleGuest  = "guest"
)

// Roles lists every user role.
var Roles = []string{RoleAdmin, RoleStaff, RoleBoard, RoleMember, RoleGuest}

// IsValidRole reports whether role is one of Roles.
func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Account statuses. Only admins may change a user's account status.
const (
	AccountActive    = "active"
	AccountInactive  = "inactive"
	AccountSuspended = "suspended"
	AccountBanned    = "banned"
)

// Membership statuses.
const (
	MembershipActive    = "active"
	MembershipExpired   = "expired"
	MembershipPending   = "pending"
	MembershipCancelled = "cancelled"
	MembershipNone      = "none"
)

// Account lockout policy applied at login.
const (
	MaxLoginAttempts = 5
	LockDuration     = 10 * time.Minute
)

// User represents a site account and, when it holds a membership, a member.
type User struct {
	ID              int64       `json:"id"`
	Email           string      `json:"email"`
	PasswordHash    string      `json:"-"`
	FirstName       string      `json:"firstName"`
	LastName        string      `json:"lastName"`
	DisplayName     string      `json:"displayName"`
	Bio             string      `json:"bio,omitempty"`
	AvatarID        *int64      `json:"avatar,omitempty"`
	Phone           string      `json:"phone,omitempty"`
	DateOfBirth     *time.Time  `json:"dateOfBirth,omitempty"`
	Role            string      `json:"role"`
	Permissions     []string    `json:"permissions,omitempty"`
	EmailVerifiedAt *time.Time  `json:"emailVerified,omitempty"`
	LoginAttempts   int         `json:"loginAttempts"`
	LockUntil       *time.Time  `json:"lockUntil,omitempty"`
	Membership      Membership  `json:"membership"`
	Billing         Billing     `json:"billing"`
	Preferences     Preferences `json:"preferences"`
	Interests       []string    `json:"interests,omitempty"`
	LastLogin       *time.Time  `json:"lastLogin,omitempty"`
	LoginCount      int         `json:"loginCount"`
	Notes           string      `json:"notes,omitempty"`
	Tags            []string    `json:"tags,omitempty"`
	Status          string      `json:"status"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// Membership is the membership sub-record of a user.
type Membership struct {
	Status         string     `json:"status"`
	TypeID         *int64     `json:"type,omitempty"`
	MemberNumber   string     `json:"memberNumber,omitempty"`
	JoinDate       *time.Time `json:"joinDate,omitempty"`
	RenewalDate    *time.Time `json:"renewalDate,omitempty"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
	AutoRenew      bool       `json:"autoRenew"`
	Lifetime       bool       `json:"lifetime"`
}

// Billing is the billing sub-record of a user. It is maintained by the
// billing integration and is read-only for everyone else.
type Billing struct {
	CustomerID     string          `json:"customerId,omitempty"`
	PaymentMethods []PaymentMethod `json:"paymentMethods,omitempty"`
	TotalDonated   float64         `json:"totalDonated"`
	TotalPaid      float64         `json:"totalPaid"`
}

// PaymentMethod is a saved payment method reference.
type PaymentMethod struct {
	ID        string `json:"id"`
	Type      string `json:"type,omitempty"` // card or bank
	Last4     string `json:"last4,omitempty"`
	IsDefault bool   `json:"isDefault"`
}

// Preferences holds the user's communication and directory preferences.
// Nil flags take their schema default.
type Preferences struct {
	Newsletter         *bool `json:"newsletter,omitempty"`
	EventNotifications *bool `json:"eventNotifications,omitempty"`
	RenewalReminders   *bool `json:"renewalReminders,omitempty"`
	ShowInDirectory    *bool `json:"showInDirectory,omitempty"`
	ShareContactInfo   *bool `json:"shareContactInfo,omitempty"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsLocked reports whether the account is locked at the given time.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && now.Before(*u.LockUntil)
}

// HasActiveMembership reports whether the user currently holds an active membership.
func (u *User) HasActiveMembership() bool {
	return u.Membership.Status == MembershipActive
}

// Actor returns the access-control identity of the user.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}
