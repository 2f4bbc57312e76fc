// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Collection names.
const (
	CollectionUsers           = "users"
	CollectionEvents          = "events"
	CollectionRegistrations   = "event-registrations"
	CollectionMedia           = "media"
	CollectionMembershipTypes = "membership-types"
)

// Operation is a mutation or read performed on a collection.
type Operation string

// Supported operations.
const (
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Actor is the identity performing an operation. The zero value is anonymous.
type Actor struct {
	ID   int64  `json:"id"`
	Role string `json:"role"`
}

// Anonymous returns the anonymous actor.
func Anonymous() Actor {
	return Actor{}
}

// IsAnonymous reports whether the actor is unauthenticated.
func (a Actor) IsAnonymous() bool {
	return a.ID == 0
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool {
	return !a.IsAnonymous() && a.Role == RoleAdmin
}

// IsPrivileged reports whether the actor is admin or staff.
func (a Actor) IsPrivileged() bool {
	return !a.IsAnonymous() && (a.Role == RoleAdmin || a.Role == RoleStaff)
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}

// Int returns a pointer to i.
func Int(i int) *int {
	return &i
}

// Int64 returns a pointer to i.
func Int64(i int64) *int64 {
	return &i
}

// Float returns a pointer to f.
func Float(f float64) *float64 {
	return &f
}

// BoolValue returns the value of p, or false when p is nil.
func BoolValue(p *bool) bool {
	return p != nil && *p
}

// IntValue returns the value of p, or 0 when p is nil.
func IntValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
