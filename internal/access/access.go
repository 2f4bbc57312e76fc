// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package access decides what an actor may do with a collection.
//
// Authorize is a pure function of (collection, operation, actor) and returns
// a Decision: allow, deny, or a row filter restricting the records the actor
// may see or change. Field-level rules (who may write or see a field) are
// evaluated separately against the schema flags.
package access

import (
	"fmt"

	"github.com/olegiv/ypng-go/internal/model"
	"github.com/olegiv/ypng-go/internal/schema"
)

// Kind is the outcome of an access decision.
type Kind int

// Decision kinds.
const (
	KindDeny Kind = iota
	KindAllow
	KindFilter
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindAllow:
		return "allow"
	case KindFilter:
		return "filter"
	default:
		return "deny"
	}
}

// Predicate restricts records to those whose Field equals Equals.
// Field names are schema field names ("id", "user").
type Predicate struct {
	Field  string
	Equals int64
}

// String returns the predicate in readable form.
func (p Predicate) String() string {
	return fmt.Sprintf("%s == %d", p.Field, p.Equals)
}

// Decision is the result of Authorize. Filter is set only when Kind is KindFilter.
type Decision struct {
	Kind   Kind
	Filter Predicate
}

// Allow returns an unconditional allow.
func Allow() Decision { return Decision{Kind: KindAllow} }

// Deny returns a denial.
func Deny() Decision { return Decision{Kind: KindDeny} }

// FilterBy returns a row filter on field == equals.
func FilterBy(field string, equals int64) Decision {
	return Decision{Kind: KindFilter, Filter: Predicate{Field: field, Equals: equals}}
}

// Denied reports whether the operation is refused outright.
func (d Decision) Denied() bool { return d.Kind == KindDeny }

// Filtered reports whether the operation is restricted to matching records.
func (d Decision) Filtered() bool { return d.Kind == KindFilter }

// String returns the decision in readable form.
func (d Decision) String() string {
	if d.Kind == KindFilter {
		return "filter(" + d.Filter.String() + ")"
	}
	return d.Kind.String()
}

// Permits reports whether the decision admits the given record. Records are
// model values or pointers to them.
func (d Decision) Permits(record any) bool {
	switch d.Kind {
	case KindAllow:
		return true
	case KindFilter:
		v, ok := FieldValue(record, d.Filter.Field)
		return ok && v == d.Filter.Equals
	default:
		return false
	}
}

// FieldValue extracts an integer reference field from a record for
// in-memory predicate evaluation.
func FieldValue(record any, field string) (int64, bool) {
	switch r := record.(type) {
	case *model.User:
		return FieldValue(*r, field)
	case *model.EventRegistration:
		return FieldValue(*r, field)
	case *model.Event:
		return FieldValue(*r, field)
	case model.User:
		if field == "id" {
			return r.ID, true
		}
	case model.EventRegistration:
		switch field {
		case "id":
			return r.ID, true
		case "user":
			return r.UserID, true
		case "event":
			return r.EventID, true
		}
	case model.Event:
		if field == "id" {
			return r.ID, true
		}
	}
	return 0, false
}

// Authorize evaluates record-level access. It panics for undeclared
// collections.
func Authorize(collection string, op model.Operation, actor model.Actor) Decision {
	schema.Lookup(collection)

	switch collection {
	case model.CollectionUsers:
		return authorizeUsers(op, actor)
	case model.CollectionEvents:
		return authorizeEvents(op, actor)
	case model.CollectionRegistrations:
		return authorizeRegistrations(op, actor)
	case model.CollectionMembershipTypes:
		return authorizeMembershipTypes(op, actor)
	case model.CollectionMedia:
		return authorizeMedia(op, actor)
	}
	return Deny()
}

func authorizeUsers(op model.Operation, actor model.Actor) Decision {
	switch op {
	case model.OpCreate:
		return Allow()
	case model.OpRead, model.OpUpdate:
		if actor.IsAdmin() {
			return Allow()
		}
		if actor.IsAnonymous() {
			return Deny()
		}
		return FilterBy("id", actor.ID)
	case model.OpDelete:
		if actor.IsAdmin() {
			return Allow()
		}
	}
	return Deny()
}

func authorizeEvents(op model.Operation, actor model.Actor) Decision {
	switch op {
	case model.OpRead:
		return Allow()
	case model.OpCreate, model.OpUpdate:
		if !actor.IsAnonymous() {
			return Allow()
		}
	case model.OpDelete:
		if actor.IsAdmin() {
			return Allow()
		}
	}
	return Deny()
}

func authorizeRegistrations(op model.Operation, actor model.Actor) Decision {
	if actor.IsAnonymous() {
		return Deny()
	}
	switch op {
	case model.OpRead:
		if actor.IsPrivileged() {
			return Allow()
		}
		return FilterBy("user", actor.ID)
	case model.OpCreate:
		return Allow()
	case model.OpUpdate:
		if actor.IsPrivileged() {
			return Allow()
		}
	case model.OpDelete:
		if actor.IsAdmin() {
			return Allow()
		}
	}
	return Deny()
}

func authorizeMembershipTypes(op model.Operation, actor model.Actor) Decision {
	if op == model.OpRead || actor.IsAdmin() {
		return Allow()
	}
	return Deny()
}

func authorizeMedia(op model.Operation, actor model.Actor) Decision {
	switch op {
	case model.OpRead:
		return Allow()
	case model.OpCreate:
		if !actor.IsAnonymous() {
			return Allow()
		}
	case model.OpUpdate:
		if actor.IsPrivileged() {
			return Allow()
		}
	case model.OpDelete:
		if actor.IsAdmin() {
			return Allow()
		}
	}
	return Deny()
}

// CanAccessAdmin reports whether the actor may use the administration surface.
func CanAccessAdmin(actor model.Actor) bool {
	return actor.IsPrivileged()
}
