// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"fmt"
	"strings"
)

// DuplicateError reports a unique constraint violation. Field is the schema
// field name of the violated column, or empty when it cannot be derived.
type DuplicateError struct {
	Table  string
	Column string
	Field  string
	Err    error
}

func (e *DuplicateError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("duplicate value in %s", e.Table)
	}
	return fmt.Sprintf("duplicate %s in %s", e.Field, e.Table)
}

func (e *DuplicateError) Unwrap() error {
	return e.Err
}

// uniqueFields maps table.column to the schema field it stores.
var uniqueFields = map[string]string{
	"users.email":                             "email",
	"users.member_number":                     "membership.memberNumber",
	"events.slug":                             "slug",
	"event_registrations.registration_number": "registrationNumber",
	"membership_types.slug":                   "slug",
	"media.uuid":                              "uuid",
	"signal_deliveries.idempotency_key":       "idempotencyKey",
}

const uniqueFailed = "UNIQUE constraint failed: "

// asDuplicate converts a driver unique violation into *DuplicateError and
// returns any other error unchanged. Both SQLite drivers report the
// constraint as "UNIQUE constraint failed: table.column".
func asDuplicate(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	i := strings.Index(msg, uniqueFailed)
	if i < 0 {
		return err
	}
	target := msg[i+len(uniqueFailed):]
	if j := strings.IndexAny(target, ", )"); j >= 0 {
		target = target[:j]
	}
	table, column, _ := strings.Cut(target, ".")
	return &DuplicateError{
		Table:  table,
		Column: column,
		Field:  uniqueFields[target],
		Err:    err,
	}
}
