// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/olegiv/ypng-go/internal/model"
	"github.com/olegiv/ypng-go/internal/store"
	"github.com/olegiv/ypng-go/internal/validation"
)

// AuthorizationError reports that the actor may not perform an operation.
// Fields lists protected fields the actor tried to write, when that was the cause.
type AuthorizationError struct {
	Collection string
	Operation  model.Operation
	Fields     []string
	Anonymous  bool
}

func (e *AuthorizationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("not allowed to write %s fields: %s", e.Collection, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("not allowed to %s %s", e.Operation, e.Collection)
}

// ValidationError carries every field failure of a rejected record.
type ValidationError struct {
	Collection string
	Errors     validation.Errors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Collection, e.Errors.Error())
}

// ConflictError reports a uniqueness violation at persistence time. Field is
// empty when the violated column cannot be mapped to a field.
type ConflictError struct {
	Collection string
	Field      string
	Err        error
}

func (e *ConflictError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s already exists", e.Collection)
	}
	return fmt.Sprintf("%s with this %s already exists", e.Collection, e.Field)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a missing record or relationship target.
type NotFoundError struct {
	Collection string
	ID         int64
	Key        string
}

func (e *NotFoundError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %q not found", e.Collection, e.Key)
	}
	return fmt.Sprintf("%s %d not found", e.Collection, e.ID)
}

func denied(collection string, op model.Operation, actor model.Actor, fields ...string) *AuthorizationError {
	return &AuthorizationError{
		Collection: collection,
		Operation:  op,
		Fields:     fields,
		Anonymous:  actor.IsAnonymous(),
	}
}

func invalid(collection string, errs validation.Errors) *ValidationError {
	return &ValidationError{Collection: collection, Errors: errs}
}

func invalidField(collection, field, message string) *ValidationError {
	var errs validation.Errors
	errs.Add(field, message)
	return invalid(collection, errs)
}

// lookupErr maps sql.ErrNoRows to *NotFoundError and wraps anything else.
func lookupErr(collection string, id int64, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Collection: collection, ID: id}
	}
	return fmt.Errorf("loading %s %d: %w", collection, id, err)
}

// saveErr maps a store duplicate to *ConflictError and wraps anything else.
func saveErr(collection string, err error) error {
	var dup *store.DuplicateError
	if errors.As(err, &dup) {
		return &ConflictError{Collection: collection, Field: dup.Field, Err: err}
	}
	return fmt.Errorf("saving %s: %w", collection, err)
}
