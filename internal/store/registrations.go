// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/olegiv/ypng-go/internal/access"
	"github.com/olegiv/ypng-go/internal/model"
)

const registrationColumns = `id, registration_number, event_id, user_id, status, registration_type,
	number_of_guests, guest_names, payment, dietary_restrictions, special_requests, check_in, notes,
	email_confirmation_sent, created_at, updated_at`

func registrationArgs(reg model.EventRegistration) ([]any, error) {
	guests := reg.GuestNames
	if guests == nil {
		guests = []model.Guest{}
	}
	js, err := jsonColumns(guests, reg.Payment, reg.CheckIn)
	if err != nil {
		return nil, err
	}
	return []any{
		reg.RegistrationNumber, reg.EventID, reg.UserID, reg.Status, reg.RegistrationType,
		reg.NumberOfGuests, js[0], js[1], reg.DietaryRestrictions, reg.SpecialRequests, js[2], reg.Notes,
		reg.UpdatedAt,
	}, nil
}

const createRegistration = `INSERT INTO event_registrations (
	registration_number, event_id, user_id, status, registration_type,
	number_of_guests, guest_names, payment, dietary_restrictions, special_requests, check_in, notes,
	updated_at, email_confirmation_sent, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// CreateRegistration inserts reg and returns the stored row.
func (q *Queries) CreateRegistration(ctx context.Context, reg model.EventRegistration) (model.EventRegistration, error) {
	args, err := registrationArgs(reg)
	if err != nil {
		return model.EventRegistration{}, err
	}
	args = append(args, boolInt(reg.EmailConfirmationSent), reg.CreatedAt)
	res, err := q.db.ExecContext(ctx, createRegistration, args...)
	if err != nil {
		return model.EventRegistration{}, asDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.EventRegistration{}, err
	}
	return q.GetRegistration(ctx, id)
}

const getRegistration = `SELECT ` + registrationColumns + ` FROM event_registrations WHERE id = ?`

// GetRegistration returns the registration with id, or sql.ErrNoRows.
func (q *Queries) GetRegistration(ctx context.Context, id int64) (model.EventRegistration, error) {
	return scanRegistration(q.db.QueryRowContext(ctx, getRegistration, id))
}

const updateRegistration = `UPDATE event_registrations SET
	registration_number = ?, event_id = ?, user_id = ?, status = ?, registration_type = ?,
	number_of_guests = ?, guest_names = ?, payment = ?, dietary_restrictions = ?, special_requests = ?,
	check_in = ?, notes = ?, updated_at = ?
WHERE id = ?`

// UpdateRegistration overwrites the stored row of reg.ID with reg. The
// confirmation flag is left alone; see ClaimConfirmation.
func (q *Queries) UpdateRegistration(ctx context.Context, reg model.EventRegistration) (model.EventRegistration, error) {
	args, err := registrationArgs(reg)
	if err != nil {
		return model.EventRegistration{}, err
	}
	args = append(args, reg.ID)
	if _, err := q.db.ExecContext(ctx, updateRegistration, args...); err != nil {
		return model.EventRegistration{}, asDuplicate(err)
	}
	return q.GetRegistration(ctx, reg.ID)
}

const (
	claimConfirmation   = `UPDATE event_registrations SET email_confirmation_sent = 1 WHERE id = ? AND email_confirmation_sent = 0`
	releaseConfirmation = `UPDATE event_registrations SET email_confirmation_sent = 0 WHERE id = ?`
)

// ClaimConfirmation sets the confirmation flag if it is clear and reports
// whether this call set it. Exactly one of any number of concurrent callers
// wins.
func (q *Queries) ClaimConfirmation(ctx context.Context, id int64) (bool, error) {
	res, err := q.db.ExecContext(ctx, claimConfirmation, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ReleaseConfirmation clears the flag after a failed send so a later save
// can try again.
func (q *Queries) ReleaseConfirmation(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, releaseConfirmation, id)
	return err
}

const deleteRegistration = `DELETE FROM event_registrations WHERE id = ?`

// DeleteRegistration removes the registration with id.
func (q *Queries) DeleteRegistration(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteRegistration, id)
	return err
}

// ListRegistrations lists registrations, newest first.
func (q *Queries) ListRegistrations(ctx context.Context, arg ListParams) ([]model.EventRegistration, error) {
	where, args, err := whereClause("event_registrations", arg.Filter)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + registrationColumns + ` FROM event_registrations` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, arg.limit(), arg.Offset)
	return q.queryRegistrations(ctx, query, args...)
}

// ListEventRegistrations lists the registrations of one event, restricted by
// filter when it is set.
func (q *Queries) ListEventRegistrations(ctx context.Context, eventID int64, filter *access.Predicate) ([]model.EventRegistration, error) {
	and, args, err := andFilter("event_registrations", filter)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + registrationColumns + ` FROM event_registrations WHERE event_id = ?` + and +
		` ORDER BY created_at, id`
	return q.queryRegistrations(ctx, query, append([]any{eventID}, args...)...)
}

// CountEventRegistrations counts the registrations of an event in any of
// statuses, skipping excludeID (0 to count all).
func (q *Queries) CountEventRegistrations(ctx context.Context, eventID int64, statuses []string, excludeID int64) (int, error) {
	if len(statuses) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(statuses)), ", ")
	query := fmt.Sprintf(`SELECT COUNT(*) FROM event_registrations
WHERE event_id = ? AND id != ? AND status IN (%s)`, placeholders)

	args := []any{eventID, excludeID}
	for _, s := range statuses {
		args = append(args, s)
	}
	var n int
	err := q.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func (q *Queries) queryRegistrations(ctx context.Context, query string, args ...any) ([]model.EventRegistration, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []model.EventRegistration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, reg)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanRegistration(s scanner) (model.EventRegistration, error) {
	var (
		reg                      model.EventRegistration
		guests, payment, checkIn string
		sent                     int64
	)
	err := s.Scan(
		&reg.ID, &reg.RegistrationNumber, &reg.EventID, &reg.UserID, &reg.Status, &reg.RegistrationType,
		&reg.NumberOfGuests, &guests, &payment, &reg.DietaryRestrictions, &reg.SpecialRequests, &checkIn,
		&reg.Notes, &sent, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		return model.EventRegistration{}, err
	}
	reg.EmailConfirmationSent = sent != 0
	if err := decodeJSON(guests, &reg.GuestNames); err != nil {
		return model.EventRegistration{}, fmt.Errorf("decoding registration %d guests: %w", reg.ID, err)
	}
	if err := decodeJSON(payment, &reg.Payment); err != nil {
		return model.EventRegistration{}, fmt.Errorf("decoding registration %d payment: %w", reg.ID, err)
	}
	if err := decodeJSON(checkIn, &reg.CheckIn); err != nil {
		return model.EventRegistration{}, fmt.Errorf("decoding registration %d check-in: %w", reg.ID, err)
	}
	if len(reg.GuestNames) == 0 {
		reg.GuestNames = nil
	}
	return reg, nil
}
