// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/olegiv/ypng-go/internal/model"
	"github.com/olegiv/ypng-go/internal/util"
)

const userColumns = `id, email, password_hash, first_name, last_name, display_name, bio, avatar_id,
	phone, date_of_birth, role, permissions, email_verified_at, login_attempts, lock_until,
	membership_status, membership_type_id, member_number, membership_join_date,
	membership_renewal_date, membership_expiration_date, membership_auto_renew, membership_lifetime,
	billing, preferences, interests, last_login, login_count, notes, tags, status, created_at, updated_at`

// userArgs returns the column values of every mutable user column, in
// insertion order (all columns except id and created_at).
func userArgs(u model.User) ([]any, error) {
	js, err := jsonColumns(u.Permissions, u.Billing, u.Preferences, u.Interests, u.Tags)
	if err != nil {
		return nil, err
	}
	if u.Permissions == nil {
		js[0] = "[]"
	}
	if u.Interests == nil {
		js[3] = "[]"
	}
	if u.Tags == nil {
		js[4] = "[]"
	}
	return []any{
		u.Email, u.PasswordHash, u.FirstName, u.LastName, u.DisplayName, u.Bio,
		util.NullInt64FromPtr(u.AvatarID), u.Phone, util.NullTimeFromPtr(u.DateOfBirth),
		u.Role, js[0], util.NullTimeFromPtr(u.EmailVerifiedAt), u.LoginAttempts,
		util.NullTimeFromPtr(u.LockUntil),
		u.Membership.Status, util.NullInt64FromPtr(u.Membership.TypeID),
		util.NullStringFromValue(u.Membership.MemberNumber),
		util.NullTimeFromPtr(u.Membership.JoinDate), util.NullTimeFromPtr(u.Membership.RenewalDate),
		util.NullTimeFromPtr(u.Membership.ExpirationDate),
		boolInt(u.Membership.AutoRenew), boolInt(u.Membership.Lifetime),
		js[1], js[2], js[3], util.NullTimeFromPtr(u.LastLogin), u.LoginCount, u.Notes, js[4],
		u.Status, u.UpdatedAt,
	}, nil
}

const createUser = `INSERT INTO users (
	email, password_hash, first_name, last_name, display_name, bio, avatar_id,
	phone, date_of_birth, role, permissions, email_verified_at, login_attempts, lock_until,
	membership_status, membership_type_id, member_number, membership_join_date,
	membership_renewal_date, membership_expiration_date, membership_auto_renew, membership_lifetime,
	billing, preferences, interests, last_login, login_count, notes, tags, status, updated_at, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// CreateUser inserts u and returns the stored row.
func (q *Queries) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	args, err := userArgs(u)
	if err != nil {
		return model.User{}, err
	}
	args = append(args, u.CreatedAt)
	res, err := q.db.ExecContext(ctx, createUser, args...)
	if err != nil {
		return model.User{}, asDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return q.GetUser(ctx, id)
}

const getUser = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

// GetUser returns the user with id, or sql.ErrNoRows.
func (q *Queries) GetUser(ctx context.Context, id int64) (model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUser, id))
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = ?`

// GetUserByEmail returns the user with email, or sql.ErrNoRows.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const updateUser = `UPDATE users SET
	email = ?, password_hash = ?, first_name = ?, last_name = ?, display_name = ?, bio = ?, avatar_id = ?,
	phone = ?, date_of_birth = ?, role = ?, permissions = ?, email_verified_at = ?, login_attempts = ?,
	lock_until = ?, membership_status = ?, membership_type_id = ?, member_number = ?,
	membership_join_date = ?, membership_renewal_date = ?, membership_expiration_date = ?,
	membership_auto_renew = ?, membership_lifetime = ?, billing = ?, preferences = ?, interests = ?,
	last_login = ?, login_count = ?, notes = ?, tags = ?, status = ?, updated_at = ?
WHERE id = ?`

// UpdateUser overwrites the stored row of u.ID with u.
func (q *Queries) UpdateUser(ctx context.Context, u model.User) (model.User, error) {
	args, err := userArgs(u)
	if err != nil {
		return model.User{}, err
	}
	args = append(args, u.ID)
	if _, err := q.db.ExecContext(ctx, updateUser, args...); err != nil {
		return model.User{}, asDuplicate(err)
	}
	return q.GetUser(ctx, u.ID)
}

// UpdateUserLoginParams carries the login bookkeeping columns.
type UpdateUserLoginParams struct {
	ID            int64
	LoginAttempts int
	LockUntil     *time.Time
	LastLogin     *time.Time
	LoginCount    int
	UpdatedAt     time.Time
}

const updateUserLogin = `UPDATE users SET login_attempts = ?, lock_until = ?, last_login = ?, login_count = ?, updated_at = ?
WHERE id = ?`

// UpdateUserLogin writes the login counters without touching the rest of the row.
func (q *Queries) UpdateUserLogin(ctx context.Context, arg UpdateUserLoginParams) error {
	_, err := q.db.ExecContext(ctx, updateUserLogin,
		arg.LoginAttempts,
		util.NullTimeFromPtr(arg.LockUntil),
		util.NullTimeFromPtr(arg.LastLogin),
		arg.LoginCount,
		arg.UpdatedAt,
		arg.ID,
	)
	return err
}

const deleteUser = `DELETE FROM users WHERE id = ?`

// DeleteUser removes the user and, by cascade, their registrations.
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteUser, id)
	return err
}

// ListUsers lists users ordered by last and first name.
func (q *Queries) ListUsers(ctx context.Context, arg ListParams) ([]model.User, error) {
	where, args, err := whereClause("users", arg.Filter)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + userColumns + ` FROM users` + where + ` ORDER BY last_name, first_name, id LIMIT ? OFFSET ?`
	args = append(args, arg.limit(), arg.Offset)
	return q.queryUsers(ctx, query, args...)
}

const listUsersByRole = `SELECT ` + userColumns + ` FROM users
WHERE role = ? AND status = 'active'
ORDER BY last_name, first_name, id`

// ListUsersByRole lists the active accounts holding role.
func (q *Queries) ListUsersByRole(ctx context.Context, role string) ([]model.User, error) {
	return q.queryUsers(ctx, listUsersByRole, role)
}

const listDirectoryMembers = `SELECT ` + userColumns + ` FROM users
WHERE status = 'active'
  AND membership_status = 'active'
  AND json_extract(preferences, '$.showInDirectory') = 1
ORDER BY last_name, first_name, id`

// ListDirectoryMembers lists active members who opted into the public directory.
func (q *Queries) ListDirectoryMembers(ctx context.Context) ([]model.User, error) {
	return q.queryUsers(ctx, listDirectoryMembers)
}

const listActiveMemberships = `SELECT ` + userColumns + ` FROM users
WHERE membership_status = 'active' AND membership_lifetime = 0 AND membership_expiration_date IS NOT NULL
ORDER BY id`

// ListExpiringMemberships lists active, non-lifetime memberships that carry
// an expiration date.
func (q *Queries) ListExpiringMemberships(ctx context.Context) ([]model.User, error) {
	return q.queryUsers(ctx, listActiveMemberships)
}

const countUsersWithMembershipType = `SELECT COUNT(*) FROM users
WHERE membership_type_id = ? AND membership_status = 'active'`

// CountActiveMembersOfType counts active memberships of a membership type.
func (q *Queries) CountActiveMembersOfType(ctx context.Context, typeID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countUsersWithMembershipType, typeID).Scan(&n)
	return n, err
}

const countUsers = `SELECT COUNT(*) FROM users`

// CountUsers counts all accounts.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countUsers).Scan(&n)
	return n, err
}

func (q *Queries) queryUsers(ctx context.Context, query string, args ...any) ([]model.User, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (model.User, error) {
	var (
		u                                                 model.User
		avatarID, typeID                                  sql.NullInt64
		memberNumber                                      sql.NullString
		dob, verified, lockUntil, join, renew, exp, login sql.NullTime
		autoRenew, lifetime                               int64
		permissions, billing, prefs, interests, tags      string
	)
	err := s.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.DisplayName, &u.Bio, &avatarID,
		&u.Phone, &dob, &u.Role, &permissions, &verified, &u.LoginAttempts, &lockUntil,
		&u.Membership.Status, &typeID, &memberNumber, &join,
		&renew, &exp, &autoRenew, &lifetime,
		&billing, &prefs, &interests, &login, &u.LoginCount, &u.Notes, &tags, &u.Status,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return model.User{}, err
	}
	u.AvatarID = util.Int64PtrFromNull(avatarID)
	u.DateOfBirth = util.TimePtrFromNull(dob)
	u.EmailVerifiedAt = util.TimePtrFromNull(verified)
	u.LockUntil = util.TimePtrFromNull(lockUntil)
	u.LastLogin = util.TimePtrFromNull(login)
	u.Membership.TypeID = util.Int64PtrFromNull(typeID)
	u.Membership.MemberNumber = memberNumber.String
	u.Membership.JoinDate = util.TimePtrFromNull(join)
	u.Membership.RenewalDate = util.TimePtrFromNull(renew)
	u.Membership.ExpirationDate = util.TimePtrFromNull(exp)
	u.Membership.AutoRenew = autoRenew != 0
	u.Membership.Lifetime = lifetime != 0

	for _, c := range []struct {
		src string
		dst any
	}{
		{permissions, &u.Permissions},
		{billing, &u.Billing},
		{prefs, &u.Preferences},
		{interests, &u.Interests},
		{tags, &u.Tags},
	} {
		if err := decodeJSON(c.src, c.dst); err != nil {
			return model.User{}, fmt.Errorf("decoding user %d: %w", u.ID, err)
		}
	}
	return u, nil
}
