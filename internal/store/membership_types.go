// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/olegiv/ypng-go/internal/model"
	"github.com/olegiv/ypng-go/internal/util"
)

const membershipTypeColumns = `id, name, slug, description, price, stripe_price_id, duration, benefits,
	features, eligibility, sort_order, is_active, is_featured, max_members, renewal_reminder, color,
	created_at, updated_at`

func membershipTypeArgs(mt model.MembershipType) ([]any, error) {
	benefits := mt.Benefits
	if benefits == nil {
		benefits = []model.Benefit{}
	}
	js, err := jsonColumns(benefits, mt.Features, mt.Eligibility)
	if err != nil {
		return nil, err
	}
	return []any{
		mt.Name, mt.Slug, mt.Description, mt.Price, mt.ExternalPriceID, mt.Duration, js[0], js[1], js[2],
		mt.SortOrder, boolInt(model.BoolValue(mt.IsActive)), boolInt(mt.IsFeatured),
		util.NullInt64FromIntPtr(mt.MaxMembers), util.NullInt64FromIntPtr(mt.RenewalReminder), mt.Color,
		mt.UpdatedAt,
	}, nil
}

const createMembershipType = `INSERT INTO membership_types (
	name, slug, description, price, stripe_price_id, duration, benefits, features, eligibility,
	sort_order, is_active, is_featured, max_members, renewal_reminder, color, updated_at, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// CreateMembershipType inserts mt and returns the stored row.
func (q *Queries) CreateMembershipType(ctx context.Context, mt model.MembershipType) (model.MembershipType, error) {
	args, err := membershipTypeArgs(mt)
	if err != nil {
		return model.MembershipType{}, err
	}
	args = append(args, mt.CreatedAt)
	res, err := q.db.ExecContext(ctx, createMembershipType, args...)
	if err != nil {
		return model.MembershipType{}, asDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.MembershipType{}, err
	}
	return q.GetMembershipType(ctx, id)
}

const getMembershipType = `SELECT ` + membershipTypeColumns + ` FROM membership_types WHERE id = ?`

// GetMembershipType returns the membership type with id, or sql.ErrNoRows.
func (q *Queries) GetMembershipType(ctx context.Context, id int64) (model.MembershipType, error) {
	return scanMembershipType(q.db.QueryRowContext(ctx, getMembershipType, id))
}

const updateMembershipType = `UPDATE membership_types SET
	name = ?, slug = ?, description = ?, price = ?, stripe_price_id = ?, duration = ?, benefits = ?,
	features = ?, eligibility = ?, sort_order = ?, is_active = ?, is_featured = ?, max_members = ?,
	renewal_reminder = ?, color = ?, updated_at = ?
WHERE id = ?`

// UpdateMembershipType overwrites the stored row of mt.ID with mt.
func (q *Queries) UpdateMembershipType(ctx context.Context, mt model.MembershipType) (model.MembershipType, error) {
	args, err := membershipTypeArgs(mt)
	if err != nil {
		return model.MembershipType{}, err
	}
	args = append(args, mt.ID)
	if _, err := q.db.ExecContext(ctx, updateMembershipType, args...); err != nil {
		return model.MembershipType{}, asDuplicate(err)
	}
	return q.GetMembershipType(ctx, mt.ID)
}

const deleteMembershipType = `DELETE FROM membership_types WHERE id = ?`

// DeleteMembershipType removes the membership type. Users holding it keep
// their membership with no type.
func (q *Queries) DeleteMembershipType(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteMembershipType, id)
	return err
}

// ListMembershipTypes lists membership types in display order. With
// activeOnly set, inactive types are skipped.
func (q *Queries) ListMembershipTypes(ctx context.Context, activeOnly bool) ([]model.MembershipType, error) {
	query := `SELECT ` + membershipTypeColumns + ` FROM membership_types`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY sort_order, name, id`

	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []model.MembershipType
	for rows.Next() {
		mt, err := scanMembershipType(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, mt)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanMembershipType(s scanner) (model.MembershipType, error) {
	var (
		mt                              model.MembershipType
		benefits, features, eligibility string
		active, featured                int64
		maxMembers, renewalReminder     sql.NullInt64
	)
	err := s.Scan(
		&mt.ID, &mt.Name, &mt.Slug, &mt.Description, &mt.Price, &mt.ExternalPriceID, &mt.Duration, &benefits,
		&features, &eligibility, &mt.SortOrder, &active, &featured, &maxMembers, &renewalReminder, &mt.Color,
		&mt.CreatedAt, &mt.UpdatedAt,
	)
	if err != nil {
		return model.MembershipType{}, err
	}
	mt.IsActive = model.Bool(active != 0)
	mt.IsFeatured = featured != 0
	mt.MaxMembers = util.IntPtrFromNull(maxMembers)
	mt.RenewalReminder = util.IntPtrFromNull(renewalReminder)
	if err := decodeJSON(benefits, &mt.Benefits); err != nil {
		return model.MembershipType{}, fmt.Errorf("decoding membership type %d benefits: %w", mt.ID, err)
	}
	if err := decodeJSON(features, &mt.Features); err != nil {
		return model.MembershipType{}, fmt.Errorf("decoding membership type %d features: %w", mt.ID, err)
	}
	if err := decodeJSON(eligibility, &mt.Eligibility); err != nil {
		return model.MembershipType{}, fmt.Errorf("decoding membership type %d eligibility: %w", mt.ID, err)
	}
	return mt, nil
}
