// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"

	"github.com/olegiv/ypng-go/internal/model"
)

const mediaColumns = `id, uuid, filename, mime_type, size, width, height, alt, caption, category, credit,
	sizes, uploaded_by, created_at, updated_at`

const createMedia = `INSERT INTO media (
	uuid, filename, mime_type, size, width, height, alt, caption, category, credit, sizes, uploaded_by,
	updated_at, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// CreateMedia inserts m and returns the stored row.
func (q *Queries) CreateMedia(ctx context.Context, m model.Media) (model.Media, error) {
	sizes, err := encodeJSON(m.Sizes)
	if err != nil {
		return model.Media{}, err
	}
	res, err := q.db.ExecContext(ctx, createMedia,
		m.UUID, m.Filename, m.MimeType, m.Size, m.Width, m.Height, m.Alt, m.Caption, m.Category,
		m.Credit, sizes, m.UploadedBy, m.UpdatedAt, m.CreatedAt,
	)
	if err != nil {
		return model.Media{}, asDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Media{}, err
	}
	return q.GetMedia(ctx, id)
}

const getMedia = `SELECT ` + mediaColumns + ` FROM media WHERE id = ?`

// GetMedia returns the media item with id, or sql.ErrNoRows.
func (q *Queries) GetMedia(ctx context.Context, id int64) (model.Media, error) {
	return scanMedia(q.db.QueryRowContext(ctx, getMedia, id))
}

const updateMedia = `UPDATE media SET alt = ?, caption = ?, category = ?, credit = ?, updated_at = ?
WHERE id = ?`

// UpdateMedia writes the editable metadata of m. Files and sizes never change.
func (q *Queries) UpdateMedia(ctx context.Context, m model.Media) (model.Media, error) {
	if _, err := q.db.ExecContext(ctx, updateMedia, m.Alt, m.Caption, m.Category, m.Credit, m.UpdatedAt, m.ID); err != nil {
		return model.Media{}, err
	}
	return q.GetMedia(ctx, m.ID)
}

const deleteMedia = `DELETE FROM media WHERE id = ?`

// DeleteMedia removes the media row. Event image references are cleared by the foreign key.
func (q *Queries) DeleteMedia(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteMedia, id)
	return err
}

// ListMedia lists media items, newest first.
func (q *Queries) ListMedia(ctx context.Context, arg ListParams) ([]model.Media, error) {
	where, args, err := whereClause("media", arg.Filter)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + mediaColumns + ` FROM media` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, arg.limit(), arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []model.Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanMedia(s scanner) (model.Media, error) {
	var (
		m     model.Media
		sizes string
	)
	err := s.Scan(
		&m.ID, &m.UUID, &m.Filename, &m.MimeType, &m.Size, &m.Width, &m.Height, &m.Alt, &m.Caption,
		&m.Category, &m.Credit, &sizes, &m.UploadedBy, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return model.Media{}, err
	}
	if err := decodeJSON(sizes, &m.Sizes); err != nil {
		return model.Media{}, fmt.Errorf("decoding media %d sizes: %w", m.ID, err)
	}
	return m, nil
}
