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

const eventColumns = `id, title, slug, summary, description, description_html, location, event_date,
	start_time, end_time, timezone, image_id, image_url, platforms, registration, status, created_at, updated_at`

func eventArgs(ev model.Event) ([]any, error) {
	js, err := jsonColumns(ev.Location, ev.Platforms, ev.Registration)
	if err != nil {
		return nil, err
	}
	return []any{
		ev.Title, ev.Slug, ev.Summary, ev.Description, ev.DescriptionHTML, js[0],
		formatDate(ev.EventDate), ev.StartTime, ev.EndTime, ev.Timezone,
		util.NullInt64FromPtr(ev.ImageID), ev.ImageURL, js[1], js[2], ev.Status, ev.UpdatedAt,
	}, nil
}

const createEvent = `INSERT INTO events (
	title, slug, summary, description, description_html, location, event_date,
	start_time, end_time, timezone, image_id, image_url, platforms, registration, status, updated_at, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// CreateEvent inserts ev and returns the stored row.
func (q *Queries) CreateEvent(ctx context.Context, ev model.Event) (model.Event, error) {
	args, err := eventArgs(ev)
	if err != nil {
		return model.Event{}, err
	}
	args = append(args, ev.CreatedAt)
	res, err := q.db.ExecContext(ctx, createEvent, args...)
	if err != nil {
		return model.Event{}, asDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Event{}, err
	}
	return q.GetEvent(ctx, id)
}

const getEvent = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`

// GetEvent returns the event with id, or sql.ErrNoRows.
func (q *Queries) GetEvent(ctx context.Context, id int64) (model.Event, error) {
	return scanEvent(q.db.QueryRowContext(ctx, getEvent, id))
}

const getEventBySlug = `SELECT ` + eventColumns + ` FROM events WHERE slug = ?`

// GetEventBySlug returns the event with slug, or sql.ErrNoRows.
func (q *Queries) GetEventBySlug(ctx context.Context, slug string) (model.Event, error) {
	return scanEvent(q.db.QueryRowContext(ctx, getEventBySlug, slug))
}

const updateEvent = `UPDATE events SET
	title = ?, slug = ?, summary = ?, description = ?, description_html = ?, location = ?, event_date = ?,
	start_time = ?, end_time = ?, timezone = ?, image_id = ?, image_url = ?, platforms = ?,
	registration = ?, status = ?, updated_at = ?
WHERE id = ?`

// UpdateEvent overwrites the stored row of ev.ID with ev.
func (q *Queries) UpdateEvent(ctx context.Context, ev model.Event) (model.Event, error) {
	args, err := eventArgs(ev)
	if err != nil {
		return model.Event{}, err
	}
	args = append(args, ev.ID)
	if _, err := q.db.ExecContext(ctx, updateEvent, args...); err != nil {
		return model.Event{}, asDuplicate(err)
	}
	return q.GetEvent(ctx, ev.ID)
}

const updateEventStatus = `UPDATE events SET status = ?, updated_at = ? WHERE id = ?`

// UpdateEventStatus changes only the status column.
func (q *Queries) UpdateEventStatus(ctx context.Context, id int64, status string, now time.Time) error {
	_, err := q.db.ExecContext(ctx, updateEventStatus, status, now, id)
	return err
}

const deleteEvent = `DELETE FROM events WHERE id = ?`

// DeleteEvent removes the event and, by cascade, its registrations.
func (q *Queries) DeleteEvent(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteEvent, id)
	return err
}

// ListEvents lists events, most recent date first.
func (q *Queries) ListEvents(ctx context.Context, arg ListParams) ([]model.Event, error) {
	where, args, err := whereClause("events", arg.Filter)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + eventColumns + ` FROM events` + where + ` ORDER BY event_date DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, arg.limit(), arg.Offset)
	return q.queryEvents(ctx, query, args...)
}

const listUpcomingEvents = `SELECT ` + eventColumns + ` FROM events
WHERE status = 'published' AND event_date >= ?
ORDER BY event_date, start_time, id
LIMIT ?`

// ListUpcomingEvents lists published events dated on or after from, soonest first.
func (q *Queries) ListUpcomingEvents(ctx context.Context, from time.Time, limit int64) ([]model.Event, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return q.queryEvents(ctx, listUpcomingEvents, formatDate(from), limit)
}

const listPastPublishedEvents = `SELECT ` + eventColumns + ` FROM events
WHERE status = 'published' AND event_date < ?
ORDER BY event_date, id`

// ListPastPublishedEvents lists published events dated before the given day.
func (q *Queries) ListPastPublishedEvents(ctx context.Context, before time.Time) ([]model.Event, error) {
	return q.queryEvents(ctx, listPastPublishedEvents, formatDate(before))
}

func (q *Queries) queryEvents(ctx context.Context, query string, args ...any) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []model.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, ev)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanEvent(s scanner) (model.Event, error) {
	var (
		ev                               model.Event
		location, platforms, registering string
		eventDate                        string
		imageID                          sql.NullInt64
	)
	err := s.Scan(
		&ev.ID, &ev.Title, &ev.Slug, &ev.Summary, &ev.Description, &ev.DescriptionHTML, &location, &eventDate,
		&ev.StartTime, &ev.EndTime, &ev.Timezone, &imageID, &ev.ImageURL, &platforms, &registering, &ev.Status,
		&ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		return model.Event{}, err
	}
	if ev.EventDate, err = parseDate(eventDate); err != nil {
		return model.Event{}, fmt.Errorf("decoding event %d date: %w", ev.ID, err)
	}
	ev.ImageID = util.Int64PtrFromNull(imageID)
	if err := decodeJSON(location, &ev.Location); err != nil {
		return model.Event{}, fmt.Errorf("decoding event %d location: %w", ev.ID, err)
	}
	if err := decodeJSON(platforms, &ev.Platforms); err != nil {
		return model.Event{}, fmt.Errorf("decoding event %d platforms: %w", ev.ID, err)
	}
	if err := decodeJSON(registering, &ev.Registration); err != nil {
		return model.Event{}, fmt.Errorf("decoding event %d registration: %w", ev.ID, err)
	}
	return ev, nil
}
