// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/ypng-go/internal/access"
)

// dateLayout stores calendar dates so they compare correctly as text.
const dateLayout = "2006-01-02"

// ListParams restricts and pages a listing. A nil Filter lists every row.
type ListParams struct {
	Filter *access.Predicate
	Limit  int64
	Offset int64
}

// DefaultListLimit is applied when ListParams.Limit is not positive.
const DefaultListLimit = 100

func (p ListParams) limit() int64 {
	if p.Limit <= 0 {
		return DefaultListLimit
	}
	return p.Limit
}

// filterColumns maps the predicate field names of each table to columns.
var filterColumns = map[string]map[string]string{
	"users":               {"id": "id"},
	"events":              {"id": "id"},
	"event_registrations": {"id": "id", "user": "user_id", "event": "event_id"},
	"media":               {"id": "id"},
	"membership_types":    {"id": "id"},
}

// whereClause translates an access predicate into a parameterized WHERE
// clause for table. Field names never reach the SQL text unmapped.
func whereClause(table string, p *access.Predicate) (string, []any, error) {
	if p == nil {
		return "", nil, nil
	}
	col, ok := filterColumns[table][p.Field]
	if !ok {
		return "", nil, fmt.Errorf("no column for filter field %q on %s", p.Field, table)
	}
	return " WHERE " + col + " = ?", []any{p.Equals}, nil
}

// andFilter appends the predicate to a query that already has a WHERE clause.
func andFilter(table string, p *access.Predicate) (string, []any, error) {
	clause, args, err := whereClause(table, p)
	if err != nil || clause == "" {
		return "", nil, err
	}
	return " AND" + strings.TrimPrefix(clause, " WHERE"), args, nil
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeJSON(s string, v any) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), v)
}

// jsonColumns encodes several values, stopping at the first failure.
func jsonColumns(values ...any) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		s, err := encodeJSON(v)
		if err != nil {
			return nil, fmt.Errorf("encoding column %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
