// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package schema is the registry of collection declarations: for every
// collection it records each field's type, constraints, default and options.
// Declarations are immutable; looking up an undeclared collection or field
// is a programming error and panics.
package schema

import (
	"fmt"
	"slices"
	"sort"
)

// FieldType is the storage type of a field.
type FieldType string

// Field types.
const (
	TypeText         FieldType = "text"
	TypeTextarea     FieldType = "textarea"
	TypeRichText     FieldType = "richText"
	TypeEmail        FieldType = "email"
	TypeNumber       FieldType = "number"
	TypeCheckbox     FieldType = "checkbox"
	TypeDate         FieldType = "date"
	TypeSelect       FieldType = "select"
	TypeRelationship FieldType = "relationship"
	TypeUpload       FieldType = "upload"
	TypeArray        FieldType = "array"
	TypePoint        FieldType = "point"
	TypeJSON         FieldType = "json"
)

// Field declares one field of a collection. Nested group fields use dotted names.
type Field struct {
	Name       string
	Type       FieldType
	Required   bool
	Unique     bool
	ReadOnly   bool // maintained by the system, never accepted from clients
	Immutable  bool // cannot change once set
	Privileged bool // visible and editable only by admin/staff
	StaffOnly  bool // visible to all, writable only by admin/staff
	AdminOnly  bool // writable only by admins
	HasMany    bool
	Default    any
	Options    []string
	MinLength  int
	MaxLength  int
	Min        *float64
	Max        *float64
	MinRows    int
	RelationTo string
}

// Collection is the declaration of one entity type.
type Collection struct {
	Slug   string
	Fields []Field
	index  map[string]int
}

// Field returns the declaration of the named field. It panics if the field is not declared.
func (c *Collection) Field(name string) Field {
	i, ok := c.index[name]
	if !ok {
		panic(fmt.Sprintf("schema: collection %q has no field %q", c.Slug, name))
	}
	return c.Fields[i]
}

// HasField reports whether the collection declares the named field.
func (c *Collection) HasField(name string) bool {
	_, ok := c.index[name]
	return ok
}

// FieldNames returns the declared field names in declaration order.
func (c *Collection) FieldNames() []string {
	names := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		names[i] = f.Name
	}
	return names
}

// UniqueFields returns the names of fields carrying a uniqueness constraint.
func (c *Collection) UniqueFields() []string {
	var names []string
	for _, f := range c.Fields {
		if f.Unique {
			names = append(names, f.Name)
		}
	}
	return names
}

var registry = map[string]*Collection{}

// register adds a collection to the registry. It is called from package init only.
func register(slug string, fields ...Field) {
	if _, exists := registry[slug]; exists {
		panic(fmt.Sprintf("schema: collection %q registered twice", slug))
	}
	c := &Collection{Slug: slug, Fields: fields, index: make(map[string]int, len(fields))}
	for i, f := range fields {
		if _, dup := c.index[f.Name]; dup {
			panic(fmt.Sprintf("schema: collection %q declares field %q twice", slug, f.Name))
		}
		c.index[f.Name] = i
	}
	registry[slug] = c
}

// Lookup returns the declaration of a collection. It panics if the collection is not declared.
func Lookup(slug string) *Collection {
	c, ok := registry[slug]
	if !ok {
		panic(fmt.Sprintf("schema: unknown collection %q", slug))
	}
	return c
}

// Collections returns the slugs of all declared collections, sorted.
func Collections() []string {
	slugs := make([]string, 0, len(registry))
	for slug := range registry {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// Options returns the enumerated options of a select field.
func Options(collection, field string) []string {
	return Lookup(collection).Field(field).Options
}

// IsOption reports whether value is a declared option of a select field.
func IsOption(collection, field, value string) bool {
	return slices.Contains(Options(collection, field), value)
}

// DefaultString returns the declared string default of a field, or "" if none.
func DefaultString(collection, field string) string {
	s, _ := Lookup(collection).Field(field).Default.(string)
	return s
}

// DefaultBool returns the declared boolean default of a field, or false if none.
func DefaultBool(collection, field string) bool {
	b, _ := Lookup(collection).Field(field).Default.(bool)
	return b
}

// DefaultInt returns the declared integer default of a field, or 0 if none.
func DefaultInt(collection, field string) int {
	i, _ := Lookup(collection).Field(field).Default.(int)
	return i
}

// bound returns a pointer to v for Min/Max declarations.
func bound(v float64) *float64 {
	return &v
}
