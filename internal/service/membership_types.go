// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"

	"github.com/olegiv/ypng-go/internal/cache"
	"github.com/olegiv/ypng-go/internal/model"
	"github.com/olegiv/ypng-go/internal/validation"
)

const collMembershipTypes = model.CollectionMembershipTypes

// MembershipTypeService manages the membership catalogue.
type MembershipTypeService struct {
	*base
}

// Create adds a membership type. Admin only.
func (s *MembershipTypeService) Create(ctx context.Context, actor model.Actor, mt model.MembershipType) (model.MembershipType, error) {
	if _, err := authorize(collMembershipTypes, model.OpCreate, actor); err != nil {
		return model.MembershipType{}, err
	}

	slugDerived := mt.Slug == ""
	mt.ID = 0
	mt = s.derive.MembershipType(mt, model.OpCreate)
	if errs := validation.MembershipType(mt); len(errs) > 0 {
		return model.MembershipType{}, invalid(collMembershipTypes, errs)
	}
	now := s.now()
	mt.CreatedAt, mt.UpdatedAt = now, now

	retryField := ""
	if slugDerived {
		retryField = "slug"
	}
	slug := mt.Slug
	saved, err := saveWithRetry(collMembershipTypes, retryField, func() (model.MembershipType, error) {
		return s.queries.CreateMembershipType(ctx, mt)
	}, func() {
		mt.Slug = s.derive.SlugVariant(slug)
	})
	if err != nil {
		return model.MembershipType{}, err
	}
	s.invalidate(ctx, cache.PrefixMembershipTypes)
	return saved, nil
}

// Update applies a JSON patch to a membership type. Admin only.
func (s *MembershipTypeService) Update(ctx context.Context, actor model.Actor, id int64, patch []byte) (model.MembershipType, error) {
	if _, err := authorize(collMembershipTypes, model.OpUpdate, actor); err != nil {
		return model.MembershipType{}, err
	}
	prev, err := s.queries.GetMembershipType(ctx, id)
	if err != nil {
		return model.MembershipType{}, lookupErr(collMembershipTypes, id, err)
	}

	next, err := mergePatch(collMembershipTypes, prev, patch)
	if err != nil {
		return model.MembershipType{}, err
	}
	next.ID = prev.ID
	next.CreatedAt = prev.CreatedAt
	next = s.derive.MembershipType(next, model.OpUpdate)
	if errs := validation.MembershipType(next); len(errs) > 0 {
		return model.MembershipType{}, invalid(collMembershipTypes, errs)
	}
	next.UpdatedAt = s.now()

	saved, err := s.queries.UpdateMembershipType(ctx, next)
	if err != nil {
		return model.MembershipType{}, saveErr(collMembershipTypes, err)
	}
	s.invalidate(ctx, cache.PrefixMembershipTypes)
	return saved, nil
}

// Get returns a membership type. Inactive types are visible to admin and staff only.
func (s *MembershipTypeService) Get(ctx context.Context, actor model.Actor, id int64) (model.MembershipType, error) {
	if _, err := authorize(collMembershipTypes, model.OpRead, actor); err != nil {
		return model.MembershipType{}, err
	}
	mt, err := s.queries.GetMembershipType(ctx, id)
	if err != nil {
		return model.MembershipType{}, lookupErr(collMembershipTypes, id, err)
	}
	if !actor.IsPrivileged() && !model.BoolValue(mt.IsActive) {
		return model.MembershipType{}, &NotFoundError{Collection: collMembershipTypes, ID: id}
	}
	return mt, nil
}

// List returns the membership types in display order. Everyone but admin and
// staff sees the active ones only, served from the cache.
func (s *MembershipTypeService) List(ctx context.Context, actor model.Actor) ([]model.MembershipType, error) {
	if _, err := authorize(collMembershipTypes, model.OpRead, actor); err != nil {
		return nil, err
	}
	if actor.IsPrivileged() {
		return s.queries.ListMembershipTypes(ctx, false)
	}
	return cachedList(ctx, s.base, cache.KeyActiveMembershipTypes, func() ([]model.MembershipType, error) {
		return s.queries.ListMembershipTypes(ctx, true)
	})
}

// Delete removes a membership type. Admin only.
func (s *MembershipTypeService) Delete(ctx context.Context, actor model.Actor, id int64) error {
	if _, err := authorize(collMembershipTypes, model.OpDelete, actor); err != nil {
		return err
	}
	if _, err := s.queries.GetMembershipType(ctx, id); err != nil {
		return lookupErr(collMembershipTypes, id, err)
	}
	if err := s.queries.DeleteMembershipType(ctx, id); err != nil {
		return fmt.Errorf("deleting membership type %d: %w", id, err)
	}
	s.invalidate(ctx, cache.PrefixMembershipTypes)
	return nil
}
