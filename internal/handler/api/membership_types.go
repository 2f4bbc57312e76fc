// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/ypng-go/internal/model"
)

// ListMembershipTypes handles GET /membership-types.
func (h *Handler) ListMembershipTypes(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.MembershipTypes.List(r.Context(), actor(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []model.MembershipType{}
	}
	WriteSuccess(w, items, nil)
}

// CreateMembershipType handles POST /membership-types.
func (h *Handler) CreateMembershipType(w http.ResponseWriter, r *http.Request) {
	var mt model.MembershipType
	if !decodeJSON(w, r, &mt) {
		return
	}
	saved, err := h.svc.MembershipTypes.Create(r.Context(), actor(r), mt)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, saved)
}

// GetMembershipType handles GET /membership-types/{id}.
func (h *Handler) GetMembershipType(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "membership type")
	if !ok {
		return
	}
	mt, err := h.svc.MembershipTypes.Get(r.Context(), actor(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, mt, nil)
}

// UpdateMembershipType handles PATCH /membership-types/{id}.
func (h *Handler) UpdateMembershipType(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "membership type")
	if !ok {
		return
	}
	patch, ok := readBody(w, r)
	if !ok {
		return
	}
	mt, err := h.svc.MembershipTypes.Update(r.Context(), actor(r), id, patch)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, mt, nil)
}

// DeleteMembershipType handles DELETE /membership-types/{id}.
func (h *Handler) DeleteMembershipType(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "membership type")
	if !ok {
		return
	}
	if err := h.svc.MembershipTypes.Delete(r.Context(), actor(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
