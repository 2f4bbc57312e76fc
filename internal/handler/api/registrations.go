// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/ypng-go/internal/model"
)

// TransitionRequest is the body of POST /registrations/{id}/transition.
type TransitionRequest struct {
	Status string `json:"status"`
}

// ListRegistrations handles GET /registrations. Members see their own.
func (h *Handler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	limit, offset, meta := page(r)
	items, err := h.svc.Registrations.List(r.Context(), actor(r), limit, offset)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writePage(w, items, meta)
}

// CreateRegistration handles POST /registrations. A member registering
// without naming a user registers themself.
func (h *Handler) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	var reg model.EventRegistration
	if !decodeJSON(w, r, &reg) {
		return
	}
	a := actor(r)
	if reg.UserID == 0 && !a.IsAnonymous() {
		reg.UserID = a.ID
	}
	saved, err := h.svc.Registrations.Create(r.Context(), a, reg)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, saved)
}

// GetRegistration handles GET /registrations/{id}.
func (h *Handler) GetRegistration(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "registration")
	if !ok {
		return
	}
	reg, err := h.svc.Registrations.Get(r.Context(), actor(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, reg, nil)
}

// UpdateRegistration handles PATCH /registrations/{id}.
func (h *Handler) UpdateRegistration(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "registration")
	if !ok {
		return
	}
	patch, ok := readBody(w, r)
	if !ok {
		return
	}
	reg, err := h.svc.Registrations.Update(r.Context(), actor(r), id, patch)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, reg, nil)
}

// TransitionRegistration handles POST /registrations/{id}/transition.
func (h *Handler) TransitionRegistration(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "registration")
	if !ok {
		return
	}
	var req TransitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	reg, err := h.svc.Registrations.Transition(r.Context(), actor(r), id, req.Status)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, reg, nil)
}

// DeleteRegistration handles DELETE /registrations/{id}.
func (h *Handler) DeleteRegistration(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "registration")
	if !ok {
		return
	}
	if err := h.svc.Registrations.Delete(r.Context(), actor(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
