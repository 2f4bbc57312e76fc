// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/ypng-go/internal/model"
	"github.com/olegiv/ypng-go/internal/service"
)

// CreateUserRequest is the body of POST /users: the user record plus the
// initial password.
type CreateUserRequest struct {
	model.User
	Password string `json:"password"`
}

// ActivateMembershipRequest is the body of POST /users/{id}/membership.
type ActivateMembershipRequest struct {
	TypeID int64 `json:"typeId"`
}

// ChangePasswordRequest is the body of PUT /users/{id}/password.
type ChangePasswordRequest struct {
	Password string `json:"password"`
}

// ListUsers handles GET /users. Members see only themselves.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset, meta := page(r)
	items, err := h.svc.Users.List(r.Context(), actor(r), limit, offset)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writePage(w, items, meta)
}

// CreateUser handles POST /users, both public sign-up and admin creation.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.svc.Users.Create(r.Context(), actor(r), req.User, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, u)
}

// GetUser handles GET /users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "user")
	if !ok {
		return
	}
	u, err := h.svc.Users.Get(r.Context(), actor(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, u, nil)
}

// UpdateUser handles PATCH /users/{id}.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "user")
	if !ok {
		return
	}
	patch, ok := readBody(w, r)
	if !ok {
		return
	}
	u, err := h.svc.Users.Update(r.Context(), actor(r), id, patch)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, u, nil)
}

// DeleteUser handles DELETE /users/{id}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "user")
	if !ok {
		return
	}
	if err := h.svc.Users.Delete(r.Context(), actor(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ActivateMembership handles POST /users/{id}/membership.
func (h *Handler) ActivateMembership(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "user")
	if !ok {
		return
	}
	var req ActivateMembershipRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.svc.Users.ActivateMembership(r.Context(), actor(r), id, req.TypeID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, u, nil)
}

// ChangePassword handles PUT /users/{id}/password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "user")
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.Users.ChangePassword(r.Context(), actor(r), id, req.Password); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Directory handles GET /directory, the public member directory.
func (h *Handler) Directory(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Users.Directory(r.Context())
	h.writeProfiles(w, r, items, err)
}

// Board handles GET /board.
func (h *Handler) Board(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Users.Board(r.Context())
	h.writeProfiles(w, r, items, err)
}

func (h *Handler) writeProfiles(w http.ResponseWriter, r *http.Request, items []service.PublicProfile, err error) {
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []service.PublicProfile{}
	}
	WriteSuccess(w, items, nil)
}
