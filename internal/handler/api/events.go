// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ypng-go/internal/model"
)

// ExternalIDRequest is the body of PUT /events/{id}/platforms/{platform}.
type ExternalIDRequest struct {
	ExternalID string `json:"externalId"`
}

// ListEvents handles GET /events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit, offset, meta := page(r)
	items, err := h.svc.Events.List(r.Context(), actor(r), limit, offset)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writePage(w, items, meta)
}

// UpcomingEvents handles GET /events/upcoming.
func (h *Handler) UpcomingEvents(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 10, 1, maxPerPage)
	items, err := h.svc.Events.Upcoming(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []model.Event{}
	}
	WriteSuccess(w, items, nil)
}

// CreateEvent handles POST /events.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var ev model.Event
	if !decodeJSON(w, r, &ev) {
		return
	}
	saved, err := h.svc.Events.Create(r.Context(), actor(r), ev)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, saved)
}

// GetEvent handles GET /events/{id}.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "event")
	if !ok {
		return
	}
	ev, err := h.svc.Events.Get(r.Context(), actor(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, ev, nil)
}

// GetEventBySlug handles GET /events/slug/{slug}.
func (h *Handler) GetEventBySlug(w http.ResponseWriter, r *http.Request) {
	ev, err := h.svc.Events.GetBySlug(r.Context(), actor(r), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, ev, nil)
}

// UpdateEvent handles PATCH /events/{id}.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "event")
	if !ok {
		return
	}
	patch, ok := readBody(w, r)
	if !ok {
		return
	}
	ev, err := h.svc.Events.Update(r.Context(), actor(r), id, patch)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, ev, nil)
}

// DeleteEvent handles DELETE /events/{id}.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "event")
	if !ok {
		return
	}
	if err := h.svc.Events.Delete(r.Context(), actor(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEventRegistrations handles GET /events/{id}/registrations.
func (h *Handler) ListEventRegistrations(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "event")
	if !ok {
		return
	}
	items, err := h.svc.Registrations.ListForEvent(r.Context(), actor(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []model.EventRegistration{}
	}
	WriteSuccess(w, items, nil)
}

// RecordExternalID handles PUT /events/{id}/platforms/{platform}, the
// write-back of a platform-assigned ID.
func (h *Handler) RecordExternalID(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "event")
	if !ok {
		return
	}
	var req ExternalIDRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p := model.Platform(chi.URLParam(r, "platform"))
	ev, err := h.svc.Events.RecordExternalID(r.Context(), actor(r), id, p, req.ExternalID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, ev, nil)
}
