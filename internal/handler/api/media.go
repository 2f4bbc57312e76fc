// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/ypng-go/internal/model"
	"github.com/olegiv/ypng-go/internal/service"
)

// MediaResponse is a media item with the public URLs of its files.
type MediaResponse struct {
	model.Media
	URL  string            `json:"url"`
	URLs map[string]string `json:"urls,omitempty"`
}

func mediaResponse(m model.Media) MediaResponse {
	resp := MediaResponse{Media: m, URL: service.MediaURL(m, "")}
	if len(m.Sizes) > 0 {
		resp.URLs = make(map[string]string, len(m.Sizes))
		for size := range m.Sizes {
			resp.URLs[size] = service.MediaURL(m, size)
		}
	}
	return resp
}

// ListMedia handles GET /media.
func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	limit, offset, meta := page(r)
	items, err := h.svc.Media.List(r.Context(), actor(r), limit, offset)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	out := make([]MediaResponse, len(items))
	for i, m := range items {
		out[i] = mediaResponse(m)
	}
	writePage(w, out, meta)
}

// UploadMedia handles POST /media as multipart/form-data with a "file" part
// and alt, caption, category and credit fields.
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(service.MaxUploadSize); err != nil {
		WriteBadRequest(w, "Failed to parse multipart form", nil)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteValidationError(w, map[string]string{"file": "File is required"})
		return
	}
	defer func() { _ = file.Close() }()

	meta := model.Media{
		Alt:      r.FormValue("alt"),
		Caption:  r.FormValue("caption"),
		Category: r.FormValue("category"),
		Credit:   r.FormValue("credit"),
	}
	m, err := h.svc.Media.Upload(r.Context(), actor(r), file, header.Filename, meta)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, mediaResponse(m))
}

// GetMedia handles GET /media/{id}.
func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "media")
	if !ok {
		return
	}
	m, err := h.svc.Media.Get(r.Context(), actor(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, mediaResponse(m), nil)
}

// UpdateMedia handles PATCH /media/{id}. Only metadata can change.
func (h *Handler) UpdateMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "media")
	if !ok {
		return
	}
	patch, ok := readBody(w, r)
	if !ok {
		return
	}
	m, err := h.svc.Media.Update(r.Context(), actor(r), id, patch)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, mediaResponse(m), nil)
}

// DeleteMedia handles DELETE /media/{id}.
func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "media")
	if !ok {
		return
	}
	if err := h.svc.Media.Delete(r.Context(), actor(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
