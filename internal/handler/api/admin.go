// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ypng-go/internal/model"
	"github.com/olegiv/ypng-go/internal/scheduler"
)

// ActivityResponse is one activity log entry.
type ActivityResponse struct {
	ID        int64           `json:"id"`
	Level     string          `json:"level"`
	Category  string          `json:"category"`
	Message   string          `json:"message"`
	UserID    *int64          `json:"userId,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ScheduleRequest is the body of PUT /admin/jobs/{name}/schedule.
type ScheduleRequest struct {
	Schedule string `json:"schedule"`
}

// RunResult reports a manual job run.
type RunResult struct {
	Job      string `json:"job"`
	Affected int    `json:"affected"`
}

// RecentActivity handles GET /admin/activity.
func (h *Handler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 50, 1, 500)
	items, err := h.svc.Activity.Recent(r.Context(), actor(r), int64(limit))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	out := make([]ActivityResponse, len(items))
	for i, a := range items {
		out[i] = activityResponse(a)
	}
	WriteSuccess(w, out, nil)
}

func activityResponse(a model.Activity) ActivityResponse {
	resp := ActivityResponse{
		ID:        a.ID,
		Level:     a.Level,
		Category:  a.Category,
		Message:   a.Message,
		CreatedAt: a.CreatedAt,
	}
	if a.UserID.Valid {
		id := a.UserID.Int64
		resp.UserID = &id
	}
	if json.Valid([]byte(a.Metadata)) {
		resp.Metadata = json.RawMessage(a.Metadata)
	}
	return resp
}

// ListJobs handles GET /admin/jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, _ *http.Request) {
	if h.jobs == nil {
		WriteSuccess(w, []scheduler.JobInfo{}, nil)
		return
	}
	WriteSuccess(w, h.jobs.List(), nil)
}

// RunJob handles POST /admin/jobs/{name}/run.
func (h *Handler) RunJob(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		WriteNotFound(w, "Job not found")
		return
	}
	name := chi.URLParam(r, "name")
	n, err := h.jobs.TriggerNow(name)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.logger.Info("job triggered manually", "job", name, "user_id", actor(r).ID, "affected", n)
	WriteSuccess(w, RunResult{Job: name, Affected: n}, nil)
}

// UpdateJobSchedule handles PUT /admin/jobs/{name}/schedule.
func (h *Handler) UpdateJobSchedule(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		WriteNotFound(w, "Job not found")
		return
	}
	var req ScheduleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.jobs.UpdateSchedule(chi.URLParam(r, "name"), req.Schedule); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJob(w, chi.URLParam(r, "name"))
}

// ResetJobSchedule handles DELETE /admin/jobs/{name}/schedule.
func (h *Handler) ResetJobSchedule(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		WriteNotFound(w, "Job not found")
		return
	}
	if err := h.jobs.ResetSchedule(chi.URLParam(r, "name")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJob(w, chi.URLParam(r, "name"))
}

func (h *Handler) writeJob(w http.ResponseWriter, name string) {
	for _, j := range h.jobs.List() {
		if j.Name == name {
			WriteSuccess(w, j, nil)
			return
		}
	}
	WriteNotFound(w, "Job not found")
}
