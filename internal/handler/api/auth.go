// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/olegiv/ypng-go/internal/geoip"
	"github.com/olegiv/ypng-go/internal/middleware"
	"github.com/olegiv/ypng-go/internal/model"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      model.User `json:"user"`
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteValidationError(w, map[string]string{"email": "Email and password are required"})
		return
	}

	client := h.clients.Describe(middleware.ClientIP(r), r.UserAgent())
	u, err := h.svc.Users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn("login failed", append([]any{"email", req.Email, "error", err}, client.LogAttrs()...)...)
		h.writeServiceError(w, r, err)
		return
	}
	h.recordLogin(r, u, client)

	token, expires, err := h.tokens.Issue(u)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, LoginResponse{Token: token, ExpiresAt: expires, User: u}, nil)
}

// Me handles GET /auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	u, err := h.svc.Users.Get(r.Context(), a, a.ID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, u, nil)
}

// recordLogin writes the successful login to the activity log with where it
// came from.
func (h *Handler) recordLogin(r *http.Request, u model.User, c geoip.Client) {
	meta := map[string]any{
		"email":   u.Email,
		"ip":      c.IP,
		"browser": c.Browser,
		"os":      c.OS,
		"device":  c.Device,
	}
	if c.Country != "" {
		meta["country"] = c.Country
	}
	if err := h.svc.Activity.LogInfo(r.Context(), model.ActivityCategoryAuth, "User logged in", &u.ID, meta); err != nil {
		h.logger.Warn("failed to record login", "user_id", u.ID, "error", err)
	}
}
