// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON REST API over the membership services.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ypng-go/internal/auth"
	"github.com/olegiv/ypng-go/internal/geoip"
	"github.com/olegiv/ypng-go/internal/middleware"
	"github.com/olegiv/ypng-go/internal/model"
	"github.com/olegiv/ypng-go/internal/scheduler"
	"github.com/olegiv/ypng-go/internal/service"
	"github.com/olegiv/ypng-go/internal/version"
)

// maxBodySize caps JSON request bodies.
const maxBodySize = 1 << 20 // 1MB

// Pagination bounds.
const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db        *sql.DB
	svc       *service.Services
	tokens    *auth.TokenIssuer
	jobs      *scheduler.Registry
	clients   *geoip.Resolver
	logger    *slog.Logger
	version   version.Info
	startTime time.Time
}

// Config carries the collaborators of a Handler. Jobs may be nil, in which
// case the job endpoints report not found. GeoIP may be nil.
type Config struct {
	DB       *sql.DB
	Services *service.Services
	Tokens   *auth.TokenIssuer
	Jobs     *scheduler.Registry
	GeoIP    *geoip.Resolver
	Logger   *slog.Logger
	Version  version.Info
}

// NewHandler creates a new API handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clients := cfg.GeoIP
	if clients == nil {
		clients, _ = geoip.Open("")
	}
	return &Handler{
		db:        cfg.DB,
		svc:       cfg.Services,
		tokens:    cfg.Tokens,
		jobs:      cfg.Jobs,
		clients:   clients,
		logger:    logger,
		version:   cfg.Version,
		startTime: time.Now(),
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Count   int `json:"count"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	middleware.WriteAPIError(w, statusCode, code, message, details)
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// writeServiceError maps a service error onto its HTTP status.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		authErr     *service.AuthorizationError
		validErr    *service.ValidationError
		conflictErr *service.ConflictError
		notFoundErr *service.NotFoundError
	)

	switch {
	case errors.As(err, &authErr):
		if authErr.Anonymous {
			WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
			return
		}
		var details map[string]string
		if len(authErr.Fields) > 0 {
			details = make(map[string]string, len(authErr.Fields))
			for _, f := range authErr.Fields {
				details[f] = "Not allowed to change this field"
			}
		}
		WriteError(w, http.StatusForbidden, "forbidden", "You are not allowed to perform this action", details)

	case errors.As(err, &validErr):
		WriteValidationError(w, validErr.Errors.Fields())

	case errors.As(err, &conflictErr):
		var details map[string]string
		if conflictErr.Field != "" {
			details = map[string]string{conflictErr.Field: "Already in use"}
		}
		WriteError(w, http.StatusConflict, "conflict", conflictErr.Error(), details)

	case errors.As(err, &notFoundErr):
		WriteNotFound(w, capitalizeFirst(notFoundErr.Error()))

	case errors.Is(err, service.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password", nil)
	case errors.Is(err, service.ErrAccountLocked):
		WriteError(w, http.StatusLocked, "account_locked", "Too many failed attempts. Try again later.", nil)
	case errors.Is(err, service.ErrAccountDisabled):
		WriteError(w, http.StatusForbidden, "account_disabled", "This account is not active", nil)
	case errors.Is(err, service.ErrNoStorage):
		WriteError(w, http.StatusServiceUnavailable, "storage_unavailable", "Media storage is not configured", nil)

	case errors.Is(err, scheduler.ErrJobNotFound):
		WriteNotFound(w, "Job not found")
	case errors.Is(err, scheduler.ErrInvalidSchedule):
		WriteValidationError(w, map[string]string{"schedule": "Invalid cron expression"})

	default:
		h.logger.Error("api request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		WriteInternalError(w, "Internal server error")
	}
}

// actor returns the identity the request acts as.
func actor(r *http.Request) model.Actor {
	return middleware.ActorFrom(r.Context())
}

// decodeJSON decodes the request body into dst. It writes a 400 and returns
// false when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, ok := readBody(w, r)
	if !ok {
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		WriteBadRequest(w, "Invalid JSON body", map[string]string{"body": err.Error()})
		return false
	}
	return true
}

// readBody returns the raw request body, capped at maxBodySize.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "too_large", fmt.Sprintf("Request body exceeds %d bytes", maxBodySize), nil)
			return nil, false
		}
		WriteBadRequest(w, "Failed to read request body", nil)
		return nil, false
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		WriteBadRequest(w, "Request body is required", nil)
		return nil, false
	}
	return body, true
}

// requireID parses the {id} URL parameter, writing a 400 when it is invalid.
func requireID(w http.ResponseWriter, r *http.Request, entityName string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		WriteBadRequest(w, "Invalid "+entityName+" ID", nil)
		return 0, false
	}
	return id, true
}

// parseIntParam parses an integer query parameter. It returns defaultVal if
// the parameter is missing, invalid or outside [minVal, maxVal].
func parseIntParam(r *http.Request, param string, defaultVal, minVal, maxVal int) int {
	val, err := strconv.Atoi(r.URL.Query().Get(param))
	if err != nil || val < minVal || (maxVal > 0 && val > maxVal) {
		return defaultVal
	}
	return val
}

// page reads page and per_page into a limit and offset.
func page(r *http.Request) (limit, offset int64, meta *Meta) {
	p := parseIntParam(r, "page", 1, 1, 0)
	perPage := parseIntParam(r, "per_page", defaultPerPage, 1, maxPerPage)
	return int64(perPage), int64((p - 1) * perPage), &Meta{Page: p, PerPage: perPage}
}

// writePage writes one page of items with its metadata.
func writePage[T any](w http.ResponseWriter, items []T, meta *Meta) {
	if items == nil {
		items = []T{}
	}
	meta.Count = len(items)
	WriteSuccess(w, items, meta)
}

// capitalizeFirst returns s with the first letter capitalized.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
