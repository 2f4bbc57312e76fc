// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides the HTTP middleware of the API: bearer-token
// identity, role gates, rate limiting, CORS and response hardening.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/ypng-go/internal/model"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyActor holds the model.Actor a request acts as.
const ContextKeyActor ContextKey = "actor"

// TokenParser resolves a bearer token into the actor it identifies.
type TokenParser interface {
	Parse(token string) (model.Actor, error)
}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, ContextKeyActor, actor)
}

// ActorFrom returns the actor stored in ctx, or the anonymous actor.
func ActorFrom(ctx context.Context) model.Actor {
	if a, ok := ctx.Value(ContextKeyActor).(model.Actor); ok {
		return a
	}
	return model.Anonymous()
}

// Identify resolves the Authorization header into the request's actor.
// Requests without a header proceed anonymously; a malformed or invalid
// token is rejected with 401 rather than silently downgraded.
func Identify(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), model.Anonymous())))
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid Authorization header format. Use: Bearer <token>", nil)
				return
			}

			actor, err := tokens.Parse(strings.TrimSpace(token))
			if err != nil {
				slog.Debug("rejected bearer token", "error", err, "path", r.URL.Path)
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireLogin rejects anonymous requests with 401.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ActorFrom(r.Context()).IsAnonymous() {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin lets only admins through. Anonymous requests get 401, other
// roles 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := ActorFrom(r.Context())
		switch {
		case actor.IsAnonymous():
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
		case !actor.IsAdmin():
			slog.Warn("admin route denied", "user_id", actor.ID, "role", actor.Role, "path", r.URL.Path)
			WriteAPIError(w, http.StatusForbidden, "forbidden", "Admin access required", nil)
		default:
			next.ServeHTTP(w, r)
		}
	})
}
