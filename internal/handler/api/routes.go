// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ypng-go/internal/middleware"
)

// Routes returns the /api/v1 router. Bearer tokens are resolved into the
// request actor for every route. createLimiter, when set, throttles sign-ups,
// registrations and logins per client.
func (h *Handler) Routes(createLimiter *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Identify(h.tokens))

	throttle := func(next http.Handler) http.Handler { return next }
	throttlePosts := throttle
	if createLimiter != nil {
		throttle = createLimiter.Middleware
		throttlePosts = createLimiter.ForMethods(http.MethodPost)
	}

	r.Get("/health", h.Health)

	r.Route("/auth", func(r chi.Router) {
		r.With(throttle).Post("/login", h.Login)
		r.With(middleware.RequireLogin).Get("/me", h.Me)
	})

	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Post("/", h.CreateEvent)
		r.Get("/upcoming", h.UpcomingEvents)
		r.Get("/slug/{slug}", h.GetEventBySlug)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetEvent)
			r.Patch("/", h.UpdateEvent)
			r.Delete("/", h.DeleteEvent)
			r.Get("/registrations", h.ListEventRegistrations)
			r.Put("/platforms/{platform}", h.RecordExternalID)
		})
	})

	r.Route("/registrations", func(r chi.Router) {
		r.Get("/", h.ListRegistrations)
		r.With(throttlePosts).Post("/", h.CreateRegistration)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetRegistration)
			r.Patch("/", h.UpdateRegistration)
			r.Delete("/", h.DeleteRegistration)
			r.Post("/transition", h.TransitionRegistration)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.With(throttlePosts).Post("/", h.CreateUser)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetUser)
			r.Patch("/", h.UpdateUser)
			r.Delete("/", h.DeleteUser)
			r.Post("/membership", h.ActivateMembership)
			r.Put("/password", h.ChangePassword)
		})
	})
	r.Get("/directory", h.Directory)
	r.Get("/board", h.Board)

	r.Route("/membership-types", func(r chi.Router) {
		r.Get("/", h.ListMembershipTypes)
		r.Post("/", h.CreateMembershipType)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetMembershipType)
			r.Patch("/", h.UpdateMembershipType)
			r.Delete("/", h.DeleteMembershipType)
		})
	})

	r.Route("/media", func(r chi.Router) {
		r.Get("/", h.ListMedia)
		r.Post("/", h.UploadMedia)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetMedia)
			r.Patch("/", h.UpdateMedia)
			r.Delete("/", h.DeleteMedia)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Get("/activity", h.RecentActivity)
		r.Get("/jobs", h.ListJobs)
		r.Post("/jobs/{name}/run", h.RunJob)
		r.Put("/jobs/{name}/schedule", h.UpdateJobSchedule)
		r.Delete("/jobs/{name}/schedule", h.ResetJobSchedule)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteNotFound(w, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})
	return r
}
