// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/ypng-go/internal/model"
)

func TestWriteAPIError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteAPIError(rr, http.StatusUnprocessableEntity, "validation_error", "Validation failed", map[string]string{"title": "Title is required"})

	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	var body APIError
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Error.Code != "validation_error" || body.Error.Details["title"] != "Title is required" {
		t.Errorf("body = %+v", body)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter("test", 0.001, 2)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(remote string, actor model.Actor) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/registrations", nil)
		req.RemoteAddr = remote
		req = req.WithContext(WithActor(req.Context(), actor))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	anon := model.Anonymous()
	for i := 0; i < 2; i++ {
		if code := do("10.0.0.1:1234", anon); code != http.StatusOK {
			t.Fatalf("request %d: Status = %d, want 200", i, code)
		}
	}
	if code := do("10.0.0.1:5678", anon); code != http.StatusTooManyRequests {
		t.Errorf("burst exceeded: Status = %d, want 429", code)
	}
	if code := do("10.0.0.2:1234", anon); code != http.StatusOK {
		t.Errorf("other IP: Status = %d, want 200", code)
	}

	// Logged-in clients are keyed by user, not address.
	member := model.Actor{ID: 5, Role: model.RoleMember}
	if code := do("10.0.0.1:1234", member); code != http.StatusOK {
		t.Errorf("member behind throttled IP: Status = %d, want 200", code)
	}
}

func TestRateLimiterForMethods(t *testing.T) {
	rl := NewRateLimiter("test", 0.001, 1)
	h := rl.ForMethods(http.MethodPost)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 4)
	for _, m := range []string{http.MethodPost, http.MethodPost, http.MethodGet, http.MethodGet} {
		req := httptest.NewRequest(m, "/api/v1/users", nil)
		req.RemoteAddr = "10.0.0.9:1"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	want := []int{http.StatusOK, http.StatusTooManyRequests, http.StatusOK, http.StatusOK}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d: Status = %d, want %d", i, codes[i], want[i])
		}
	}
}

func TestLimiterCacheBounded(t *testing.T) {
	lc := newLimiterCache[int](1, 1)
	for i := 0; i < maxLimiters+5; i++ {
		lc.get(i)
	}
	if n := lc.size(); n > maxLimiters {
		t.Errorf("size = %d, want <= %d", n, maxLimiters)
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://ypng.org"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/events", nil)
	req.Header.Set("Origin", "https://ypng.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://ypng.org" {
		t.Errorf("allowed origin: Access-Control-Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("foreign origin: Access-Control-Allow-Origin = %q, want empty", got)
	}
}
