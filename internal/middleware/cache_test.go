// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestUploads(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "thumbnail", "abc")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "photo.jpg"), []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := Uploads("/uploads/", dir, 604800)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantCache  string
	}{
		{"file", "/uploads/thumbnail/abc/photo.jpg", http.StatusOK, "public, max-age=604800, immutable"},
		{"missing", "/uploads/thumbnail/abc/other.jpg", http.StatusNotFound, ""},
		{"directory listing", "/uploads/thumbnail/abc/", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rr.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantCache == "" {
				return
			}
			if got := rr.Header().Get("Cache-Control"); got != tt.wantCache {
				t.Errorf("Cache-Control = %q, want %q", got, tt.wantCache)
			}
		})
	}
}
