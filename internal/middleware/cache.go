// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// Uploads serves processed media from dir under prefix. Upload paths embed
// the media UUID, so files are cached as immutable. Directory listings are
// refused.
func Uploads(prefix, dir string, maxAge int) http.Handler {
	files := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	cacheControl := "public, max-age=" + strconv.Itoa(maxAge) + ", immutable"

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", cacheControl)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}
