// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose utility functions including
// URL slug generation, nullable SQL conversions and path safety checks.
package util

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var (
	// slugStrip matches characters outside word characters, whitespace and hyphens
	slugStrip = regexp.MustCompile(`[^\w\s-]+`)
	// whitespaceRun matches runs of whitespace
	whitespaceRun = regexp.MustCompile(`\s+`)
	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Slugify converts a string to a URL-friendly slug.
// Accented and non-Latin letters are transliterated to ASCII first, then the
// result is lowercased, stripped of punctuation, whitespace runs become single
// hyphens, repeated hyphens collapse and leading/trailing hyphens are trimmed.
// Underscores are word characters and survive.
func Slugify(s string) string {
	result := unidecode.Unidecode(s)

	result = strings.ToLower(result)

	result = slugStrip.ReplaceAllString(result, "")

	result = strings.TrimSpace(result)
	result = whitespaceRun.ReplaceAllString(result, "-")

	result = multipleHyphens.ReplaceAllString(result, "-")

	return strings.Trim(result, "-")
}

// IsValidSlug checks if a string is a valid slug format.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}

	// Only lowercase letters, numbers, underscores and hyphens
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_') {
			return false
		}
	}

	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	if strings.Contains(s, "--") {
		return false
	}

	return true
}
