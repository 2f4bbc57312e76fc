// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple title",
			input:    "Fall Mixer",
			expected: "fall-mixer",
		},
		{
			name:     "with special characters",
			input:    "Hello, World!",
			expected: "hello-world",
		},
		{
			name:     "with numbers",
			input:    "Mixer 2025",
			expected: "mixer-2025",
		},
		{
			name:     "with accents",
			input:    "Café résumé",
			expected: "cafe-resume",
		},
		{
			name:     "accented letters transliterated, not dropped",
			input:    "Café Night",
			expected: "cafe-night",
		},
		{
			name:     "diacritics in every word",
			input:    "Noël à Zürich",
			expected: "noel-a-zurich",
		},
		{
			name:     "with multiple spaces",
			input:    "Hello   World",
			expected: "hello-world",
		},
		{
			name:     "with hyphens",
			input:    "Hello - World",
			expected: "hello-world",
		},
		{
			name:     "with leading/trailing spaces",
			input:    "  Hello World  ",
			expected: "hello-world",
		},
		{
			name:     "leading and trailing hyphens",
			input:    "--Corporate Plus--",
			expected: "corporate-plus",
		},
		{
			name:     "underscore kept",
			input:    "board_alumni night",
			expected: "board_alumni-night",
		},
		{
			name:     "all special characters",
			input:    "!@#$%^&*()",
			expected: "",
		},
		{
			name:     "german umlauts",
			input:    "Über München",
			expected: "uber-munchen",
		},
		{
			name:     "tabs and newlines",
			input:    "Wine\tand\nCheese",
			expected: "wine-and-cheese",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "mixed case",
			input:    "HeLLo WoRLd",
			expected: "hello-world",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Slugify(tt.input)
			if result != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSlugifyProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching(`[A-Za-z0-9 ,.!?'&_-]{0,60}`).Draw(t, "title")
		slug := Slugify(s)

		if Slugify(s) != slug {
			t.Fatalf("Slugify not deterministic for %q", s)
		}
		if slug != strings.ToLower(slug) {
			t.Fatalf("Slugify(%q) = %q is not lowercase", s, slug)
		}
		if strings.Contains(slug, "--") || strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
			t.Fatalf("Slugify(%q) = %q has stray hyphens", s, slug)
		}
		if slug != "" && !IsValidSlug(slug) {
			t.Fatalf("Slugify(%q) = %q is not a valid slug", s, slug)
		}
		if Slugify(slug) != slug {
			t.Fatalf("Slugify is not idempotent on %q", slug)
		}
	})
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"valid simple slug", "hello-world", true},
		{"valid slug with numbers", "page-123", true},
		{"valid underscore", "board_alumni", true},
		{"valid numbers only", "123", true},
		{"invalid - empty", "", false},
		{"invalid - uppercase", "Hello-World", false},
		{"invalid - spaces", "hello world", false},
		{"invalid - special chars", "hello!world", false},
		{"invalid - starts with hyphen", "-hello", false},
		{"invalid - ends with hyphen", "hello-", false},
		{"invalid - consecutive hyphens", "hello--world", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidSlug(tt.input)
			if result != tt.expected {
				t.Errorf("IsValidSlug(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}
