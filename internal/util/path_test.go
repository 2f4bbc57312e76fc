// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "flyer.png", want: "flyer.png"},
		{in: "uploads/2025/flyer.png", want: "flyer.png"},
		{in: "../../etc/passwd", want: "passwd"},
		{in: `C:\Users\board\minutes.pdf`, want: "minutes.pdf"},
		{in: "", wantErr: true},
		{in: "..", wantErr: true},
		{in: "/", wantErr: true},
	}
	for _, tt := range tests {
		got, err := SanitizeFilename(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("SanitizeFilename(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSafeJoinPath(t *testing.T) {
	base := t.TempDir()

	got, err := SafeJoinPath(base, "originals", "abc-123")
	if err != nil {
		t.Fatalf("SafeJoinPath: %v", err)
	}
	if want := filepath.Join(base, "originals", "abc-123"); got != want {
		t.Errorf("SafeJoinPath = %q, want %q", got, want)
	}

	if got, err := SafeJoinPath(base); err != nil || got != base {
		t.Errorf("SafeJoinPath(base) = %q, %v", got, err)
	}

	for _, elems := range [][]string{
		{".."},
		{"..", "outside"},
		{"originals", "..", "..", "etc"},
	} {
		if _, err := SafeJoinPath(base, elems...); !errors.Is(err, ErrPathEscapes) {
			t.Errorf("SafeJoinPath(%v) err = %v, want ErrPathEscapes", elems, err)
		}
	}

	// A sibling sharing the base as a name prefix is still outside.
	if _, err := SafeJoinPath(base, "..", filepath.Base(base)+"-evil"); !errors.Is(err, ErrPathEscapes) {
		t.Errorf("sibling prefix err = %v, want ErrPathEscapes", err)
	}
}
