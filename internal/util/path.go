// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathEscapes is returned when a joined path leaves its base directory.
var ErrPathEscapes = errors.New("path escapes base directory")

// SanitizeFilename reduces an uploaded file name to its last element.
func SanitizeFilename(name string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	switch base {
	case "", ".", "..", string(filepath.Separator):
		return "", fmt.Errorf("invalid filename %q", name)
	}
	return base, nil
}

// SafeJoinPath joins elems onto base and fails if the result is outside base.
func SafeJoinPath(base string, elems ...string) (string, error) {
	root, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", base, err)
	}
	joined := filepath.Join(append([]string{root}, elems...)...)
	rel, err := filepath.Rel(root, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathEscapes
	}
	return filepath.Join(append([]string{base}, elems...)...), nil
}
