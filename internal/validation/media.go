// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package validation

import (
	"github.com/olegiv/ypng-go/internal/model"
)

// Media validates media metadata.
func Media(m model.Media) Errors {
	var errs Errors

	if m.Alt == "" {
		errs.Add("alt", "Alt text is required for accessibility")
	}
	if m.MimeType != "" && !model.IsSupportedMimeType(m.MimeType) {
		errs.Add("mimeType", "Unsupported file type")
	}
	checkOption(&errs, model.CollectionMedia, "category", m.Category)

	return errs
}
