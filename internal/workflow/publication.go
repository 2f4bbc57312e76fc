// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package workflow

import (
	"github.com/olegiv/ypng-go/internal/model"
)

// PlatformsToSync returns the platforms an event must be published to after
// an update: the event is published, the platform is enabled and no external
// ID has been written back yet. Platforms that already hold an ID are never
// returned again.
func PlatformsToSync(ev model.Event) []model.Platform {
	if !ev.IsPublished() {
		return nil
	}
	var out []model.Platform
	for _, p := range model.Platforms {
		if ev.Platforms.Enabled(p) && ev.Platforms.ExternalID(p) == "" {
			out = append(out, p)
		}
	}
	return out
}

// CanRecordExternalID reports whether an external ID may be written back
// for p. IDs are read-only once set.
func CanRecordExternalID(ev model.Event, p model.Platform) bool {
	return model.IsValidPlatform(p) && ev.Platforms.ExternalID(p) == ""
}
