// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"time"
)

// Event statuses.
const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
	EventStatusCancelled = "cancelled"
	EventStatusCompleted = "completed"
)

// Supported event timezones.
const (
	TimezonePacific  = "America/Los_Angeles"
	TimezoneMountain = "America/Denver"
	TimezoneCentral  = "America/Chicago"
	TimezoneEastern  = "America/New_York"
	TimezoneUTC      = "UTC"
)

// Platform identifies an external event-listing platform.
type Platform string

// External event-listing platforms.
const (
	PlatformWildApricot Platform = "wild_apricot"
	PlatformMeetup      Platform = "meetup"
	PlatformEventbrite  Platform = "eventbrite"
)

// Platforms lists every platform in publication order.
var Platforms = []Platform{PlatformWildApricot, PlatformMeetup, PlatformEventbrite}

// IsValidPlatform reports whether p names a known platform.
func IsValidPlatform(p Platform) bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// Event represents a public gathering.
type Event struct {
	ID              int64                `json:"id"`
	Title           string               `json:"title"`
	Slug            string               `json:"slug"`
	Summary         string               `json:"summary"`
	Description     string               `json:"description"`
	DescriptionHTML string               `json:"descriptionHtml,omitempty"`
	Location        Location             `json:"location"`
	EventDate       time.Time            `json:"event_date"`
	StartTime       string               `json:"start_time"`
	EndTime         string               `json:"end_time"`
	Timezone        string               `json:"timezone"`
	ImageID         *int64               `json:"image,omitempty"`
	ImageURL        string               `json:"image_url,omitempty"`
	Platforms       PlatformSettings     `json:"platforms"`
	Registration    RegistrationSettings `json:"registration"`
	Status          string               `json:"status"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

// Location is where an event takes place.
type Location struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Coordinates *Point `json:"coordinates,omitempty"`
}

// Point is a geographic coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlatformSettings holds per-platform publication flags and the IDs
// written back by the platform sync after publishing.
type PlatformSettings struct {
	WildApricot   bool   `json:"wild_apricot"`
	Meetup        bool   `json:"meetup"`
	Eventbrite    bool   `json:"eventbrite"`
	WildApricotID string `json:"wild_apricot_id,omitempty"`
	MeetupID      string `json:"meetup_id,omitempty"`
	EventbriteID  string `json:"eventbrite_id,omitempty"`
}

// Enabled reports whether publication to p is requested.
func (s PlatformSettings) Enabled(p Platform) bool {
	switch p {
	case PlatformWildApricot:
		return s.WildApricot
	case PlatformMeetup:
		return s.Meetup
	case PlatformEventbrite:
		return s.Eventbrite
	}
	return false
}

// ExternalID returns the ID assigned by platform p, if any.
func (s PlatformSettings) ExternalID(p Platform) string {
	switch p {
	case PlatformWildApricot:
		return s.WildApricotID
	case PlatformMeetup:
		return s.MeetupID
	case PlatformEventbrite:
		return s.EventbriteID
	}
	return ""
}

// SetExternalID records the ID assigned by platform p.
func (s *PlatformSettings) SetExternalID(p Platform, id string) {
	switch p {
	case PlatformWildApricot:
		s.WildApricotID = id
	case PlatformMeetup:
		s.MeetupID = id
	case PlatformEventbrite:
		s.EventbriteID = id
	}
}

// RegistrationSettings configures attendee registration for an event.
type RegistrationSettings struct {
	Enabled  *bool      `json:"enabled,omitempty"`
	Capacity *int       `json:"capacity,omitempty"` // 0 or nil means unlimited
	Price    float64    `json:"price"`
	Deadline *time.Time `json:"registration_deadline,omitempty"`
}

// IsEnabled reports whether registration is open on the event.
func (s RegistrationSettings) IsEnabled() bool {
	return BoolValue(s.Enabled)
}

// Limited reports whether a positive capacity is configured.
func (s RegistrationSettings) Limited() bool {
	return s.Capacity != nil && *s.Capacity > 0
}

// IsPublished returns true if the event is published.
func (e *Event) IsPublished() bool {
	return e.Status == EventStatusPublished
}
