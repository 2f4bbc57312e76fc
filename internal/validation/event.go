// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package validation

import (
	"time"
	_ "time/tzdata" // event timezones must resolve without system zoneinfo

	"github.com/olegiv/ypng-go/internal/model"
	"github.com/olegiv/ypng-go/internal/util"
)

const collEvents = model.CollectionEvents

// Event validates an event. prev is the stored record on update and nil on
// create; the event date is checked against today only on create or when
// the date changes, so past events can still be updated.
func Event(ev model.Event, prev *model.Event, now time.Time) Errors {
	var errs Errors

	switch n := length(ev.Title); {
	case n < 1:
		errs.Add("title", "Event title is required")
	case n > 100:
		errs.Add("title", "Title must be less than 100 characters")
	}

	switch n := length(ev.Summary); {
	case n < 1:
		errs.Add("summary", "Event summary is required")
	case n > 200:
		errs.Add("summary", "Summary must be less than 200 characters")
	}

	if ev.Description == "" {
		errs.Add("description", "Event description is required")
	}

	if ev.Location.Name == "" {
		errs.Add("location.name", "Location name is required")
	}
	if ev.Location.Address == "" {
		errs.Add("location.address", "Location address is required")
	}
	if c := ev.Location.Coordinates; c != nil {
		if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
			errs.Add("location.coordinates", "Coordinates are out of range")
		}
	}

	if ev.Slug != "" && !util.IsValidSlug(ev.Slug) {
		errs.Add("slug", "Invalid slug format (use lowercase letters, numbers, and hyphens)")
	}

	if ev.EventDate.IsZero() {
		errs.Add("event_date", "Event date is required")
	} else if prev == nil || !sameDate(prev.EventDate, ev.EventDate) {
		if dateBefore(ev.EventDate, today(now, ev.Timezone)) {
			errs.Add("event_date", "Event date must be in the future")
		}
	}

	checkTime(&errs, "start_time", "Start time is required", ev.StartTime, "14:00 or 2:00 PM")
	checkTime(&errs, "end_time", "End time is required", ev.EndTime, "16:00 or 4:00 PM")

	checkOption(&errs, collEvents, "timezone", ev.Timezone)
	checkOption(&errs, collEvents, "status", ev.Status)

	if ImageURLApplies(ev) && ev.ImageURL != "" && !isHTTPURL(ev.ImageURL) {
		errs.Add("image_url", "Image URL must be an http or https URL")
	}

	if ev.Registration.Capacity != nil {
		checkRange(&errs, collEvents, "registration.capacity", float64(*ev.Registration.Capacity))
	}
	checkRange(&errs, collEvents, "registration.price", ev.Registration.Price)
	if d := ev.Registration.Deadline; d != nil && !ev.EventDate.IsZero() && dateBefore(ev.EventDate, *d) {
		errs.Add("registration.registration_deadline", "Registration deadline must be on or before the event date")
	}

	return errs
}

func checkTime(errs *Errors, field, requiredMsg, value, example string) {
	if value == "" {
		errs.Add(field, requiredMsg)
		return
	}
	if !IsValidTime(value) {
		errs.Add(field, "Please enter a valid time format (e.g., "+example+")")
	}
}

// today returns the current calendar date in the event's timezone, falling
// back to UTC for unknown zones.
func today(now time.Time, tz string) time.Time {
	loc := time.UTC
	if tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	return now.In(loc)
}

// dateBefore reports whether the calendar date of a is before that of b.
// Each value is read in its own location.
func dateBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}

func sameDate(a, b time.Time) bool {
	return !dateBefore(a, b) && !dateBefore(b, a)
}
