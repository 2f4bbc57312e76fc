// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/olegiv/ypng-go/internal/schema"
)

var (
	// timeRegex accepts 24-hour times and 12-hour times with an AM/PM suffix.
	timeRegex = regexp.MustCompile(`(?i)^([0-1]?[0-9]|2[0-3]):[0-5][0-9](\s?[AP]M)?$`)
	// colorRegex matches a CSS hex color with a leading '#'.
	colorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// length counts characters of s after NFC normalization, so composed and
// decomposed accents count the same.
func length(s string) int {
	return utf8.RuneCountInString(norm.NFC.String(s))
}

// IsValidTime reports whether s is an accepted event time.
func IsValidTime(s string) bool {
	return timeRegex.MatchString(s)
}

// IsValidEmail reports whether s parses as a single email address.
func IsValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// IsValidColor reports whether s is a '#'-prefixed 3 or 6 digit hex color.
func IsValidColor(s string) bool {
	return colorRegex.MatchString(s)
}

func isHTTPURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// checkOption records an error if value is set but not a declared option.
func checkOption(errs *Errors, collection, field, value string) {
	if value == "" {
		return
	}
	if !schema.IsOption(collection, field, value) {
		errs.Add(field, fmt.Sprintf("Invalid value %q", value))
	}
}

// checkOptions checks every value of a has-many select.
func checkOptions(errs *Errors, collection, field string, values []string) {
	for _, v := range values {
		if !schema.IsOption(collection, field, v) {
			errs.Add(field, fmt.Sprintf("Invalid value %q", v))
		}
	}
}

// checkRange records an error if v falls outside the field's declared bounds.
func checkRange(errs *Errors, collection, field string, v float64) {
	f := schema.Lookup(collection).Field(field)
	switch {
	case f.Min != nil && f.Max != nil && (v < *f.Min || v > *f.Max):
		errs.Add(field, fmt.Sprintf("Must be between %g and %g", *f.Min, *f.Max))
	case f.Min != nil && v < *f.Min:
		errs.Add(field, fmt.Sprintf("Must be at least %g", *f.Min))
	case f.Max != nil && v > *f.Max:
		errs.Add(field, fmt.Sprintf("Must be at most %g", *f.Max))
	}
}

// checkMaxLength records an error if s exceeds the field's declared maximum.
func checkMaxLength(errs *Errors, collection, field, s string) {
	f := schema.Lookup(collection).Field(field)
	if f.MaxLength > 0 && length(s) > f.MaxLength {
		errs.Add(field, fmt.Sprintf("Must be at most %d characters", f.MaxLength))
	}
}

// Password checks a plaintext password before it is hashed.
func Password(password string) Errors {
	var errs Errors
	switch {
	case password == "":
		errs.Add("password", "Password is required")
	case utf8.RuneCountInString(password) < MinPasswordLength:
		errs.Add("password", fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	return errs
}
