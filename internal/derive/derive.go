// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package derive computes derived field values (slugs, registration and
// member numbers, display names, defaults) on records before validation.
//
// Every rule leaves a non-empty value untouched unless the rule is a
// recomputation (display name, rendered description). Derivation never fails;
// values it produces are checked by the validation stage like any other.
package derive

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/olegiv/ypng-go/internal/model"
	"github.com/olegiv/ypng-go/internal/schema"
	"github.com/olegiv/ypng-go/internal/util"
)

// Fallback slugs for sources that reduce to nothing.
const (
	fallbackEventSlug          = "event"
	fallbackMembershipTypeSlug = "membership"
)

// descriptionSanitizer strips anything unsafe from rendered descriptions.
var descriptionSanitizer = bluemonday.UGCPolicy()

// Engine applies derivation rules. Now and IntN are injectable for tests.
type Engine struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
	// IntN returns a random integer in [0, n). Defaults to math/rand/v2.IntN.
	IntN func(n int) int

	markdown goldmark.Markdown
}

// New creates an Engine using the wall clock and the global random source.
func New() *Engine {
	return &Engine{
		Now:      time.Now,
		IntN:     rand.IntN,
		markdown: goldmark.New(),
	}
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Engine) intN(n int) int {
	if e.IntN == nil {
		return rand.IntN(n)
	}
	return e.IntN(n)
}

// RegistrationNumber generates a fresh registration number: REG-YYYYMMDD-XXXX
// with the UTC date and a zero-padded random suffix in [0, 9999].
func (e *Engine) RegistrationNumber() string {
	return fmt.Sprintf("REG-%s-%04d", e.now().UTC().Format("20060102"), e.intN(10000))
}

// MemberNumber generates a fresh member number: YYYY-NNNNN with a random
// five-digit suffix in [10000, 99999].
func (e *Engine) MemberNumber() string {
	return fmt.Sprintf("%d-%d", e.now().UTC().Year(), 10000+e.intN(90000))
}

// SlugVariant returns slug with a random four-digit suffix, used when the
// derived slug is already taken.
func (e *Engine) SlugVariant(slug string) string {
	return fmt.Sprintf("%s-%04d", slug, e.intN(10000))
}

// RenderDescription converts Markdown source to sanitized HTML.
func (e *Engine) RenderDescription(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	md := e.markdown
	if md == nil {
		md = goldmark.New()
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		// goldmark only fails on writer errors; fall back to escaped text
		return descriptionSanitizer.Sanitize(src)
	}
	return descriptionSanitizer.Sanitize(buf.String())
}

// Event derives event fields. On create it applies defaults and derives the
// slug from the title when absent. On every mutation it clears the external
// image URL when an uploaded image is present and re-renders the description.
func (e *Engine) Event(ev model.Event, op model.Operation) model.Event {
	if op == model.OpCreate {
		if ev.Status == "" {
			ev.Status = schema.DefaultString(model.CollectionEvents, "status")
		}
		if ev.Timezone == "" {
			ev.Timezone = schema.DefaultString(model.CollectionEvents, "timezone")
		}
		if ev.Registration.Enabled == nil {
			ev.Registration.Enabled = model.Bool(schema.DefaultBool(model.CollectionEvents, "registration.enabled"))
		}
		if ev.Slug == "" {
			ev.Slug = util.Slugify(ev.Title)
			if ev.Slug == "" {
				ev.Slug = fallbackEventSlug
			}
		}
	}

	if ev.ImageID != nil {
		ev.ImageURL = ""
	}
	ev.DescriptionHTML = e.RenderDescription(ev.Description)

	return ev
}

// Registration derives registration fields. On create it generates the
// registration number, defaults the registering user to the actor and
// applies defaults. On every mutation it stamps check-in and payment times.
func (e *Engine) Registration(reg model.EventRegistration, op model.Operation, actor model.Actor) model.EventRegistration {
	if op == model.OpCreate {
		if reg.RegistrationNumber == "" {
			reg.RegistrationNumber = e.RegistrationNumber()
		}
		if reg.UserID == 0 && !actor.IsAnonymous() {
			reg.UserID = actor.ID
		}
		if reg.Status == "" {
			reg.Status = schema.DefaultString(model.CollectionRegistrations, "status")
		}
		if reg.RegistrationType == "" {
			reg.RegistrationType = schema.DefaultString(model.CollectionRegistrations, "registrationType")
		}
		if reg.Payment.Method == "" {
			reg.Payment.Method = schema.DefaultString(model.CollectionRegistrations, "payment.method")
		}
	}

	if reg.CheckIn.CheckedIn {
		if reg.CheckIn.CheckedInAt == nil {
			now := e.now()
			reg.CheckIn.CheckedInAt = &now
		}
		if reg.CheckIn.CheckedInBy == nil && !actor.IsAnonymous() {
			reg.CheckIn.CheckedInBy = model.Int64(actor.ID)
		}
	}

	if reg.Status == model.RegistrationConfirmed && reg.Payment.Method != model.PaymentFree &&
		reg.Payment.Amount > 0 && reg.Payment.PaidAt == nil {
		now := e.now()
		reg.Payment.PaidAt = &now
	}

	return reg
}

// User derives user fields. On create it applies defaults and generates a
// member number when the membership is active. The email is normalized and
// the display name recomputed on every mutation.
func (e *Engine) User(u model.User, op model.Operation) model.User {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	if op == model.OpCreate {
		if u.Role == "" {
			u.Role = schema.DefaultString(model.CollectionUsers, "role")
		}
		if u.Status == "" {
			u.Status = schema.DefaultString(model.CollectionUsers, "status")
		}
		if u.Membership.Status == "" {
			u.Membership.Status = schema.DefaultString(model.CollectionUsers, "membership.status")
		}
		u.Preferences = e.preferenceDefaults(u.Preferences)
		if u.Membership.MemberNumber == "" && u.Membership.Status == model.MembershipActive {
			u.Membership.MemberNumber = e.MemberNumber()
		}
	}

	if u.FirstName != "" && u.LastName != "" {
		u.DisplayName = u.FirstName + " " + u.LastName
	}

	return u
}

func (e *Engine) preferenceDefaults(p model.Preferences) model.Preferences {
	flag := func(v *bool, field string) *bool {
		if v != nil {
			return v
		}
		return model.Bool(schema.DefaultBool(model.CollectionUsers, "preferences."+field))
	}
	p.Newsletter = flag(p.Newsletter, "newsletter")
	p.EventNotifications = flag(p.EventNotifications, "eventNotifications")
	p.RenewalReminders = flag(p.RenewalReminders, "renewalReminders")
	p.ShowInDirectory = flag(p.ShowInDirectory, "showInDirectory")
	p.ShareContactInfo = flag(p.ShareContactInfo, "shareContactInfo")
	return p
}

// MembershipType derives membership type fields. On create it applies
// defaults and derives the slug from the name when absent. On every mutation
// the badge color gets a leading '#' and benefits default to included.
func (e *Engine) MembershipType(mt model.MembershipType, op model.Operation) model.MembershipType {
	if op == model.OpCreate {
		if mt.Duration == "" {
			mt.Duration = schema.DefaultString(model.CollectionMembershipTypes, "duration")
		}
		if mt.RenewalReminder == nil {
			mt.RenewalReminder = model.Int(schema.DefaultInt(model.CollectionMembershipTypes, "renewalReminder"))
		}
		if mt.IsActive == nil {
			mt.IsActive = model.Bool(schema.DefaultBool(model.CollectionMembershipTypes, "isActive"))
		}
		if mt.Features.CanAccessMemberDirectory == nil {
			mt.Features.CanAccessMemberDirectory = model.Bool(
				schema.DefaultBool(model.CollectionMembershipTypes, "features.canAccessMemberDirectory"))
		}
		if mt.Slug == "" {
			mt.Slug = util.Slugify(mt.Name)
			if mt.Slug == "" && strings.TrimSpace(mt.Name) != "" {
				mt.Slug = fallbackMembershipTypeSlug
			}
		}
	}

	if mt.Color != "" && !strings.HasPrefix(mt.Color, "#") {
		mt.Color = "#" + mt.Color
	}

	if len(mt.Benefits) > 0 {
		benefits := make([]model.Benefit, len(mt.Benefits))
		for i, b := range mt.Benefits {
			if b.Included == nil {
				b.Included = model.Bool(schema.DefaultBool(model.CollectionMembershipTypes, "benefits.included"))
			}
			benefits[i] = b
		}
		mt.Benefits = benefits
	}

	return mt
}

// Media derives media fields. Alt text and caption are trimmed; the category
// defaults to general.
func (e *Engine) Media(m model.Media, op model.Operation) model.Media {
	m.Alt = strings.TrimSpace(m.Alt)
	m.Caption = strings.TrimSpace(m.Caption)
	if op == model.OpCreate && m.Category == "" {
		m.Category = schema.DefaultString(model.CollectionMedia, "category")
	}
	return m
}
