// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package validation

import (
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/olegiv/ypng-go/internal/model"
)

var testNow = time.Date(2025, 10, 15, 10, 0, 0, 0, time.UTC)

func validEvent() model.Event {
	return model.Event{
		Title:       "Fall Mixer",
		Slug:        "fall-mixer",
		Summary:     "Casual meetup",
		Description: "...",
		Location:    model.Location{Name: "The Station SLO", Address: "123 Main St"},
		EventDate:   testNow.AddDate(0, 0, 1),
		StartTime:   "18:00",
		EndTime:     "20:00",
		Timezone:    model.TimezoneUTC,
		Status:      model.EventStatusDraft,
	}
}

func validRegistration() model.EventRegistration {
	return model.EventRegistration{
		RegistrationNumber: "REG-20251015-0001",
		EventID:            1,
		UserID:             2,
		Status:             model.RegistrationPending,
		RegistrationType:   model.RegistrationTypeMember,
		Payment:            model.Payment{Method: model.PaymentFree},
	}
}

func validMembershipType() model.MembershipType {
	return model.MembershipType{
		Name:            "Individual",
		Slug:            "individual",
		Description:     "For individuals",
		Price:           50,
		ExternalPriceID: "price_123",
		Duration:        model.DurationAnnual,
		Benefits:        []model.Benefit{{Text: "Newsletter", Included: model.Bool(true)}},
	}
}

func TestErrors(t *testing.T) {
	var errs Errors
	if errs.Error() != "" || errs.Fields() != nil {
		t.Error("empty Errors should render empty")
	}

	errs.Add("title", "Event title is required")
	errs.Add("title", "Other")
	errs.Add("summary", "Event summary is required")

	if !errs.Has("title") || errs.Has("description") {
		t.Error("Has() mismatch")
	}
	fields := errs.Fields()
	if fields["title"] != "Event title is required; Other" {
		t.Errorf("Fields()[title] = %q", fields["title"])
	}
	if !strings.Contains(errs.Error(), "summary: Event summary is required") {
		t.Errorf("Error() = %q", errs.Error())
	}
}

func TestEventValid(t *testing.T) {
	if errs := Event(validEvent(), nil, testNow); len(errs) != 0 {
		t.Errorf("Event() = %v, want no errors", errs)
	}
}

func TestEventRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Event)
		field  string
	}{
		{"title required", func(e *model.Event) { e.Title = "" }, "title"},
		{"title too long", func(e *model.Event) { e.Title = strings.Repeat("a", 101) }, "title"},
		{"summary required", func(e *model.Event) { e.Summary = "" }, "summary"},
		{"summary too long", func(e *model.Event) { e.Summary = strings.Repeat("b", 201) }, "summary"},
		{"description required", func(e *model.Event) { e.Description = "" }, "description"},
		{"location name", func(e *model.Event) { e.Location.Name = "" }, "location.name"},
		{"location address", func(e *model.Event) { e.Location.Address = "" }, "location.address"},
		{"coordinates", func(e *model.Event) { e.Location.Coordinates = &model.Point{Lat: 91} }, "location.coordinates"},
		{"date required", func(e *model.Event) { e.EventDate = time.Time{} }, "event_date"},
		{"date in past", func(e *model.Event) { e.EventDate = testNow.AddDate(0, 0, -1) }, "event_date"},
		{"start required", func(e *model.Event) { e.StartTime = "" }, "start_time"},
		{"start invalid", func(e *model.Event) { e.StartTime = "24:00" }, "start_time"},
		{"end invalid", func(e *model.Event) { e.EndTime = "6pm" }, "end_time"},
		{"timezone", func(e *model.Event) { e.Timezone = "Europe/Paris" }, "timezone"},
		{"status", func(e *model.Event) { e.Status = "archived" }, "status"},
		{"negative capacity", func(e *model.Event) { e.Registration.Capacity = model.Int(-1) }, "registration.capacity"},
		{"negative price", func(e *model.Event) { e.Registration.Price = -5 }, "registration.price"},
		{"deadline after event", func(e *model.Event) {
			d := e.EventDate.AddDate(0, 0, 2)
			e.Registration.Deadline = &d
		}, "registration.registration_deadline"},
		{"image url", func(e *model.Event) { e.ImageURL = "ftp://example.com/a.png" }, "image_url"},
		{"slug format", func(e *model.Event) { e.Slug = "Fall Mixer" }, "slug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := validEvent()
			tt.mutate(&ev)
			errs := Event(ev, nil, testNow)
			if !errs.Has(tt.field) {
				t.Errorf("Event() = %v, want error on %q", errs, tt.field)
			}
		})
	}
}

func TestEventErrorsAreUnion(t *testing.T) {
	errs := Event(model.Event{}, nil, testNow)
	for _, field := range []string{"title", "summary", "description", "location.name", "location.address", "event_date", "start_time", "end_time"} {
		if !errs.Has(field) {
			t.Errorf("missing error for %q in %v", field, errs)
		}
	}
}

func TestEventDateToday(t *testing.T) {
	ev := validEvent()
	ev.EventDate = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)
	if errs := Event(ev, nil, testNow); errs.Has("event_date") {
		t.Errorf("event today rejected: %v", errs)
	}
}

func TestEventDateUsesEventTimezone(t *testing.T) {
	// 03:00 UTC on Oct 16 is still Oct 15 in Los Angeles.
	now := time.Date(2025, 10, 16, 3, 0, 0, 0, time.UTC)
	ev := validEvent()
	ev.Timezone = model.TimezonePacific
	ev.EventDate = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)
	if errs := Event(ev, nil, now); errs.Has("event_date") {
		t.Errorf("same-day event in event timezone rejected: %v", errs)
	}
}

func TestEventDateNotRecheckedOnUpdate(t *testing.T) {
	past := validEvent()
	past.EventDate = testNow.AddDate(0, 0, -10)
	updated := past
	updated.Status = model.EventStatusCompleted

	if errs := Event(updated, &past, testNow); errs.Has("event_date") {
		t.Errorf("unchanged past date rejected on update: %v", errs)
	}

	moved := past
	moved.EventDate = testNow.AddDate(0, 0, -3)
	if errs := Event(moved, &past, testNow); !errs.Has("event_date") {
		t.Error("changed date in the past accepted on update")
	}
}

func TestIsValidTime(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"18:00", true},
		{"9:30", true},
		{"09:30", true},
		{"0:00", true},
		{"23:59", true},
		{"2:00 PM", true},
		{"2:00PM", true},
		{"2:00 pm", true},
		{"14:00 AM", true},
		{"24:00", false},
		{"12:60", false},
		{"2 PM", false},
		{"", false},
		{"12:00  PM", false},
	}

	for _, tt := range tests {
		if got := IsValidTime(tt.in); got != tt.want {
			t.Errorf("IsValidTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRegistrationRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.EventRegistration)
		field  string
	}{
		{"event required", func(r *model.EventRegistration) { r.EventID = 0 }, "event"},
		{"user required", func(r *model.EventRegistration) { r.UserID = 0 }, "user"},
		{"bad status", func(r *model.EventRegistration) { r.Status = "approved" }, "status"},
		{"bad type", func(r *model.EventRegistration) { r.RegistrationType = "press" }, "registrationType"},
		{"too many guests", func(r *model.EventRegistration) {
			r.NumberOfGuests = 11
			r.GuestNames = []model.Guest{{Name: "A"}}
		}, "numberOfGuests"},
		{"negative guests", func(r *model.EventRegistration) { r.NumberOfGuests = -1 }, "numberOfGuests"},
		{"guest names required", func(r *model.EventRegistration) { r.NumberOfGuests = 3 }, "guestNames"},
		{"more names than guests", func(r *model.EventRegistration) {
			r.NumberOfGuests = 1
			r.GuestNames = []model.Guest{{Name: "A"}, {Name: "B"}}
		}, "guestNames"},
		{"guest name blank", func(r *model.EventRegistration) {
			r.NumberOfGuests = 1
			r.GuestNames = []model.Guest{{Name: " "}}
		}, "guestNames.0.name"},
		{"guest email invalid", func(r *model.EventRegistration) {
			r.NumberOfGuests = 1
			r.GuestNames = []model.Guest{{Name: "A", Email: "nope"}}
		}, "guestNames.0.email"},
		{"card needs reference", func(r *model.EventRegistration) {
			r.Payment = model.Payment{Amount: 20, Method: model.PaymentCreditCard}
		}, "payment.stripePaymentId"},
		{"negative amount", func(r *model.EventRegistration) { r.Payment.Amount = -1 }, "payment.amount"},
		{"bad method", func(r *model.EventRegistration) { r.Payment.Method = "iou" }, "payment.method"},
		{"check-in details", func(r *model.EventRegistration) { r.CheckIn.CheckedIn = true }, "checkIn.checkedInAt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := validRegistration()
			tt.mutate(&reg)
			if errs := Registration(reg); !errs.Has(tt.field) {
				t.Errorf("Registration() = %v, want error on %q", errs, tt.field)
			}
		})
	}
}

func TestRegistrationConditionalFieldsOptional(t *testing.T) {
	reg := validRegistration()
	reg.Payment = model.Payment{Amount: 20, Method: model.PaymentCash}
	if errs := Registration(reg); len(errs) != 0 {
		t.Errorf("cash payment without reference rejected: %v", errs)
	}

	reg.Payment = model.Payment{Amount: 20, Method: model.PaymentCreditCard, ExternalPaymentID: "pi_1"}
	reg.NumberOfGuests = 2
	reg.GuestNames = []model.Guest{{Name: "Sam", Email: "sam@example.com"}, {Name: "Lee"}}
	if errs := Registration(reg); len(errs) != 0 {
		t.Errorf("complete registration rejected: %v", errs)
	}
}

func TestGuestNamesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		guests := rapid.IntRange(0, model.MaxGuests).Draw(t, "guests")
		named := rapid.IntRange(0, guests).Draw(t, "named")

		reg := validRegistration()
		reg.NumberOfGuests = guests
		for i := range named {
			reg.GuestNames = append(reg.GuestNames, model.Guest{Name: "Guest " + string(rune('A'+i))})
		}

		errs := Registration(reg)
		switch {
		case guests == 0 && errs.Has("guestNames"):
			t.Fatalf("guestNames required with 0 guests: %v", errs)
		case guests > 0 && named == 0 && !errs.Has("guestNames"):
			t.Fatalf("missing guestNames accepted with %d guests", guests)
		case named > 0 && errs.Has("guestNames"):
			t.Fatalf("%d names for %d guests rejected: %v", named, guests, errs)
		}
	})
}

func TestEventLengthProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ev := validEvent()
		ev.Title = rapid.StringMatching(`[A-Za-zé ]{1,100}`).Draw(t, "title")
		ev.Summary = rapid.StringMatching(`[A-Za-z0-9 .]{1,200}`).Draw(t, "summary")
		ev.EventDate = testNow.AddDate(0, 0, rapid.IntRange(0, 365).Draw(t, "days"))

		if errs := Event(ev, nil, testNow); len(errs) != 0 {
			t.Fatalf("valid event rejected: %v", errs)
		}
	})
}

func TestUserRules(t *testing.T) {
	valid := model.User{
		Email:      "jane@example.com",
		FirstName:  "Jane",
		LastName:   "Doe",
		Role:       model.RoleMember,
		Status:     model.AccountActive,
		Membership: model.Membership{Status: model.MembershipNone},
	}
	if errs := User(valid); len(errs) != 0 {
		t.Fatalf("User() = %v, want valid", errs)
	}

	tests := []struct {
		name   string
		mutate func(*model.User)
		field  string
	}{
		{"email required", func(u *model.User) { u.Email = "" }, "email"},
		{"email invalid", func(u *model.User) { u.Email = "jane" }, "email"},
		{"email with name", func(u *model.User) { u.Email = "Jane <jane@example.com>" }, "email"},
		{"first name", func(u *model.User) { u.FirstName = "" }, "firstName"},
		{"last name", func(u *model.User) { u.LastName = "" }, "lastName"},
		{"bio too long", func(u *model.User) { u.Bio = strings.Repeat("x", 501) }, "bio"},
		{"role", func(u *model.User) { u.Role = "owner" }, "role"},
		{"status", func(u *model.User) { u.Status = "deleted" }, "status"},
		{"permissions for member", func(u *model.User) { u.Permissions = []string{"view_reports"} }, "permissions"},
		{"unknown interest", func(u *model.User) { u.Interests = []string{"golf"} }, "interests"},
		{"unknown tag", func(u *model.User) { u.Tags = []string{"friend"} }, "tags"},
		{"membership status", func(u *model.User) { u.Membership.Status = "gold" }, "membership.status"},
		{"expiration before join", func(u *model.User) {
			join := testNow
			exp := testNow.AddDate(0, -1, 0)
			u.Membership.JoinDate = &join
			u.Membership.ExpirationDate = &exp
		}, "membership.expirationDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := valid
			tt.mutate(&u)
			if errs := User(u); !errs.Has(tt.field) {
				t.Errorf("User() = %v, want error on %q", errs, tt.field)
			}
		})
	}

	staff := valid
	staff.Role = model.RoleStaff
	staff.Permissions = []string{"manage_events", "view_reports"}
	if errs := User(staff); len(errs) != 0 {
		t.Errorf("staff permissions rejected: %v", errs)
	}
}

func TestPassword(t *testing.T) {
	if !Password("").Has("password") || !Password("short").Has("password") {
		t.Error("empty and short passwords should fail")
	}
	if errs := Password("longenough"); len(errs) != 0 {
		t.Errorf("Password() = %v", errs)
	}
}

func TestMembershipTypeRules(t *testing.T) {
	if errs := MembershipType(validMembershipType()); len(errs) != 0 {
		t.Fatalf("MembershipType() = %v, want valid", errs)
	}

	tests := []struct {
		name   string
		mutate func(*model.MembershipType)
		field  string
	}{
		{"name", func(m *model.MembershipType) { m.Name = "" }, "name"},
		{"slug", func(m *model.MembershipType) { m.Slug = "" }, "slug"},
		{"description", func(m *model.MembershipType) { m.Description = "" }, "description"},
		{"negative price", func(m *model.MembershipType) { m.Price = -1 }, "price"},
		{"price reference", func(m *model.MembershipType) { m.ExternalPriceID = "" }, "stripePriceId"},
		{"duration", func(m *model.MembershipType) { m.Duration = "weekly" }, "duration"},
		{"no benefits", func(m *model.MembershipType) { m.Benefits = nil }, "benefits"},
		{"blank benefit", func(m *model.MembershipType) { m.Benefits = []model.Benefit{{Text: ""}} }, "benefits.0.benefit"},
		{"discount over 100", func(m *model.MembershipType) { m.Features.EventDiscountPercentage = model.Float(120) }, "features.eventDiscountPercentage"},
		{"negative max guests", func(m *model.MembershipType) { m.Features.MaxGuests = model.Int(-1) }, "features.maxGuests"},
		{"age order", func(m *model.MembershipType) {
			m.Eligibility.MinAge = model.Int(30)
			m.Eligibility.MaxAge = model.Int(18)
		}, "eligibility.maxAge"},
		{"color", func(m *model.MembershipType) { m.Color = "#12345" }, "color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mt := validMembershipType()
			tt.mutate(&mt)
			if errs := MembershipType(mt); !errs.Has(tt.field) {
				t.Errorf("MembershipType() = %v, want error on %q", errs, tt.field)
			}
		})
	}
}

func TestMembershipTypeFreeNeedsNoPriceReference(t *testing.T) {
	mt := validMembershipType()
	mt.Price = 0
	mt.ExternalPriceID = ""
	if errs := MembershipType(mt); len(errs) != 0 {
		t.Errorf("free membership rejected: %v", errs)
	}
}

func TestCorporatePlusWithoutBenefits(t *testing.T) {
	mt := model.MembershipType{
		Name:            "Corporate Plus",
		Slug:            "corporate-plus",
		Description:     "For companies",
		Price:           500,
		ExternalPriceID: "price_corp",
		Duration:        model.DurationAnnual,
		Benefits:        []model.Benefit{},
	}
	errs := MembershipType(mt)
	if !errs.Has("benefits") {
		t.Errorf("MembershipType() = %v, want at least one benefit error", errs)
	}
}

func TestMediaRules(t *testing.T) {
	if errs := Media(model.Media{Alt: "Board photo", MimeType: model.MimeTypeJPEG, Category: model.MediaCategoryBoard}); len(errs) != 0 {
		t.Errorf("Media() = %v, want valid", errs)
	}
	errs := Media(model.Media{MimeType: "text/html", Category: "misc"})
	for _, field := range []string{"alt", "mimeType", "category"} {
		if !errs.Has(field) {
			t.Errorf("Media() missing error on %q: %v", field, errs)
		}
	}
}

func TestConditions(t *testing.T) {
	lifetime := model.MembershipType{Duration: model.DurationLifetime}
	if RenewalReminderApplies(lifetime) {
		t.Error("renewal reminder should not apply to lifetime memberships")
	}
	if !MaxMembersApplies(model.MembershipType{Slug: "corporate"}) || MaxMembersApplies(model.MembershipType{Slug: "individual"}) {
		t.Error("max members applies only to corporate and group")
	}
	if ImageURLApplies(model.Event{ImageID: model.Int64(1)}) {
		t.Error("image URL should not apply when an image is uploaded")
	}
	if !PermissionsApply(model.User{Role: model.RoleBoard}) || PermissionsApply(model.User{Role: model.RoleAdmin}) {
		t.Error("permissions apply to staff and board only")
	}
}
