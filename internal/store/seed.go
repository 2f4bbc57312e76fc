// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/ypng-go/internal/auth"
	"github.com/olegiv/ypng-go/internal/model"
)

// Default admin credentials
const (
	DefaultAdminEmail     = "admin@example.com"
	DefaultAdminPassword  = "changeme"
	DefaultAdminFirstName = "Site"
	DefaultAdminLastName  = "Administrator"
)

// Seed creates the initial admin account and, when doSeed is set, the
// standard membership tiers. It is safe to run on every start.
func Seed(ctx context.Context, db *sql.DB, doSeed bool) error {
	queries := New(db)

	if err := seedAdmin(ctx, queries); err != nil {
		return err
	}
	if !doSeed {
		return nil
	}
	return seedMembershipTypes(ctx, queries)
}

func seedAdmin(ctx context.Context, queries *Queries) error {
	// Check if admin user already exists
	_, err := queries.GetUserByEmail(ctx, DefaultAdminEmail)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	user, err := queries.CreateUser(ctx, model.User{
		Email:        DefaultAdminEmail,
		PasswordHash: passwordHash,
		FirstName:    DefaultAdminFirstName,
		LastName:     DefaultAdminLastName,
		DisplayName:  DefaultAdminFirstName + " " + DefaultAdminLastName,
		Role:         model.RoleAdmin,
		Status:       model.AccountActive,
		Membership:   model.Membership{Status: model.MembershipNone},
		Preferences: model.Preferences{
			Newsletter:         model.Bool(false),
			EventNotifications: model.Bool(true),
			RenewalReminders:   model.Bool(true),
			ShowInDirectory:    model.Bool(false),
			ShareContactInfo:   model.Bool(false),
		},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"email", user.Email,
		"password", DefaultAdminPassword,
	)
	return nil
}

func seedMembershipTypes(ctx context.Context, queries *Queries) error {
	existing, err := queries.ListMembershipTypes(ctx, false)
	if err != nil {
		return fmt.Errorf("listing membership types: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("membership types already exist, skipping seed", "count", len(existing))
		return nil
	}

	now := time.Now().UTC()
	tiers := []model.MembershipType{
		{
			Name:        "Individual",
			Slug:        "individual",
			Description: "Annual membership for young professionals.",
			Price:       50,
			Duration:    model.DurationAnnual,
			Benefits: []model.Benefit{
				{Text: "Member pricing on all events", Included: model.Bool(true)},
				{Text: "Member directory listing", Included: model.Bool(true)},
			},
			Features:        model.Features{MaxGuests: model.Int(1), CanAccessMemberDirectory: model.Bool(true)},
			SortOrder:       1,
			RenewalReminder: model.Int(30),
			Color:           "#2563eb",
		},
		{
			Name:        "Student",
			Slug:        "student",
			Description: "Discounted annual membership for students.",
			Price:       20,
			Duration:    model.DurationAnnual,
			Benefits: []model.Benefit{
				{Text: "Member pricing on all events", Included: model.Bool(true)},
				{Text: "Mentorship program access", Included: model.Bool(true)},
			},
			Features:        model.Features{MaxGuests: model.Int(0), CanAccessMemberDirectory: model.Bool(true)},
			Eligibility:     model.Eligibility{RequiresVerification: true},
			SortOrder:       2,
			RenewalReminder: model.Int(30),
			Color:           "#16a34a",
		},
		{
			Name:        "Corporate",
			Slug:        "corporate",
			Description: "Group membership for companies supporting their employees.",
			Price:       500,
			Duration:    model.DurationAnnual,
			Benefits: []model.Benefit{
				{Text: "Up to ten employee memberships", Included: model.Bool(true)},
				{Text: "Event sponsorship opportunities", Included: model.Bool(true)},
			},
			Features: model.Features{
				MaxGuests:                model.Int(3),
				CanAccessMemberDirectory: model.Bool(true),
				CanPostJobs:              true,
				CanSponsorEvents:         true,
				PriorityRegistration:     true,
			},
			SortOrder:       3,
			MaxMembers:      model.Int(10),
			RenewalReminder: model.Int(60),
			Color:           "#9333ea",
		},
	}

	for _, mt := range tiers {
		mt.IsActive = model.Bool(true)
		mt.CreatedAt = now
		mt.UpdatedAt = now
		created, err := queries.CreateMembershipType(ctx, mt)
		if err != nil {
			return fmt.Errorf("creating membership type %s: %w", mt.Slug, err)
		}
		slog.Info("created membership type", "id", created.ID, "slug", created.Slug)
	}
	return nil
}
