// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package notify implements the notification and platform sync collaborators
// on top of the signal dispatcher.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/olegiv/ypng-go/internal/model"
	"github.com/olegiv/ypng-go/internal/webhook"
)

// Emitter sends a typed signal. *webhook.Dispatcher satisfies it.
type Emitter interface {
	Emit(ctx context.Context, signalType string, data any) error
}

// Notifier turns domain side effects into outbound signals.
type Notifier struct {
	emitter Emitter
}

// NewNotifier creates a notifier that emits through e.
func NewNotifier(e Emitter) *Notifier {
	return &Notifier{emitter: e}
}

// SendRegistrationConfirmation asks for the confirmation email of reg.
func (n *Notifier) SendRegistrationConfirmation(ctx context.Context, reg model.EventRegistration) error {
	err := n.emitter.Emit(ctx, webhook.SignalRegistrationConfirmation, webhook.RegistrationData{
		RegistrationID:     reg.ID,
		RegistrationNumber: reg.RegistrationNumber,
		EventID:            reg.EventID,
		UserID:             reg.UserID,
	})
	if err != nil {
		return fmt.Errorf("registration %d confirmation: %w", reg.ID, err)
	}
	return nil
}

// SendWelcomeEmail asks for the welcome email of a new member.
func (n *Notifier) SendWelcomeEmail(ctx context.Context, u model.User) error {
	if err := n.emitter.Emit(ctx, webhook.SignalWelcomeEmail, userData(u)); err != nil {
		return fmt.Errorf("user %d welcome email: %w", u.ID, err)
	}
	return nil
}

// CreateBillingCustomer asks the billing integration to create a customer for u.
func (n *Notifier) CreateBillingCustomer(ctx context.Context, u model.User) error {
	if err := n.emitter.Emit(ctx, webhook.SignalBillingCustomer, userData(u)); err != nil {
		return fmt.Errorf("user %d billing customer: %w", u.ID, err)
	}
	return nil
}

// SendRenewalReminder reminds u that the membership expires in daysLeft days.
func (n *Notifier) SendRenewalReminder(ctx context.Context, u model.User, daysLeft int) error {
	var expires time.Time
	if u.Membership.ExpirationDate != nil {
		expires = *u.Membership.ExpirationDate
	}
	err := n.emitter.Emit(ctx, webhook.SignalRenewalReminder, webhook.RenewalData{
		UserID:         u.ID,
		ExpirationDate: expires,
		DaysLeft:       daysLeft,
	})
	if err != nil {
		return fmt.Errorf("user %d renewal reminder: %w", u.ID, err)
	}
	return nil
}

func userData(u model.User) webhook.UserData {
	return webhook.UserData{UserID: u.ID, Email: u.Email, Name: u.DisplayName}
}

// Syncer publishes events to external listing platforms.
type Syncer struct {
	emitter Emitter
}

// NewSyncer creates a platform syncer that emits through e.
func NewSyncer(e Emitter) *Syncer {
	return &Syncer{emitter: e}
}

// Publish asks the integration for p to list the event. The integration
// writes the external ID back once the listing exists.
func (s *Syncer) Publish(ctx context.Context, p model.Platform, eventID int64) error {
	if !model.IsValidPlatform(p) {
		return fmt.Errorf("unknown platform %q", p)
	}
	err := s.emitter.Emit(ctx, webhook.SignalPlatformPublish, webhook.PublishData{
		EventID:  eventID,
		Platform: string(p),
	})
	if err != nil {
		return fmt.Errorf("publishing event %d to %s: %w", eventID, p, err)
	}
	return nil
}
