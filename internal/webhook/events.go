// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package webhook delivers outbound signals (confirmation emails, welcome
// emails, billing customers, platform publication) to an external endpoint.
// Every signal is persisted before delivery and retried with backoff.
package webhook

import (
	"time"

	"github.com/google/uuid"
)

// Signal types.
const (
	SignalRegistrationConfirmation = "registration.confirmation"
	SignalWelcomeEmail             = "user.welcome"
	SignalBillingCustomer          = "user.billing_customer"
	SignalPlatformPublish          = "event.publish"
	SignalRenewalReminder          = "membership.renewal_reminder"
)

// Signal is one outbound notification.
type Signal struct {
	Type      string    `json:"type"`
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// NewSignal creates a signal with a fresh idempotency key.
func NewSignal(signalType string, data any) *Signal {
	return &Signal{
		Type:      signalType,
		Key:       uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// RegistrationData identifies a registration in a signal.
type RegistrationData struct {
	RegistrationID     int64  `json:"registration_id"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	EventID            int64  `json:"event_id,omitempty"`
	UserID             int64  `json:"user_id,omitempty"`
}

// UserData identifies a user in a signal.
type UserData struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
}

// PublishData asks a platform integration to list an event.
type PublishData struct {
	EventID  int64  `json:"event_id"`
	Platform string `json:"platform"`
}

// RenewalData reminds a member that their membership is about to expire.
type RenewalData struct {
	UserID         int64     `json:"user_id"`
	ExpirationDate time.Time `json:"expiration_date"`
	DaysLeft       int       `json:"days_left"`
}
