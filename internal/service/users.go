// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/ypng-go/internal/access"
	"github.com/olegiv/ypng-go/internal/auth"
	"github.com/olegiv/ypng-go/internal/cache"
	"github.com/olegiv/ypng-go/internal/model"
	"github.com/olegiv/ypng-go/internal/store"
	"github.com/olegiv/ypng-go/internal/validation"
)

const (
	collUsers         = model.CollectionUsers
	memberNumberField = "membership.memberNumber"
)

// Login failures.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is temporarily locked")
	ErrAccountDisabled    = errors.New("account is not active")
)

// PublicProfile is the part of a user shown on public listings.
type PublicProfile struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio,omitempty"`
	AvatarID    *int64 `json:"avatar,omitempty"`
}

// UserService manages accounts, memberships and logins.
type UserService struct {
	*base
}

// Create registers a new account. Anyone may sign up; only admin sets the
// role and account status, and only admin or staff set membership details.
func (s *UserService) Create(ctx context.Context, actor model.Actor, u model.User, password string) (model.User, error) {
	if _, err := authorize(collUsers, model.OpCreate, actor); err != nil {
		return model.User{}, err
	}

	u = access.RestrictUserCreate(u, actor)
	u.ID = 0
	numberDerived := u.Membership.MemberNumber == ""
	u = s.derive.User(u, model.OpCreate)

	errs := validation.User(u)
	errs = append(errs, validation.Password(password)...)
	if len(errs) > 0 {
		return model.User{}, invalid(collUsers, errs)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}
	u.PasswordHash = hash
	now := s.now()
	u.CreatedAt, u.UpdatedAt = now, now

	retryField := ""
	if numberDerived {
		retryField = memberNumberField
	}
	saved, err := saveWithRetry(collUsers, retryField, func() (model.User, error) {
		return s.queries.CreateUser(ctx, u)
	}, func() {
		u.Membership.MemberNumber = s.derive.MemberNumber()
	})
	if err != nil {
		return model.User{}, err
	}

	if saved.Billing.CustomerID == "" {
		s.hook(ctx, "billing customer", func(ctx context.Context) error {
			return s.notifier.CreateBillingCustomer(ctx, saved)
		})
	}
	if saved.HasActiveMembership() {
		s.hook(ctx, "welcome email", func(ctx context.Context) error {
			return s.notifier.SendWelcomeEmail(ctx, saved)
		})
	}
	s.invalidate(ctx, cache.PrefixUsers)

	return access.RedactUser(saved, actor), nil
}

// Update applies a JSON patch to a user. Members update only themselves and
// may not touch role, status, membership or staff notes.
func (s *UserService) Update(ctx context.Context, actor model.Actor, id int64, patch []byte) (model.User, error) {
	d, err := authorize(collUsers, model.OpUpdate, actor)
	if err != nil {
		return model.User{}, err
	}
	prev, err := s.load(ctx, d, id)
	if err != nil {
		return model.User{}, err
	}

	next, err := mergePatch(collUsers, prev, patch)
	if err != nil {
		return model.User{}, err
	}
	next = access.KeepUserSystemFields(prev, next)
	if v := access.Violations(collUsers, access.UserChanges(prev, next), actor); len(v) > 0 {
		return model.User{}, denied(collUsers, model.OpUpdate, actor, v...)
	}
	next = s.derive.User(next, model.OpUpdate)
	if next.HasActiveMembership() && next.Membership.MemberNumber == "" {
		next.Membership.MemberNumber = s.derive.MemberNumber()
	}

	if errs := validation.User(next); len(errs) > 0 {
		return model.User{}, invalid(collUsers, errs)
	}
	next.UpdatedAt = s.now()

	saved, err := saveWithRetry(collUsers, s.memberNumberRetry(prev), func() (model.User, error) {
		return s.queries.UpdateUser(ctx, next)
	}, func() {
		next.Membership.MemberNumber = s.derive.MemberNumber()
	})
	if err != nil {
		return model.User{}, err
	}
	s.invalidate(ctx, cache.PrefixUsers)

	return access.RedactUser(saved, actor), nil
}

// memberNumberRetry returns the retryable field when the member number is
// generated by this save rather than kept from prev.
func (s *UserService) memberNumberRetry(prev model.User) string {
	if prev.Membership.MemberNumber != "" {
		return ""
	}
	return memberNumberField
}

// ChangePassword sets a new password. Users change their own; admin changes anyone's.
func (s *UserService) ChangePassword(ctx context.Context, actor model.Actor, id int64, password string) error {
	if actor.IsAnonymous() || (actor.ID != id && !actor.IsAdmin()) {
		return denied(collUsers, model.OpUpdate, actor, "password")
	}
	if errs := validation.Password(password); len(errs) > 0 {
		return invalid(collUsers, errs)
	}
	u, err := s.queries.GetUser(ctx, id)
	if err != nil {
		return lookupErr(collUsers, id, err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	u.PasswordHash = hash
	u.UpdatedAt = s.now()
	if _, err := s.queries.UpdateUser(ctx, u); err != nil {
		return saveErr(collUsers, err)
	}
	return nil
}

// Authenticate checks credentials and applies the lockout policy: after
// MaxLoginAttempts consecutive failures the account is locked for
// LockDuration. A successful login resets the counter.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, fmt.Errorf("loading user: %w", err)
	}

	now := s.now()
	if u.IsLocked(now) {
		return model.User{}, ErrAccountLocked
	}

	ok, err := auth.CheckPassword(password, u.PasswordHash)
	if err != nil {
		return model.User{}, fmt.Errorf("checking password: %w", err)
	}
	if !ok {
		return model.User{}, s.recordFailure(ctx, u, now)
	}
	if u.Status != model.AccountActive {
		return model.User{}, ErrAccountDisabled
	}

	if auth.NeedsRehash(u.PasswordHash) {
		s.hook(ctx, "password rehash", func(ctx context.Context) error {
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			u.PasswordHash = hash
			_, err = s.queries.UpdateUser(ctx, u)
			return err
		})
	}

	return s.recordLogin(ctx, u, now)
}

func (s *UserService) recordFailure(ctx context.Context, u model.User, now time.Time) error {
	attempts := u.LoginAttempts + 1
	var lockUntil *time.Time
	if attempts >= model.MaxLoginAttempts {
		t := now.Add(model.LockDuration)
		lockUntil = &t
		attempts = 0
	}
	err := s.queries.UpdateUserLogin(ctx, store.UpdateUserLoginParams{
		ID:            u.ID,
		LoginAttempts: attempts,
		LockUntil:     lockUntil,
		LastLogin:     u.LastLogin,
		LoginCount:    u.LoginCount,
		UpdatedAt:     now,
	})
	if err != nil {
		return fmt.Errorf("recording failed login: %w", err)
	}
	if lockUntil != nil {
		s.logger.Warn("account locked after failed logins", "user_id", u.ID, "until", *lockUntil)
		return ErrAccountLocked
	}
	return ErrInvalidCredentials
}

// RecordLogin stamps a successful login on a user.
func (s *UserService) RecordLogin(ctx context.Context, id int64) (model.User, error) {
	u, err := s.queries.GetUser(ctx, id)
	if err != nil {
		return model.User{}, lookupErr(collUsers, id, err)
	}
	return s.recordLogin(ctx, u, s.now())
}

func (s *UserService) recordLogin(ctx context.Context, u model.User, now time.Time) (model.User, error) {
	u.LoginAttempts = 0
	u.LockUntil = nil
	u.LastLogin = &now
	u.LoginCount++
	u.UpdatedAt = now
	err := s.queries.UpdateUserLogin(ctx, store.UpdateUserLoginParams{
		ID:            u.ID,
		LoginAttempts: u.LoginAttempts,
		LockUntil:     u.LockUntil,
		LastLogin:     u.LastLogin,
		LoginCount:    u.LoginCount,
		UpdatedAt:     now,
	})
	if err != nil {
		return model.User{}, fmt.Errorf("recording login: %w", err)
	}
	return u, nil
}

// ActivateMembership starts or renews a user's membership of a type. The
// term runs from now, or from the current expiration when renewing early.
// Lifetime types never expire. A member number is generated on first activation.
func (s *UserService) ActivateMembership(ctx context.Context, actor model.Actor, userID, typeID int64) (model.User, error) {
	if !actor.IsPrivileged() {
		return model.User{}, denied(collUsers, model.OpUpdate, actor, "membership.status")
	}
	u, err := s.queries.GetUser(ctx, userID)
	if err != nil {
		return model.User{}, lookupErr(collUsers, userID, err)
	}
	mt, err := s.queries.GetMembershipType(ctx, typeID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, invalidField(collUsers, "membership.type", "Membership type not found")
	}
	if err != nil {
		return model.User{}, fmt.Errorf("loading membership type %d: %w", typeID, err)
	}
	if !model.BoolValue(mt.IsActive) {
		return model.User{}, invalidField(collUsers, "membership.type", "Membership type is not available")
	}

	wasActive := u.HasActiveMembership()
	sameType := wasActive && u.Membership.TypeID != nil && *u.Membership.TypeID == typeID
	if mt.SupportsMaxMembers() && mt.MaxMembers != nil && *mt.MaxMembers > 0 && !sameType {
		n, err := s.queries.CountActiveMembersOfType(ctx, typeID)
		if err != nil {
			return model.User{}, fmt.Errorf("counting members: %w", err)
		}
		if n >= int64(*mt.MaxMembers) {
			return model.User{}, invalidField(collUsers, "membership.type", "Membership type has reached its member limit")
		}
	}

	now := s.now()
	m := &u.Membership
	from := now
	if wasActive && m.ExpirationDate != nil && m.ExpirationDate.After(now) {
		from = *m.ExpirationDate
	}
	m.Status = model.MembershipActive
	m.TypeID = &typeID
	if m.JoinDate == nil || !wasActive {
		m.JoinDate = &now
	}
	if end, ok := mt.Term(from); ok {
		m.Lifetime = false
		m.RenewalDate = &end
		m.ExpirationDate = &end
	} else {
		m.Lifetime = mt.IsLifetime()
		m.RenewalDate = nil
		m.ExpirationDate = nil
	}
	retryField := ""
	if m.MemberNumber == "" {
		m.MemberNumber = s.derive.MemberNumber()
		retryField = memberNumberField
	}

	if errs := validation.User(u); len(errs) > 0 {
		return model.User{}, invalid(collUsers, errs)
	}
	u.UpdatedAt = now

	saved, err := saveWithRetry(collUsers, retryField, func() (model.User, error) {
		return s.queries.UpdateUser(ctx, u)
	}, func() {
		u.Membership.MemberNumber = s.derive.MemberNumber()
	})
	if err != nil {
		return model.User{}, err
	}

	if !wasActive {
		s.hook(ctx, "welcome email", func(ctx context.Context) error {
			return s.notifier.SendWelcomeEmail(ctx, saved)
		})
	}
	s.invalidate(ctx, cache.PrefixUsers)
	return access.RedactUser(saved, actor), nil
}

// ExpireMemberships marks active memberships past their expiration as
// expired and returns how many were changed.
func (s *UserService) ExpireMemberships(ctx context.Context) (int, error) {
	users, err := s.queries.ListExpiringMemberships(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing memberships: %w", err)
	}
	now := s.now()
	expired := 0
	for _, u := range users {
		if !u.Membership.ExpirationDate.Before(now) {
			continue
		}
		u.Membership.Status = model.MembershipExpired
		u.UpdatedAt = now
		if _, err := s.queries.UpdateUser(ctx, u); err != nil {
			return expired, fmt.Errorf("expiring membership of user %d: %w", u.ID, err)
		}
		expired++
	}
	if expired > 0 {
		s.invalidate(ctx, cache.PrefixUsers)
	}
	return expired, nil
}

// SendRenewalReminders notifies members whose membership expires in exactly
// the number of days their type's renewal reminder asks for. Members who
// opted out of reminders are skipped. It returns how many were sent.
func (s *UserService) SendRenewalReminders(ctx context.Context) (int, error) {
	users, err := s.queries.ListExpiringMemberships(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing memberships: %w", err)
	}
	now := s.now()
	reminderDays := map[int64]int{}
	sent := 0
	for _, u := range users {
		if u.Membership.TypeID == nil || !model.BoolValue(u.Preferences.RenewalReminders) {
			continue
		}
		typeID := *u.Membership.TypeID
		days, ok := reminderDays[typeID]
		if !ok {
			mt, err := s.queries.GetMembershipType(ctx, typeID)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return sent, fmt.Errorf("loading membership type %d: %w", typeID, err)
			}
			days = model.IntValue(mt.RenewalReminder)
			reminderDays[typeID] = days
		}
		if days <= 0 || daysBetween(now, *u.Membership.ExpirationDate) != days {
			continue
		}
		if err := s.notifier.SendRenewalReminder(ctx, u, days); err != nil {
			s.logger.Warn("renewal reminder failed", "user_id", u.ID, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}

// daysBetween counts calendar days from a to b in UTC.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

func (s *UserService) load(ctx context.Context, d access.Decision, id int64) (model.User, error) {
	u, err := s.queries.GetUser(ctx, id)
	if err != nil {
		return model.User{}, lookupErr(collUsers, id, err)
	}
	if !d.Permits(u) {
		return model.User{}, &NotFoundError{Collection: collUsers, ID: id}
	}
	return u, nil
}

// Get returns a user visible to actor.
func (s *UserService) Get(ctx context.Context, actor model.Actor, id int64) (model.User, error) {
	d, err := authorize(collUsers, model.OpRead, actor)
	if err != nil {
		return model.User{}, err
	}
	u, err := s.load(ctx, d, id)
	if err != nil {
		return model.User{}, err
	}
	return access.RedactUser(u, actor), nil
}

// List returns a page of the users visible to actor.
func (s *UserService) List(ctx context.Context, actor model.Actor, limit, offset int64) ([]model.User, error) {
	d, err := authorize(collUsers, model.OpRead, actor)
	if err != nil {
		return nil, err
	}
	users, err := s.queries.ListUsers(ctx, store.ListParams{Filter: filterOf(d), Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	for i := range users {
		users[i] = access.RedactUser(users[i], actor)
	}
	return users, nil
}

// Delete removes a user and their registrations.
func (s *UserService) Delete(ctx context.Context, actor model.Actor, id int64) error {
	if _, err := authorize(collUsers, model.OpDelete, actor); err != nil {
		return err
	}
	if _, err := s.queries.GetUser(ctx, id); err != nil {
		return lookupErr(collUsers, id, err)
	}
	if err := s.queries.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("deleting user %d: %w", id, err)
	}
	s.invalidate(ctx, cache.PrefixUsers)
	return nil
}

// Directory lists active members who opted into the public directory.
func (s *UserService) Directory(ctx context.Context) ([]PublicProfile, error) {
	return cachedList(ctx, s.base, cache.KeyDirectory, func() ([]PublicProfile, error) {
		users, err := s.queries.ListDirectoryMembers(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing directory: %w", err)
		}
		return profiles(users), nil
	})
}

// Board lists the active board members.
func (s *UserService) Board(ctx context.Context) ([]PublicProfile, error) {
	return cachedList(ctx, s.base, cache.KeyBoard, func() ([]PublicProfile, error) {
		users, err := s.queries.ListUsersByRole(ctx, model.RoleBoard)
		if err != nil {
			return nil, fmt.Errorf("listing board: %w", err)
		}
		return profiles(users), nil
	})
}

func profiles(users []model.User) []PublicProfile {
	out := make([]PublicProfile, len(users))
	for i, u := range users {
		out[i] = PublicProfile{ID: u.ID, DisplayName: u.DisplayName, Bio: u.Bio, AvatarID: u.AvatarID}
	}
	return out
}
