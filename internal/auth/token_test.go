// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/olegiv/ypng-go/internal/model"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var issuedAt = time.Date(2025, 10, 10, 18, 0, 0, 0, time.UTC)

func newIssuer(t *testing.T, now *time.Time) *TokenIssuer {
	t.Helper()
	iss, err := NewTokenIssuer(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer error: %v", err)
	}
	return iss.WithClock(func() time.Time { return *now })
}

func TestNewTokenIssuer(t *testing.T) {
	if _, err := NewTokenIssuer("short", time.Hour); !errors.Is(err, ErrShortSecret) {
		t.Errorf("short secret: error = %v, want ErrShortSecret", err)
	}
	if _, err := NewTokenIssuer(testSecret, 0); err == nil {
		t.Error("zero ttl: expected error")
	}
}

func TestIssueAndParse(t *testing.T) {
	now := issuedAt
	iss := newIssuer(t, &now)

	token, expires, err := iss.Issue(model.User{ID: 42, Role: model.RoleStaff})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if !expires.Equal(issuedAt.Add(time.Hour)) {
		t.Errorf("expires = %v, want %v", expires, issuedAt.Add(time.Hour))
	}

	actor, err := iss.Parse(token)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if actor.ID != 42 || actor.Role != model.RoleStaff {
		t.Errorf("actor = %+v, want staff 42", actor)
	}
}

func TestIssue_RequiresID(t *testing.T) {
	now := issuedAt
	if _, _, err := newIssuer(t, &now).Issue(model.User{Role: model.RoleMember}); err == nil {
		t.Fatal("expected error for a user without id")
	}
}

func TestParse_Rejects(t *testing.T) {
	now := issuedAt
	iss := newIssuer(t, &now)
	valid, _, err := iss.Issue(model.User{ID: 7, Role: model.RoleMember})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	sign := func(method jwt.SigningMethod, claims Claims, key any) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("signing: %v", err)
		}
		return s
	}
	claims := func(sub, role string) Claims {
		return Claims{Role: role, RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
		}}
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"tampered", valid[:len(valid)-2] + "xx"},
		{"other secret", sign(jwt.SigningMethodHS256, claims("7", model.RoleMember), []byte(strings.Repeat("z", 32)))},
		{"none alg", sign(jwt.SigningMethodNone, claims("7", model.RoleAdmin), jwt.UnsafeAllowNoneSignatureType)},
		{"bad subject", sign(jwt.SigningMethodHS256, claims("abc", model.RoleMember), []byte(testSecret))},
		{"unknown role", sign(jwt.SigningMethodHS256, claims("7", "root"), []byte(testSecret))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := iss.Parse(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestParse_Expired(t *testing.T) {
	now := issuedAt
	iss := newIssuer(t, &now)
	token, _, err := iss.Issue(model.User{ID: 7, Role: model.RoleMember})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	now = issuedAt.Add(59 * time.Minute)
	if _, err := iss.Parse(token); err != nil {
		t.Fatalf("token rejected before expiry: %v", err)
	}

	now = issuedAt.Add(61 * time.Minute)
	if _, err := iss.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("error = %v, want ErrInvalidToken", err)
	}
}
