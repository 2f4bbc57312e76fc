// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$") {
		t.Fatalf("unexpected hash prefix: %s", hash)
	}

	again, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == again {
		t.Fatal("two hashes of the same password share a salt")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	tests := []struct {
		password string
		want     bool
	}{
		{"changeme", true},
		{"wrongpassword", false},
		{"", false},
		{"Changeme", false},
	}
	for _, tt := range tests {
		got, err := CheckPassword(tt.password, hash)
		if err != nil {
			t.Fatalf("CheckPassword(%q) error: %v", tt.password, err)
		}
		if got != tt.want {
			t.Errorf("CheckPassword(%q) = %v, want %v", tt.password, got, tt.want)
		}
	}
}

func TestCheckPassword_LegacyParams(t *testing.T) {
	// m=65536,t=1,p=4 hash of "changeme"
	legacy := "$argon2id$v=19$m=65536,t=1,p=4$mucMvOaS6lZ2LWNS1OEFKw$UYEWv8cvCOO6l2zGeqv3JPVe1nyy0x9GXBfYEuDM544"

	ok, err := CheckPassword("changeme", legacy)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if !ok {
		t.Fatal("legacy hash rejected the correct password")
	}
	if !NeedsRehash(legacy) {
		t.Error("legacy hash should need a rehash")
	}
}

func TestCheckPassword_Malformed(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"bcrypt", "$2a$10$abcdefghijklmnopqrstuv"},
		{"wrong algorithm", "$argon2i$v=19$m=19456,t=2,p=1$c2FsdA$a2V5"},
		{"bad version", "$argon2id$v=16$m=19456,t=2,p=1$c2FsdA$a2V5"},
		{"bad params", "$argon2id$v=19$memory$c2FsdA$a2V5"},
		{"bad salt", "$argon2id$v=19$m=19456,t=2,p=1$!!!$a2V5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := CheckPassword("changeme", tt.hash)
			if !errors.Is(err, ErrMalformedHash) {
				t.Fatalf("error = %v, want ErrMalformedHash", err)
			}
			if ok {
				t.Fatal("malformed hash accepted")
			}
		})
	}
}

func TestNeedsRehash(t *testing.T) {
	current, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if NeedsRehash(current) {
		t.Error("hash made with DefaultParams should not need a rehash")
	}

	weaker := DefaultParams
	weaker.Time = 1
	old, err := weaker.Hash("changeme")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !NeedsRehash(old) {
		t.Error("hash with t=1 should need a rehash")
	}
	if !NeedsRehash("not a hash") {
		t.Error("malformed hash should need a rehash")
	}
}
