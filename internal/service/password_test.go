package service

import (
	"errors"
	"strings"
	"testing"
)

func TestHashPassword_VerifyRoundtrip(t *testing.T) {
	hash, err := HashPassword("hunter2secret")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "" || hash == "hunter2secret" {
		t.Fatalf("hash must be non-empty and never equal plaintext")
	}
	if !VerifyPassword("hunter2secret", hash) {
		t.Fatalf("expected verify to succeed for correct password")
	}
	if VerifyPassword("hunter3secret", hash) {
		t.Fatalf("expected verify to fail for wrong password")
	}
}

func TestHashPassword_FreshSaltPerCall(t *testing.T) {
	h1, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	h2, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("expected distinct hashes for the same password")
	}
}

func TestHashPassword_RejectsEmpty(t *testing.T) {
	if _, err := HashPassword("   "); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestVerifyPassword_EmptyHash(t *testing.T) {
	if VerifyPassword("anything", "") {
		t.Fatalf("expected verify to fail with empty hash")
	}
	if VerifyPassword("anything", strings.Repeat("x", 60)) {
		t.Fatalf("expected verify to fail with garbage hash")
	}
}
