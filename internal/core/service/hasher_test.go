package service

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/gkats/catalog-api/internal/core/domain"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	for _, p := range []string{"s3cret", "correct horse battery staple", "ünïcødé", " "} {
		hash, err := h.Hash(p)
		if err != nil {
			t.Fatalf("Hash(%q) returned error: %v", p, err)
		}
		if hash == p {
			t.Fatalf("hash equals plaintext")
		}
		ok, err := h.Verify(p, hash)
		if err != nil || !ok {
			t.Fatalf("Verify(%q) = %v, %v; want true, nil", p, ok, err)
		}
	}
}

func TestBcryptHasher_SaltedPerCall(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	a, _ := h.Hash("same")
	b, _ := h.Hash("same")
	if a == b {
		t.Fatalf("two hashes of the same plaintext must differ")
	}
	for _, hash := range []string{a, b} {
		if ok, _ := h.Verify("same", hash); !ok {
			t.Fatalf("hash %q does not verify", hash)
		}
	}
}

func TestBcryptHasher_Mismatch(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, _ := h.Hash("right")
	ok, err := h.Verify("wrong", hash)
	if err != nil {
		t.Fatalf("mismatch must not be an error, got %v", err)
	}
	if ok {
		t.Fatalf("expected mismatch")
	}
}

func TestBcryptHasher_MalformedHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	for _, stored := range []string{"", "plaintext", "$2a$99$abcdefghijklmnopqrstuv", "$9z$10$" + strings.Repeat("a", 53)} {
		ok, err := h.Verify("anything", stored)
		if ok {
			t.Fatalf("Verify against %q returned true", stored)
		}
		if !errors.Is(err, domain.ErrCredentialFormat) {
			t.Fatalf("Verify against %q: expected ErrCredentialFormat, got %v", stored, err)
		}
	}
}

func TestBcryptHasher_PasswordTooLong(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	if _, err := h.Hash(strings.Repeat("x", 73)); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNewBcryptHasher_DefaultsCost(t *testing.T) {
	if h := NewBcryptHasher(0); h.cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", h.cost)
	}
}
