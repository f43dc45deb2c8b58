package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPlain(t *testing.T) {
	h, err := NewPasswordHasher(ModePlain)
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	stored, err := h.Hash("test123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if stored != "test123" {
		t.Fatalf("plain mode must store the password as given, got %q", stored)
	}
	if ok, err := h.Compare(stored, "test123"); !ok || err != nil {
		t.Fatalf("expected exact match to succeed, got %v, %v", ok, err)
	}
	for _, attempt := range []string{"Test123", "test1234", "test12", ""} {
		if ok, err := h.Compare(stored, attempt); ok || err != nil {
			t.Fatalf("attempt %q: got %v, %v", attempt, ok, err)
		}
	}
}

func TestBcrypt(t *testing.T) {
	h := Bcrypt{Cost: bcrypt.MinCost}
	stored, err := h.Hash("test123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if stored == "test123" {
		t.Fatal("bcrypt mode must not store the raw password")
	}
	if ok, err := h.Compare(stored, "test123"); !ok || err != nil {
		t.Fatalf("expected password to match its hash, got %v, %v", ok, err)
	}
	if ok, err := h.Compare(stored, "wrong"); ok || err != nil {
		t.Fatalf("wrong password: got %v, %v", ok, err)
	}
}

func TestBcrypt_NonHashStoredValue(t *testing.T) {
	ok, err := Bcrypt{}.Compare("test123", "test123")
	if ok {
		t.Fatal("a non-hash stored value must never match")
	}
	if err == nil {
		t.Fatal("expected an error for a stored value that is not a bcrypt hash")
	}
}

func TestNewPasswordHasher_UnknownMode(t *testing.T) {
	if _, err := NewPasswordHasher("md5"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	h, err := NewPasswordHasher(ModeBcrypt)
	if err != nil {
		t.Fatalf("bcrypt mode: %v", err)
	}
	if _, ok := h.(Bcrypt); !ok {
		t.Fatalf("want Bcrypt, got %T", h)
	}
}
