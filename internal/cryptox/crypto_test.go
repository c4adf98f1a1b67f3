package cryptox

import (
	"bytes"
	"testing"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	key1 := DeriveKey("abc123")
	key2 := DeriveKey("abc123")

	if !bytes.Equal(key1[:], key2[:]) {
		t.Errorf("expected same result for same password, got different")
	}
}

func TestDeriveKey_DifferentPasswords(t *testing.T) {
	key1 := DeriveKey("abc123")
	key2 := DeriveKey("abc124")

	if bytes.Equal(key1[:], key2[:]) {
		t.Errorf("expected different results for different passwords, got same")
	}
}

func TestDeriveKey_EmptyPasswordStillDerives(t *testing.T) {
	key1 := DeriveKey("")
	key2 := DeriveKey("")

	if !bytes.Equal(key1[:], key2[:]) {
		t.Errorf("expected deterministic derivation for empty password")
	}
}
