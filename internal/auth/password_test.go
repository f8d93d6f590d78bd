package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	svc := NewPasswordServiceForTest(bcrypt.MinCost)

	hash, err := svc.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("Hash() returned the plaintext")
	}

	if err := svc.Verify(hash, "correct horse battery staple"); err != nil {
		t.Errorf("Verify() with correct password: %v", err)
	}
	if err := svc.Verify(hash, "wrong password"); err == nil {
		t.Error("Verify() with wrong password should fail")
	}
}

func TestHash_RejectsLongPasswords(t *testing.T) {
	svc := NewPasswordServiceForTest(bcrypt.MinCost)

	// bcrypt truncates at 72 bytes; anything longer must be rejected
	// rather than silently weakened.
	if _, err := svc.Hash(strings.Repeat("a", 73)); err == nil {
		t.Error("Hash() should reject passwords over 72 bytes")
	}
	if _, err := svc.Hash(strings.Repeat("a", 72)); err != nil {
		t.Errorf("Hash() should accept a 72-byte password: %v", err)
	}
}

func TestHash_UniqueSalt(t *testing.T) {
	svc := NewPasswordServiceForTest(bcrypt.MinCost)

	h1, err := svc.Hash("same password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := svc.Hash("same password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password should differ (random salt)")
	}
}
