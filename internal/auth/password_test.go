package auth

import "testing"

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := ComparePassword(hash, "s3cret"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Error("wrong password accepted")
	}
}

func TestVerifyPassword_Bcrypt(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	ok, legacy := VerifyPassword(hash, "s3cret")
	if !ok || legacy {
		t.Errorf("bcrypt verify: ok=%v legacy=%v", ok, legacy)
	}
	ok, _ = VerifyPassword(hash, "wrong")
	if ok {
		t.Error("wrong password accepted against bcrypt hash")
	}
}

func TestVerifyPassword_Legacy(t *testing.T) {
	ok, legacy := VerifyPassword("plaintext", "plaintext")
	if !ok || !legacy {
		t.Errorf("legacy match: ok=%v legacy=%v", ok, legacy)
	}
	ok, legacy = VerifyPassword("plaintext", "other")
	if ok || !legacy {
		t.Errorf("legacy mismatch: ok=%v legacy=%v", ok, legacy)
	}
	ok, _ = VerifyPassword("", "anything")
	if ok {
		t.Error("empty stored credential must never match")
	}
}
