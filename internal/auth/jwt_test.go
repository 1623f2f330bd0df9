package auth

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	InitJWT("test-secret")

	expireAt := time.Now().Add(time.Hour)
	token, err := GenerateToken(42, "alice", true, expireAt, "go_auction")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UID != 42 || claims.Username != "alice" || !claims.IsAdmin {
		t.Errorf("claims = %+v", claims)
	}
	if claims.Issuer != "go_auction" {
		t.Errorf("issuer = %q", claims.Issuer)
	}
}

func TestParseToken_Expired(t *testing.T) {
	InitJWT("test-secret")

	token, err := GenerateToken(1, "bob", false, time.Now().Add(-time.Hour), "go_auction")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ParseToken(token); err == nil {
		t.Error("expired token must not parse")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	InitJWT("secret-a")
	token, err := GenerateToken(1, "bob", false, time.Now().Add(time.Hour), "go_auction")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	InitJWT("secret-b")
	if _, err := ParseToken(token); err == nil {
		t.Error("token signed with another secret must not parse")
	}
}
