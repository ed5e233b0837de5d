package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTokenCodec_IssueAndVerify(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Hour)

	token, err := codec.Issue(42, "tester")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Username != "tester" {
		t.Errorf("Username = %s, want tester", claims.Username)
	}

	issued := claims.IssuedAt.Time
	expires := claims.ExpiresAt.Time
	if got := expires.Sub(issued); got != time.Hour {
		t.Errorf("validity window = %v, want 1h", got)
	}
}

func TestTokenCodec_Expired(t *testing.T) {
	// Negative TTL produces a token that is already past its expiry.
	codec := NewTokenCodec("test-secret", -time.Minute)

	token, err := codec.Issue(1, "tester")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, err = codec.Verify(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Verify expired token: got %v, want ErrTokenExpired", err)
	}
}

func TestTokenCodec_WrongSecret(t *testing.T) {
	issuer := NewTokenCodec("secret-a", time.Hour)
	verifier := NewTokenCodec("secret-b", time.Hour)

	token, err := issuer.Issue(1, "tester")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, err = verifier.Verify(token)
	if !errors.Is(err, ErrTokenSignature) {
		t.Errorf("Verify with wrong secret: got %v, want ErrTokenSignature", err)
	}
}

func TestTokenCodec_Malformed(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Hour)

	for _, garbage := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		if _, err := codec.Verify(garbage); !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("Verify(%q): got %v, want ErrTokenMalformed", garbage, err)
		}
	}
}

func TestTokenCodec_TamperedPayload(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Hour)

	token, err := codec.Issue(1, "tester")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Swap the payload segment for another token's payload; the signature
	// no longer matches.
	other, err := codec.Issue(2, "intruder")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	parts := strings.Split(token, ".")
	otherParts := strings.Split(other, ".")
	tampered := parts[0] + "." + otherParts[1] + "." + parts[2]

	if _, err := codec.Verify(tampered); err == nil {
		t.Error("tampered token verified successfully")
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "password123" {
		t.Fatal("hash equals the raw password")
	}

	if !CheckPassword("password123", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("wrong-password", hash) {
		t.Error("wrong password accepted")
	}
	if CheckPassword("password123", "not-a-bcrypt-hash") {
		t.Error("garbage hash accepted")
	}
}
