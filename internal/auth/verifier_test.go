package auth

import (
	"testing"
	"time"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	authority := NewJWTAuthority("test-secret", time.Hour)

	token, err := authority.Issue("tutor@example.com", "tutor")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if token == "" {
		t.Fatal("Issue returned empty token")
	}

	principal, err := authority.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if principal.Email != "tutor@example.com" {
		t.Errorf("expected email tutor@example.com, got %s", principal.Email)
	}
	if principal.Role != "tutor" {
		t.Errorf("expected role tutor, got %s", principal.Role)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuing := NewJWTAuthority("secret-a", time.Hour)
	verifying := NewJWTAuthority("secret-b", time.Hour)

	token, err := issuing.Issue("student@example.com", "student")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := verifying.Verify(token); err == nil {
		t.Error("expected verification to fail for token signed with a different secret")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	authority := NewJWTAuthority("test-secret", -time.Minute)

	token, err := authority.Issue("student@example.com", "student")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := authority.Verify(token); err == nil {
		t.Error("expected verification to fail for expired token")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	authority := NewJWTAuthority("test-secret", time.Hour)

	if _, err := authority.Verify("not-a-jwt"); err == nil {
		t.Error("expected verification to fail for malformed token")
	}
}
