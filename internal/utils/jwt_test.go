package utils

import "testing"

func TestSessionTokenRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateSessionToken("sess-123")
	if err != nil {
		t.Fatalf("GenerateSessionToken failed: %v", err)
	}

	claims, err := ValidateSessionToken(token)
	if err != nil {
		t.Fatalf("ValidateSessionToken failed: %v", err)
	}
	if claims.SessionID != "sess-123" {
		t.Errorf("session id = %q, want sess-123", claims.SessionID)
	}
}

func TestSessionTokenRejectsTampered(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateSessionToken("sess-123")
	if err != nil {
		t.Fatalf("GenerateSessionToken failed: %v", err)
	}

	if _, err := ValidateSessionToken(token + "x"); err == nil {
		t.Error("tampered token validated")
	}
	if _, err := ValidateSessionToken("not-a-token"); err == nil {
		t.Error("garbage token validated")
	}
}

func TestSessionTokenRejectsWrongSecret(t *testing.T) {
	SetJWTSecret("secret-a")
	token, err := GenerateSessionToken("sess-123")
	if err != nil {
		t.Fatalf("GenerateSessionToken failed: %v", err)
	}

	SetJWTSecret("secret-b")
	defer SetJWTSecret("secret-a")
	if _, err := ValidateSessionToken(token); err == nil {
		t.Error("token signed with a different secret validated")
	}
}
