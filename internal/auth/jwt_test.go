package auth

import (
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateToken(secret, "sess-1", "42", "Mona", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.SessionID() != "sess-1" {
		t.Errorf("expected session id 'sess-1', got %q", claims.SessionID())
	}
	if claims.UserID != "42" {
		t.Errorf("expected user id '42', got %q", claims.UserID)
	}
	if claims.Name != "Mona" {
		t.Errorf("expected name 'Mona', got %q", claims.Name)
	}
}

func TestGenerateTokenRequiresSession(t *testing.T) {
	if _, err := GenerateToken("secret", "", "1", "x", time.Hour); err == nil {
		t.Error("expected error for empty session id")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _ := GenerateToken("secret1", "sess", "1", "admin", time.Hour)

	_, err := ValidateToken("secret2", token)
	if err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := ValidateToken("secret", "not-a-token")
	if err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	token, _ := GenerateToken("secret", "sess", "1", "admin", -time.Minute)

	_, err := ValidateToken("secret", token)
	if err == nil {
		t.Error("expected error for expired token")
	}
}

func TestTokenExpiry(t *testing.T) {
	secret := "test"
	ttl := 7 * 24 * time.Hour
	token, _ := GenerateToken(secret, "sess", "1", "test", ttl)
	claims, _ := ValidateToken(secret, token)

	expiresAt := claims.ExpiresAt.Time
	expectedExpiry := time.Now().Add(ttl)

	// Should be within a few seconds.
	diff := expectedExpiry.Sub(expiresAt)
	if diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("token expiry too far from expected: diff=%v", diff)
	}
}
