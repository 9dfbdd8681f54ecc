package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenSigner_RoundTrip(t *testing.T) {
	signer := NewTokenSigner([]byte("secret"))

	token, err := signer.IssueToken("ops", time.Hour)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	claims, err := signer.ValidateToken(token)
	if err != nil {
		t.Fatalf("Expected valid token, got %v", err)
	}
	if claims.UserID() != "ops" {
		t.Errorf("Expected subject ops, got %s", claims.UserID())
	}
	if claims.TokenID == "" {
		t.Error("Expected a token id")
	}
}

func TestTokenSigner_RejectsWrongSecret(t *testing.T) {
	token, _ := NewTokenSigner([]byte("secret")).IssueToken("ops", time.Hour)

	if _, err := NewTokenSigner([]byte("other")).ValidateToken(token); err == nil {
		t.Error("Expected signature error")
	}
}

func TestTokenSigner_RejectsExpired(t *testing.T) {
	signer := NewTokenSigner([]byte("secret"))
	token, _ := signer.IssueToken("ops", -time.Minute)

	if _, err := signer.ValidateToken(token); err == nil {
		t.Error("Expected expired token to be rejected")
	}
}

func TestTokenSigner_RejectsMissingExpiry(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "ops"})
	tokenString, _ := token.SignedString([]byte("secret"))

	if _, err := NewTokenSigner([]byte("secret")).ValidateToken(tokenString); err == nil {
		t.Error("Expected token without exp to be rejected")
	}
}
