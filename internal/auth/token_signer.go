package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenSigner issues and validates HS256 bearer tokens for operators of the service
type TokenSigner struct {
	secretKey []byte
}

func NewTokenSigner(secretKey []byte) *TokenSigner {
	return &TokenSigner{secretKey: secretKey}
}

// IssueToken signs a token for subject that expires after ttl
func (s *TokenSigner) IssueToken(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses tokenString and returns its principal. Expired tokens and tokens
// signed with anything but HMAC are rejected.
func (s *TokenSigner) ValidateToken(tokenString string) (*JWTClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("missing sub claim")
	}

	return &JWTClaims{Subject: claims.Subject, TokenID: claims.ID}, nil
}
