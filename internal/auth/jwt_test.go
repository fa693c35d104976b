package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestJWTManager_GenerateAndParse(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour)
	userID := uuid.New()
	token, err := manager.GenerateToken(userID, "user@example.com", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := manager.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Email != "user@example.com" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	got, err := claims.UserID()
	if err != nil || got != userID {
		t.Fatalf("expected user id %s, got %s (%v)", userID, got, err)
	}

	if _, err := manager.ParseToken(token + "tampered"); err == nil {
		t.Fatalf("expected parse error for tampered token")
	}
	if _, err := NewJWTManager("other", time.Hour).ParseToken(token); err == nil {
		t.Fatalf("expected parse error for foreign secret")
	}
}

func TestJWTManager_EmptySecret(t *testing.T) {
	manager := NewJWTManager("", time.Hour)
	if _, err := manager.GenerateToken(uuid.New(), "user@example.com", "user"); err == nil {
		t.Fatalf("expected error when secret is empty")
	}
}

func TestJWTManager_RejectsForeignTokens(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour)
	sign := func(claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := map[string]string{
		"no expiry":    sign(&Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer, Subject: uuid.NewString()}}),
		"wrong issuer": sign(&Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "elsewhere", Subject: uuid.NewString(), ExpiresAt: exp}}),
		"non-uuid sub": sign(&Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer, Subject: "user-1", ExpiresAt: exp}}),
		"expired":      sign(&Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer, Subject: uuid.NewString(), ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}}),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := manager.ParseToken(token); err == nil {
				t.Fatalf("expected token to be rejected")
			}
		})
	}

	if manager.TTL() != time.Hour {
		t.Fatalf("expected ttl to be kept, got %s", manager.TTL())
	}
}
