package jwtutil

import (
	"testing"
	"time"

	"github.com/navafv/digital-thread-tailor-app/pkg/config"
)

func TestGenerateAndValidateToken(t *testing.T) {
	util := NewJWTUtil(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	customerID := uint(42)
	token, err := util.GenerateToken(TenantClaims{
		Username:   "amina42",
		UserID:     7,
		TenantID:   3,
		Role:       "client",
		CustomerID: &customerID,
	})
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := util.ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}

	if claims.UserID != 7 || claims.TenantID != 3 {
		t.Errorf("Expected user 7 tenant 3, got user %d tenant %d", claims.UserID, claims.TenantID)
	}
	if claims.Role != "client" {
		t.Errorf("Expected role client, got %s", claims.Role)
	}
	if claims.CustomerID == nil || *claims.CustomerID != 42 {
		t.Errorf("Expected customer id 42, got %v", claims.CustomerID)
	}
}

func TestValidateToken_Rejects(t *testing.T) {
	issuer := NewJWTUtil(&config.JWTConfig{SigningKey: "key-a", ExpirationHours: 1})
	token, err := issuer.GenerateToken(TenantClaims{UserID: 1, TenantID: 1, Role: "tailor"})
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	t.Run("wrong_key", func(t *testing.T) {
		other := NewJWTUtil(&config.JWTConfig{SigningKey: "key-b", ExpirationHours: 1})
		if _, err := other.ValidateToken(token); err == nil {
			t.Error("Expected signature error, got nil")
		}
	})

	t.Run("expired", func(t *testing.T) {
		later := NewJWTUtil(&config.JWTConfig{SigningKey: "key-a", ExpirationHours: 1})
		later.now = func() time.Time { return time.Now().Add(3 * time.Hour) }
		if _, err := later.ValidateToken(token); err == nil {
			t.Error("Expected expiry error, got nil")
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := issuer.ValidateToken("not-a-token"); err == nil {
			t.Error("Expected parse error, got nil")
		}
	})
}
