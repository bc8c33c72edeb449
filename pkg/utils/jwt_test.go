package utils

import (
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func newTestTokenManager(t *testing.T, secret string, ttl time.Duration) *TokenManager {
	t.Helper()
	manager, err := NewTokenManager(secret, ttl)
	if err != nil {
		t.Fatalf("failed creating token manager: %v", err)
	}
	return manager
}

func TestNewTokenManager(t *testing.T) {
	t.Run("rejects empty secret", func(t *testing.T) {
		if _, err := NewTokenManager("", time.Hour); err == nil {
			t.Fatal("expected error for empty secret")
		}
	})

	t.Run("rejects non-positive ttl", func(t *testing.T) {
		if _, err := NewTokenManager("secret", 0); err == nil {
			t.Fatal("expected error for zero ttl")
		}
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Run("round trips the identity payload", func(t *testing.T) {
		manager := newTestTokenManager(t, "roundtrip-secret", time.Hour)
		identity := Identity{ID: uuid.New(), Email: "user@example.com", Name: "User"}

		token, err := manager.Generate(identity)
		if err != nil {
			t.Fatalf("expected token generation to succeed, got error: %v", err)
		}

		got, err := manager.Validate(token)
		if err != nil {
			t.Fatalf("expected token validation to succeed, got error: %v", err)
		}
		if *got != identity {
			t.Fatalf("expected identity %+v, got %+v", identity, *got)
		}
	})

	t.Run("sets expiry from ttl", func(t *testing.T) {
		manager := newTestTokenManager(t, "expiry-secret", 7*24*time.Hour)
		fixed := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		manager.now = func() time.Time { return fixed }

		token, err := manager.Generate(Identity{ID: uuid.New()})
		if err != nil {
			t.Fatalf("failed generating token: %v", err)
		}

		claims := &Claims{}
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			t.Fatalf("failed parsing token: %v", err)
		}
		if !claims.ExpiresAt.Time.Equal(fixed.Add(7 * 24 * time.Hour)) {
			t.Fatalf("expected expiry 7 days after issue, got %v", claims.ExpiresAt.Time)
		}
	})

	t.Run("rejects expired token", func(t *testing.T) {
		manager := newTestTokenManager(t, "expired-secret", time.Hour)
		token, err := manager.Generate(Identity{ID: uuid.New()})
		if err != nil {
			t.Fatalf("failed generating token: %v", err)
		}

		manager.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		if _, err := manager.Validate(token); err == nil {
			t.Fatal("expected expired token validation to fail, but it succeeded")
		}
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		issuer := newTestTokenManager(t, "issuer-secret", time.Hour)
		verifier := newTestTokenManager(t, "verifier-secret", time.Hour)

		token, err := issuer.Generate(Identity{ID: uuid.New()})
		if err != nil {
			t.Fatalf("failed generating token: %v", err)
		}
		if _, err := verifier.Validate(token); err == nil {
			t.Fatal("expected signature validation to fail")
		}
	})

	t.Run("rejects malformed token string", func(t *testing.T) {
		manager := newTestTokenManager(t, "malformed-secret", time.Hour)
		if _, err := manager.Validate("not-a-jwt"); err == nil {
			t.Fatal("expected malformed token validation to fail, but it succeeded")
		}
	})

	t.Run("rejects token without expiry", func(t *testing.T) {
		manager := newTestTokenManager(t, "no-exp-secret", time.Hour)
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: uuid.New()}).SignedString([]byte("no-exp-secret"))
		if err != nil {
			t.Fatalf("failed signing token: %v", err)
		}
		if _, err := manager.Validate(token); err == nil {
			t.Fatal("expected token without exp to be rejected")
		}
	})

	t.Run("rejects token signed with unexpected method", func(t *testing.T) {
		manager := newTestTokenManager(t, "wrong-method-secret", time.Hour)

		privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			t.Fatalf("failed to generate rsa key for test: %v", err)
		}

		rsaToken := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
			Subject:   uuid.New().String(),
		})

		signedToken, err := rsaToken.SignedString(privateKey)
		if err != nil {
			t.Fatalf("failed to sign rsa token for test: %v", err)
		}

		_, err = manager.Validate(signedToken)
		if err == nil {
			t.Fatal("expected validation to fail for token with unexpected signing method")
		}
		if !strings.Contains(err.Error(), "unexpected signing method") {
			t.Fatalf("expected signing method error, got: %v", err)
		}
	})
}
