package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/mfigueroa/showroom-backend/pkg/config"
)

func tokenTestConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "token-test-secret",
		Issuer:            "showroom-test",
		ExpirationMinutes: 15,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	t.Parallel()

	cfg := tokenTestConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		Email: "admin@showroom.dev",
		JTI:   "jti-123",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Email != "admin@showroom.dev" {
		t.Fatalf("email = %q", claims.Email)
	}
	if claims.ID != "jti-123" {
		t.Fatalf("jti = %q", claims.ID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("issuer = %q", claims.Issuer)
	}
}

func TestMintAccessTokenGeneratesJTI(t *testing.T) {
	t.Parallel()

	cfg := tokenTestConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Email: "admin@showroom.dev"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if strings.TrimSpace(claims.ID) == "" {
		t.Fatal("expected generated jti")
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	cfg := tokenTestConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Email: "admin@showroom.dev"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Secret = "a-different-secret"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected signature failure")
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	t.Parallel()

	cfg := tokenTestConfig()
	issuedAt := time.Now().Add(-2 * time.Hour)
	token, err := MintAccessToken(cfg, issuedAt, AccessTokenPayload{Email: "admin@showroom.dev", JTI: "old-jti"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expiry failure")
	}

	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	if err != nil {
		t.Fatalf("allow-expired parse: %v", err)
	}
	if claims.ID != "old-jti" {
		t.Fatalf("jti = %q", claims.ID)
	}
}
