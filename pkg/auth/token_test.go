package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/luismarin/cartbase-backend/pkg/config"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret: "secret",
		Issuer: "cartbase",
	}
	now := time.Now().UTC()
	userID := uuid.New()

	token, err := MintAccessToken(cfg, now, userID, "admin", 30*time.Minute)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.Role != "admin" {
		t.Fatalf("unexpected role %q", claims.Role)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("unexpected issuer %q", claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("expected a jti to be assigned")
	}
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	minted, err := MintAccessToken(config.JWTConfig{Secret: "secret", Issuer: "other"}, time.Now().UTC(), uuid.New(), "", time.Minute)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = ParseAccessToken(config.JWTConfig{Secret: "secret", Issuer: "cartbase"}, minted)
	if err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "cartbase"}
	minted, err := MintAccessToken(cfg, time.Now().UTC().Add(-2*time.Hour), uuid.New(), "", time.Minute)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = ParseAccessToken(cfg, minted)
	if err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expiry error, got %v", err)
	}
}

func TestMintAccessTokenValidation(t *testing.T) {
	now := time.Now().UTC()
	if _, err := MintAccessToken(config.JWTConfig{Issuer: "cartbase"}, now, uuid.New(), "", time.Minute); err == nil {
		t.Fatal("expected missing secret to fail")
	}
	if _, err := MintAccessToken(config.JWTConfig{Secret: "s", Issuer: "cartbase"}, now, uuid.Nil, "", time.Minute); err == nil {
		t.Fatal("expected nil user id to fail")
	}
	if _, err := MintAccessToken(config.JWTConfig{Secret: "s", Issuer: "cartbase"}, now, uuid.New(), "", 0); err == nil {
		t.Fatal("expected non-positive ttl to fail")
	}
}
