package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/luismarin/cartbase-backend/pkg/auth"
	"github.com/luismarin/cartbase-backend/pkg/config"
	"github.com/google/uuid"
)

func mintTestToken(t *testing.T, cfg config.JWTConfig, userID uuid.UUID, role string) string {
	t.Helper()
	token, err := auth.MintAccessToken(cfg, time.Now(), userID, role, time.Hour)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestAuthRejectsMissingToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer"}
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer"}
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthAllowsValidToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer"}
	userID := uuid.New()
	token := mintTestToken(t, cfg, userID, "admin")

	var captured struct {
		user string
		role string
	}
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.user = UserIDFromContext(r.Context())
		captured.role = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.user != userID.String() {
		t.Fatalf("expected user %s in context, got %q", userID, captured.user)
	}
	if captured.role != "admin" {
		t.Fatalf("expected role admin in context, got %q", captured.role)
	}
}

func TestAuthRejectsWrongIssuer(t *testing.T) {
	minted := config.JWTConfig{Secret: "secret", Issuer: "other-issuer"}
	verifying := config.JWTConfig{Secret: "secret", Issuer: "issuer"}
	token := mintTestToken(t, minted, uuid.New(), "")

	handler := Auth(verifying, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRequireRoleBlocksOtherRoles(t *testing.T) {
	handler := RequireRole("admin", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/admin/products", nil)
	req = req.WithContext(WithRole(req.Context(), "shopper"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/admin/products", nil)
	req = req.WithContext(WithRole(req.Context(), "admin"))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
