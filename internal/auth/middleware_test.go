// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sentibr/sentibr/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func jwtConfig() config.SecurityConfig {
	return config.SecurityConfig{
		AuthMode:      ModeJWT,
		JWTSecret:     testSecret,
		TokenTTL:      time.Hour,
		AdminUsername: "admin",
		AdminPassword: "correct-horse",
	}
}

func okHandler() (http.HandlerFunc, *bool) {
	called := false
	return func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}, &called
}

func TestNoneModePassesThrough(t *testing.T) {
	t.Parallel()

	m, err := NewMiddleware(config.SecurityConfig{AuthMode: ModeNone})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	handler, called := okHandler()
	rec := httptest.NewRecorder()
	m.Protect(handler)(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if !*called {
		t.Error("expected handler to run")
	}
}

func TestAPIKeyMode(t *testing.T) {
	t.Parallel()

	m, err := NewMiddleware(config.SecurityConfig{AuthMode: ModeAPIKey, APIKey: "sekret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name       string
		key        string
		wantStatus int
	}{
		{"valid key", "sekret", http.StatusOK},
		{"wrong key", "nope", http.StatusUnauthorized},
		{"missing key", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler, _ := okHandler()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()
			m.Protect(handler)(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestAPIKeyModeRequiresKey(t *testing.T) {
	t.Parallel()

	if _, err := NewMiddleware(config.SecurityConfig{AuthMode: ModeAPIKey}); err == nil {
		t.Error("expected error for apikey mode without a key")
	}
}

func TestJWTLoginAndProtect(t *testing.T) {
	t.Parallel()

	m, err := NewMiddleware(jwtConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := m.Login("admin", "correct-horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token")
	}
	if resp.Role != RoleAdmin {
		t.Errorf("expected admin role, got %q", resp.Role)
	}

	var gotClaims *Claims
	handler := m.Protect(func(w http.ResponseWriter, r *http.Request) {
		gotClaims = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotClaims == nil || gotClaims.Username != "admin" {
		t.Errorf("expected claims for admin, got %+v", gotClaims)
	}
}

func TestJWTLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	m, err := NewMiddleware(jwtConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := m.Login("admin", "wrong"); err == nil {
		t.Error("expected error for wrong password")
	}
	if _, err := m.Login("root", "correct-horse"); err == nil {
		t.Error("expected error for wrong username")
	}
}

func TestJWTProtectRejectsBadTokens(t *testing.T) {
	t.Parallel()

	m, err := NewMiddleware(jwtConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler, called := okHandler()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			m.Protect(handler)(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
			if *called {
				t.Error("handler must not run")
			}
			if !strings.Contains(rec.Body.String(), "UNAUTHORIZED") {
				t.Errorf("expected error envelope, got %s", rec.Body.String())
			}
		})
	}
}

func TestJWTExpiredToken(t *testing.T) {
	t.Parallel()

	cfg := jwtConfig()
	cfg.TokenTTL = -time.Minute
	manager, err := NewJWTManager(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, _, err := manager.GenerateToken("admin", RoleAdmin)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	if _, err := manager.ValidateToken(token); err == nil {
		t.Error("expected expired token to fail validation")
	}
}

func TestRequireAdminInJWTMode(t *testing.T) {
	t.Parallel()

	m, err := NewMiddleware(jwtConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Forge a non-admin token with the same secret.
	token, _, err := m.jwtManager.GenerateToken("viewer", "viewer")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	handler, called := okHandler()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	m.RequireAdmin(handler)(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
	if *called {
		t.Error("handler must not run")
	}
}

func TestCredentialStoreValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewCredentialStore("", "longenough"); err == nil {
		t.Error("expected error for empty username")
	}
	if _, err := NewCredentialStore("admin", "short"); err == nil {
		t.Error("expected error for short password")
	}
}
