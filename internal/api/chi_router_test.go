// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/sentibr/sentibr/internal/auth"
	"github.com/sentibr/sentibr/internal/config"
	"github.com/sentibr/sentibr/internal/models"
)

func jwtSecurity() config.SecurityConfig {
	return config.SecurityConfig{
		AuthMode:          auth.ModeJWT,
		JWTSecret:         "0123456789abcdef0123456789abcdef",
		TokenTTL:          time.Hour,
		AdminUsername:     "admin",
		AdminPassword:     "correct-horse",
		RateLimitDisabled: true,
	}
}

func login(t *testing.T, env *testEnv, username, password string) string {
	t.Helper()

	rec := env.request(t, http.MethodPost, "/api/v1/auth/login",
		models.LoginRequest{Username: username, Password: password}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed with %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.LoginResponse
	decodeData(t, decodeEnvelope(t, rec), &resp)
	if resp.Token == "" {
		t.Fatal("expected a token")
	}
	return resp.Token
}

func TestLoginDisabledOutsideJWTMode(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{})

	rec := env.request(t, http.MethodPost, "/api/v1/auth/login",
		models.LoginRequest{Username: "admin", Password: "whatever1"}, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != "AUTH_DISABLED" {
		t.Errorf("expected AUTH_DISABLED, got %+v", resp.Error)
	}
}

func TestJWTProtectedRoutes(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{security: jwtSecurity()})

	// Without a token
	rec := env.request(t, http.MethodPost, "/api/v1/predict",
		models.PredictRequest{Text: "Comida ótima"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	// Health stays public
	rec = env.request(t, http.MethodGet, "/api/v1/health/live", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from public liveness, got %d", rec.Code)
	}

	// With a token
	token := login(t, env, "admin", "correct-horse")
	headers := map[string]string{"Authorization": "Bearer " + token}

	rec = env.request(t, http.MethodPost, "/api/v1/predict",
		models.PredictRequest{Text: "Comida ótima, entrega rápida"}, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", rec.Code, rec.Body.String())
	}

	// Admin endpoint with the admin token
	rec = env.request(t, http.MethodGet, "/api/v1/feedback/export", nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from admin export, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{security: jwtSecurity()})

	rec := env.request(t, http.MethodPost, "/api/v1/auth/login",
		models.LoginRequest{Username: "admin", Password: "wrong-password"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAPIKeyProtectedRoutes(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{security: config.SecurityConfig{
		AuthMode:          auth.ModeAPIKey,
		APIKey:            "sekret-api-key",
		RateLimitDisabled: true,
	}})

	rec := env.request(t, http.MethodPost, "/api/v1/predict",
		models.PredictRequest{Text: "Comida ótima"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", rec.Code)
	}

	rec = env.request(t, http.MethodPost, "/api/v1/predict",
		models.PredictRequest{Text: "Comida ótima"},
		map[string]string{"X-API-Key": "sekret-api-key"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with key, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLoginRateLimit(t *testing.T) {
	t.Parallel()

	sec := jwtSecurity()
	sec.RateLimitDisabled = false
	sec.RateLimitReqs = 100
	sec.RateLimitWindow = time.Minute
	env := newTestEnv(t, envOptions{security: sec})

	// The login class allows 5 requests per window per IP.
	var last int
	for i := 0; i < 6; i++ {
		rec := env.request(t, http.MethodPost, "/api/v1/auth/login",
			models.LoginRequest{Username: "admin", Password: "wrong-password"}, nil)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", last)
	}
}
