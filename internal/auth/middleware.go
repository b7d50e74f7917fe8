// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/sentibr/sentibr/internal/config"
	"github.com/sentibr/sentibr/internal/models"
)

// Auth modes.
const (
	ModeNone   = "none"
	ModeAPIKey = "apikey"
	ModeJWT    = "jwt"
)

type contextKey string

const claimsContextKey contextKey = "auth_claims"

// ClaimsFromContext returns the claims stored by the JWT middleware, or
// nil outside JWT mode.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsContextKey).(*Claims)
	return claims
}

// Middleware gates HTTP handlers according to the configured auth mode.
type Middleware struct {
	mode        string
	apiKey      []byte
	jwtManager  *JWTManager
	credentials *CredentialStore
}

// NewMiddleware wires the configured mode. In apikey mode the key is
// required; in jwt mode the secret and admin credentials are.
func NewMiddleware(cfg config.SecurityConfig) (*Middleware, error) {
	m := &Middleware{mode: cfg.AuthMode}

	switch cfg.AuthMode {
	case ModeNone:
	case ModeAPIKey:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("apikey auth mode requires an API key")
		}
		m.apiKey = []byte(cfg.APIKey)
	case ModeJWT:
		jwtManager, err := NewJWTManager(cfg)
		if err != nil {
			return nil, err
		}
		credentials, err := NewCredentialStore(cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			return nil, err
		}
		m.jwtManager = jwtManager
		m.credentials = credentials
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.AuthMode)
	}

	return m, nil
}

// Mode returns the active auth mode.
func (m *Middleware) Mode() string { return m.mode }

// Protect authenticates requests. In none mode it is a passthrough, in
// apikey mode it checks X-API-Key, in jwt mode it checks the Bearer
// token and stores the claims in the request context.
func (m *Middleware) Protect(next http.HandlerFunc) http.HandlerFunc {
	switch m.mode {
	case ModeAPIKey:
		return func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" || subtle.ConstantTimeCompare([]byte(key), m.apiKey) != 1 {
				writeUnauthorized(w, "invalid or missing API key")
				return
			}
			next(w, r)
		}
	case ModeJWT:
		return func(w http.ResponseWriter, r *http.Request) {
			claims, err := m.claimsFromRequest(r)
			if err != nil {
				writeUnauthorized(w, "invalid or missing token")
				return
			}
			next(w, r.WithContext(context.WithValue(r.Context(), claimsContextKey, claims)))
		}
	default:
		return next
	}
}

// RequireAdmin authenticates like Protect and additionally requires the
// admin role in jwt mode. In the other modes passing Protect is enough,
// since those modes have a single trust level.
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	if m.mode != ModeJWT {
		return m.Protect(next)
	}

	return m.Protect(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil || claims.Role != RoleAdmin {
			writeForbidden(w, "admin role required")
			return
		}
		next(w, r)
	})
}

// Login verifies admin credentials and issues a token. Only available in
// jwt mode.
func (m *Middleware) Login(username, password string) (*models.LoginResponse, error) {
	if m.mode != ModeJWT {
		return nil, fmt.Errorf("login is only available in jwt auth mode")
	}
	if !m.credentials.Verify(username, password) {
		return nil, fmt.Errorf("invalid username or password")
	}

	token, expiresAt, err := m.jwtManager.GenerateToken(username, RoleAdmin)
	if err != nil {
		return nil, err
	}

	return &models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Username:  username,
		Role:      RoleAdmin,
	}, nil
}

// claimsFromRequest extracts and validates the Bearer token.
func (m *Middleware) claimsFromRequest(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, fmt.Errorf("missing bearer token")
	}
	return m.jwtManager.ValidateToken(strings.TrimPrefix(header, "Bearer "))
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func writeForbidden(w http.ResponseWriter, message string) {
	writeAuthError(w, http.StatusForbidden, "FORBIDDEN", message)
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}
