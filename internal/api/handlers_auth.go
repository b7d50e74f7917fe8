// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package api

import (
	"net/http"
	"time"

	"github.com/sentibr/sentibr/internal/auth"
	"github.com/sentibr/sentibr/internal/logging"
	"github.com/sentibr/sentibr/internal/models"
)

// authenticator issues tokens for the login endpoint. The concrete type
// is auth.Middleware; the indirection keeps handlers testable.
type authenticator interface {
	Mode() string
	Login(username, password string) (*models.LoginResponse, error)
}

// Login authenticates the admin user and returns a JWT. Only available
// when auth_mode is jwt.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.authn == nil || h.authn.Mode() != auth.ModeJWT {
		respondError(w, http.StatusForbidden, "AUTH_DISABLED", "Login requires jwt auth mode", nil)
		return
	}

	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	resp, err := h.authn.Login(req.Username, req.Password)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Str("username", sanitizeLogValue(req.Username)).Msg("Login failed")
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid username or password", nil)
		return
	}

	logging.Ctx(r.Context()).Info().Str("username", sanitizeLogValue(req.Username)).Msg("Login succeeded")
	respondSuccess(w, http.StatusOK, resp, start)
}
