// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/sentibr/sentibr/internal/database"
	"github.com/sentibr/sentibr/internal/drift"
	"github.com/sentibr/sentibr/internal/models"
)

// DriftReport returns the most recent drift report.
func (h *Handler) DriftReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	report, err := h.detector.LatestReport(r.Context())
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "No drift report yet", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to load drift report", err)
		return
	}

	respondSuccess(w, http.StatusOK, report, start)
}

// DriftCheck runs an on-demand drift check against the baseline.
func (h *Handler) DriftCheck(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	// An empty body means the configured window.
	var req models.DriftCheckRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Request body must be valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	report, err := h.detector.Check(r.Context(), req.WindowHours)
	switch {
	case errors.Is(err, drift.ErrNoBaseline):
		respondError(w, http.StatusConflict, "NO_BASELINE", "Build a baseline before checking for drift", nil)
		return
	case errors.Is(err, drift.ErrWindowTooSmall):
		respondError(w, http.StatusUnprocessableEntity, "WINDOW_TOO_SMALL", "Not enough recent predictions in the window", nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "DRIFT_ERROR", "Drift check failed", err)
		return
	}

	respondSuccess(w, http.StatusOK, report, start)
}

// DriftBaselineBuild rebuilds the reference baseline from stored
// predictions. Subsequent checks compare against it.
func (h *Handler) DriftBaselineBuild(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	info, err := h.detector.BuildBaseline(r.Context())
	if errors.Is(err, drift.ErrWindowTooSmall) {
		respondError(w, http.StatusUnprocessableEntity, "WINDOW_TOO_SMALL", "Not enough stored predictions for a baseline", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DRIFT_ERROR", "Failed to build baseline", err)
		return
	}

	respondSuccess(w, http.StatusCreated, info, start)
}

// DriftBaselineInfo describes the stored baseline.
func (h *Handler) DriftBaselineInfo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	info, err := h.detector.BaselineInfo(r.Context())
	if errors.Is(err, drift.ErrNoBaseline) {
		respondError(w, http.StatusNotFound, "NO_BASELINE", "No baseline built yet", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to load baseline", err)
		return
	}

	respondSuccess(w, http.StatusOK, info, start)
}
