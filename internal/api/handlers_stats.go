// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package api

import (
	"net/http"
	"time"

	"github.com/sentibr/sentibr/internal/metrics"
	"github.com/sentibr/sentibr/internal/models"
)

// Stats aggregates service-level prediction statistics.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	stats, err := h.db.GetStats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to compute stats", err)
		return
	}
	stats.UptimeSeconds = metrics.Uptime().Seconds()
	stats.ErrorRate = metrics.PredictionErrorRate()

	respondSuccess(w, http.StatusOK, stats, start)
}

// Timeline returns per-day prediction counts by sentiment.
func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	days := clampInt(getIntParam(r, "days", 30), 1, 365)

	points, err := h.db.GetTimeline(r.Context(), days)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to build timeline", err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"days":   days,
		"points": points,
	}, start)
}

// ModelInfo describes the active classifier backend.
func (h *Handler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	info := models.ModelInfo{
		Labels:        models.SentimentLabels(),
		ModelVersion:  h.engine.ModelVersion(),
		Backend:       h.engine.Backend(),
		MaxTextLength: models.MaxTextLength,
		MaxBatchSize:  models.MaxBatchSize,
	}

	respondSuccess(w, http.StatusOK, info, start)
}
