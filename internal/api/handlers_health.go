// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package api

import (
	"net/http"
	"time"

	"github.com/sentibr/sentibr/internal/inference"
	"github.com/sentibr/sentibr/internal/metrics"
	"github.com/sentibr/sentibr/internal/models"
)

// Health reports overall service health. The service is degraded when
// the store is unreachable or when a configured model backend has fallen
// back to the lexicon.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil
	backend := h.engine.Backend()

	status := "healthy"
	if !dbConnected {
		status = "degraded"
	} else if h.config != nil && h.config.Model.URL != "" && backend == inference.SourceLexicon {
		status = "degraded"
	}

	clients := 0
	if h.wsHub != nil {
		clients = h.wsHub.GetClientCount()
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.HealthStatus{
			Status:            status,
			Version:           h.version,
			DatabaseConnected: dbConnected,
			ModelBackend:      backend,
			WebSocketClients:  clients,
			UptimeSeconds:     metrics.Uptime().Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}

// HealthLive is the liveness probe. It answers 200 as long as the
// process runs, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": metrics.Uptime().Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}

// HealthReady is the readiness probe. The service is ready when the
// store answers; the lexicon keeps predictions available even without a
// model backend.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil

	statusCode := http.StatusOK
	status := "ready"
	if !dbConnected {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"database_connected": dbConnected,
			"ready_to_serve":     dbConnected,
			"uptime":             metrics.Uptime().Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}
