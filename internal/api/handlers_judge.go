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
	"github.com/sentibr/sentibr/internal/judge"
	"github.com/sentibr/sentibr/internal/logging"
	"github.com/sentibr/sentibr/internal/models"
)

// JudgeStartRun queues an LLM evaluation run over a sample of stored
// predictions. The run executes in the background; poll the run endpoint
// for progress.
func (h *Handler) JudgeStartRun(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.judge == nil {
		respondError(w, http.StatusServiceUnavailable, "JUDGE_UNAVAILABLE", "LLM judge is not configured", nil)
		return
	}

	// An empty body means defaults from config.
	var req models.JudgeRunRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Request body must be valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	run, err := h.judge.StartRun(r.Context(), req)
	switch {
	case errors.Is(err, judge.ErrNoPredictions):
		respondError(w, http.StatusUnprocessableEntity, "NO_PREDICTIONS", "No stored predictions to judge", nil)
		return
	case errors.Is(err, judge.ErrQueueFull):
		respondError(w, http.StatusTooManyRequests, "JUDGE_BUSY", "Too many queued judge runs, try again later", nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "JUDGE_ERROR", "Failed to start judge run", err)
		return
	}

	if h.bus != nil {
		if err := h.bus.PublishJudgeRun(run); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to publish judge run event")
		}
	}

	respondSuccess(w, http.StatusAccepted, run, start)
}

// JudgeListRuns lists evaluation runs, newest first.
func (h *Handler) JudgeListRuns(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit := clampInt(getIntParam(r, "limit", 20), 1, 100)

	runs, err := h.db.ListJudgeRuns(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to list judge runs", err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	}, start)
}

// JudgeGetRun returns one run with its analysis when completed.
func (h *Handler) JudgeGetRun(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	run, ok := h.loadJudgeRun(w, r)
	if !ok {
		return
	}

	respondSuccess(w, http.StatusOK, run, start)
}

// JudgeVerdicts returns every verdict of a run.
func (h *Handler) JudgeVerdicts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	run, ok := h.loadJudgeRun(w, r)
	if !ok {
		return
	}

	verdicts, err := h.db.ListJudgeVerdicts(r.Context(), run.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to list verdicts", err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"run_id":   run.ID,
		"verdicts": verdicts,
		"count":    len(verdicts),
	}, start)
}

// JudgeDisagreements returns the verdicts where the judge overruled the
// model, the interesting cases for error analysis.
func (h *Handler) JudgeDisagreements(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	run, ok := h.loadJudgeRun(w, r)
	if !ok {
		return
	}

	verdicts, err := h.db.ListJudgeDisagreements(r.Context(), run.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to list disagreements", err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"run_id":        run.ID,
		"disagreements": verdicts,
		"count":         len(verdicts),
	}, start)
}

// loadJudgeRun fetches the run named in the URL, writing the error
// response itself when it is missing.
func (h *Handler) loadJudgeRun(w http.ResponseWriter, r *http.Request) (*models.JudgeRun, bool) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Run ID is required", nil)
		return nil, false
	}

	run, err := h.db.GetJudgeRun(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Judge run not found", nil)
		return nil, false
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to load judge run", err)
		return nil, false
	}

	return run, true
}
