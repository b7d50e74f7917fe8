// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/sentibr/sentibr/internal/inference"
	"github.com/sentibr/sentibr/internal/logging"
	"github.com/sentibr/sentibr/internal/models"
)

// Predict classifies a single review text.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.PredictRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	resp, record, err := h.engine.Classify(r.Context(), req.Text)
	if err != nil {
		respondClassifyError(w, err)
		return
	}
	if !req.ReturnProbabilities {
		resp.Probabilities = nil
	}

	h.storePrediction(r, record)

	respondSuccess(w, http.StatusOK, resp, start)
}

// PredictBatch classifies up to MaxBatchSize texts in one call.
func (h *Handler) PredictBatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.BatchPredictRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	resp, records, err := h.engine.ClassifyBatch(r.Context(), req.Texts)
	if err != nil {
		respondClassifyError(w, err)
		return
	}
	if !req.ReturnProbabilities {
		for i := range resp.Results {
			resp.Results[i].Probabilities = nil
		}
	}

	if err := h.db.InsertPredictions(r.Context(), records); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Int("count", len(records)).Msg("Failed to store batch predictions")
	} else if h.bus != nil {
		for i := range records {
			if err := h.bus.PublishPrediction(&records[i]); err != nil {
				logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to publish prediction event")
				break
			}
		}
	}

	respondSuccess(w, http.StatusOK, resp, start)
}

// Compare classifies a text with the model and asks the LLM judge for a
// second opinion.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.judge == nil {
		respondError(w, http.StatusServiceUnavailable, "JUDGE_UNAVAILABLE", "LLM judge is not configured", nil)
		return
	}

	var req models.CompareRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	modelResp, record, err := h.engine.Classify(r.Context(), req.Text)
	if err != nil {
		respondClassifyError(w, err)
		return
	}

	comparison, err := h.judge.CompareText(r.Context(), record.Text, &modelResp)
	if err != nil {
		respondError(w, http.StatusBadGateway, "JUDGE_ERROR", "LLM comparison failed", err)
		return
	}

	h.storePrediction(r, record)

	respondSuccess(w, http.StatusOK, comparison, start)
}

// Explain returns the lexicon's term-level breakdown for a text. The
// explanation always comes from the lexicon, even when a model backend
// serves predictions.
func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.ExplainRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	explanation := h.engine.Lexicon().Explain(req.Text)
	respondSuccess(w, http.StatusOK, explanation, start)
}

// storePrediction persists one record and publishes it on the event bus.
// Storage failures do not fail the prediction response.
func (h *Handler) storePrediction(r *http.Request, record models.PredictionRecord) {
	if err := h.db.InsertPrediction(r.Context(), &record); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("prediction_id", record.ID).Msg("Failed to store prediction")
		return
	}

	if h.bus != nil {
		if err := h.bus.PublishPrediction(&record); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to publish prediction event")
		}
	}
}

// respondClassifyError maps engine errors to API errors.
func respondClassifyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, inference.ErrEmptyText), errors.Is(err, inference.ErrBatchTooLarge):
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil)
	default:
		respondError(w, http.StatusBadGateway, "MODEL_ERROR", "Classification failed", err)
	}
}
