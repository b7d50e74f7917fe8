// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sentibr/sentibr/internal/logging"
	"github.com/sentibr/sentibr/internal/models"
)

// SubmitFeedback stores a user correction. Feedback is the ground truth
// used by judge runs to score the model against real labels.
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.FeedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	record := models.FeedbackRecord{
		ID:                 uuid.New().String(),
		PredictionID:       req.PredictionID,
		Text:               strings.TrimSpace(req.Text),
		PredictedSentiment: req.PredictedSentiment,
		PredictedScore:     req.PredictedScore,
		CorrectSentiment:   req.CorrectSentiment,
		UserID:             req.UserID,
		Comments:           req.Comments,
		CreatedAt:          time.Now().UTC(),
	}

	if err := h.db.InsertFeedback(r.Context(), &record); err != nil {
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to store feedback", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("feedback_id", record.ID).
		Str("predicted", record.PredictedSentiment).
		Str("correct", record.CorrectSentiment).
		Msg("Feedback received")

	respondSuccess(w, http.StatusCreated, models.FeedbackResponse{
		Status:     "received",
		FeedbackID: record.ID,
		Message:    "Obrigado pelo feedback!",
	}, start)
}

// ListFeedback returns a page of stored feedback, newest first.
func (h *Handler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	page := clampInt(getIntParam(r, "page", 1), 1, 1<<20)
	pageSize := clampInt(getIntParam(r, "page_size", 50), 1, 200)

	list, err := h.db.ListFeedback(r.Context(), page, pageSize)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to list feedback", err)
		return
	}

	respondSuccess(w, http.StatusOK, list, start)
}

// ExportFeedback streams all feedback as CSV for offline retraining.
func (h *Handler) ExportFeedback(w http.ResponseWriter, r *http.Request) {
	records, err := h.db.AllFeedback(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to export feedback", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sentibr_feedback.csv"`)
	w.WriteHeader(http.StatusOK)

	var sb strings.Builder
	sb.WriteString("id,prediction_id,text,predicted_sentiment,predicted_score,correct_sentiment,user_id,comments,created_at\n")
	for _, rec := range records {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%.4f,%s,%s,%s,%s\n",
			escapeCSV(rec.ID),
			escapeCSV(rec.PredictionID),
			escapeCSV(rec.Text),
			escapeCSV(rec.PredictedSentiment),
			rec.PredictedScore,
			escapeCSV(rec.CorrectSentiment),
			escapeCSV(rec.UserID),
			escapeCSV(rec.Comments),
			rec.CreatedAt.UTC().Format(time.RFC3339),
		))
	}

	if _, err := w.Write([]byte(sb.String())); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to write CSV export")
	}
}
