// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package inference

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/sentibr/sentibr/internal/logging"
	"github.com/sentibr/sentibr/internal/metrics"
	"github.com/sentibr/sentibr/internal/models"
)

// ErrEmptyText is returned when the text is empty after trimming.
var ErrEmptyText = errors.New("text must not be empty")

// ErrBatchTooLarge is returned when a batch exceeds models.MaxBatchSize.
var ErrBatchTooLarge = fmt.Errorf("batch must contain at most %d texts", models.MaxBatchSize)

// Engine composes the remote classifier with the lexicon fallback, stamps
// model versions, and turns raw predictions into responses and store records.
type Engine struct {
	remote       *RemoteClassifier
	lexicon      *LexiconClassifier
	modelVersion string
}

// NewEngine creates an engine. remote may be nil (lexicon-only mode).
func NewEngine(remote *RemoteClassifier, lexicon *LexiconClassifier, modelVersion string) *Engine {
	return &Engine{
		remote:       remote,
		lexicon:      lexicon,
		modelVersion: modelVersion,
	}
}

// ModelVersion returns the configured model version string.
func (e *Engine) ModelVersion() string {
	return e.modelVersion
}

// Backend reports which backend currently serves predictions.
func (e *Engine) Backend() string {
	if e.remote != nil && e.remote.Healthy() {
		return SourceModel
	}
	return SourceLexicon
}

// Lexicon exposes the lexicon classifier for explanations.
func (e *Engine) Lexicon() *LexiconClassifier {
	return e.lexicon
}

// Classify labels one text, preferring the remote backend.
func (e *Engine) Classify(ctx context.Context, text string) (models.PredictResponse, models.PredictionRecord, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.PredictResponse{}, models.PredictionRecord{}, ErrEmptyText
	}
	text = truncateText(text, models.MaxTextLength)

	start := time.Now()
	pred, err := e.classifyOne(ctx, text)
	if err != nil {
		metrics.RecordPredictionError()
		return models.PredictResponse{}, models.PredictionRecord{}, err
	}
	elapsed := time.Since(start)

	metrics.RecordPrediction(pred.Sentiment, pred.Source, pred.Confidence, elapsed)

	resp := e.toResponse(pred, elapsed)
	record := e.toRecord(text, pred, elapsed)
	return resp, record, nil
}

// ClassifyBatch labels texts in order. The whole batch uses one backend.
func (e *Engine) ClassifyBatch(ctx context.Context, texts []string) (models.BatchPredictResponse, []models.PredictionRecord, error) {
	if len(texts) == 0 {
		return models.BatchPredictResponse{}, nil, ErrEmptyText
	}
	if len(texts) > models.MaxBatchSize {
		return models.BatchPredictResponse{}, nil, ErrBatchTooLarge
	}

	trimmed := make([]string, len(texts))
	for i, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			return models.BatchPredictResponse{}, nil, fmt.Errorf("text %d: %w", i, ErrEmptyText)
		}
		trimmed[i] = truncateText(t, models.MaxTextLength)
	}

	start := time.Now()
	preds, err := e.classifyMany(ctx, trimmed)
	if err != nil {
		metrics.RecordPredictionError()
		return models.BatchPredictResponse{}, nil, err
	}
	elapsed := time.Since(start)
	perText := elapsed / time.Duration(len(preds))

	results := make([]models.PredictResponse, len(preds))
	records := make([]models.PredictionRecord, len(preds))
	for i, pred := range preds {
		metrics.RecordPrediction(pred.Sentiment, pred.Source, pred.Confidence, perText)
		results[i] = e.toResponse(pred, perText)
		records[i] = e.toRecord(trimmed[i], pred, perText)
	}

	return models.BatchPredictResponse{
		Results:          results,
		Count:            len(results),
		ProcessingTimeMS: durationMS(elapsed),
	}, records, nil
}

// classifyOne tries the remote backend and falls back to the lexicon.
func (e *Engine) classifyOne(ctx context.Context, text string) (Prediction, error) {
	if e.remote != nil {
		pred, err := e.remote.Classify(ctx, text)
		if err == nil {
			return pred, nil
		}
		if !errors.Is(err, ErrBackendUnavailable) {
			return Prediction{}, err
		}
		logging.Ctx(ctx).Warn().Err(err).Msg("Model backend unavailable, using lexicon fallback")
	}
	return e.lexicon.Classify(ctx, text)
}

// classifyMany tries the remote backend and falls back to the lexicon.
func (e *Engine) classifyMany(ctx context.Context, texts []string) ([]Prediction, error) {
	if e.remote != nil {
		preds, err := e.remote.ClassifyBatch(ctx, texts)
		if err == nil {
			return preds, nil
		}
		if !errors.Is(err, ErrBackendUnavailable) {
			return nil, err
		}
		logging.Ctx(ctx).Warn().Err(err).Msg("Model backend unavailable, using lexicon fallback")
	}
	return e.lexicon.ClassifyBatch(ctx, texts)
}

// toResponse shapes a prediction into the API response.
func (e *Engine) toResponse(pred Prediction, elapsed time.Duration) models.PredictResponse {
	return models.PredictResponse{
		Sentiment:        pred.Sentiment,
		Score:            pred.Confidence,
		Probabilities:    pred.Probabilities,
		ProcessingTimeMS: durationMS(elapsed),
		ModelVersion:     e.versionFor(pred.Source),
	}
}

// toRecord shapes a prediction into a store row.
func (e *Engine) toRecord(text string, pred Prediction, elapsed time.Duration) models.PredictionRecord {
	return models.PredictionRecord{
		ID:           uuid.New().String(),
		Text:         text,
		TextLength:   len(text),
		WordCount:    len(strings.Fields(text)),
		Sentiment:    pred.Sentiment,
		Confidence:   pred.Confidence,
		ProbNegative: pred.Probabilities[models.SentimentNegative],
		ProbNeutral:  pred.Probabilities[models.SentimentNeutral],
		ProbPositive: pred.Probabilities[models.SentimentPositive],
		ModelVersion: e.versionFor(pred.Source),
		Source:       pred.Source,
		LatencyMS:    durationMS(elapsed),
		CreatedAt:    time.Now().UTC(),
	}
}

// versionFor distinguishes lexicon predictions from model predictions.
func (e *Engine) versionFor(source string) string {
	if source == SourceLexicon {
		return "lexicon-" + e.modelVersion
	}
	return e.modelVersion
}

// truncateText caps text at max bytes without splitting a UTF-8 rune,
// backing up to the nearest rune boundary when the cut lands mid-sequence.
func truncateText(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// durationMS converts a duration to fractional milliseconds.
func durationMS(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
