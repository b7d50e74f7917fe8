// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package models

import "time"

// Sentiment labels. The classifier is trained on three classes and the
// wire format uses the lowercase English names throughout.
const (
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
	SentimentPositive = "positive"
)

// MaxTextLength is the longest review text accepted by the API.
const MaxTextLength = 5000

// MaxBatchSize is the largest batch accepted by /predict/batch.
const MaxBatchSize = 100

// SentimentLabels returns the label set in canonical order.
func SentimentLabels() []string {
	return []string{SentimentNegative, SentimentNeutral, SentimentPositive}
}

// ValidSentiment reports whether s is one of the known labels.
func ValidSentiment(s string) bool {
	return s == SentimentNegative || s == SentimentNeutral || s == SentimentPositive
}

// PredictRequest is the body of POST /api/v1/predict.
type PredictRequest struct {
	Text                string `json:"text" validate:"required,min=1,max=5000"`
	ReturnProbabilities bool   `json:"return_probabilities"`
}

// BatchPredictRequest is the body of POST /api/v1/predict/batch.
type BatchPredictRequest struct {
	Texts               []string `json:"texts" validate:"required,min=1,max=100,dive,required,min=1,max=5000"`
	ReturnProbabilities bool     `json:"return_probabilities"`
}

// PredictResponse is a single classification result.
type PredictResponse struct {
	Sentiment        string             `json:"sentiment"`
	Score            float64            `json:"score"`
	Probabilities    map[string]float64 `json:"probabilities,omitempty"`
	ProcessingTimeMS float64            `json:"processing_time_ms"`
	ModelVersion     string             `json:"model_version"`
}

// BatchPredictResponse is the batch classification result.
type BatchPredictResponse struct {
	Results          []PredictResponse `json:"results"`
	Count            int               `json:"count"`
	ProcessingTimeMS float64           `json:"processing_time_ms"`
}

// PredictionRecord is a stored prediction row.
type PredictionRecord struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	TextLength   int       `json:"text_length"`
	WordCount    int       `json:"word_count"`
	Sentiment    string    `json:"sentiment"`
	Confidence   float64   `json:"confidence"`
	ProbNegative float64   `json:"prob_negative"`
	ProbNeutral  float64   `json:"prob_neutral"`
	ProbPositive float64   `json:"prob_positive"`
	ModelVersion string    `json:"model_version"`
	Source       string    `json:"source"`
	LatencyMS    float64   `json:"latency_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// ExplainRequest is the body of POST /api/v1/explain.
type ExplainRequest struct {
	Text string `json:"text" validate:"required,min=1,max=5000"`
}

// TermWeight is one scored term in an explanation.
type TermWeight struct {
	Term      string  `json:"term"`
	Weight    float64 `json:"weight"`
	Sentiment string  `json:"sentiment"`
	Negated   bool    `json:"negated,omitempty"`
}

// ExplainResponse is a lexicon term-weight explanation.
type ExplainResponse struct {
	Sentiment string       `json:"sentiment"`
	Score     float64      `json:"score"`
	Terms     []TermWeight `json:"terms"`
}

// CompareRequest is the body of POST /api/v1/predict/compare.
type CompareRequest struct {
	Text string `json:"text" validate:"required,min=1,max=5000"`
}

// CompareResponse contrasts the model label with the LLM label.
type CompareResponse struct {
	Text          string          `json:"text"`
	Model         PredictResponse `json:"model"`
	LLMSentiment  string          `json:"llm_sentiment"`
	Justification string          `json:"justification"`
	Agreement     bool            `json:"agreement"`
}

// StatsResponse aggregates service-level prediction statistics.
type StatsResponse struct {
	TotalPredictions       int64            `json:"total_predictions"`
	PredictionsBySentiment map[string]int64 `json:"predictions_by_sentiment"`
	AverageConfidence      float64          `json:"average_confidence"`
	AverageLatencyMS       float64          `json:"average_latency_ms"`
	ErrorRate              float64          `json:"error_rate"`
	UptimeSeconds          float64          `json:"uptime_seconds"`
}

// TimelinePoint is one day's prediction count for one label.
type TimelinePoint struct {
	Date      string `json:"date"`
	Sentiment string `json:"sentiment"`
	Count     int64  `json:"count"`
}

// ModelInfo describes the active classifier backend.
type ModelInfo struct {
	Labels        []string `json:"labels"`
	ModelVersion  string   `json:"model_version"`
	Backend       string   `json:"backend"`
	MaxTextLength int      `json:"max_text_length"`
	MaxBatchSize  int      `json:"max_batch_size"`
}
