// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package models

import "time"

// Judge run lifecycle states.
const (
	JudgeRunPending   = "pending"
	JudgeRunRunning   = "running"
	JudgeRunCompleted = "completed"
	JudgeRunFailed    = "failed"
)

// JudgeRunRequest is the body of POST /api/v1/judge/runs.
type JudgeRunRequest struct {
	SampleSize int    `json:"sample_size,omitempty" validate:"omitempty,min=1,max=1000"`
	Provider   string `json:"provider,omitempty" validate:"omitempty,oneof=anthropic openai"`
	Model      string `json:"model,omitempty" validate:"omitempty,max=128"`
}

// JudgeRun is a stored evaluation run.
type JudgeRun struct {
	ID          string         `json:"id"`
	Status      string         `json:"status"`
	Provider    string         `json:"provider"`
	Model       string         `json:"model"`
	SampleSize  int            `json:"sample_size"`
	Judged      int            `json:"judged"`
	Errors      int            `json:"errors"`
	Analysis    *JudgeAnalysis `json:"analysis,omitempty"`
	FailReason  string         `json:"fail_reason,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// JudgeVerdict is one sample's evaluation by the LLM.
type JudgeVerdict struct {
	ID             string    `json:"id"`
	RunID          string    `json:"run_id"`
	PredictionID   string    `json:"prediction_id"`
	Text           string    `json:"text"`
	ModelSentiment string    `json:"model_sentiment"`
	ModelScore     float64   `json:"model_score"`
	RealSentiment  string    `json:"real_sentiment"`
	ModelCorrect   bool      `json:"model_correct"`
	ShouldBe       string    `json:"should_be"`
	AgreementLevel int       `json:"agreement_level"`
	Justification  string    `json:"justification"`
	InputTokens    int64     `json:"input_tokens"`
	OutputTokens   int64     `json:"output_tokens"`
	LatencyMS      float64   `json:"latency_ms"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// JudgeAnalysis aggregates the verdicts of a completed run.
type JudgeAnalysis struct {
	SampleSize            int            `json:"sample_size"`
	Judged                int            `json:"judged"`
	Errors                int            `json:"errors"`
	AgreementRate         float64        `json:"agreement_rate"`
	DisagreementRate      float64        `json:"disagreement_rate"`
	MeanAgreementLevel    float64        `json:"mean_agreement_level"`
	AgreementDistribution map[string]int `json:"agreement_distribution"`
	JudgedBySentiment     map[string]int `json:"judged_by_sentiment"`
	FeedbackAccuracy      *float64       `json:"feedback_accuracy,omitempty"`
	TotalInputTokens      int64          `json:"total_input_tokens"`
	TotalOutputTokens     int64          `json:"total_output_tokens"`
	EstimatedCostUSD      float64        `json:"estimated_cost_usd"`
	MeanLatencyMS         float64        `json:"mean_latency_ms"`
	Disagreements         []JudgeVerdict `json:"disagreements,omitempty"`
}
