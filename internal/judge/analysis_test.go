// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package judge

import (
	"math"
	"testing"

	"github.com/sentibr/sentibr/internal/models"
)

func TestAnalyze(t *testing.T) {
	t.Parallel()

	verdicts := []models.JudgeVerdict{
		{PredictionID: "p1", ModelSentiment: "positive", RealSentiment: "positive", ModelCorrect: true, AgreementLevel: 5, InputTokens: 100, OutputTokens: 50, LatencyMS: 200},
		{PredictionID: "p2", ModelSentiment: "positive", RealSentiment: "negative", ModelCorrect: false, AgreementLevel: 1, InputTokens: 100, OutputTokens: 50, LatencyMS: 300},
		{PredictionID: "p3", ModelSentiment: "negative", RealSentiment: "negative", ModelCorrect: true, AgreementLevel: 4, InputTokens: 100, OutputTokens: 50, LatencyMS: 250},
		{PredictionID: "p4", Error: "judge failed after 3 attempts", InputTokens: 300, OutputTokens: 0, LatencyMS: 1000},
	}
	feedback := map[string]string{
		"p1": "positive",
		"p2": "neutral",
	}

	analysis := Analyze("gpt-4o-mini", 4, verdicts, feedback)

	if analysis.Judged != 3 {
		t.Errorf("expected 3 judged, got %d", analysis.Judged)
	}
	if analysis.Errors != 1 {
		t.Errorf("expected 1 error, got %d", analysis.Errors)
	}
	if math.Abs(analysis.AgreementRate-2.0/3.0) > 1e-9 {
		t.Errorf("expected agreement rate 2/3, got %f", analysis.AgreementRate)
	}
	if math.Abs(analysis.MeanAgreementLevel-10.0/3.0) > 1e-9 {
		t.Errorf("expected mean agreement 10/3, got %f", analysis.MeanAgreementLevel)
	}
	if analysis.AgreementDistribution["5"] != 1 || analysis.AgreementDistribution["1"] != 1 {
		t.Errorf("unexpected distribution: %v", analysis.AgreementDistribution)
	}
	if analysis.JudgedBySentiment["positive"] != 2 {
		t.Errorf("expected 2 positive judged, got %d", analysis.JudgedBySentiment["positive"])
	}
	if len(analysis.Disagreements) != 1 || analysis.Disagreements[0].PredictionID != "p2" {
		t.Errorf("unexpected disagreements: %+v", analysis.Disagreements)
	}
	if analysis.TotalInputTokens != 600 || analysis.TotalOutputTokens != 150 {
		t.Errorf("unexpected token totals: %d in, %d out", analysis.TotalInputTokens, analysis.TotalOutputTokens)
	}
	if analysis.EstimatedCostUSD <= 0 {
		t.Error("expected a positive cost estimate")
	}

	// p1 judged positive matches feedback, p2 judged negative but user said neutral.
	if analysis.FeedbackAccuracy == nil {
		t.Fatal("expected feedback accuracy to be set")
	}
	if math.Abs(*analysis.FeedbackAccuracy-0.5) > 1e-9 {
		t.Errorf("expected feedback accuracy 0.5, got %f", *analysis.FeedbackAccuracy)
	}
}

func TestAnalyzeEmptyRun(t *testing.T) {
	t.Parallel()

	analysis := Analyze("gpt-4o-mini", 0, nil, nil)

	if analysis.Judged != 0 || analysis.Errors != 0 {
		t.Errorf("expected empty counters, got %+v", analysis)
	}
	if analysis.AgreementRate != 0 {
		t.Errorf("expected zero agreement rate, got %f", analysis.AgreementRate)
	}
	if analysis.FeedbackAccuracy != nil {
		t.Error("expected no feedback accuracy on empty run")
	}
}

func TestAnalyzeCapsStoredDisagreements(t *testing.T) {
	t.Parallel()

	verdicts := make([]models.JudgeVerdict, 0, maxStoredDisagreements+10)
	for i := 0; i < maxStoredDisagreements+10; i++ {
		verdicts = append(verdicts, models.JudgeVerdict{
			ModelSentiment: "positive",
			RealSentiment:  "negative",
			ModelCorrect:   false,
			AgreementLevel: 1,
		})
	}

	analysis := Analyze("gpt-4o-mini", len(verdicts), verdicts, nil)
	if len(analysis.Disagreements) != maxStoredDisagreements {
		t.Errorf("expected %d stored disagreements, got %d", maxStoredDisagreements, len(analysis.Disagreements))
	}
}
