// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package judge

import (
	"strings"
	"testing"
)

func TestParseVerdict(t *testing.T) {
	t.Parallel()

	raw := `{"real_sentiment":"negative","model_correct":false,"should_be":"negative","agreement_level":2,"justification":"pedido chegou frio"}`

	payload, err := parseVerdict(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.RealSentiment != "negative" {
		t.Errorf("expected negative, got %q", payload.RealSentiment)
	}
	if payload.ModelCorrect {
		t.Error("expected model_correct false")
	}
	if payload.AgreementLevel != 2 {
		t.Errorf("expected agreement level 2, got %d", payload.AgreementLevel)
	}
}

func TestParseVerdictStripsFences(t *testing.T) {
	t.Parallel()

	raw := "```json\n{\"real_sentiment\":\"positive\",\"model_correct\":true,\"should_be\":\"positive\",\"agreement_level\":5,\"justification\":\"elogio claro\"}\n```"

	payload, err := parseVerdict(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.RealSentiment != "positive" {
		t.Errorf("expected positive, got %q", payload.RealSentiment)
	}
}

func TestParseVerdictDefaultsShouldBe(t *testing.T) {
	t.Parallel()

	raw := `{"real_sentiment":"neutral","model_correct":true,"agreement_level":4,"justification":"ok"}`

	payload, err := parseVerdict(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.ShouldBe != "neutral" {
		t.Errorf("expected should_be to default to real_sentiment, got %q", payload.ShouldBe)
	}
}

func TestParseVerdictRejectsBadPayloads(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "o modelo acertou"},
		{"unknown sentiment", `{"real_sentiment":"positivo","model_correct":true,"agreement_level":5}`},
		{"agreement too low", `{"real_sentiment":"positive","model_correct":true,"agreement_level":0}`},
		{"agreement too high", `{"real_sentiment":"positive","model_correct":true,"agreement_level":6}`},
		{"bad should_be", `{"real_sentiment":"positive","should_be":"great","model_correct":true,"agreement_level":5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := parseVerdict(tt.raw); err == nil {
				t.Errorf("expected error for %q", tt.raw)
			}
		})
	}
}

func TestParseCompare(t *testing.T) {
	t.Parallel()

	payload, err := parseCompare("```\n{\"sentiment\":\"negative\",\"justification\":\"entrega atrasada\"}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Sentiment != "negative" {
		t.Errorf("expected negative, got %q", payload.Sentiment)
	}

	if _, err := parseCompare(`{"sentiment":"ruim"}`); err == nil {
		t.Error("expected error for unknown sentiment")
	}
}

func TestBuildJudgePromptIncludesModelLabel(t *testing.T) {
	t.Parallel()

	prompt := buildJudgePrompt("Comida ótima!", "positive", 0.91)
	if !strings.Contains(prompt, "positive") {
		t.Error("expected prompt to contain the model label")
	}
	if !strings.Contains(prompt, "Comida ótima!") {
		t.Error("expected prompt to contain the review text")
	}
}
