// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package judge

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/sentibr/sentibr/internal/models"
)

// judgeSystemPrompt instructs the LLM to act as an independent annotator
// for Brazilian Portuguese food-delivery reviews. The reply must be a
// single JSON object so it can be parsed without heuristics.
const judgeSystemPrompt = `Você é um anotador especialista em análise de sentimento de avaliações de delivery de comida no Brasil (estilo iFood).

Você receberá o texto de uma avaliação e a classificação feita por um modelo automático. Avalie de forma independente e responda APENAS com um objeto JSON, sem texto adicional, no formato:

{
  "real_sentiment": "positive" | "neutral" | "negative",
  "model_correct": true | false,
  "should_be": "positive" | "neutral" | "negative",
  "agreement_level": 1-5,
  "justification": "explicação curta em português"
}

Regras:
- "real_sentiment" é o sentimento que você atribui ao texto.
- "model_correct" indica se a classificação do modelo está correta.
- "should_be" é o rótulo correto (igual a real_sentiment).
- "agreement_level" mede sua concordância com o modelo: 5 = concordância total, 1 = discordância total.
- Elogios com ressalvas leves ainda podem ser "positive"; reclamações sobre atraso, comida fria ou pedido errado pesam para "negative".`

// compareSystemPrompt asks for a standalone classification, used by the
// live compare endpoint.
const compareSystemPrompt = `Você é um anotador especialista em análise de sentimento de avaliações de delivery de comida no Brasil (estilo iFood).

Classifique o texto recebido e responda APENAS com um objeto JSON, sem texto adicional, no formato:

{
  "sentiment": "positive" | "neutral" | "negative",
  "justification": "explicação curta em português"
}`

// buildJudgePrompt renders the user turn for one sample.
func buildJudgePrompt(text, modelSentiment string, modelScore float64) string {
	return fmt.Sprintf(
		"Avaliação:\n%q\n\nClassificação do modelo: %s (confiança %.2f)\n\nResponda com o JSON.",
		text, modelSentiment, modelScore,
	)
}

// buildComparePrompt renders the user turn for a compare call.
func buildComparePrompt(text string) string {
	return fmt.Sprintf("Avaliação:\n%q\n\nResponda com o JSON.", text)
}

// verdictPayload is the JSON object the judge must return per sample.
type verdictPayload struct {
	RealSentiment  string `json:"real_sentiment"`
	ModelCorrect   bool   `json:"model_correct"`
	ShouldBe       string `json:"should_be"`
	AgreementLevel int    `json:"agreement_level"`
	Justification  string `json:"justification"`
}

// comparePayload is the JSON object returned by a compare call.
type comparePayload struct {
	Sentiment     string `json:"sentiment"`
	Justification string `json:"justification"`
}

// stripFences removes markdown code fences some models wrap JSON in.
func stripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// parseVerdict decodes and validates one judge reply.
func parseVerdict(raw string) (*verdictPayload, error) {
	var payload verdictPayload
	if err := json.Unmarshal([]byte(stripFences(raw)), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode judge reply: %w", err)
	}

	if !models.ValidSentiment(payload.RealSentiment) {
		return nil, fmt.Errorf("judge returned unknown sentiment %q", payload.RealSentiment)
	}
	if payload.ShouldBe == "" {
		payload.ShouldBe = payload.RealSentiment
	}
	if !models.ValidSentiment(payload.ShouldBe) {
		return nil, fmt.Errorf("judge returned unknown should_be %q", payload.ShouldBe)
	}
	if payload.AgreementLevel < 1 || payload.AgreementLevel > 5 {
		return nil, fmt.Errorf("judge returned agreement_level %d outside 1-5", payload.AgreementLevel)
	}

	return &payload, nil
}

// parseCompare decodes and validates one compare reply.
func parseCompare(raw string) (*comparePayload, error) {
	var payload comparePayload
	if err := json.Unmarshal([]byte(stripFences(raw)), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode compare reply: %w", err)
	}
	if !models.ValidSentiment(payload.Sentiment) {
		return nil, fmt.Errorf("compare returned unknown sentiment %q", payload.Sentiment)
	}
	return &payload, nil
}
