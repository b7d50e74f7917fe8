// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package judge

import (
	"strconv"

	"github.com/sentibr/sentibr/internal/models"
)

// maxStoredDisagreements bounds the disagreement list embedded in the
// stored analysis. The full set stays queryable per verdict.
const maxStoredDisagreements = 25

// Analyze aggregates the verdicts of a run. feedbackLabels maps prediction
// IDs to human-corrected labels and is used to score the judge itself
// against users.
func Analyze(model string, sampleSize int, verdicts []models.JudgeVerdict, feedbackLabels map[string]string) *models.JudgeAnalysis {
	analysis := &models.JudgeAnalysis{
		SampleSize:            sampleSize,
		AgreementDistribution: map[string]int{},
		JudgedBySentiment:     map[string]int{},
	}

	var (
		agreed         int
		levelSum       int
		latencySum     float64
		feedbackHits   int
		feedbackChecks int
	)

	for _, v := range verdicts {
		analysis.TotalInputTokens += v.InputTokens
		analysis.TotalOutputTokens += v.OutputTokens
		latencySum += v.LatencyMS

		if v.Error != "" {
			analysis.Errors++
			continue
		}

		analysis.Judged++
		analysis.JudgedBySentiment[v.ModelSentiment]++
		analysis.AgreementDistribution[strconv.Itoa(v.AgreementLevel)]++
		levelSum += v.AgreementLevel

		if v.ModelCorrect {
			agreed++
		} else if len(analysis.Disagreements) < maxStoredDisagreements {
			analysis.Disagreements = append(analysis.Disagreements, v)
		}

		if label, ok := feedbackLabels[v.PredictionID]; ok {
			feedbackChecks++
			if v.RealSentiment == label {
				feedbackHits++
			}
		}
	}

	if analysis.Judged > 0 {
		analysis.AgreementRate = float64(agreed) / float64(analysis.Judged)
		analysis.DisagreementRate = 1 - analysis.AgreementRate
		analysis.MeanAgreementLevel = float64(levelSum) / float64(analysis.Judged)
	}
	if len(verdicts) > 0 {
		analysis.MeanLatencyMS = latencySum / float64(len(verdicts))
	}
	if feedbackChecks > 0 {
		accuracy := float64(feedbackHits) / float64(feedbackChecks)
		analysis.FeedbackAccuracy = &accuracy
	}

	analysis.EstimatedCostUSD = EstimateCost(model, analysis.TotalInputTokens, analysis.TotalOutputTokens)

	return analysis
}
