// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package drift

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/sentibr/sentibr/internal/database"
	"github.com/sentibr/sentibr/internal/models"
)

// Monitored features.
const (
	FeatureTextLength = "text_length"
	FeatureWordCount  = "word_count"
	FeatureConfidence = "confidence"
	FeatureSentiment  = "sentiment"
)

// NumericFeatures lists the KS-tested features in report order.
func NumericFeatures() []string {
	return []string{FeatureTextLength, FeatureWordCount, FeatureConfidence}
}

// Baseline is the reference distribution drift checks compare against.
// Numeric slices are kept sorted so the KS test can stream over them.
type Baseline struct {
	Numeric    map[string][]float64 `json:"numeric"`
	Sentiments map[string]int       `json:"sentiments"`
	SampleSize int                  `json:"sample_size"`
	BuiltAt    time.Time            `json:"built_at"`
}

// BuildBaseline turns a prediction sample into a baseline. maxSamples
// caps the retained values per feature; 0 means no cap.
func BuildBaseline(samples []database.FeatureSample, maxSamples int) *Baseline {
	if maxSamples > 0 && len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}

	b := &Baseline{
		Numeric: map[string][]float64{
			FeatureTextLength: make([]float64, 0, len(samples)),
			FeatureWordCount:  make([]float64, 0, len(samples)),
			FeatureConfidence: make([]float64, 0, len(samples)),
		},
		Sentiments: map[string]int{},
		SampleSize: len(samples),
		BuiltAt:    time.Now().UTC(),
	}

	for _, s := range samples {
		b.Numeric[FeatureTextLength] = append(b.Numeric[FeatureTextLength], s.TextLength)
		b.Numeric[FeatureWordCount] = append(b.Numeric[FeatureWordCount], s.WordCount)
		b.Numeric[FeatureConfidence] = append(b.Numeric[FeatureConfidence], s.Confidence)
		b.Sentiments[s.Sentiment]++
	}

	for feature, values := range b.Numeric {
		b.Numeric[feature] = sortedCopy(values)
	}

	return b
}

// Encode serializes the baseline for storage.
func (b *Baseline) Encode() ([]byte, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to encode baseline: %w", err)
	}
	return data, nil
}

// DecodeBaseline deserializes a stored baseline.
func DecodeBaseline(data []byte) (*Baseline, error) {
	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to decode baseline: %w", err)
	}
	return &b, nil
}

// Info summarizes the baseline for the API.
func (b *Baseline) Info() *models.DriftBaselineInfo {
	features := append(NumericFeatures(), FeatureSentiment)
	return &models.DriftBaselineInfo{
		SampleSize: b.SampleSize,
		Features:   features,
		BuiltAt:    b.BuiltAt,
	}
}
