// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package models

import "time"

// Drift severity levels, ordered by drift score.
const (
	DriftSeverityNormal   = "normal"
	DriftSeverityWarning  = "warning"
	DriftSeverityCritical = "critical"
)

// FeatureDrift is the drift result for a single monitored feature.
type FeatureDrift struct {
	Feature     string  `json:"feature"`
	Type        string  `json:"type"` // numeric | categorical
	Score       float64 `json:"score"`
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"`
	MeanShift   float64 `json:"mean_shift,omitempty"`
	StdShift    float64 `json:"std_shift,omitempty"`
}

// DriftReport is the result of one drift check against the baseline.
type DriftReport struct {
	ID           string         `json:"id"`
	OverallScore float64        `json:"overall_score"`
	Severity     string         `json:"severity"`
	Features     []FeatureDrift `json:"features"`
	BaselineSize int            `json:"baseline_size"`
	WindowSize   int            `json:"window_size"`
	WindowStart  time.Time      `json:"window_start"`
	WindowEnd    time.Time      `json:"window_end"`
	CreatedAt    time.Time      `json:"created_at"`
}

// DriftBaselineInfo summarizes the stored baseline.
type DriftBaselineInfo struct {
	SampleSize int       `json:"sample_size"`
	Features   []string  `json:"features"`
	BuiltAt    time.Time `json:"built_at"`
}

// DriftCheckRequest is the body of POST /api/v1/drift/check.
type DriftCheckRequest struct {
	WindowHours int `json:"window_hours,omitempty" validate:"omitempty,min=1,max=720"`
}
