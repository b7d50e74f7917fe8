// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

// Package drift watches the live prediction stream for distribution
// shift. Numeric features are compared against a stored baseline with a
// two-sample Kolmogorov-Smirnov test, the sentiment mix with a
// chi-square test, and the per-feature scores average into an overall
// drift score with severity thresholds.
package drift

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sentibr/sentibr/internal/config"
	"github.com/sentibr/sentibr/internal/database"
	"github.com/sentibr/sentibr/internal/logging"
	"github.com/sentibr/sentibr/internal/metrics"
	"github.com/sentibr/sentibr/internal/models"
)

// Detector errors.
var (
	ErrNoBaseline     = errors.New("no drift baseline, build one first")
	ErrWindowTooSmall = errors.New("not enough predictions in the window")
)

// significanceLevel marks a feature's shift as statistically significant.
const significanceLevel = 0.05

// Publisher receives completed drift reports.
type Publisher interface {
	PublishDrift(report *models.DriftReport) error
}

// Detector builds baselines and runs drift checks.
type Detector struct {
	db  *database.DB
	cfg config.DriftConfig
	pub Publisher // optional
}

// NewDetector creates a detector. pub may be nil.
func NewDetector(db *database.DB, cfg config.DriftConfig, pub Publisher) *Detector {
	return &Detector{db: db, cfg: cfg, pub: pub}
}

// BuildBaseline snapshots the current prediction history as the new
// reference distribution and persists it.
func (d *Detector) BuildBaseline(ctx context.Context) (*models.DriftBaselineInfo, error) {
	log := logging.WithComponent("drift")

	samples, err := d.db.GetFeatureWindow(ctx, time.Time{}, time.Now().UTC(), d.cfg.BaselineMaxSamples)
	if err != nil {
		return nil, fmt.Errorf("failed to load baseline samples: %w", err)
	}
	if len(samples) < d.cfg.MinWindowSamples {
		return nil, ErrWindowTooSmall
	}

	baseline := BuildBaseline(samples, d.cfg.BaselineMaxSamples)
	payload, err := baseline.Encode()
	if err != nil {
		return nil, err
	}
	if err := d.db.SaveDriftBaseline(ctx, payload, baseline.SampleSize, baseline.BuiltAt); err != nil {
		return nil, err
	}

	log.Info().
		Int("sample_size", baseline.SampleSize).
		Msg("Drift baseline rebuilt")

	return baseline.Info(), nil
}

// BaselineInfo loads and summarizes the stored baseline.
func (d *Detector) BaselineInfo(ctx context.Context) (*models.DriftBaselineInfo, error) {
	baseline, err := d.loadBaseline(ctx)
	if err != nil {
		return nil, err
	}
	return baseline.Info(), nil
}

// Check compares the recent prediction window against the baseline and
// stores the resulting report. windowHours <= 0 uses the configured
// default.
func (d *Detector) Check(ctx context.Context, windowHours int) (*models.DriftReport, error) {
	log := logging.WithComponent("drift")

	baseline, err := d.loadBaseline(ctx)
	if err != nil {
		return nil, err
	}

	if windowHours <= 0 {
		windowHours = d.cfg.WindowHours
	}
	windowEnd := time.Now().UTC()
	windowStart := windowEnd.Add(-time.Duration(windowHours) * time.Hour)

	samples, err := d.db.GetFeatureWindow(ctx, windowStart, windowEnd, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load window samples: %w", err)
	}
	if len(samples) < d.cfg.MinWindowSamples {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrWindowTooSmall, len(samples), d.cfg.MinWindowSamples)
	}

	window := BuildBaseline(samples, 0)
	report := d.compare(baseline, window)
	report.WindowStart = windowStart
	report.WindowEnd = windowEnd

	if err := d.db.SaveDriftReport(ctx, report); err != nil {
		return nil, err
	}

	metrics.DriftScore.Set(report.OverallScore)
	for _, f := range report.Features {
		metrics.DriftFeatureScore.WithLabelValues(f.Feature).Set(f.Score)
	}

	if d.pub != nil {
		if err := d.pub.PublishDrift(report); err != nil {
			log.Warn().Err(err).Msg("Failed to publish drift report")
		}
	}

	log.Info().
		Float64("overall_score", report.OverallScore).
		Str("severity", report.Severity).
		Int("window_size", report.WindowSize).
		Msg("Drift check completed")

	return report, nil
}

// LatestReport returns the most recent stored report.
func (d *Detector) LatestReport(ctx context.Context) (*models.DriftReport, error) {
	return d.db.GetLatestDriftReport(ctx)
}

// compare scores the window against the baseline feature by feature.
func (d *Detector) compare(baseline, window *Baseline) *models.DriftReport {
	report := &models.DriftReport{
		ID:           uuid.New().String(),
		BaselineSize: baseline.SampleSize,
		WindowSize:   window.SampleSize,
		CreatedAt:    time.Now().UTC(),
	}

	var scoreSum float64

	for _, feature := range NumericFeatures() {
		base := baseline.Numeric[feature]
		win := window.Numeric[feature]

		dStat := ksStatistic(base, win)
		p := ksPValue(dStat, len(base), len(win))

		baseMean := mean(base)
		winMean := mean(win)

		fd := models.FeatureDrift{
			Feature:     feature,
			Type:        "numeric",
			Score:       dStat,
			PValue:      p,
			Significant: p < significanceLevel,
			MeanShift:   winMean - baseMean,
			StdShift:    stddev(win, winMean) - stddev(base, baseMean),
		}
		report.Features = append(report.Features, fd)
		scoreSum += fd.Score
	}

	categories := models.SentimentLabels()
	stat, df := chiSquareStatistic(baseline.Sentiments, window.Sentiments, categories)
	p := chiSquarePValue(stat, df)
	fd := models.FeatureDrift{
		Feature:     FeatureSentiment,
		Type:        "categorical",
		Score:       totalVariation(baseline.Sentiments, window.Sentiments, categories),
		PValue:      p,
		Significant: p < significanceLevel,
	}
	report.Features = append(report.Features, fd)
	scoreSum += fd.Score

	report.OverallScore = scoreSum / float64(len(report.Features))
	report.Severity = d.severityFor(report.OverallScore)

	return report
}

// severityFor maps an overall score onto a severity level.
func (d *Detector) severityFor(score float64) string {
	switch {
	case score >= d.cfg.CriticalThreshold:
		return models.DriftSeverityCritical
	case score >= d.cfg.WarningThreshold:
		return models.DriftSeverityWarning
	default:
		return models.DriftSeverityNormal
	}
}

// loadBaseline reads and decodes the stored baseline.
func (d *Detector) loadBaseline(ctx context.Context) (*Baseline, error) {
	payload, _, err := d.db.GetDriftBaseline(ctx)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNoBaseline
	}
	if err != nil {
		return nil, err
	}
	return DecodeBaseline(payload)
}
