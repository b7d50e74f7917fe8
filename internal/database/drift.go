// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/sentibr/sentibr/internal/models"
)

// SaveDriftReport stores one drift report.
func (db *DB) SaveDriftReport(ctx context.Context, report *models.DriftReport) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	features, err := json.Marshal(report.Features)
	if err != nil {
		return fmt.Errorf("failed to marshal drift features: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO drift_reports (
			id, overall_score, severity, features, baseline_size, window_size,
			window_start, window_end, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.OverallScore, report.Severity, string(features),
		report.BaselineSize, report.WindowSize,
		report.WindowStart, report.WindowEnd, report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert drift report: %w", err)
	}
	return nil
}

// GetLatestDriftReport returns the most recent drift report.
func (db *DB) GetLatestDriftReport(ctx context.Context) (*models.DriftReport, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	report := &models.DriftReport{}
	var features string

	err := db.conn.QueryRowContext(ctx, `
		SELECT id, overall_score, severity, features, baseline_size, window_size,
		       window_start, window_end, created_at
		FROM drift_reports
		ORDER BY created_at DESC
		LIMIT 1`,
	).Scan(
		&report.ID, &report.OverallScore, &report.Severity, &features,
		&report.BaselineSize, &report.WindowSize,
		&report.WindowStart, &report.WindowEnd, &report.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query drift report: %w", err)
	}

	if err := json.Unmarshal([]byte(features), &report.Features); err != nil {
		return nil, fmt.Errorf("failed to unmarshal drift features: %w", err)
	}

	return report, nil
}

// SaveDriftBaseline persists the serialized baseline, replacing any previous one.
func (db *DB) SaveDriftBaseline(ctx context.Context, payload []byte, sampleSize int, builtAt time.Time) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM drift_baseline WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to clear drift baseline: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO drift_baseline (id, payload, sample_size, built_at)
		VALUES (1, ?, ?, ?)`, string(payload), sampleSize, builtAt); err != nil {
		return fmt.Errorf("failed to insert drift baseline: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit drift baseline: %w", err)
	}
	return nil
}

// GetDriftBaseline loads the serialized baseline.
func (db *DB) GetDriftBaseline(ctx context.Context) ([]byte, time.Time, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var payload string
	var builtAt time.Time
	err := db.conn.QueryRowContext(ctx,
		`SELECT payload, built_at FROM drift_baseline WHERE id = 1`,
	).Scan(&payload, &builtAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to query drift baseline: %w", err)
	}

	return []byte(payload), builtAt, nil
}
