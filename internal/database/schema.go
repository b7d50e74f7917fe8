// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaStatements create the tables and indexes. DuckDB executes these
// idempotently via IF NOT EXISTS.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS predictions (
		id VARCHAR PRIMARY KEY,
		text VARCHAR NOT NULL,
		text_length INTEGER NOT NULL,
		word_count INTEGER NOT NULL,
		sentiment VARCHAR NOT NULL,
		confidence DOUBLE NOT NULL,
		prob_negative DOUBLE NOT NULL,
		prob_neutral DOUBLE NOT NULL,
		prob_positive DOUBLE NOT NULL,
		model_version VARCHAR NOT NULL,
		source VARCHAR NOT NULL,
		latency_ms DOUBLE NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions (created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_predictions_sentiment ON predictions (sentiment)`,

	`CREATE TABLE IF NOT EXISTS feedback (
		id VARCHAR PRIMARY KEY,
		prediction_id VARCHAR,
		text VARCHAR NOT NULL,
		predicted_sentiment VARCHAR NOT NULL,
		predicted_score DOUBLE NOT NULL,
		correct_sentiment VARCHAR NOT NULL,
		user_id VARCHAR,
		comments VARCHAR,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_feedback_created_at ON feedback (created_at)`,

	`CREATE TABLE IF NOT EXISTS judge_runs (
		id VARCHAR PRIMARY KEY,
		status VARCHAR NOT NULL,
		provider VARCHAR NOT NULL,
		model VARCHAR NOT NULL,
		sample_size INTEGER NOT NULL,
		judged INTEGER NOT NULL DEFAULT 0,
		errors INTEGER NOT NULL DEFAULT 0,
		analysis VARCHAR,
		fail_reason VARCHAR,
		created_at TIMESTAMP NOT NULL,
		started_at TIMESTAMP,
		completed_at TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS judge_verdicts (
		id VARCHAR PRIMARY KEY,
		run_id VARCHAR NOT NULL,
		prediction_id VARCHAR NOT NULL,
		text VARCHAR NOT NULL,
		model_sentiment VARCHAR NOT NULL,
		model_score DOUBLE NOT NULL,
		real_sentiment VARCHAR,
		model_correct BOOLEAN,
		should_be VARCHAR,
		agreement_level INTEGER,
		justification VARCHAR,
		input_tokens BIGINT NOT NULL DEFAULT 0,
		output_tokens BIGINT NOT NULL DEFAULT 0,
		latency_ms DOUBLE NOT NULL DEFAULT 0,
		error VARCHAR,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_judge_verdicts_run_id ON judge_verdicts (run_id)`,

	`CREATE TABLE IF NOT EXISTS drift_reports (
		id VARCHAR PRIMARY KEY,
		overall_score DOUBLE NOT NULL,
		severity VARCHAR NOT NULL,
		features VARCHAR NOT NULL,
		baseline_size INTEGER NOT NULL,
		window_size INTEGER NOT NULL,
		window_start TIMESTAMP NOT NULL,
		window_end TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS drift_baseline (
		id INTEGER PRIMARY KEY,
		payload VARCHAR NOT NULL,
		sample_size INTEGER NOT NULL,
		built_at TIMESTAMP NOT NULL
	)`,
}

// initialize creates the schema.
func (db *DB) initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}
