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

// InsertJudgeRun stores a new run in pending state.
func (db *DB) InsertJudgeRun(ctx context.Context, run *models.JudgeRun) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO judge_runs (id, status, provider, model, sample_size, judged, errors, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Status, run.Provider, run.Model, run.SampleSize, run.Judged, run.Errors, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert judge run: %w", err)
	}
	return nil
}

// MarkJudgeRunRunning transitions a run to running.
func (db *DB) MarkJudgeRunRunning(ctx context.Context, id string, startedAt time.Time) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `
		UPDATE judge_runs SET status = ?, started_at = ? WHERE id = ?`,
		models.JudgeRunRunning, startedAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark judge run running: %w", err)
	}
	return nil
}

// UpdateJudgeRunProgress updates the judged/error counters.
func (db *DB) UpdateJudgeRunProgress(ctx context.Context, id string, judged, errCount int) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `
		UPDATE judge_runs SET judged = ?, errors = ? WHERE id = ?`, judged, errCount, id)
	if err != nil {
		return fmt.Errorf("failed to update judge run progress: %w", err)
	}
	return nil
}

// CompleteJudgeRun stores the final analysis and transitions to completed.
func (db *DB) CompleteJudgeRun(ctx context.Context, id string, analysis *models.JudgeAnalysis, completedAt time.Time) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		UPDATE judge_runs
		SET status = ?, analysis = ?, judged = ?, errors = ?, completed_at = ?
		WHERE id = ?`,
		models.JudgeRunCompleted, string(payload), analysis.Judged, analysis.Errors, completedAt, id)
	if err != nil {
		return fmt.Errorf("failed to complete judge run: %w", err)
	}
	return nil
}

// FailJudgeRun transitions a run to failed with a reason.
func (db *DB) FailJudgeRun(ctx context.Context, id, reason string, completedAt time.Time) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `
		UPDATE judge_runs SET status = ?, fail_reason = ?, completed_at = ? WHERE id = ?`,
		models.JudgeRunFailed, reason, completedAt, id)
	if err != nil {
		return fmt.Errorf("failed to fail judge run: %w", err)
	}
	return nil
}

// GetJudgeRun loads one run by ID.
func (db *DB) GetJudgeRun(ctx context.Context, id string) (*models.JudgeRun, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	run := &models.JudgeRun{}
	var analysis, failReason sql.NullString
	var startedAt, completedAt sql.NullTime

	err := db.conn.QueryRowContext(ctx, `
		SELECT id, status, provider, model, sample_size, judged, errors,
		       analysis, fail_reason, created_at, started_at, completed_at
		FROM judge_runs WHERE id = ?`, id,
	).Scan(
		&run.ID, &run.Status, &run.Provider, &run.Model, &run.SampleSize, &run.Judged, &run.Errors,
		&analysis, &failReason, &run.CreatedAt, &startedAt, &completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query judge run: %w", err)
	}

	if analysis.Valid && analysis.String != "" {
		run.Analysis = &models.JudgeAnalysis{}
		if err := json.Unmarshal([]byte(analysis.String), run.Analysis); err != nil {
			return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
		}
	}
	if failReason.Valid {
		run.FailReason = failReason.String
	}
	if startedAt.Valid {
		run.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}

	return run, nil
}

// ListJudgeRuns returns all runs, newest first, without their analyses'
// disagreement lists trimmed (the stored JSON is returned as-is).
func (db *DB) ListJudgeRuns(ctx context.Context, limit int) ([]models.JudgeRun, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit < 1 || limit > 500 {
		limit = 50
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, status, provider, model, sample_size, judged, errors,
		       fail_reason, created_at, started_at, completed_at
		FROM judge_runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query judge runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := []models.JudgeRun{}
	for rows.Next() {
		var run models.JudgeRun
		var failReason sql.NullString
		var startedAt, completedAt sql.NullTime
		if err := rows.Scan(
			&run.ID, &run.Status, &run.Provider, &run.Model, &run.SampleSize, &run.Judged, &run.Errors,
			&failReason, &run.CreatedAt, &startedAt, &completedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan judge run: %w", err)
		}
		if failReason.Valid {
			run.FailReason = failReason.String
		}
		if startedAt.Valid {
			run.StartedAt = &startedAt.Time
		}
		if completedAt.Valid {
			run.CompletedAt = &completedAt.Time
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate judge runs: %w", err)
	}

	return runs, nil
}

// InsertJudgeVerdict stores one verdict.
func (db *DB) InsertJudgeVerdict(ctx context.Context, v *models.JudgeVerdict) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO judge_verdicts (
			id, run_id, prediction_id, text, model_sentiment, model_score,
			real_sentiment, model_correct, should_be, agreement_level, justification,
			input_tokens, output_tokens, latency_ms, error, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.RunID, v.PredictionID, v.Text, v.ModelSentiment, v.ModelScore,
		v.RealSentiment, v.ModelCorrect, v.ShouldBe, v.AgreementLevel, v.Justification,
		v.InputTokens, v.OutputTokens, v.LatencyMS, v.Error, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert judge verdict: %w", err)
	}
	return nil
}

// ListJudgeVerdicts returns the verdicts of a run, oldest first.
func (db *DB) ListJudgeVerdicts(ctx context.Context, runID string) ([]models.JudgeVerdict, error) {
	return db.queryVerdicts(ctx, `
		SELECT id, run_id, prediction_id, text, model_sentiment, model_score,
		       COALESCE(real_sentiment, ''), COALESCE(model_correct, FALSE),
		       COALESCE(should_be, ''), COALESCE(agreement_level, 0),
		       COALESCE(justification, ''), input_tokens, output_tokens, latency_ms,
		       COALESCE(error, ''), created_at
		FROM judge_verdicts
		WHERE run_id = ?
		ORDER BY created_at ASC`, runID)
}

// ListJudgeDisagreements returns the verdicts of a run where the judge
// disagreed with the model, oldest first.
func (db *DB) ListJudgeDisagreements(ctx context.Context, runID string) ([]models.JudgeVerdict, error) {
	return db.queryVerdicts(ctx, `
		SELECT id, run_id, prediction_id, text, model_sentiment, model_score,
		       COALESCE(real_sentiment, ''), COALESCE(model_correct, FALSE),
		       COALESCE(should_be, ''), COALESCE(agreement_level, 0),
		       COALESCE(justification, ''), input_tokens, output_tokens, latency_ms,
		       COALESCE(error, ''), created_at
		FROM judge_verdicts
		WHERE run_id = ? AND COALESCE(error, '') = '' AND model_correct = FALSE
		ORDER BY created_at ASC`, runID)
}

// queryVerdicts runs a verdict query and scans all rows.
func (db *DB) queryVerdicts(ctx context.Context, query string, args ...interface{}) ([]models.JudgeVerdict, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query judge verdicts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	verdicts := []models.JudgeVerdict{}
	for rows.Next() {
		var v models.JudgeVerdict
		if err := rows.Scan(
			&v.ID, &v.RunID, &v.PredictionID, &v.Text, &v.ModelSentiment, &v.ModelScore,
			&v.RealSentiment, &v.ModelCorrect, &v.ShouldBe, &v.AgreementLevel, &v.Justification,
			&v.InputTokens, &v.OutputTokens, &v.LatencyMS, &v.Error, &v.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan judge verdict: %w", err)
		}
		verdicts = append(verdicts, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate judge verdicts: %w", err)
	}

	return verdicts, nil
}
