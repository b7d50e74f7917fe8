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

	"github.com/sentibr/sentibr/internal/models"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// InsertPrediction stores one prediction row.
func (db *DB) InsertPrediction(ctx context.Context, rec *models.PredictionRecord) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO predictions (
			id, text, text_length, word_count, sentiment, confidence,
			prob_negative, prob_neutral, prob_positive,
			model_version, source, latency_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Text, rec.TextLength, rec.WordCount, rec.Sentiment, rec.Confidence,
		rec.ProbNegative, rec.ProbNeutral, rec.ProbPositive,
		rec.ModelVersion, rec.Source, rec.LatencyMS, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert prediction: %w", err)
	}
	return nil
}

// InsertPredictions stores a batch of prediction rows in one transaction.
func (db *DB) InsertPredictions(ctx context.Context, recs []models.PredictionRecord) error {
	if len(recs) == 0 {
		return nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO predictions (
			id, text, text_length, word_count, sentiment, confidence,
			prob_negative, prob_neutral, prob_positive,
			model_version, source, latency_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range recs {
		rec := &recs[i]
		if _, err := stmt.ExecContext(ctx,
			rec.ID, rec.Text, rec.TextLength, rec.WordCount, rec.Sentiment, rec.Confidence,
			rec.ProbNegative, rec.ProbNeutral, rec.ProbPositive,
			rec.ModelVersion, rec.Source, rec.LatencyMS, rec.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert prediction %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit predictions: %w", err)
	}
	return nil
}

// GetPrediction loads one prediction row by ID.
func (db *DB) GetPrediction(ctx context.Context, id string) (*models.PredictionRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rec := &models.PredictionRecord{}
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, text, text_length, word_count, sentiment, confidence,
		       prob_negative, prob_neutral, prob_positive,
		       model_version, source, latency_ms, created_at
		FROM predictions WHERE id = ?`, id,
	).Scan(
		&rec.ID, &rec.Text, &rec.TextLength, &rec.WordCount, &rec.Sentiment, &rec.Confidence,
		&rec.ProbNegative, &rec.ProbNeutral, &rec.ProbPositive,
		&rec.ModelVersion, &rec.Source, &rec.LatencyMS, &rec.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query prediction: %w", err)
	}
	return rec, nil
}

// GetStats computes the aggregate prediction statistics.
func (db *DB) GetStats(ctx context.Context) (*models.StatsResponse, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	stats := &models.StatsResponse{
		PredictionsBySentiment: map[string]int64{
			models.SentimentNegative: 0,
			models.SentimentNeutral:  0,
			models.SentimentPositive: 0,
		},
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT sentiment, COUNT(*) FROM predictions GROUP BY sentiment`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sentiment counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var sentiment string
		var count int64
		if err := rows.Scan(&sentiment, &count); err != nil {
			return nil, fmt.Errorf("failed to scan sentiment count: %w", err)
		}
		stats.PredictionsBySentiment[sentiment] = count
		stats.TotalPredictions += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sentiment counts: %w", err)
	}

	if stats.TotalPredictions > 0 {
		err = db.conn.QueryRowContext(ctx, `
			SELECT AVG(confidence), AVG(latency_ms) FROM predictions`,
		).Scan(&stats.AverageConfidence, &stats.AverageLatencyMS)
		if err != nil {
			return nil, fmt.Errorf("failed to query averages: %w", err)
		}
	}

	return stats, nil
}

// GetTimeline returns daily prediction counts per label for the last days.
func (db *DB) GetTimeline(ctx context.Context, days int) ([]models.TimelinePoint, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	since := time.Now().UTC().AddDate(0, 0, -days)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT strftime(created_at, '%Y-%m-%d') AS day, sentiment, COUNT(*)
		FROM predictions
		WHERE created_at >= ?
		GROUP BY day, sentiment
		ORDER BY day, sentiment`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query timeline: %w", err)
	}
	defer func() { _ = rows.Close() }()

	points := []models.TimelinePoint{}
	for rows.Next() {
		var p models.TimelinePoint
		if err := rows.Scan(&p.Date, &p.Sentiment, &p.Count); err != nil {
			return nil, fmt.Errorf("failed to scan timeline point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate timeline: %w", err)
	}

	return points, nil
}

// FeatureSample is one prediction's drift-relevant features.
type FeatureSample struct {
	TextLength float64
	WordCount  float64
	Confidence float64
	Sentiment  string
}

// GetFeatureWindow returns the feature samples for predictions created in
// [start, end), most recent first. limit <= 0 returns the whole window.
func (db *DB) GetFeatureWindow(ctx context.Context, start, end time.Time, limit int) ([]FeatureSample, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `
		SELECT text_length, word_count, confidence, sentiment
		FROM predictions
		WHERE created_at >= ? AND created_at < ?
		ORDER BY created_at DESC`
	args := []interface{}{start, end}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query feature window: %w", err)
	}
	defer func() { _ = rows.Close() }()

	samples := []FeatureSample{}
	for rows.Next() {
		var s FeatureSample
		if err := rows.Scan(&s.TextLength, &s.WordCount, &s.Confidence, &s.Sentiment); err != nil {
			return nil, fmt.Errorf("failed to scan feature sample: %w", err)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feature window: %w", err)
	}

	return samples, nil
}

// SamplePredictions draws up to n predictions for a judge run. When feedback
// exists, half the sample is drawn from predictions that feedback marked
// wrong, the rest uniformly from the remainder.
func (db *DB) SamplePredictions(ctx context.Context, n int) ([]models.PredictionRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	const selectCols = `
		SELECT p.id, p.text, p.text_length, p.word_count, p.sentiment, p.confidence,
		       p.prob_negative, p.prob_neutral, p.prob_positive,
		       p.model_version, p.source, p.latency_ms, p.created_at
		FROM predictions p`

	wrongIDs := `SELECT DISTINCT prediction_id FROM feedback
		WHERE prediction_id IS NOT NULL AND prediction_id != ''
		AND correct_sentiment != predicted_sentiment`

	// Half from feedback-flagged predictions.
	flagged, err := db.scanPredictions(ctx, selectCols+`
		WHERE p.id IN (`+wrongIDs+`)
		ORDER BY random() LIMIT ?`, n/2)
	if err != nil {
		return nil, fmt.Errorf("failed to sample flagged predictions: %w", err)
	}

	// Fill the rest uniformly from the remainder.
	rest, err := db.scanPredictions(ctx, selectCols+`
		WHERE p.id NOT IN (`+wrongIDs+`)
		ORDER BY random() LIMIT ?`, n-len(flagged))
	if err != nil {
		return nil, fmt.Errorf("failed to sample predictions: %w", err)
	}

	return append(flagged, rest...), nil
}

// scanPredictions runs a prediction query and scans all rows.
func (db *DB) scanPredictions(ctx context.Context, query string, args ...interface{}) ([]models.PredictionRecord, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	recs := []models.PredictionRecord{}
	for rows.Next() {
		var rec models.PredictionRecord
		if err := rows.Scan(
			&rec.ID, &rec.Text, &rec.TextLength, &rec.WordCount, &rec.Sentiment, &rec.Confidence,
			&rec.ProbNegative, &rec.ProbNeutral, &rec.ProbPositive,
			&rec.ModelVersion, &rec.Source, &rec.LatencyMS, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// CountPredictions returns the total number of stored predictions.
func (db *DB) CountPredictions(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM predictions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count predictions: %w", err)
	}
	return count, nil
}
