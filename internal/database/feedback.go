// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package database

import (
	"context"
	"fmt"

	"github.com/sentibr/sentibr/internal/models"
)

// InsertFeedback stores one feedback row.
func (db *DB) InsertFeedback(ctx context.Context, rec *models.FeedbackRecord) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO feedback (
			id, prediction_id, text, predicted_sentiment, predicted_score,
			correct_sentiment, user_id, comments, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.PredictionID, rec.Text, rec.PredictedSentiment, rec.PredictedScore,
		rec.CorrectSentiment, rec.UserID, rec.Comments, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	return nil
}

// ListFeedback returns one page of feedback records, newest first.
func (db *DB) ListFeedback(ctx context.Context, page, pageSize int) (*models.FeedbackList, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count feedback: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, COALESCE(prediction_id, ''), text, predicted_sentiment, predicted_score,
		       correct_sentiment, COALESCE(user_id, ''), COALESCE(comments, ''), created_at
		FROM feedback
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []models.FeedbackRecord{}
	for rows.Next() {
		var rec models.FeedbackRecord
		if err := rows.Scan(
			&rec.ID, &rec.PredictionID, &rec.Text, &rec.PredictedSentiment, &rec.PredictedScore,
			&rec.CorrectSentiment, &rec.UserID, &rec.Comments, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feedback: %w", err)
	}

	totalPages := (total + pageSize - 1) / pageSize
	return &models.FeedbackList{
		Items: items,
		Pagination: models.PaginationInfo{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}, nil
}

// AllFeedback returns every feedback record, oldest first, for CSV export.
func (db *DB) AllFeedback(ctx context.Context) ([]models.FeedbackRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, COALESCE(prediction_id, ''), text, predicted_sentiment, predicted_score,
		       correct_sentiment, COALESCE(user_id, ''), COALESCE(comments, ''), created_at
		FROM feedback
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []models.FeedbackRecord{}
	for rows.Next() {
		var rec models.FeedbackRecord
		if err := rows.Scan(
			&rec.ID, &rec.PredictionID, &rec.Text, &rec.PredictedSentiment, &rec.PredictedScore,
			&rec.CorrectSentiment, &rec.UserID, &rec.Comments, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feedback: %w", err)
	}

	return items, nil
}

// FeedbackForPredictions returns the corrected labels feedback recorded for
// the given prediction IDs. Used by judge analysis to compute accuracy
// against human labels.
func (db *DB) FeedbackForPredictions(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT prediction_id, correct_sentiment FROM feedback
		WHERE prediction_id IS NOT NULL AND prediction_id IN (`
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		if i > 0 {
			query += ", "
		}
		query += "?"
		args[i] = id
	}
	query += ")"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback labels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	labels := map[string]string{}
	for rows.Next() {
		var predictionID, correct string
		if err := rows.Scan(&predictionID, &correct); err != nil {
			return nil, fmt.Errorf("failed to scan feedback label: %w", err)
		}
		labels[predictionID] = correct
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feedback labels: %w", err)
	}

	return labels, nil
}
