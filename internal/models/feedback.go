// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package models

import "time"

// FeedbackRequest is the body of POST /api/v1/feedback. A user reports
// what the model predicted and what the label should have been.
type FeedbackRequest struct {
	Text               string  `json:"text" validate:"required,min=1,max=5000"`
	PredictionID       string  `json:"prediction_id,omitempty" validate:"omitempty,uuid4"`
	PredictedSentiment string  `json:"predicted_sentiment" validate:"required,sentiment"`
	PredictedScore     float64 `json:"predicted_score" validate:"gte=0,lte=1"`
	CorrectSentiment   string  `json:"correct_sentiment" validate:"required,sentiment"`
	UserID             string  `json:"user_id,omitempty" validate:"omitempty,max=64"`
	Comments           string  `json:"comments,omitempty" validate:"omitempty,max=1000"`
}

// FeedbackResponse acknowledges a stored feedback record.
type FeedbackResponse struct {
	Status     string `json:"status"`
	FeedbackID string `json:"feedback_id"`
	Message    string `json:"message"`
}

// FeedbackRecord is a stored feedback row.
type FeedbackRecord struct {
	ID                 string    `json:"id"`
	PredictionID       string    `json:"prediction_id,omitempty"`
	Text               string    `json:"text"`
	PredictedSentiment string    `json:"predicted_sentiment"`
	PredictedScore     float64   `json:"predicted_score"`
	CorrectSentiment   string    `json:"correct_sentiment"`
	UserID             string    `json:"user_id,omitempty"`
	Comments           string    `json:"comments,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// FeedbackList is a paged feedback listing.
type FeedbackList struct {
	Items      []FeedbackRecord `json:"items"`
	Pagination PaginationInfo   `json:"pagination"`
}
