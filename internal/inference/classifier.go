// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

// Package inference classifies Portuguese review text into sentiment labels.
// Two backends exist: a remote model server (RemoteClassifier) and a local
// lexicon scorer (LexiconClassifier). The Engine composes them, falling back
// to the lexicon when the remote backend is unavailable.
package inference

import "context"

// Classifier sources, reported in responses and metrics.
const (
	SourceModel   = "model"
	SourceLexicon = "lexicon"
)

// Prediction is a raw classifier result before it is shaped into an API
// response or a stored record.
type Prediction struct {
	Sentiment     string
	Confidence    float64
	Probabilities map[string]float64
	Source        string
}

// Classifier labels review text.
type Classifier interface {
	// Classify labels a single text.
	Classify(ctx context.Context, text string) (Prediction, error)

	// ClassifyBatch labels texts in order. Implementations return one
	// prediction per input text or an error for the whole batch.
	ClassifyBatch(ctx context.Context, texts []string) ([]Prediction, error)
}
