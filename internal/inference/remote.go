// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package inference

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/sentibr/sentibr/internal/logging"
	"github.com/sentibr/sentibr/internal/metrics"
)

// ErrBackendUnavailable is returned when the model server cannot serve the
// request, including when the circuit breaker is open. Callers fall back to
// the lexicon classifier.
var ErrBackendUnavailable = errors.New("model backend unavailable")

// breakerName labels the model-server breaker in metrics.
const breakerName = "model_server"

// RemoteClassifier calls the external model server over HTTP. All calls go
// through a circuit breaker so a dead backend fails fast instead of tying up
// request handlers.
type RemoteClassifier struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[interface{}]
}

// NewRemoteClassifier creates a classifier for the model server at baseURL.
func NewRemoteClassifier(baseURL string, timeout time.Duration) *RemoteClassifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	rc := &RemoteClassifier{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}

	settings := gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := counts.Requests >= 10 && failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().
					Str("breaker", breakerName).
					Uint32("requests", counts.Requests).
					Float64("failure_ratio", failureRatio).
					Msg("Circuit breaker tripping")
			}

			return shouldTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()

			logging.Info().
				Str("breaker", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("Circuit breaker state changed")
		},
	}

	rc.breaker = gobreaker.NewCircuitBreaker[interface{}](settings)
	return rc
}

// modelPredictRequest is the model server wire request.
type modelPredictRequest struct {
	Text string `json:"text"`
}

type modelBatchRequest struct {
	Texts []string `json:"texts"`
}

// modelPredictResponse is the model server wire response.
type modelPredictResponse struct {
	Sentiment     string             `json:"sentiment"`
	Score         float64            `json:"score"`
	Probabilities map[string]float64 `json:"probabilities"`
}

type modelBatchResponse struct {
	Results []modelPredictResponse `json:"results"`
}

// Classify implements Classifier.
func (c *RemoteClassifier) Classify(ctx context.Context, text string) (Prediction, error) {
	result, err := c.execute(func() (interface{}, error) {
		var resp modelPredictResponse
		if err := c.post(ctx, "/predict", modelPredictRequest{Text: text}, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
	if err != nil {
		return Prediction{}, err
	}

	resp, err := castResult[modelPredictResponse](result)
	if err != nil {
		return Prediction{}, err
	}

	return fromWire(*resp), nil
}

// ClassifyBatch implements Classifier.
func (c *RemoteClassifier) ClassifyBatch(ctx context.Context, texts []string) ([]Prediction, error) {
	result, err := c.execute(func() (interface{}, error) {
		var resp modelBatchResponse
		if err := c.post(ctx, "/predict/batch", modelBatchRequest{Texts: texts}, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
	if err != nil {
		return nil, err
	}

	resp, err := castResult[modelBatchResponse](result)
	if err != nil {
		return nil, err
	}

	if len(resp.Results) != len(texts) {
		return nil, fmt.Errorf("model server returned %d results for %d texts", len(resp.Results), len(texts))
	}

	predictions := make([]Prediction, len(resp.Results))
	for i, r := range resp.Results {
		predictions[i] = fromWire(r)
	}
	return predictions, nil
}

// Healthy reports whether the breaker currently admits requests.
func (c *RemoteClassifier) Healthy() bool {
	return c.breaker.State() != gobreaker.StateOpen
}

// execute runs fn through the circuit breaker and normalizes breaker errors.
func (c *RemoteClassifier) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := c.breaker.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	return result, nil
}

// post sends a JSON request to the model server and decodes the response.
func (c *RemoteClassifier) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("model server request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// Drain a little of the body for the error message.
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("model server returned %d: %s", resp.StatusCode, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode model server response: %w", err)
	}

	return nil
}

// fromWire converts a model server response to a Prediction.
func fromWire(r modelPredictResponse) Prediction {
	return Prediction{
		Sentiment:     r.Sentiment,
		Confidence:    r.Score,
		Probabilities: r.Probabilities,
		Source:        SourceModel,
	}
}

// stateToFloat maps breaker states to the gauge encoding (0=closed, 1=half-open, 2=open).
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString maps breaker states to label values.
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// castResult safely casts a breaker result to the expected type.
func castResult[T any](result interface{}) (*T, error) {
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %T", result)
	}
	return typed, nil
}
