// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

// Package metrics defines the Prometheus instrumentation for SentiBR.
// All collectors are registered with the default registry via promauto
// and exposed on /metrics through promhttp.
package metrics

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APIRequestsTotal counts HTTP requests by method, endpoint and status code.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentibr_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	// APIRequestDuration observes request latency by method and endpoint.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentibr_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// APIActiveRequests tracks in-flight HTTP requests.
	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentibr_api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)

	// PredictionsTotal counts classifications by sentiment and backend source.
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentibr_predictions_total",
			Help: "Total predictions by sentiment label and classifier source",
		},
		[]string{"sentiment", "source"},
	)

	// PredictionErrors counts failed classification attempts.
	PredictionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentibr_prediction_errors_total",
			Help: "Total failed classification attempts",
		},
	)

	// PredictionConfidence observes the confidence of returned predictions.
	PredictionConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentibr_prediction_confidence",
			Help:    "Confidence score distribution of predictions",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 0.99},
		},
	)

	// InferenceDuration observes classifier latency by source.
	InferenceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentibr_inference_duration_seconds",
			Help:    "Classifier inference duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"source"},
	)

	// CircuitBreakerState reports breaker state (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sentibr_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// CircuitBreakerRequests counts breaker-wrapped calls by result.
	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentibr_circuit_breaker_requests_total",
			Help: "Circuit breaker requests by result (success, failure, rejected)",
		},
		[]string{"name", "result"},
	)

	// CircuitBreakerTransitions counts state changes.
	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentibr_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// JudgeTokensTotal counts LLM tokens by run and direction.
	JudgeTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentibr_judge_tokens_total",
			Help: "LLM tokens consumed by judge runs",
		},
		[]string{"provider", "direction"},
	)

	// JudgeCostUSD accumulates estimated judge spend.
	JudgeCostUSD = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentibr_judge_cost_usd_total",
			Help: "Estimated cumulative judge cost in USD",
		},
	)

	// JudgeVerdictsTotal counts verdicts by outcome.
	JudgeVerdictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentibr_judge_verdicts_total",
			Help: "Judge verdicts by outcome (agree, disagree, error)",
		},
		[]string{"outcome"},
	)

	// DriftScore reports the latest overall drift score.
	DriftScore = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentibr_drift_score",
			Help: "Latest overall drift score against the baseline",
		},
	)

	// DriftFeatureScore reports the latest per-feature drift score.
	DriftFeatureScore = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sentibr_drift_feature_score",
			Help: "Latest per-feature drift score",
		},
		[]string{"feature"},
	)

	// WSConnections tracks connected WebSocket clients.
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentibr_websocket_connections",
			Help: "Number of connected WebSocket clients",
		},
	)

	// WSMessagesSent counts broadcast messages delivered to clients.
	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentibr_websocket_messages_sent_total",
			Help: "Total WebSocket messages sent to clients",
		},
	)

	// FeedbackTotal counts stored feedback records by correctness.
	FeedbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentibr_feedback_total",
			Help: "Feedback records by whether the prediction was correct",
		},
		[]string{"correct"},
	)

	// AppInfo carries static build metadata.
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sentibr_app_info",
			Help: "Application build information",
		},
		[]string{"version", "go_version"},
	)

	// AppUptime reports seconds since process start.
	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentibr_app_uptime_seconds",
			Help: "Seconds since process start",
		},
	)
)

var startTime = time.Now()

// In-process counters backing the stats endpoint's error rate. Prometheus
// counters cannot be read back cheaply, so the rate is tracked alongside.
var (
	predictionAttempts atomic.Int64
	predictionFailures atomic.Int64
)

// RecordAPIRequest records one completed HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordPrediction records a successful classification.
func RecordPrediction(sentiment, source string, confidence float64, duration time.Duration) {
	predictionAttempts.Add(1)
	PredictionsTotal.WithLabelValues(sentiment, source).Inc()
	PredictionConfidence.Observe(confidence)
	InferenceDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordPredictionError records a failed classification attempt.
func RecordPredictionError() {
	predictionAttempts.Add(1)
	predictionFailures.Add(1)
	PredictionErrors.Inc()
}

// PredictionErrorRate returns the fraction of classification attempts that
// failed since process start.
func PredictionErrorRate() float64 {
	attempts := predictionAttempts.Load()
	if attempts == 0 {
		return 0
	}
	return float64(predictionFailures.Load()) / float64(attempts)
}

// RecordJudgeUsage records token usage for one judge call.
func RecordJudgeUsage(provider string, inputTokens, outputTokens int64, costUSD float64) {
	JudgeTokensTotal.WithLabelValues(provider, "input").Add(float64(inputTokens))
	JudgeTokensTotal.WithLabelValues(provider, "output").Add(float64(outputTokens))
	JudgeCostUSD.Add(costUSD)
}

// SetAppInfo publishes static build metadata and starts uptime tracking.
// Call once from main.
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			AppUptime.Set(time.Since(startTime).Seconds())
		}
	}()
}

// Uptime returns the time since process start.
func Uptime() time.Duration {
	return time.Since(startTime)
}
