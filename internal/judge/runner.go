// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package judge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/sentibr/sentibr/internal/checkpoint"
	"github.com/sentibr/sentibr/internal/config"
	"github.com/sentibr/sentibr/internal/database"
	"github.com/sentibr/sentibr/internal/logging"
	"github.com/sentibr/sentibr/internal/metrics"
	"github.com/sentibr/sentibr/internal/models"
)

// Runner errors.
var (
	ErrNoPredictions = errors.New("no predictions available to sample")
	ErrQueueFull     = errors.New("judge run queue is full")
)

// queueSize bounds how many runs may wait behind the active one.
const queueSize = 4

// progressEvery controls how often progress is flushed to DuckDB and the
// checkpoint store while a run executes.
const progressEvery = 5

// Runner executes judge runs one at a time. It samples predictions,
// queries the LLM under a rate limit, checkpoints after every verdict and
// stores the final analysis.
type Runner struct {
	db      *database.DB
	store   *checkpoint.Store
	client  Client
	cfg     config.JudgeConfig
	limiter *rate.Limiter
	queue   chan string
}

// NewRunner builds a runner with the provider client selected by cfg.
func NewRunner(db *database.DB, store *checkpoint.Store, cfg config.JudgeConfig) (*Runner, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewRunnerWithClient(db, store, cfg, client), nil
}

// NewRunnerWithClient builds a runner around an explicit client. Used in
// tests with a fake backend.
func NewRunnerWithClient(db *database.DB, store *checkpoint.Store, cfg config.JudgeConfig, client Client) *Runner {
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 2
	}
	return &Runner{
		db:      db,
		store:   store,
		client:  client,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		queue:   make(chan string, queueSize),
	}
}

// StartRun creates a pending run, checkpoints its sample and enqueues it
// for the worker loop.
func (r *Runner) StartRun(ctx context.Context, req models.JudgeRunRequest) (*models.JudgeRun, error) {
	sampleSize := req.SampleSize
	if sampleSize <= 0 {
		sampleSize = r.cfg.SampleSize
	}

	samples, err := r.db.SamplePredictions(ctx, sampleSize)
	if err != nil {
		return nil, fmt.Errorf("failed to sample predictions: %w", err)
	}

	// Predictions judged by an earlier run are skipped so tokens are
	// never spent twice on the same text.
	ids := make([]string, 0, len(samples))
	for _, s := range samples {
		judged, err := r.store.IsJudged(s.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check judged marker: %w", err)
		}
		if judged {
			continue
		}
		ids = append(ids, s.ID)
	}
	if len(ids) == 0 {
		return nil, ErrNoPredictions
	}

	provider := r.client.Provider()
	model := r.client.Model()
	if req.Provider != "" && req.Provider != provider {
		return nil, fmt.Errorf("runner is configured for provider %s, requested %s", provider, req.Provider)
	}
	if req.Model != "" {
		model = req.Model
	}

	run := &models.JudgeRun{
		ID:         uuid.New().String(),
		Status:     models.JudgeRunPending,
		Provider:   provider,
		Model:      model,
		SampleSize: len(ids),
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.db.InsertJudgeRun(ctx, run); err != nil {
		return nil, err
	}

	if err := r.store.Save(&checkpoint.Checkpoint{RunID: run.ID, SampleIDs: ids}); err != nil {
		return nil, fmt.Errorf("failed to checkpoint run: %w", err)
	}

	select {
	case r.queue <- run.ID:
	default:
		now := time.Now().UTC()
		_ = r.db.FailJudgeRun(ctx, run.ID, ErrQueueFull.Error(), now)
		_ = r.store.Clear(run.ID)
		return nil, ErrQueueFull
	}

	return run, nil
}

// Serve is the worker loop. It first resumes every run with a surviving
// checkpoint (the active run plus anything queued before a restart), then
// drains the queue until the context ends. Suture-compatible.
func (r *Runner) Serve(ctx context.Context) error {
	log := logging.WithComponent("judge")

	if pending, err := r.store.PendingRuns(); err != nil {
		log.Warn().Err(err).Msg("Failed to check for interrupted judge runs")
	} else {
		for _, runID := range pending {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Info().Str("run_id", runID).Msg("Resuming interrupted judge run")
			r.executeRun(ctx, runID)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case runID := <-r.queue:
			r.executeRun(ctx, runID)
		}
	}
}

// String names the service in supervisor logs.
func (r *Runner) String() string { return "judge-runner" }

// executeRun drives one run from its checkpoint to completion. A context
// cancellation leaves the checkpoint in place so the run resumes on the
// next start; any other failure marks the run failed.
func (r *Runner) executeRun(ctx context.Context, runID string) {
	log := logging.WithComponent("judge")

	cp, err := r.store.Load(runID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		// Already finished by the resume pass, the queue entry is stale.
		log.Debug().Str("run_id", runID).Msg("No checkpoint for run, skipping")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("run_id", runID).Msg("Failed to load run checkpoint")
		return
	}

	if cp.NextIndex == 0 {
		if err := r.db.MarkJudgeRunRunning(ctx, runID, time.Now().UTC()); err != nil {
			log.Error().Err(err).Str("run_id", runID).Msg("Failed to mark run running")
			return
		}
	}

	log.Info().
		Str("run_id", runID).
		Str("provider", r.client.Provider()).
		Str("model", r.client.Model()).
		Int("sample_size", len(cp.SampleIDs)).
		Int("resume_index", cp.NextIndex).
		Msg("Judge run started")

	for i := cp.NextIndex; i < len(cp.SampleIDs); i++ {
		if err := r.limiter.Wait(ctx); err != nil {
			log.Info().Str("run_id", runID).Int("judged", cp.Judged).Msg("Judge run interrupted, checkpoint kept")
			return
		}

		verdict := r.judgeSample(ctx, runID, cp.SampleIDs[i])
		if err := r.db.InsertJudgeVerdict(ctx, verdict); err != nil {
			r.failRun(ctx, runID, fmt.Sprintf("failed to store verdict: %v", err))
			return
		}
		_ = r.store.MarkJudged(verdict.PredictionID)

		if verdict.Error != "" {
			cp.Errors++
			metrics.JudgeVerdictsTotal.WithLabelValues("error").Inc()
		} else {
			cp.Judged++
			outcome := "agree"
			if !verdict.ModelCorrect {
				outcome = "disagree"
			}
			metrics.JudgeVerdictsTotal.WithLabelValues(outcome).Inc()
			cost := EstimateCost(r.client.Model(), verdict.InputTokens, verdict.OutputTokens)
			metrics.RecordJudgeUsage(r.client.Provider(), verdict.InputTokens, verdict.OutputTokens, cost)
		}

		cp.NextIndex = i + 1
		if err := r.store.Save(cp); err != nil {
			r.failRun(ctx, runID, fmt.Sprintf("failed to save checkpoint: %v", err))
			return
		}
		if cp.NextIndex%progressEvery == 0 {
			_ = r.db.UpdateJudgeRunProgress(ctx, runID, cp.Judged, cp.Errors)
		}
	}

	r.completeRun(ctx, runID, cp)
}

// judgeSample evaluates one prediction, retrying transient failures. The
// result is always a verdict; unrecoverable failures become error verdicts
// so a bad sample never aborts the run.
func (r *Runner) judgeSample(ctx context.Context, runID, predictionID string) *models.JudgeVerdict {
	verdict := &models.JudgeVerdict{
		ID:           uuid.New().String(),
		RunID:        runID,
		PredictionID: predictionID,
		CreatedAt:    time.Now().UTC(),
	}

	pred, err := r.db.GetPrediction(ctx, predictionID)
	if err != nil {
		verdict.Error = fmt.Sprintf("failed to load prediction: %v", err)
		return verdict
	}
	verdict.Text = pred.Text
	verdict.ModelSentiment = pred.Sentiment
	verdict.ModelScore = pred.Confidence

	attempts := r.cfg.MaxAttempts
	if attempts < 1 {
		attempts = 3
	}

	userPrompt := buildJudgePrompt(pred.Text, pred.Sentiment, pred.Confidence)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := r.limiter.Wait(ctx); err != nil {
				lastErr = err
				break
			}
		}

		start := time.Now()
		raw, usage, err := r.client.Complete(ctx, judgeSystemPrompt, userPrompt)
		verdict.LatencyMS += float64(time.Since(start).Microseconds()) / 1000
		verdict.InputTokens += usage.InputTokens
		verdict.OutputTokens += usage.OutputTokens

		if err != nil {
			lastErr = err
			logging.Ctx(ctx).Warn().
				Err(err).
				Str("run_id", runID).
				Int("attempt", attempt).
				Msg("Judge call failed")
			continue
		}

		payload, err := parseVerdict(raw)
		if err != nil {
			lastErr = err
			logging.Ctx(ctx).Warn().
				Err(err).
				Str("run_id", runID).
				Int("attempt", attempt).
				Msg("Judge reply unparsable")
			continue
		}

		verdict.RealSentiment = payload.RealSentiment
		verdict.ModelCorrect = payload.ModelCorrect
		verdict.ShouldBe = payload.ShouldBe
		verdict.AgreementLevel = payload.AgreementLevel
		verdict.Justification = payload.Justification
		return verdict
	}

	verdict.Error = fmt.Sprintf("judge failed after %d attempts: %v", attempts, lastErr)
	return verdict
}

// completeRun aggregates verdicts into the final analysis.
func (r *Runner) completeRun(ctx context.Context, runID string, cp *checkpoint.Checkpoint) {
	log := logging.WithComponent("judge")

	verdicts, err := r.db.ListJudgeVerdicts(ctx, runID)
	if err != nil {
		r.failRun(ctx, runID, fmt.Sprintf("failed to load verdicts: %v", err))
		return
	}

	feedbackLabels, err := r.db.FeedbackForPredictions(ctx, cp.SampleIDs)
	if err != nil {
		log.Warn().Err(err).Str("run_id", runID).Msg("Failed to load feedback labels, analysis proceeds without them")
		feedbackLabels = map[string]string{}
	}

	analysis := Analyze(r.client.Model(), len(cp.SampleIDs), verdicts, feedbackLabels)
	if err := r.db.CompleteJudgeRun(ctx, runID, analysis, time.Now().UTC()); err != nil {
		r.failRun(ctx, runID, fmt.Sprintf("failed to store analysis: %v", err))
		return
	}
	if err := r.store.Clear(runID); err != nil {
		log.Warn().Err(err).Str("run_id", runID).Msg("Failed to clear run checkpoint")
	}

	log.Info().
		Str("run_id", runID).
		Int("judged", analysis.Judged).
		Int("errors", analysis.Errors).
		Float64("agreement_rate", analysis.AgreementRate).
		Float64("cost_usd", analysis.EstimatedCostUSD).
		Msg("Judge run completed")
}

// failRun marks a run failed and drops its checkpoint.
func (r *Runner) failRun(ctx context.Context, runID, reason string) {
	log := logging.WithComponent("judge")
	log.Error().Str("run_id", runID).Str("reason", reason).Msg("Judge run failed")
	if err := r.db.FailJudgeRun(ctx, runID, reason, time.Now().UTC()); err != nil {
		log.Error().Err(err).Str("run_id", runID).Msg("Failed to mark run failed")
	}
	_ = r.store.Clear(runID)
}

// CompareText classifies a text with the LLM for the live compare
// endpoint. The model result is supplied by the caller.
func (r *Runner) CompareText(ctx context.Context, text string, modelResult *models.PredictResponse) (*models.CompareResponse, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	raw, usage, err := r.client.Complete(ctx, compareSystemPrompt, buildComparePrompt(text))
	if err != nil {
		return nil, fmt.Errorf("compare call failed: %w", err)
	}

	cost := EstimateCost(r.client.Model(), usage.InputTokens, usage.OutputTokens)
	metrics.RecordJudgeUsage(r.client.Provider(), usage.InputTokens, usage.OutputTokens, cost)

	payload, err := parseCompare(raw)
	if err != nil {
		return nil, err
	}

	return &models.CompareResponse{
		Text:          text,
		Model:         *modelResult,
		LLMSentiment:  payload.Sentiment,
		Justification: payload.Justification,
		Agreement:     payload.Sentiment == modelResult.Sentiment,
	}, nil
}
