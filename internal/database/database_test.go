// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sentibr/sentibr/internal/config"
	"github.com/sentibr/sentibr/internal/models"
)

// newTestDB opens a throwaway DuckDB database.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(config.DatabaseConfig{
		Path:                   filepath.Join(t.TempDir(), "test.duckdb"),
		MaxMemory:              "512MB",
		PreserveInsertionOrder: true,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testPrediction(sentiment string) models.PredictionRecord {
	return models.PredictionRecord{
		ID:           uuid.New().String(),
		Text:         "comida muito boa",
		TextLength:   16,
		WordCount:    3,
		Sentiment:    sentiment,
		Confidence:   0.9,
		ProbNegative: 0.05,
		ProbNeutral:  0.05,
		ProbPositive: 0.9,
		ModelVersion: "1.0.0",
		Source:       "model",
		LatencyMS:    12.5,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestInsertAndGetPrediction(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rec := testPrediction(models.SentimentPositive)
	if err := db.InsertPrediction(ctx, &rec); err != nil {
		t.Fatalf("InsertPrediction: %v", err)
	}

	got, err := db.GetPrediction(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetPrediction: %v", err)
	}
	if got.Sentiment != rec.Sentiment || got.Text != rec.Text {
		t.Errorf("got %+v, want %+v", got, rec)
	}

	if _, err := db.GetPrediction(ctx, "missing"); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestInsertPredictionsBatchAndStats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	recs := []models.PredictionRecord{
		testPrediction(models.SentimentPositive),
		testPrediction(models.SentimentPositive),
		testPrediction(models.SentimentNegative),
	}
	if err := db.InsertPredictions(ctx, recs); err != nil {
		t.Fatalf("InsertPredictions: %v", err)
	}

	stats, err := db.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalPredictions != 3 {
		t.Errorf("total = %d, want 3", stats.TotalPredictions)
	}
	if stats.PredictionsBySentiment[models.SentimentPositive] != 2 {
		t.Errorf("positive = %d, want 2", stats.PredictionsBySentiment[models.SentimentPositive])
	}
	if stats.PredictionsBySentiment[models.SentimentNeutral] != 0 {
		t.Errorf("neutral = %d, want 0", stats.PredictionsBySentiment[models.SentimentNeutral])
	}
	if stats.AverageConfidence <= 0 {
		t.Errorf("avg confidence = %v, want > 0", stats.AverageConfidence)
	}
}

func TestGetStatsEmpty(t *testing.T) {
	db := newTestDB(t)

	stats, err := db.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalPredictions != 0 {
		t.Errorf("total = %d, want 0", stats.TotalPredictions)
	}
	if len(stats.PredictionsBySentiment) != 3 {
		t.Errorf("sentiment map should carry all three labels: %v", stats.PredictionsBySentiment)
	}
}

func TestGetTimeline(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	recs := []models.PredictionRecord{
		testPrediction(models.SentimentPositive),
		testPrediction(models.SentimentNegative),
	}
	if err := db.InsertPredictions(ctx, recs); err != nil {
		t.Fatalf("InsertPredictions: %v", err)
	}

	points, err := db.GetTimeline(ctx, 7)
	if err != nil {
		t.Fatalf("GetTimeline: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("points = %d, want 2", len(points))
	}
	today := time.Now().UTC().Format("2006-01-02")
	for _, p := range points {
		if p.Date != today {
			t.Errorf("date = %s, want %s", p.Date, today)
		}
		if p.Count != 1 {
			t.Errorf("count = %d, want 1", p.Count)
		}
	}
}

func TestGetFeatureWindow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rec := testPrediction(models.SentimentPositive)
	if err := db.InsertPrediction(ctx, &rec); err != nil {
		t.Fatalf("InsertPrediction: %v", err)
	}

	now := time.Now().UTC()
	samples, err := db.GetFeatureWindow(ctx, now.Add(-time.Hour), now.Add(time.Hour), 100)
	if err != nil {
		t.Fatalf("GetFeatureWindow: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("samples = %d, want 1", len(samples))
	}
	if samples[0].TextLength != 16 || samples[0].Sentiment != models.SentimentPositive {
		t.Errorf("unexpected sample: %+v", samples[0])
	}

	empty, err := db.GetFeatureWindow(ctx, now.Add(-2*time.Hour), now.Add(-time.Hour), 100)
	if err != nil {
		t.Fatalf("GetFeatureWindow empty: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty window, got %d", len(empty))
	}
}

func TestGetFeatureWindowUncapped(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	recs := make([]models.PredictionRecord, 20)
	for i := range recs {
		recs[i] = testPrediction(models.SentimentPositive)
	}
	if err := db.InsertPredictions(ctx, recs); err != nil {
		t.Fatalf("InsertPredictions: %v", err)
	}

	now := time.Now().UTC()

	// limit <= 0 means the whole window, never an empty result.
	all, err := db.GetFeatureWindow(ctx, now.Add(-time.Hour), now.Add(time.Hour), 0)
	if err != nil {
		t.Fatalf("GetFeatureWindow: %v", err)
	}
	if len(all) != 20 {
		t.Fatalf("uncapped samples = %d, want 20", len(all))
	}

	capped, err := db.GetFeatureWindow(ctx, now.Add(-time.Hour), now.Add(time.Hour), 5)
	if err != nil {
		t.Fatalf("GetFeatureWindow capped: %v", err)
	}
	if len(capped) != 5 {
		t.Errorf("capped samples = %d, want 5", len(capped))
	}
}

func TestFeedbackListPagination(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := models.FeedbackRecord{
			ID:                 uuid.New().String(),
			Text:               fmt.Sprintf("texto %d", i),
			PredictedSentiment: models.SentimentPositive,
			PredictedScore:     0.8,
			CorrectSentiment:   models.SentimentNegative,
			CreatedAt:          time.Now().UTC().Add(time.Duration(i) * time.Second),
		}
		if err := db.InsertFeedback(ctx, &rec); err != nil {
			t.Fatalf("InsertFeedback: %v", err)
		}
	}

	list, err := db.ListFeedback(ctx, 1, 2)
	if err != nil {
		t.Fatalf("ListFeedback: %v", err)
	}
	if len(list.Items) != 2 {
		t.Errorf("items = %d, want 2", len(list.Items))
	}
	if list.Pagination.TotalItems != 5 || list.Pagination.TotalPages != 3 {
		t.Errorf("pagination = %+v", list.Pagination)
	}
	if !list.Pagination.HasNext || list.Pagination.HasPrev {
		t.Errorf("pagination flags = %+v", list.Pagination)
	}

	// Newest first.
	if list.Items[0].Text != "texto 4" {
		t.Errorf("first item = %s, want texto 4", list.Items[0].Text)
	}
}

func TestSamplePredictionsStratified(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// Ten predictions, two of them flagged wrong by feedback.
	var flagged []string
	for i := 0; i < 10; i++ {
		rec := testPrediction(models.SentimentPositive)
		if err := db.InsertPrediction(ctx, &rec); err != nil {
			t.Fatalf("InsertPrediction: %v", err)
		}
		if i < 2 {
			flagged = append(flagged, rec.ID)
			fb := models.FeedbackRecord{
				ID:                 uuid.New().String(),
				PredictionID:       rec.ID,
				Text:               rec.Text,
				PredictedSentiment: rec.Sentiment,
				PredictedScore:     rec.Confidence,
				CorrectSentiment:   models.SentimentNegative,
				CreatedAt:          time.Now().UTC(),
			}
			if err := db.InsertFeedback(ctx, &fb); err != nil {
				t.Fatalf("InsertFeedback: %v", err)
			}
		}
	}

	sample, err := db.SamplePredictions(ctx, 6)
	if err != nil {
		t.Fatalf("SamplePredictions: %v", err)
	}
	if len(sample) != 6 {
		t.Fatalf("sample = %d, want 6", len(sample))
	}

	flaggedSet := map[string]bool{}
	for _, id := range flagged {
		flaggedSet[id] = true
	}
	var flaggedCount int
	seen := map[string]bool{}
	for _, rec := range sample {
		if seen[rec.ID] {
			t.Errorf("duplicate prediction in sample: %s", rec.ID)
		}
		seen[rec.ID] = true
		if flaggedSet[rec.ID] {
			flaggedCount++
		}
	}
	// Both flagged predictions fit in the half reserved for them.
	if flaggedCount != 2 {
		t.Errorf("flagged in sample = %d, want 2", flaggedCount)
	}
}

func TestJudgeRunLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	run := &models.JudgeRun{
		ID:         uuid.New().String(),
		Status:     models.JudgeRunPending,
		Provider:   "openai",
		Model:      "gpt-4o-mini",
		SampleSize: 10,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.InsertJudgeRun(ctx, run); err != nil {
		t.Fatalf("InsertJudgeRun: %v", err)
	}

	if err := db.MarkJudgeRunRunning(ctx, run.ID, time.Now().UTC()); err != nil {
		t.Fatalf("MarkJudgeRunRunning: %v", err)
	}

	verdict := &models.JudgeVerdict{
		ID:             uuid.New().String(),
		RunID:          run.ID,
		PredictionID:   uuid.New().String(),
		Text:           "pedido veio errado",
		ModelSentiment: models.SentimentNeutral,
		ModelScore:     0.55,
		RealSentiment:  models.SentimentNegative,
		ModelCorrect:   false,
		ShouldBe:       models.SentimentNegative,
		AgreementLevel: 2,
		Justification:  "texto claramente negativo",
		InputTokens:    120,
		OutputTokens:   45,
		LatencyMS:      850,
		CreatedAt:      time.Now().UTC(),
	}
	if err := db.InsertJudgeVerdict(ctx, verdict); err != nil {
		t.Fatalf("InsertJudgeVerdict: %v", err)
	}

	analysis := &models.JudgeAnalysis{
		SampleSize:       10,
		Judged:           1,
		AgreementRate:    0,
		DisagreementRate: 1,
	}
	if err := db.CompleteJudgeRun(ctx, run.ID, analysis, time.Now().UTC()); err != nil {
		t.Fatalf("CompleteJudgeRun: %v", err)
	}

	got, err := db.GetJudgeRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetJudgeRun: %v", err)
	}
	if got.Status != models.JudgeRunCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
	if got.Analysis == nil || got.Analysis.Judged != 1 {
		t.Errorf("analysis = %+v", got.Analysis)
	}
	if got.StartedAt == nil || got.CompletedAt == nil {
		t.Error("timestamps should be set")
	}

	disagreements, err := db.ListJudgeDisagreements(ctx, run.ID)
	if err != nil {
		t.Fatalf("ListJudgeDisagreements: %v", err)
	}
	if len(disagreements) != 1 {
		t.Fatalf("disagreements = %d, want 1", len(disagreements))
	}
	if disagreements[0].ShouldBe != models.SentimentNegative {
		t.Errorf("should_be = %s", disagreements[0].ShouldBe)
	}
}

func TestJudgeRunFailure(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	run := &models.JudgeRun{
		ID:         uuid.New().String(),
		Status:     models.JudgeRunPending,
		Provider:   "anthropic",
		Model:      "claude-sonnet-4-5",
		SampleSize: 5,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.InsertJudgeRun(ctx, run); err != nil {
		t.Fatalf("InsertJudgeRun: %v", err)
	}
	if err := db.FailJudgeRun(ctx, run.ID, "no predictions to sample", time.Now().UTC()); err != nil {
		t.Fatalf("FailJudgeRun: %v", err)
	}

	got, err := db.GetJudgeRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetJudgeRun: %v", err)
	}
	if got.Status != models.JudgeRunFailed || got.FailReason == "" {
		t.Errorf("run = %+v", got)
	}
}

func TestDriftReportRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.GetLatestDriftReport(ctx); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	report := &models.DriftReport{
		ID:           uuid.New().String(),
		OverallScore: 0.18,
		Severity:     models.DriftSeverityWarning,
		Features: []models.FeatureDrift{
			{Feature: "text_length", Type: "numeric", Score: 0.2, PValue: 0.01, Significant: true},
			{Feature: "sentiment", Type: "categorical", Score: 0.16, PValue: 0.04, Significant: true},
		},
		BaselineSize: 1000,
		WindowSize:   200,
		WindowStart:  time.Now().UTC().Add(-24 * time.Hour),
		WindowEnd:    time.Now().UTC(),
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.SaveDriftReport(ctx, report); err != nil {
		t.Fatalf("SaveDriftReport: %v", err)
	}

	got, err := db.GetLatestDriftReport(ctx)
	if err != nil {
		t.Fatalf("GetLatestDriftReport: %v", err)
	}
	if got.Severity != models.DriftSeverityWarning || len(got.Features) != 2 {
		t.Errorf("report = %+v", got)
	}
}

func TestDriftBaselineReplace(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, _, err := db.GetDriftBaseline(ctx); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	if err := db.SaveDriftBaseline(ctx, []byte(`{"v":1}`), 100, time.Now().UTC()); err != nil {
		t.Fatalf("SaveDriftBaseline: %v", err)
	}
	if err := db.SaveDriftBaseline(ctx, []byte(`{"v":2}`), 200, time.Now().UTC()); err != nil {
		t.Fatalf("SaveDriftBaseline replace: %v", err)
	}

	payload, _, err := db.GetDriftBaseline(ctx)
	if err != nil {
		t.Fatalf("GetDriftBaseline: %v", err)
	}
	if string(payload) != `{"v":2}` {
		t.Errorf("payload = %s, want v2", payload)
	}
}
