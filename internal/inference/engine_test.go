// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package inference

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/sentibr/sentibr/internal/models"
)

// newModelServer fakes the external model server.
func newModelServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(modelPredictResponse{
			Sentiment: models.SentimentPositive,
			Score:     0.97,
			Probabilities: map[string]float64{
				models.SentimentNegative: 0.01,
				models.SentimentNeutral:  0.02,
				models.SentimentPositive: 0.97,
			},
		})
	})
	mux.HandleFunc("/predict/batch", func(w http.ResponseWriter, r *http.Request) {
		var req modelBatchRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		resp := modelBatchResponse{Results: make([]modelPredictResponse, len(req.Texts))}
		for i := range req.Texts {
			resp.Results[i] = modelPredictResponse{
				Sentiment:     models.SentimentNeutral,
				Score:         0.6,
				Probabilities: map[string]float64{models.SentimentNeutral: 0.6},
			}
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	return httptest.NewServer(mux)
}

func TestEngineUsesRemoteBackend(t *testing.T) {
	t.Parallel()

	srv := newModelServer(t)
	defer srv.Close()

	remote := NewRemoteClassifier(srv.URL, 5*time.Second)
	engine := NewEngine(remote, NewLexiconClassifier(), "1.0.0")

	resp, record, err := engine.Classify(context.Background(), "comida chegou fria")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	// The fake model always says positive; the lexicon would say negative.
	if resp.Sentiment != models.SentimentPositive {
		t.Errorf("sentiment = %s, want remote positive", resp.Sentiment)
	}
	if resp.ModelVersion != "1.0.0" {
		t.Errorf("model version = %s, want 1.0.0", resp.ModelVersion)
	}
	if record.Source != SourceModel {
		t.Errorf("record source = %s, want model", record.Source)
	}
	if record.WordCount != 3 {
		t.Errorf("word count = %d, want 3", record.WordCount)
	}
}

func TestEngineFallsBackToLexicon(t *testing.T) {
	t.Parallel()

	// Point the remote at a closed server.
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	remote := NewRemoteClassifier(srv.URL, time.Second)
	engine := NewEngine(remote, NewLexiconClassifier(), "1.0.0")

	resp, record, err := engine.Classify(context.Background(), "entrega péssima e atrasada")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if resp.Sentiment != models.SentimentNegative {
		t.Errorf("sentiment = %s, want lexicon negative", resp.Sentiment)
	}
	if record.Source != SourceLexicon {
		t.Errorf("record source = %s, want lexicon", record.Source)
	}
	if !strings.HasPrefix(resp.ModelVersion, "lexicon-") {
		t.Errorf("model version = %s, want lexicon- prefix", resp.ModelVersion)
	}
}

func TestEngineLexiconOnlyMode(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil, NewLexiconClassifier(), "1.0.0")

	if engine.Backend() != SourceLexicon {
		t.Errorf("backend = %s, want lexicon", engine.Backend())
	}

	resp, _, err := engine.Classify(context.Background(), "recomendo demais, tudo ótimo")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if resp.Sentiment != models.SentimentPositive {
		t.Errorf("sentiment = %s, want positive", resp.Sentiment)
	}
}

func TestEngineRejectsEmptyText(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil, NewLexiconClassifier(), "1.0.0")

	if _, _, err := engine.Classify(context.Background(), "   "); err != ErrEmptyText {
		t.Errorf("err = %v, want ErrEmptyText", err)
	}
}

func TestTruncateTextKeepsRunesWhole(t *testing.T) {
	t.Parallel()

	// "não" is 4 bytes; cutting at 3 would land inside the two-byte "ã".
	if got := truncateText("não", 3); got != "n" {
		t.Errorf("truncateText(não, 3) = %q, want %q", got, "n")
	}
	if got := truncateText("café", 10); got != "café" {
		t.Errorf("truncateText(café, 10) = %q, want unchanged", got)
	}

	long := strings.Repeat("péssimo ", 1000)
	got := truncateText(long, models.MaxTextLength)
	if len(got) > models.MaxTextLength {
		t.Errorf("truncated length = %d, want <= %d", len(got), models.MaxTextLength)
	}
	if !utf8.ValidString(got) {
		t.Error("truncation split a multi-byte rune")
	}
}

func TestEngineBatchLimits(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil, NewLexiconClassifier(), "1.0.0")

	big := make([]string, models.MaxBatchSize+1)
	for i := range big {
		big[i] = "texto"
	}
	if _, _, err := engine.ClassifyBatch(context.Background(), big); err != ErrBatchTooLarge {
		t.Errorf("err = %v, want ErrBatchTooLarge", err)
	}

	if _, _, err := engine.ClassifyBatch(context.Background(), nil); err != ErrEmptyText {
		t.Errorf("err = %v, want ErrEmptyText", err)
	}
}

func TestEngineBatchRecordsMatchTexts(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil, NewLexiconClassifier(), "1.0.0")
	texts := []string{"muito bom", "muito ruim"}

	resp, records, err := engine.ClassifyBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("ClassifyBatch: %v", err)
	}
	if resp.Count != 2 || len(records) != 2 {
		t.Fatalf("count = %d, records = %d, want 2/2", resp.Count, len(records))
	}
	for i, rec := range records {
		if rec.Text != texts[i] {
			t.Errorf("records[%d].Text = %q, want %q", i, rec.Text, texts[i])
		}
		if rec.ID == "" {
			t.Errorf("records[%d] missing ID", i)
		}
	}
}

func TestEngineBatchUsesRemote(t *testing.T) {
	t.Parallel()

	srv := newModelServer(t)
	defer srv.Close()

	remote := NewRemoteClassifier(srv.URL, 5*time.Second)
	engine := NewEngine(remote, NewLexiconClassifier(), "2.0.0")

	resp, _, err := engine.ClassifyBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("ClassifyBatch: %v", err)
	}
	if resp.Count != 3 {
		t.Fatalf("count = %d, want 3", resp.Count)
	}
	for _, r := range resp.Results {
		if r.Sentiment != models.SentimentNeutral {
			t.Errorf("sentiment = %s, want neutral from fake model", r.Sentiment)
		}
	}
}
