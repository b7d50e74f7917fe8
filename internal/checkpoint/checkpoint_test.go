// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package checkpoint

import (
	"errors"
	"testing"

	"github.com/sentibr/sentibr/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(config.BadgerConfig{InMemory: true})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestCheckpointRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	cp := &Checkpoint{
		RunID:     "run-1",
		SampleIDs: []string{"a", "b", "c"},
		NextIndex: 2,
		Judged:    2,
		Errors:    0,
	}
	if err := store.Save(cp); err != nil {
		t.Fatalf("failed to save checkpoint: %v", err)
	}

	loaded, err := store.Load("run-1")
	if err != nil {
		t.Fatalf("failed to load checkpoint: %v", err)
	}
	if loaded.NextIndex != 2 {
		t.Errorf("expected next index 2, got %d", loaded.NextIndex)
	}
	if len(loaded.SampleIDs) != 3 {
		t.Errorf("expected 3 sample IDs, got %d", len(loaded.SampleIDs))
	}
	if loaded.UpdatedAt.IsZero() {
		t.Error("expected updated_at to be set")
	}
}

func TestCheckpointNotFound(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	if _, err := store.Load("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPendingRunsTracking(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	pending, err := store.PendingRuns()
	if err != nil {
		t.Fatalf("failed to list pending runs: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending runs, got %v", pending)
	}

	if err := store.Save(&Checkpoint{RunID: "run-7"}); err != nil {
		t.Fatalf("failed to save checkpoint: %v", err)
	}

	pending, err = store.PendingRuns()
	if err != nil {
		t.Fatalf("failed to list pending runs: %v", err)
	}
	if len(pending) != 1 || pending[0] != "run-7" {
		t.Errorf("expected pending [run-7], got %v", pending)
	}

	if err := store.Clear("run-7"); err != nil {
		t.Fatalf("failed to clear checkpoint: %v", err)
	}
	pending, err = store.PendingRuns()
	if err != nil {
		t.Fatalf("failed to list pending runs: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected no pending runs after clear, got %v", pending)
	}
	if _, err := store.Load("run-7"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected checkpoint deleted, got %v", err)
	}
}

func TestPendingRunsSurviveSiblingClear(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	// An active run and a queued run both have checkpoints; completing
	// one must not orphan the other.
	if err := store.Save(&Checkpoint{RunID: "run-active"}); err != nil {
		t.Fatalf("failed to save checkpoint: %v", err)
	}
	if err := store.Save(&Checkpoint{RunID: "run-queued"}); err != nil {
		t.Fatalf("failed to save checkpoint: %v", err)
	}

	pending, err := store.PendingRuns()
	if err != nil {
		t.Fatalf("failed to list pending runs: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending runs, got %v", pending)
	}

	if err := store.Clear("run-active"); err != nil {
		t.Fatalf("failed to clear checkpoint: %v", err)
	}

	pending, err = store.PendingRuns()
	if err != nil {
		t.Fatalf("failed to list pending runs: %v", err)
	}
	if len(pending) != 1 || pending[0] != "run-queued" {
		t.Errorf("expected pending [run-queued], got %v", pending)
	}
}

func TestJudgedMarkers(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	judged, err := store.IsJudged("pred-1")
	if err != nil {
		t.Fatalf("failed to check judged marker: %v", err)
	}
	if judged {
		t.Error("expected pred-1 to be unjudged")
	}

	if err := store.MarkJudged("pred-1"); err != nil {
		t.Fatalf("failed to mark judged: %v", err)
	}

	judged, err = store.IsJudged("pred-1")
	if err != nil {
		t.Fatalf("failed to check judged marker: %v", err)
	}
	if !judged {
		t.Error("expected pred-1 to be judged")
	}
}
