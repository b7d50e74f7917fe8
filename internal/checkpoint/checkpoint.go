// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

// Package checkpoint persists judge-run progress in BadgerDB so an
// interrupted run resumes where it stopped instead of re-spending LLM
// tokens on already-judged samples.
package checkpoint

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/sentibr/sentibr/internal/config"
)

// Key prefixes for BadgerDB storage.
const (
	checkpointKeyPrefix = "judge_checkpoint:"
	judgedKeyPrefix     = "judged:"
)

// ErrNotFound is returned when a checkpoint or key does not exist.
var ErrNotFound = errors.New("checkpoint not found")

// Checkpoint is the resumable state of one judge run.
type Checkpoint struct {
	RunID     string    `json:"run_id"`
	SampleIDs []string  `json:"sample_ids"`
	NextIndex int       `json:"next_index"`
	Judged    int       `json:"judged"`
	Errors    int       `json:"errors"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the BadgerDB-backed checkpoint store.
type Store struct {
	db *badger.DB
}

// Open opens the store at cfg.Path, or in memory when cfg.InMemory is set.
func Open(cfg config.BadgerConfig) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing badger database. Used in tests.
func NewWithDB(db *badger.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes the checkpoint for its run.
func (s *Store) Save(cp *Checkpoint) error {
	cp.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(checkpointKeyPrefix + cp.RunID)
		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set checkpoint: %w", err)
		}
		return nil
	})
}

// Load reads the checkpoint of a run.
func (s *Store) Load(runID string) (*Checkpoint, error) {
	var cp Checkpoint

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(checkpointKeyPrefix + runID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get checkpoint: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &cp)
		})
	})
	if err != nil {
		return nil, err
	}

	return &cp, nil
}

// Clear removes a run's checkpoint once the run completed or failed.
func (s *Store) Clear(runID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(checkpointKeyPrefix + runID)
		if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete checkpoint: %w", err)
		}
		return nil
	})
}

// PendingRuns returns the IDs of every run with a surviving checkpoint,
// oldest first. After a crash this is the active run plus anything that
// was still queued.
func (s *Store) PendingRuns() ([]string, error) {
	var pending []*Checkpoint

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(checkpointKeyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var cp Checkpoint
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &cp)
			}); err != nil {
				return fmt.Errorf("decode checkpoint: %w", err)
			}
			pending = append(pending, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].UpdatedAt.Before(pending[j].UpdatedAt)
	})

	ids := make([]string, len(pending))
	for i, cp := range pending {
		ids[i] = cp.RunID
	}
	return ids, nil
}

// MarkJudged records that a prediction has been judged by some run.
func (s *Store) MarkJudged(predictionID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(judgedKeyPrefix+predictionID), []byte{1})
	})
}

// IsJudged reports whether a prediction has already been judged.
func (s *Store) IsJudged(predictionID string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(judgedKeyPrefix + predictionID))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get judged marker: %w", err)
	}
	return true, nil
}
