// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package drift

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/sentibr/sentibr/internal/config"
	"github.com/sentibr/sentibr/internal/logging"
)

// Service runs scheduled drift checks. Suture-compatible.
type Service struct {
	detector *Detector
	cfg      config.DriftConfig
}

// NewService wraps a detector with its schedule.
func NewService(detector *Detector, cfg config.DriftConfig) *Service {
	return &Service{detector: detector, cfg: cfg}
}

// Serve schedules checks until the context ends.
func (s *Service) Serve(ctx context.Context) error {
	log := logging.WithComponent("drift")

	scheduler := cron.New()
	_, err := scheduler.AddFunc(s.cfg.Schedule, func() {
		s.runCheck(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid drift schedule %q: %w", s.cfg.Schedule, err)
	}

	scheduler.Start()
	log.Info().Str("schedule", s.cfg.Schedule).Msg("Drift check scheduler started")

	<-ctx.Done()

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()
	return ctx.Err()
}

// String names the service in supervisor logs.
func (s *Service) String() string { return "drift-scheduler" }

// runCheck executes one scheduled check, bootstrapping a baseline on
// first use.
func (s *Service) runCheck(ctx context.Context) {
	log := logging.WithComponent("drift")

	_, err := s.detector.Check(ctx, 0)
	if errors.Is(err, ErrNoBaseline) {
		log.Info().Msg("No drift baseline yet, building one")
		if _, err := s.detector.BuildBaseline(ctx); err != nil {
			if errors.Is(err, ErrWindowTooSmall) {
				log.Debug().Err(err).Msg("Not enough predictions to build a baseline yet")
			} else {
				log.Error().Err(err).Msg("Failed to build drift baseline")
			}
		}
		return
	}
	if errors.Is(err, ErrWindowTooSmall) {
		log.Debug().Err(err).Msg("Skipping drift check, window too small")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Scheduled drift check failed")
	}
}
