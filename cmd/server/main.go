// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

// Package main is the entry point for the SentiBR server.
//
// SentiBR classifies Brazilian Portuguese food-delivery reviews into
// sentiment labels, evaluates the classifier with an LLM judge, and
// watches the input distribution for drift.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered Koanf v2 sources (defaults, YAML file, env vars)
//  2. Storage: DuckDB for predictions and analytics, BadgerDB for judge checkpoints
//  3. Inference: remote model backend with lexicon fallback
//  4. Events: in-process Watermill bus feeding the WebSocket hub
//  5. Workers: LLM judge runner and cron drift scheduler
//  6. HTTP Server: Chi REST API with Prometheus metrics
//
// All long-running components run under a Suture supervisor tree, so a
// crashing worker is restarted without taking down the API.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 (highest priority wins):
//   - Environment variables (HTTP_PORT, OPENAI_API_KEY, AUTH_MODE, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// For JWT authentication:
//   - JWT_SECRET: 32+ character secret for token signing
//   - ADMIN_USERNAME: admin username
//   - ADMIN_PASSWORD: admin password (8+ characters)
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: the HTTP
// server drains in-flight requests, workers checkpoint their progress,
// and storage is closed.
//
// # Example Usage
//
// Development, lexicon-only, no auth:
//
//	AUTH_MODE=none DUCKDB_PATH=./sentibr.duckdb BADGER_PATH=./state ./sentibr
//
// Production with a model backend and the LLM judge:
//
//	export MODEL_URL=http://model-server:8501
//	export OPENAI_API_KEY=sk-...
//	export JWT_SECRET=$(openssl rand -base64 32)
//	export ADMIN_USERNAME=admin
//	export ADMIN_PASSWORD=secure-password
//	./sentibr
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sentibr/sentibr/internal/api"
	"github.com/sentibr/sentibr/internal/auth"
	"github.com/sentibr/sentibr/internal/checkpoint"
	"github.com/sentibr/sentibr/internal/config"
	"github.com/sentibr/sentibr/internal/database"
	"github.com/sentibr/sentibr/internal/drift"
	"github.com/sentibr/sentibr/internal/events"
	"github.com/sentibr/sentibr/internal/inference"
	"github.com/sentibr/sentibr/internal/judge"
	"github.com/sentibr/sentibr/internal/logging"
	"github.com/sentibr/sentibr/internal/metrics"
	"github.com/sentibr/sentibr/internal/supervisor"
	ws "github.com/sentibr/sentibr/internal/websocket"
)

// version is stamped at build time via -ldflags.
var version = "1.0.0"

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		// Config not available yet, use the default logger.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Msg("Starting SentiBR")

	metrics.SetAppInfo(version)

	// Storage
	db, err := database.New(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("Failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close database")
		}
	}()

	store, err := checkpoint.Open(cfg.Badger)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Badger.Path).Msg("Failed to open checkpoint store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close checkpoint store")
		}
	}()

	// Inference engine: remote backend when configured, lexicon otherwise
	var remote *inference.RemoteClassifier
	if cfg.Model.URL != "" {
		remote = inference.NewRemoteClassifier(cfg.Model.URL, cfg.Model.Timeout)
		logging.Info().Str("url", cfg.Model.URL).Msg("Model backend configured")
	} else {
		logging.Info().Msg("No model backend configured, running lexicon-only")
	}
	engine := inference.NewEngine(remote, inference.NewLexiconClassifier(), cfg.Model.Version)

	// Event bus and WebSocket hub
	bus := events.NewBus()
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close event bus")
		}
	}()

	var hub *ws.Hub
	if cfg.WebSocket.Enabled {
		hub = ws.NewHub()
	}

	// LLM judge, optional: without an API key the endpoints answer 503
	var judgeRunner *judge.Runner
	if runner, err := judge.NewRunner(db, store, cfg.Judge); err != nil {
		logging.Warn().Err(err).Msg("LLM judge disabled")
	} else {
		judgeRunner = runner
	}

	// Drift detection
	detector := drift.NewDetector(db, cfg.Drift, bus)
	driftService := drift.NewService(detector, cfg.Drift)

	// Auth and router
	authMiddleware, err := auth.NewMiddleware(cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Str("mode", cfg.Security.AuthMode).Msg("Failed to configure authentication")
	}

	handler := api.NewHandler(engine, db, judgeRunner, detector, bus, hub, authMiddleware, cfg, version)
	router := api.NewRouter(handler, authMiddleware, cfg.Security)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Supervisor tree
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	if hub != nil {
		tree.AddMessagingService(supervisor.NewWebSocketHubService(hub))

		eventRouter, err := events.NewRouter(bus, hub)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to build event router")
		}
		tree.AddMessagingService(eventRouter)
	}

	if judgeRunner != nil {
		tree.AddWorkerService(judgeRunner)
	}
	tree.AddWorkerService(driftService)
	tree.AddAPIService(supervisor.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("auth_mode", cfg.Security.AuthMode).
		Bool("judge_enabled", judgeRunner != nil).
		Bool("websocket_enabled", hub != nil).
		Msg("SentiBR listening")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree exited with error")
	}

	logging.Info().Msg("Shutdown complete")
}
