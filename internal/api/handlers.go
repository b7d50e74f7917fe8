// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

// Package api provides the HTTP handlers and Chi router for SentiBR.
package api

import (
	"net/http"
	"time"

	gorilla "github.com/gorilla/websocket"

	"github.com/sentibr/sentibr/internal/config"
	"github.com/sentibr/sentibr/internal/database"
	"github.com/sentibr/sentibr/internal/drift"
	"github.com/sentibr/sentibr/internal/events"
	"github.com/sentibr/sentibr/internal/inference"
	"github.com/sentibr/sentibr/internal/judge"
	"github.com/sentibr/sentibr/internal/logging"
	ws "github.com/sentibr/sentibr/internal/websocket"
)

// Handler carries the dependencies shared by all HTTP handlers.
type Handler struct {
	engine   *inference.Engine
	db       *database.DB
	judge    *judge.Runner
	detector *drift.Detector
	bus      *events.Bus
	wsHub    *ws.Hub
	authn    authenticator
	config   *config.Config
	version  string
}

// NewHandler wires the handler dependencies. judge, bus and wsHub may be
// nil when the corresponding feature is disabled; the affected endpoints
// then answer 503.
func NewHandler(
	engine *inference.Engine,
	db *database.DB,
	judgeRunner *judge.Runner,
	detector *drift.Detector,
	bus *events.Bus,
	wsHub *ws.Hub,
	authn authenticator,
	cfg *config.Config,
	version string,
) *Handler {
	return &Handler{
		engine:   engine,
		db:       db,
		judge:    judgeRunner,
		detector: detector,
		bus:      bus,
		wsHub:    wsHub,
		authn:    authn,
		config:   cfg,
		version:  version,
	}
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout against slow clients.
func (h *Handler) getUpgrader() gorilla.Upgrader {
	return gorilla.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates connection origins against the CORS
// allowlist. Browser WebSockets always send Origin; an empty header means
// a non-browser client and is allowed.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWebSocket upgrades the connection and registers the client with
// the hub. Clients receive prediction, drift and judge events as they
// happen.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "WebSocket service unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	h.wsHub.Register <- client
	client.Start()
}
