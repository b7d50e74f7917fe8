// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package events

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// Broadcaster is the sink the router fans events into. The WebSocket hub
// implements it.
type Broadcaster interface {
	// BroadcastRaw sends raw JSON bytes to all connected clients.
	BroadcastRaw(data []byte)
}

// Router consumes bus topics and forwards every envelope to a
// Broadcaster. Handlers never return errors: a failed broadcast must not
// trigger redelivery.
type Router struct {
	router *message.Router
	bus    *Bus

	messagesForwarded atomic.Int64
}

// NewRouter builds the router with panic recovery and registers one
// forwarding handler per topic.
func NewRouter(bus *Bus, hub Broadcaster) (*Router, error) {
	if bus == nil {
		return nil, fmt.Errorf("bus required")
	}
	if hub == nil {
		return nil, fmt.Errorf("hub required")
	}

	logger := NewLoggerAdapter()
	wmRouter, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: 10 * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create event router: %w", err)
	}
	wmRouter.AddMiddleware(middleware.Recoverer)

	r := &Router{router: wmRouter, bus: bus}

	for _, topic := range []string{TopicPredictions, TopicDrift, TopicJudge} {
		wmRouter.AddConsumerHandler(
			"broadcast_"+topic,
			topic,
			bus.Subscriber(),
			func(msg *message.Message) error {
				hub.BroadcastRaw(msg.Payload)
				r.messagesForwarded.Add(1)
				return nil
			},
		)
	}

	return r, nil
}

// Serve runs the router until the context ends. Suture-compatible.
func (r *Router) Serve(ctx context.Context) error {
	return r.router.Run(ctx)
}

// String names the service in supervisor logs.
func (r *Router) String() string { return "event-router" }

// Running returns a channel that closes once all handlers are consuming.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// Forwarded returns how many envelopes reached the broadcaster.
func (r *Router) Forwarded() int64 {
	return r.messagesForwarded.Load()
}

// Close stops the router, waiting for in-flight handlers.
func (r *Router) Close() error {
	return r.router.Close()
}
