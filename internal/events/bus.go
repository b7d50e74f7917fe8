// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

// Package events is the in-process pub/sub layer. Predictions, drift
// reports and judge run transitions are published as JSON envelopes and
// fanned out to subscribers, the WebSocket hub among them.
package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/sentibr/sentibr/internal/models"
)

// Topics.
const (
	TopicPredictions = "predictions"
	TopicDrift       = "drift"
	TopicJudge       = "judge"
)

// Event types carried in envelopes.
const (
	EventPrediction = "prediction"
	EventDrift      = "drift_report"
	EventJudgeRun   = "judge_run"
)

// Envelope is the wire format of every published event.
type Envelope struct {
	Type string          `json:"type"`
	Time time.Time       `json:"time"`
	Data json.RawMessage `json:"data"`
}

// Bus wraps an in-process Watermill pub/sub.
type Bus struct {
	pubSub *gochannel.GoChannel
}

// NewBus creates the bus. Subscribers that fall behind block publishers
// once the buffer fills, so handlers must stay cheap.
func NewBus() *Bus {
	return &Bus{
		pubSub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, NewLoggerAdapter()),
	}
}

// Publisher returns the native publisher for router wiring.
func (b *Bus) Publisher() message.Publisher { return b.pubSub }

// Subscriber returns the native subscriber for router wiring.
func (b *Bus) Subscriber() message.Subscriber { return b.pubSub }

// Close shuts the bus down. Pending messages are dropped.
func (b *Bus) Close() error {
	return b.pubSub.Close()
}

// publish wraps data in an envelope and publishes it.
func (b *Bus) publish(topic, eventType string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	payload, err := json.Marshal(Envelope{
		Type: eventType,
		Time: time.Now().UTC(),
		Data: raw,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_type", eventType)
	return b.pubSub.Publish(topic, msg)
}

// PublishPrediction announces a stored prediction.
func (b *Bus) PublishPrediction(rec *models.PredictionRecord) error {
	return b.publish(TopicPredictions, EventPrediction, rec)
}

// PublishDrift announces a completed drift check.
func (b *Bus) PublishDrift(report *models.DriftReport) error {
	return b.publish(TopicDrift, EventDrift, report)
}

// PublishJudgeRun announces a judge run state transition.
func (b *Bus) PublishJudgeRun(run *models.JudgeRun) error {
	return b.publish(TopicJudge, EventJudgeRun, run)
}
