// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

// Package judge evaluates stored predictions with an LLM acting as an
// independent annotator. Runs are sampled from the prediction log,
// rate limited, checkpointed in BadgerDB and summarized into an
// agreement analysis with token cost accounting.
package judge

import (
	"context"
	"fmt"

	"github.com/sentibr/sentibr/internal/config"
)

// Provider names accepted in configuration and run requests.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Default models per provider.
const (
	defaultAnthropicModel = "claude-sonnet-4-5-20250929"
	defaultOpenAIModel    = "gpt-4o-mini"
)

// Usage is the token count of one LLM call.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Client is a chat-completion backend. Implementations must be safe for
// concurrent use.
type Client interface {
	// Complete sends one system+user exchange and returns the raw text reply.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, Usage, error)
	Provider() string
	Model() string
}

// NewClient builds the provider client selected by cfg. The model falls
// back to the provider default when cfg.Model is empty.
func NewClient(cfg config.JudgeConfig) (Client, error) {
	switch cfg.Provider {
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("judge provider %s requires an API key", ProviderAnthropic)
		}
		model := cfg.Model
		if model == "" {
			model = defaultAnthropicModel
		}
		return newAnthropicClient(cfg.AnthropicAPIKey, model, cfg), nil
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("judge provider %s requires an API key", ProviderOpenAI)
		}
		model := cfg.Model
		if model == "" {
			model = defaultOpenAIModel
		}
		return newOpenAIClient(cfg.OpenAIAPIKey, model, cfg), nil
	default:
		return nil, fmt.Errorf("unknown judge provider %q", cfg.Provider)
	}
}
