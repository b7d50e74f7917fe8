// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

// Package config loads and validates service configuration with Koanf v2.
// Precedence: environment variables > YAML config file > built-in defaults.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration for the SentiBR service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Model     ModelConfig     `koanf:"model"`
	Database  DatabaseConfig  `koanf:"database"`
	Badger    BadgerConfig    `koanf:"badger"`
	Judge     JudgeConfig     `koanf:"judge"`
	Drift     DriftConfig     `koanf:"drift"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	WebSocket WebSocketConfig `koanf:"websocket"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

//// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ModelConfig holds classifier backend settings.
// When URL is empty the service runs in lexicon-only mode.
type ModelConfig struct {
	URL     string        `koanf:"url"`
	Version string        `koanf:"version"`
	Timeout time.Duration `koanf:"timeout"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"`
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"`
}

// BadgerConfig holds the operational state store settings.
type BadgerConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// JudgeConfig holds LLM-as-judge settings.
type JudgeConfig struct {
	Provider        string        `koanf:"provider"`
	Model           string        `koanf:"model"`
	OpenAIAPIKey    string        `koanf:"openai_api_key"`
	AnthropicAPIKey string        `koanf:"anthropic_api_key"`
	RequestsPerSec  float64       `koanf:"requests_per_sec"`
	SampleSize      int           `koanf:"sample_size"`
	MaxAttempts     int           `koanf:"max_attempts"`
	MaxTokens       int           `koanf:"max_tokens"`
	Temperature     float64       `koanf:"temperature"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
}

// DriftConfig holds drift detection settings.
type DriftConfig struct {
	Schedule           string  `koanf:"schedule"`
	WindowHours        int     `koanf:"window_hours"`
	WarningThreshold   float64 `koanf:"warning_threshold"`
	CriticalThreshold  float64 `koanf:"critical_threshold"`
	BaselineMaxSamples int     `koanf:"baseline_max_samples"`
	MinWindowSamples   int     `koanf:"min_window_samples"`
}

// SecurityConfig holds auth, rate limit and CORS settings.
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"` // none | apikey | jwt
	APIKey            string        `koanf:"api_key"`
	JWTSecret         string        `koanf:"jwt_secret"`
	TokenTTL          time.Duration `koanf:"token_ttl"`
	AdminUsername     string        `koanf:"admin_username"`
	AdminPassword     string        `koanf:"admin_password"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// WebSocketConfig holds WebSocket hub settings.
type WebSocketConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Validate checks configuration consistency. It returns the first problem
// found, with enough context to fix it.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}

	switch c.Security.AuthMode {
	case "none", "apikey", "jwt":
	default:
		return fmt.Errorf("security.auth_mode must be none, apikey or jwt, got %q", c.Security.AuthMode)
	}

	if c.Security.AuthMode == "apikey" && c.Security.APIKey == "" {
		return fmt.Errorf("security.api_key is required when auth_mode=apikey")
	}

	if c.Security.AuthMode == "jwt" {
		if len(c.Security.JWTSecret) < 32 {
			return fmt.Errorf("security.jwt_secret must be at least 32 characters when auth_mode=jwt")
		}
		if c.Security.AdminUsername == "" || c.Security.AdminPassword == "" {
			return fmt.Errorf("security.admin_username and security.admin_password are required when auth_mode=jwt")
		}
	}

	switch strings.ToLower(c.Judge.Provider) {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("judge.provider must be anthropic or openai, got %q", c.Judge.Provider)
	}

	if c.Judge.SampleSize < 1 || c.Judge.SampleSize > 1000 {
		return fmt.Errorf("judge.sample_size must be 1-1000, got %d", c.Judge.SampleSize)
	}
	if c.Judge.RequestsPerSec <= 0 {
		return fmt.Errorf("judge.requests_per_sec must be positive, got %v", c.Judge.RequestsPerSec)
	}
	if c.Judge.MaxAttempts < 1 {
		return fmt.Errorf("judge.max_attempts must be at least 1, got %d", c.Judge.MaxAttempts)
	}

	if c.Drift.WarningThreshold <= 0 || c.Drift.CriticalThreshold <= c.Drift.WarningThreshold {
		return fmt.Errorf("drift thresholds must satisfy 0 < warning < critical, got warning=%v critical=%v",
			c.Drift.WarningThreshold, c.Drift.CriticalThreshold)
	}
	if c.Drift.WindowHours < 1 {
		return fmt.Errorf("drift.window_hours must be at least 1, got %d", c.Drift.WindowHours)
	}

	if c.Model.URL != "" && !strings.HasPrefix(c.Model.URL, "http://") && !strings.HasPrefix(c.Model.URL, "https://") {
		return fmt.Errorf("model.url must be an http(s) URL, got %q", c.Model.URL)
	}

	return nil
}

// JudgeAPIKey returns the API key for the configured judge provider.
func (c *Config) JudgeAPIKey() string {
	if strings.ToLower(c.Judge.Provider) == "openai" {
		return c.Judge.OpenAIAPIKey
	}
	return c.Judge.AnthropicAPIKey
}
