// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/sentibr/sentibr/internal/config"
)

// RateLimitConfig describes one rate-limit class.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Rate-limit classes. Login is strict against credential stuffing,
// health is generous for orchestrator probes, write covers the admin
// operations that start background work.
var (
	rateLimitLoginConfig  = RateLimitConfig{Requests: 5, Window: 5 * time.Minute}
	rateLimitWriteConfig  = RateLimitConfig{Requests: 30, Window: time.Minute}
	rateLimitExportConfig = RateLimitConfig{Requests: 10, Window: time.Minute}
	rateLimitHealthConfig = RateLimitConfig{Requests: 1000, Window: time.Minute}
)

// ChiMiddleware builds the Chi-native middleware from security config.
type ChiMiddleware struct {
	corsOrigins []string
	defaults    RateLimitConfig
	disabled    bool
}

// NewChiMiddleware creates the middleware set. The default rate-limit
// class falls back to 100 requests per minute.
func NewChiMiddleware(cfg config.SecurityConfig) *ChiMiddleware {
	defaults := RateLimitConfig{Requests: cfg.RateLimitReqs, Window: cfg.RateLimitWindow}
	if defaults.Requests <= 0 {
		defaults.Requests = 100
	}
	if defaults.Window <= 0 {
		defaults.Window = time.Minute
	}

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return &ChiMiddleware{
		corsOrigins: origins,
		defaults:    defaults,
		disabled:    cfg.RateLimitDisabled,
	}
}

// CORS returns the CORS middleware for the configured origins.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   m.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// RateLimit returns the default per-IP rate limiter.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.RateLimitCustom(m.defaults)
}

// RateLimitLogin limits the login endpoint.
func (m *ChiMiddleware) RateLimitLogin() func(http.Handler) http.Handler {
	return m.RateLimitCustom(rateLimitLoginConfig)
}

// RateLimitWrite limits admin operations that start background work.
func (m *ChiMiddleware) RateLimitWrite() func(http.Handler) http.Handler {
	return m.RateLimitCustom(rateLimitWriteConfig)
}

// RateLimitExport limits the CSV export endpoint.
func (m *ChiMiddleware) RateLimitExport() func(http.Handler) http.Handler {
	return m.RateLimitCustom(rateLimitExportConfig)
}

// RateLimitHealth limits the health endpoints. Generous so orchestrator
// probes never get throttled.
func (m *ChiMiddleware) RateLimitHealth() func(http.Handler) http.Handler {
	return m.RateLimitCustom(rateLimitHealthConfig)
}

// RateLimitCustom builds a per-IP limiter for one class. When rate
// limiting is disabled it returns a no-op.
func (m *ChiMiddleware) RateLimitCustom(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if m.disabled {
		return func(next http.Handler) http.Handler { return next }
	}

	return httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, slow down", nil)
		}),
	)
}

// APISecurityHeaders sets defensive headers on API responses. HSTS is
// only sent when the request arrived over TLS.
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}
