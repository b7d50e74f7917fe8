// SentiBR - Sentiment Analysis for Brazilian Food Delivery Reviews
// Copyright 2026 SentiBR Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentibr/sentibr

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sentibr/sentibr/internal/auth"
	"github.com/sentibr/sentibr/internal/config"
	"github.com/sentibr/sentibr/internal/middleware"
)

// Router assembles the Chi route tree from the handler set, the auth
// middleware and the Chi-native middleware.
type Router struct {
	handler       *Handler
	auth          *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router.
func NewRouter(handler *Handler, authMiddleware *auth.Middleware, cfg config.SecurityConfig) *Router {
	return &Router{
		handler:       handler,
		auth:          authMiddleware,
		chiMiddleware: NewChiMiddleware(cfg),
	}
}

// chiMiddleware adapts a http.HandlerFunc middleware to Chi's
// http.Handler middleware shape.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// chiPathValue bridges Chi URL params to Go 1.22's r.PathValue so
// handlers stay router-agnostic.
func chiPathValue(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rctx := chi.RouteContext(r.Context())
		if rctx != nil {
			for i, key := range rctx.URLParams.Keys {
				if i < len(rctx.URLParams.Values) {
					r.SetPathValue(key, rctx.URLParams.Values[i])
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// SetupChi builds the route tree.
func (router *Router) SetupChi() *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	// ========================
	// Health Endpoints
	// ========================
	// No auth so orchestrator probes always get through
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())

		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// ========================
	// Auth Endpoints
	// ========================
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(APISecurityHeaders())

		r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", router.handler.Login)
	})

	// ========================
	// Core API
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware(router.auth.Protect))

			// Classification
			r.Post("/predict", router.handler.Predict)
			r.Post("/predict/batch", router.handler.PredictBatch)
			r.Post("/predict/compare", router.handler.Compare)
			r.Post("/explain", router.handler.Explain)

			// Feedback
			r.Post("/feedback", router.handler.SubmitFeedback)
			r.Get("/feedback", router.handler.ListFeedback)

			// Statistics
			r.Get("/stats", router.handler.Stats)
			r.Get("/stats/timeline", router.handler.Timeline)
			r.Get("/model/info", router.handler.ModelInfo)

			// Judge runs (read)
			r.Get("/judge/runs", router.handler.JudgeListRuns)
			r.Route("/judge/runs/{id}", func(r chi.Router) {
				r.Use(chiPathValue)
				r.Get("/", router.handler.JudgeGetRun)
				r.Get("/verdicts", router.handler.JudgeVerdicts)
				r.Get("/disagreements", router.handler.JudgeDisagreements)
			})

			// Drift (read)
			r.Get("/drift/report", router.handler.DriftReport)
			r.Get("/drift/baseline", router.handler.DriftBaselineInfo)

			// Live events
			r.Get("/ws", router.handler.HandleWebSocket)
		})

		// Admin endpoints
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware(router.auth.RequireAdmin))

			r.With(router.chiMiddleware.RateLimitWrite()).Post("/judge/runs", router.handler.JudgeStartRun)
			r.With(router.chiMiddleware.RateLimitWrite()).Post("/drift/check", router.handler.DriftCheck)
			r.With(router.chiMiddleware.RateLimitWrite()).Post("/drift/baseline", router.handler.DriftBaselineBuild)
			r.With(router.chiMiddleware.RateLimitExport()).Get("/feedback/export", router.handler.ExportFeedback)
		})
	})

	// ========================
	// Observability
	// ========================
	r.Handle("/metrics", promhttp.Handler())

	return r
}
