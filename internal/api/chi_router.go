// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cinegraph/cinegraph/internal/config"
	"github.com/cinegraph/cinegraph/internal/middleware"
)

// Router wires handlers and middleware into the Chi route tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates the router.
func NewRouter(searcher Searcher, cfg *config.Config) *Router {
	return &Router{
		handler:       NewHandler(searcher, &cfg.Search),
		chiMiddleware: NewChiMiddleware(&cfg.Security),
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight works
	r.Use(SecurityHeaders())

	// Health endpoints get permissive rate limiting for monitoring.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	// Search and browse endpoints.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.PrometheusMetrics)
		r.Use(middleware.Compression)

		r.Get("/search", router.handler.Search)
		r.Post("/search/text", router.handler.SearchText)
		r.Get("/movies", router.handler.Movies)
	})

	// Observability.
	r.Handle("/metrics", promhttp.Handler())

	return r
}
