// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

// Package main is the entry point for the Cinegraph server.
//
// Cinegraph answers movie searches in English, Spanish, French, and German
// by translating filters and free-text questions into SPARQL queries against
// a local ontology file, the public DBpedia endpoints, and a reduced BadgerDB
// mirror that keeps the most important facts available offline.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: settings from CINEGRAPH_* environment variables and an
//     optional YAML file (Koanf v2)
//  2. Stores: local ontology, remote DBpedia client, optional reduced mirror
//  3. Connectivity prober: decides online vs offline source selection
//  4. Search pipeline: intent extraction, query building, normalization,
//     merge and dedup, optional enrichment
//  5. HTTP Server: REST API under /api/v1 plus Prometheus /metrics
//
// All long-running work is owned by a suture supervisor tree with a data
// layer (reduced-store ingest) and an api layer (HTTP server), so a crash
// in one does not take down the other.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (CINEGRAPH_SERVER_PORT, CINEGRAPH_SEARCH_MODE, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: the supervisor
// tree is canceled, the HTTP server drains in-flight requests, and the
// reduced store is closed last.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cinegraph/cinegraph/internal/api"
	"github.com/cinegraph/cinegraph/internal/cache"
	"github.com/cinegraph/cinegraph/internal/config"
	"github.com/cinegraph/cinegraph/internal/enrich"
	"github.com/cinegraph/cinegraph/internal/intent"
	"github.com/cinegraph/cinegraph/internal/logging"
	"github.com/cinegraph/cinegraph/internal/probe"
	"github.com/cinegraph/cinegraph/internal/search"
	"github.com/cinegraph/cinegraph/internal/store"
	"github.com/cinegraph/cinegraph/internal/supervisor"
	"github.com/cinegraph/cinegraph/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load("")
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Cinegraph with supervisor tree")
	logging.Info().
		Str("mode", cfg.Search.Mode).
		Str("ontology_path", cfg.Ontology.Path).
		Bool("reduced_enabled", cfg.Reduced.Enabled).
		Bool("enrich_enabled", cfg.Enrich.Enabled).
		Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stores. The local store tolerates a missing ontology file; the
	// reduced store owns a BadgerDB directory and must be closed on exit.
	local := store.NewLocalStore(cfg.Ontology.Path)
	remote := store.NewRemoteStore(&cfg.DBpedia)

	var reduced *store.ReducedStore
	if cfg.Reduced.Enabled {
		reduced, err = store.OpenReduced(cfg.Reduced.Path)
		if err != nil {
			logging.Fatal().Err(err).Str("path", cfg.Reduced.Path).Msg("Failed to open reduced store")
		}
		defer func() {
			if closeErr := reduced.Close(); closeErr != nil {
				logging.Error().Err(closeErr).Msg("Failed to close reduced store")
			}
		}()
		logging.Info().
			Str("path", cfg.Reduced.Path).
			Int("movies", reduced.TotalCount()).
			Msg("Reduced store opened")
	} else {
		logging.Info().Msg("Reduced store disabled (CINEGRAPH_REDUCED_ENABLED=false)")
	}

	prober := probe.New(&cfg.Probe)

	resultCache := cache.NewLRU(cfg.Cache.ResultCapacity, cfg.Cache.ResultTTL)

	// The enrichment client doubles as the role lookup for intent
	// extraction: "movies with Kubrick" resolves to director via the
	// same metadata source that fills in ratings and posters.
	var enricher *enrich.Enricher
	var roles intent.RoleLookup
	if cfg.Enrich.Enabled {
		client := enrich.NewHTTPClient(&cfg.Enrich)
		lookupCache := cache.NewLRU(cfg.Cache.LookupCapacity, cfg.Cache.LookupTTL)
		enricher = enrich.New(client, lookupCache, cfg.Enrich.Workers)
		roles = client
		logging.Info().Int("workers", cfg.Enrich.Workers).Msg("Enrichment enabled")
	} else {
		logging.Info().Msg("Enrichment disabled (CINEGRAPH_ENRICH_ENABLED=false)")
	}

	intents := intent.New(intent.NewHeuristicExtractor(), roles)

	var reducedStore store.Store
	if reduced != nil {
		reducedStore = reduced
	}
	svc := search.New(&cfg.Search, cfg.DBpedia.ResultLimit,
		local, remote, reducedStore, prober, intents, enricher, resultCache)

	router := api.NewRouter(svc, cfg)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})

	if reduced != nil {
		tree.AddDataService(services.NewIngestService(remote, reduced, cfg.Reduced))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	logging.Info().
		Str("addr", server.Addr).
		Msg("HTTP server configured")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
