// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

// Package probe answers "are we online?" for the adaptive source switch.
// Endpoints are tried in configured order with a short per-attempt
// timeout; the first 2xx response means online, total failure means
// offline. Results are cached briefly so the request path does not probe
// on every call.
package probe

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cinegraph/cinegraph/internal/config"
	"github.com/cinegraph/cinegraph/internal/logging"
	"github.com/cinegraph/cinegraph/internal/metrics"
)

// Prober reports live connectivity.
type Prober interface {
	Online(ctx context.Context) bool
}

// HTTPProber checks connectivity against an ordered fallback chain of
// well-known HTTPS endpoints.
type HTTPProber struct {
	endpoints []string
	timeout   time.Duration
	cacheTTL  time.Duration
	client    *http.Client
	logger    zerolog.Logger

	mu        sync.Mutex
	lastValue bool
	lastCheck time.Time
}

// New builds a prober from configuration.
func New(cfg *config.ProbeConfig) *HTTPProber {
	return &HTTPProber{
		endpoints: cfg.Endpoints,
		timeout:   cfg.Timeout,
		cacheTTL:  cfg.CacheTTL,
		client:    &http.Client{},
		logger:    logging.WithComponent("probe"),
	}
}

// Online returns the cached probe result, re-probing when the cache has
// expired.
func (p *HTTPProber) Online(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if time.Since(p.lastCheck) < p.cacheTTL {
		return p.lastValue
	}

	p.lastValue = p.check(ctx)
	p.lastCheck = time.Now()
	metrics.RecordProbe(p.lastValue)
	return p.lastValue
}

// check walks the fallback chain in order; first 2xx wins.
func (p *HTTPProber) check(ctx context.Context) bool {
	for _, endpoint := range p.endpoints {
		if p.reachable(ctx, endpoint) {
			p.logger.Debug().Str("endpoint", endpoint).Msg("connectivity confirmed")
			return true
		}
	}
	p.logger.Info().Msg("all probe endpoints unreachable, assuming offline")
	return false
}

func (p *HTTPProber) reachable(ctx context.Context, endpoint string) bool {
	attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
