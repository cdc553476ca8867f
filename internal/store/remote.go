// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/cinegraph/cinegraph/internal/config"
	"github.com/cinegraph/cinegraph/internal/logging"
	"github.com/cinegraph/cinegraph/internal/metrics"
	"github.com/cinegraph/cinegraph/internal/models"
	"github.com/cinegraph/cinegraph/internal/sparql"
)

// maxErrorBodySize bounds how much of an error response body is read for
// diagnostics.
const maxErrorBodySize = 64 * 1024

const breakerName = "dbpedia"

// RemoteStore queries the live DBpedia SPARQL endpoints over HTTP.
//
// Resilience: a shared circuit breaker opens after a 60% failure rate over
// at least 10 requests; outbound queries pass a token-bucket rate limiter;
// HTTP 429 responses retry with exponential backoff (1s base, doubling, up
// to 5 retries, honoring Retry-After).
type RemoteStore struct {
	cfg     *config.DBpediaConfig
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[[]sparql.Binding]
	limiter *rate.Limiter
	logger  zerolog.Logger

	maxRetries     int
	retryBaseDelay time.Duration
}

// NewRemoteStore builds the DBpedia adapter from configuration.
func NewRemoteStore(cfg *config.DBpediaConfig) *RemoteStore {
	logger := logging.WithComponent("store.remote")

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]sparql.Binding](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	})

	burst := int(cfg.RatePerSecond)
	if burst < 1 {
		burst = 1
	}

	return &RemoteStore{
		cfg: cfg,
		client: &http.Client{
			// Per-call deadlines come from the request context; this is
			// the hard upper bound.
			Timeout: cfg.IngestTimeout + 5*time.Second,
		},
		cb:             cb,
		limiter:        rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst),
		logger:         logger,
		maxRetries:     5,
		retryBaseDelay: time.Second,
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

// Movies runs a search query against the endpoint for the query's
// language. Failures degrade to an empty list. Query duration and row
// counts are recorded by the pipeline, uniformly for all stores; only the
// breaker and error metrics live here.
func (r *RemoteStore) Movies(ctx context.Context, q sparql.Query) []sparql.Binding {
	queryCtx, cancel := context.WithTimeout(ctx, r.cfg.QueryTimeout)
	defer cancel()

	rows, err := r.execute(queryCtx, q.Language, q.Text)
	if err != nil {
		r.logger.Warn().Err(err).Str("language", q.Language).
			Msg("remote query degraded to empty result")
		metrics.RecordStoreError(string(models.SourceExternal), classifyRemoteError(err))
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, requestOutcome(err)).Inc()
		return nil
	}

	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	return rows
}

// Ingest runs one paginated bulk-load query and, unlike Movies, returns
// errors: the ingest service must distinguish "empty page" from "endpoint
// gone" to stop paginating.
func (r *RemoteStore) Ingest(ctx context.Context, lang string, limit, offset int) ([]sparql.Binding, error) {
	query, err := sparql.IngestQuery(lang, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("preparing ingest query: %w", err)
	}

	ingestCtx, cancel := context.WithTimeout(ctx, r.cfg.IngestTimeout)
	defer cancel()

	return r.execute(ingestCtx, lang, query)
}

func (r *RemoteStore) execute(ctx context.Context, lang, query string) ([]sparql.Binding, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return r.cb.Execute(func() ([]sparql.Binding, error) {
		return r.fetch(ctx, lang, query)
	})
}

func (r *RemoteStore) fetch(ctx context.Context, lang, query string) ([]sparql.Binding, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("format", "json")
	reqURL := fmt.Sprintf("%s?%s", r.cfg.EndpointFor(lang), params.Encode())

	resp, err := r.doWithRateLimitRetry(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return nil, fmt.Errorf("sparql endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	rows, err := sparql.DecodeResults(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding sparql results: %w", err)
	}
	return rows, nil
}

// doWithRateLimitRetry performs the request, retrying HTTP 429 with
// exponential backoff (1s, 2s, 4s, 8s, 16s) and honoring Retry-After.
func (r *RemoteStore) doWithRateLimitRetry(ctx context.Context, reqURL string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/sparql-results+json")

		resp, err := r.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("http request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		_ = resp.Body.Close()

		if attempt == r.maxRetries {
			lastErr = fmt.Errorf("rate limit exceeded after %d retries", r.maxRetries)
			break
		}

		delay := r.retryBaseDelay * time.Duration(1<<uint(attempt))
		// Only the delta-seconds form of Retry-After is handled; the
		// HTTP-date form falls through to the exponential delay.
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if wait, err := time.ParseDuration(retryAfter + "s"); err == nil {
				delay = wait
			}
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("... (truncated)")...)
	}
	return body
}

func classifyRemoteError(err error) string {
	switch {
	case err == nil:
		return "none"
	case gobreakerRejected(err):
		return "circuit_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "transport"
	}
}

func requestOutcome(err error) string {
	if gobreakerRejected(err) {
		return "rejected"
	}
	return "failure"
}

func gobreakerRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// healthProbeTimeout bounds the ASK query issued by Healthy.
const healthProbeTimeout = 3 * time.Second

// Healthy reports whether the endpoint answers a minimal ASK query. An
// open circuit breaker short-circuits without a network call.
func (r *RemoteStore) Healthy(ctx context.Context) bool {
	if r.cb.State() == gobreaker.StateOpen {
		return false
	}

	query, err := sparql.ProbeQuery()
	if err != nil {
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("query", query)
	params.Set("format", "json")
	reqURL := fmt.Sprintf("%s?%s", r.cfg.EndpointFor("en"), params.Encode())

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return false
	}
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := r.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (r *RemoteStore) Kind() models.SourceKind { return models.SourceExternal }
