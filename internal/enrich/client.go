// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

// Package enrich adds poster metadata to normalized movie records via a
// TMDB-style lookup service. Lookups fan out across a fixed worker pool
// with positional result ordering; per-title failures yield an empty
// enrichment, never a batch failure.
package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/cinegraph/cinegraph/internal/config"
	"github.com/cinegraph/cinegraph/internal/logging"
	"github.com/cinegraph/cinegraph/internal/models"
)

// Lookup is the metadata returned for one title. Zero value means "not
// found".
type Lookup struct {
	Title       string `json:"title"`
	PosterPath  string `json:"poster_path"`
	ReleaseDate string `json:"release_date"`
}

// Client is the external metadata lookup boundary.
type Client interface {
	// MovieByTitle returns best-effort metadata for a title; ok=false
	// when nothing matched or the service failed.
	MovieByTitle(ctx context.Context, title, lang string) (Lookup, bool)

	// Role resolves a person to actor or director via their known-for
	// department; ok=false for unknown persons or service failure.
	Role(ctx context.Context, person, lang string) (models.IntentKind, bool)
}

// parenthetical strips disambiguation suffixes like " (1999 film)" before
// title search.
var parenthetical = regexp.MustCompile(`\s*\(.*?\)\s*`)

type searchMovieResponse struct {
	Results []Lookup `json:"results"`
}

type searchPersonResponse struct {
	Results []struct {
		Name               string `json:"name"`
		KnownForDepartment string `json:"known_for_department"`
	} `json:"results"`
}

// HTTPClient talks to a TMDB-compatible API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  zerolog.Logger

	maxRetries     int
	retryBaseDelay time.Duration
}

// NewHTTPClient builds the lookup client from configuration.
func NewHTTPClient(cfg *config.EnrichConfig) *HTTPClient {
	return &HTTPClient{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		client:         &http.Client{Timeout: cfg.Timeout},
		logger:         logging.WithComponent("enrich.client"),
		maxRetries:     5,
		retryBaseDelay: time.Second,
	}
}

// MovieByTitle implements Client. Spanish maps to the es-MX TMDB locale;
// other languages pass through.
func (c *HTTPClient) MovieByTitle(ctx context.Context, title, lang string) (Lookup, bool) {
	query := strings.TrimSpace(parenthetical.ReplaceAllString(title, " "))
	if query == "" {
		return Lookup{}, false
	}
	if lang == "es" {
		lang = "es-MX"
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("language", lang)
	params.Set("include_adult", "false")
	params.Set("page", "1")

	var parsed searchMovieResponse
	if err := c.get(ctx, "/search/movie", params, &parsed); err != nil {
		c.logger.Debug().Err(err).Str("title", title).Msg("movie lookup failed")
		return Lookup{}, false
	}
	if len(parsed.Results) == 0 {
		return Lookup{}, false
	}
	return parsed.Results[0], true
}

// Role implements Client.
func (c *HTTPClient) Role(ctx context.Context, person, _ string) (models.IntentKind, bool) {
	params := url.Values{}
	params.Set("query", person)
	params.Set("include_adult", "false")

	var parsed searchPersonResponse
	if err := c.get(ctx, "/search/person", params, &parsed); err != nil {
		c.logger.Debug().Err(err).Str("person", person).Msg("person lookup failed")
		return "", false
	}
	if len(parsed.Results) == 0 {
		return "", false
	}

	switch strings.ToLower(parsed.Results[0].KnownForDepartment) {
	case "acting":
		return models.IntentActor, true
	case "directing":
		return models.IntentDirector, true
	default:
		return "", false
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	params.Set("api_key", c.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	resp, err := c.doWithRateLimitRetry(ctx, reqURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("lookup returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

// doWithRateLimitRetry retries HTTP 429 with exponential backoff,
// honoring Retry-After.
func (c *HTTPClient) doWithRateLimitRetry(ctx context.Context, reqURL string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("http request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		_ = resp.Body.Close()

		if attempt == c.maxRetries {
			lastErr = fmt.Errorf("rate limit exceeded after %d retries", c.maxRetries)
			break
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
				delay = seconds
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
