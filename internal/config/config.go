// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

// Package config provides layered configuration for Cinegraph using Koanf v2.
// Precedence (highest wins): environment variables > YAML config file >
// built-in defaults.
package config

import (
	"fmt"
	"time"
)

// SupportedLanguages lists the ISO 639-1 codes the query builder carries
// per-language property bindings for. Unknown languages fall back to the
// generic DBpedia predicates and the English endpoint.
var SupportedLanguages = []string{"en", "es", "fr", "de"}

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Ontology OntologyConfig `koanf:"ontology"`
	DBpedia  DBpediaConfig  `koanf:"dbpedia"`
	Reduced  ReducedConfig  `koanf:"reduced"`
	Enrich   EnrichConfig   `koanf:"enrich"`
	Probe    ProbeConfig    `koanf:"probe"`
	Cache    CacheConfig    `koanf:"cache"`
	Search   SearchConfig   `koanf:"search"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// OntologyConfig holds the local ontology store settings.
type OntologyConfig struct {
	// Path is the ontology file location. An unreadable or unparseable
	// file yields an empty (valid, zero-result) store, not a startup error.
	Path string `koanf:"path"`
}

// DBpediaConfig holds remote SPARQL endpoint settings.
type DBpediaConfig struct {
	// Endpoints maps a language code to its SPARQL endpoint. Languages
	// without an entry use the "en" endpoint.
	Endpoints map[string]string `koanf:"endpoints"`

	// QueryTimeout bounds interactive search queries.
	QueryTimeout time.Duration `koanf:"query_timeout"`

	// IngestTimeout bounds reduced-store bulk load queries, which return
	// much larger pages than interactive searches.
	IngestTimeout time.Duration `koanf:"ingest_timeout"`

	// ResultLimit is the LIMIT clause applied to search queries.
	ResultLimit int `koanf:"result_limit"`

	// RatePerSecond caps outbound queries to the public endpoint.
	RatePerSecond float64 `koanf:"rate_per_second"`
}

// ReducedConfig holds the offline reduced-store settings.
type ReducedConfig struct {
	Enabled bool `koanf:"enabled"`

	// Path is the BadgerDB directory for the persisted subset.
	Path string `koanf:"path"`

	// Languages to mirror into the reduced store.
	Languages []string `koanf:"languages"`

	// PageSize is the LIMIT per paginated ingest query.
	PageSize int `koanf:"page_size"`

	// MaxPages bounds the subset: at most PageSize*MaxPages movies per language.
	MaxPages int `koanf:"max_pages"`

	// RefreshInterval is how often the ingest service re-runs while online.
	RefreshInterval time.Duration `koanf:"refresh_interval"`
}

// EnrichConfig holds poster-lookup enrichment settings.
type EnrichConfig struct {
	Enabled bool   `koanf:"enabled"`
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`

	// Workers is the fixed fan-out pool size.
	Workers int `koanf:"workers"`

	Timeout time.Duration `koanf:"timeout"`
}

// ProbeConfig holds connectivity probe settings.
type ProbeConfig struct {
	// Endpoints are tried in order; the first 2xx response wins.
	Endpoints []string `koanf:"endpoints"`

	// Timeout bounds each individual probe attempt.
	Timeout time.Duration `koanf:"timeout"`

	// CacheTTL is how long a probe result is reused before re-probing.
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// CacheConfig holds bounded cache settings.
type CacheConfig struct {
	ResultCapacity int           `koanf:"result_capacity"`
	ResultTTL      time.Duration `koanf:"result_ttl"`
	LookupCapacity int           `koanf:"lookup_capacity"`
	LookupTTL      time.Duration `koanf:"lookup_ttl"`
}

// SearchConfig holds pipeline settings.
type SearchConfig struct {
	// Mode selects source handling: "adaptive" (probe decides online vs
	// offline sources) or "merge" (query everything, dedup by title).
	Mode string `koanf:"mode"`

	DefaultLanguage string `koanf:"default_language"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// EndpointFor returns the SPARQL endpoint for a language, falling back to
// the English endpoint for unconfigured languages.
func (c *DBpediaConfig) EndpointFor(lang string) string {
	if url, ok := c.Endpoints[lang]; ok && url != "" {
		return url
	}
	return c.Endpoints["en"]
}

// Validate checks the configuration for inconsistencies that would produce
// confusing runtime behavior. Called by Load after all layers are merged.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}

	if len(c.DBpedia.Endpoints) == 0 || c.DBpedia.Endpoints["en"] == "" {
		return fmt.Errorf("dbpedia.endpoints must at least configure \"en\"")
	}
	if c.DBpedia.QueryTimeout <= 0 {
		return fmt.Errorf("dbpedia.query_timeout must be positive, got %s", c.DBpedia.QueryTimeout)
	}
	if c.DBpedia.ResultLimit < 1 {
		return fmt.Errorf("dbpedia.result_limit must be at least 1, got %d", c.DBpedia.ResultLimit)
	}

	if c.Reduced.Enabled {
		if c.Reduced.Path == "" {
			return fmt.Errorf("reduced.path is required when the reduced store is enabled")
		}
		if c.Reduced.PageSize < 1 || c.Reduced.MaxPages < 1 {
			return fmt.Errorf("reduced.page_size and reduced.max_pages must be at least 1")
		}
	}

	if c.Enrich.Enabled {
		if c.Enrich.BaseURL == "" {
			return fmt.Errorf("enrich.base_url is required when enrichment is enabled")
		}
		if c.Enrich.Workers < 1 {
			return fmt.Errorf("enrich.workers must be at least 1, got %d", c.Enrich.Workers)
		}
	}

	if len(c.Probe.Endpoints) == 0 {
		return fmt.Errorf("probe.endpoints must not be empty")
	}

	switch c.Search.Mode {
	case "adaptive", "merge":
	default:
		return fmt.Errorf("search.mode must be \"adaptive\" or \"merge\", got %q", c.Search.Mode)
	}

	if !isSupportedLanguage(c.Search.DefaultLanguage) {
		return fmt.Errorf("search.default_language %q is not one of %v",
			c.Search.DefaultLanguage, SupportedLanguages)
	}

	return nil
}

func isSupportedLanguage(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}
