// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "CINEGRAPH_"

// Defaults returns the built-in configuration. Every layer merges on top
// of these values, so the zero-config binary is runnable.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8080,
			Timeout: 30 * time.Second,
		},
		Ontology: OntologyConfig{
			Path: "data/movies.rdf",
		},
		DBpedia: DBpediaConfig{
			Endpoints: map[string]string{
				"en": "https://dbpedia.org/sparql",
				"es": "https://es.dbpedia.org/sparql",
				"fr": "https://fr.dbpedia.org/sparql",
				"de": "https://de.dbpedia.org/sparql",
			},
			QueryTimeout:  8 * time.Second,
			IngestTimeout: 60 * time.Second,
			ResultLimit:   50,
			RatePerSecond: 2,
		},
		Reduced: ReducedConfig{
			Enabled:         true,
			Path:            "data/reduced",
			Languages:       []string{"en", "es"},
			PageSize:        500,
			MaxPages:        20,
			RefreshInterval: 24 * time.Hour,
		},
		Enrich: EnrichConfig{
			Enabled: false,
			BaseURL: "https://api.themoviedb.org/3",
			Workers: 5,
			Timeout: 10 * time.Second,
		},
		Probe: ProbeConfig{
			Endpoints: []string{
				"https://dbpedia.org/sparql",
				"https://www.wikidata.org",
				"https://www.google.com",
			},
			Timeout:  3 * time.Second,
			CacheTTL: 30 * time.Second,
		},
		Cache: CacheConfig{
			ResultCapacity: 1000,
			ResultTTL:      5 * time.Minute,
			LookupCapacity: 2000,
			LookupTTL:      time.Hour,
		},
		Search: SearchConfig{
			Mode:            "adaptive",
			DefaultLanguage: "en",
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// CINEGRAPH_* environment variables, then validates the result.
//
// The file path is resolved from the explicit argument, the CONFIG_PATH
// environment variable, or a small set of conventional locations. A missing
// file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if resolved := findConfigFile(path); resolved != "" {
		if err := k.Load(file.Provider(resolved), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", resolved, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	processSliceFields(k, &cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// envTransformFunc maps CINEGRAPH_SERVER_PORT to server.port. Only the
// first underscore becomes a section separator; the remainder keeps its
// underscores so multi-word keys like query_timeout survive.
func envTransformFunc(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if i := strings.Index(s, "_"); i > 0 {
		return s[:i] + "." + s[i+1:]
	}
	return s
}

// processSliceFields re-splits slice-valued keys that arrived as a single
// comma-separated env string. Koanf's env provider cannot know a key is a
// slice, so "en,es,fr" would otherwise unmarshal as a one-element slice.
func processSliceFields(k *koanf.Koanf, cfg *Config) {
	cfg.Reduced.Languages = splitIfScalar(cfg.Reduced.Languages)
	cfg.Probe.Endpoints = splitIfScalar(cfg.Probe.Endpoints)
	cfg.Security.CORSOrigins = splitIfScalar(cfg.Security.CORSOrigins)
}

func splitIfScalar(current []string) []string {
	if len(current) != 1 || !strings.Contains(current[0], ",") {
		return current
	}
	parts := strings.Split(current[0], ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// findConfigFile resolves the config file location. Explicit path wins,
// then CONFIG_PATH, then conventional locations.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	for _, candidate := range []string{
		"config.yaml",
		"config/config.yaml",
		"/etc/cinegraph/config.yaml",
	} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
