// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

// Package search runs the query pipeline: structured filters (or free
// text through intent extraction) fan into per-source queries, raw rows
// normalize into canonical records, and the sources merge or switch
// adaptively on connectivity.
package search

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cinegraph/cinegraph/internal/cache"
	"github.com/cinegraph/cinegraph/internal/config"
	"github.com/cinegraph/cinegraph/internal/enrich"
	"github.com/cinegraph/cinegraph/internal/intent"
	"github.com/cinegraph/cinegraph/internal/logging"
	"github.com/cinegraph/cinegraph/internal/metrics"
	"github.com/cinegraph/cinegraph/internal/models"
	"github.com/cinegraph/cinegraph/internal/normalize"
	"github.com/cinegraph/cinegraph/internal/sparql"
	"github.com/cinegraph/cinegraph/internal/store"
)

// Modes for source handling.
const (
	ModeAdaptive = "adaptive"
	ModeMerge    = "merge"
)

// Service is the search pipeline.
type Service struct {
	local    store.Store
	external store.Store
	reduced  store.Store
	prober   probeFunc
	intents  *intent.Extractor
	enricher *enrich.Enricher // nil when enrichment is disabled
	results  cache.Cacher
	mode     string
	limit    int
	logger   zerolog.Logger
}

type probeFunc func(ctx context.Context) bool

// Prober matches internal/probe.Prober without importing it; anything
// with Online(ctx) works.
type Prober interface {
	Online(ctx context.Context) bool
}

// New wires the pipeline. reduced and enricher may be nil.
func New(cfg *config.SearchConfig, limit int, local, external, reduced store.Store,
	prober Prober, intents *intent.Extractor, enricher *enrich.Enricher,
	resultCache cache.Cacher) *Service {

	mode := cfg.Mode
	if mode != ModeMerge {
		mode = ModeAdaptive
	}
	return &Service{
		local:    local,
		external: external,
		reduced:  reduced,
		prober:   prober.Online,
		intents:  intents,
		enricher: enricher,
		results:  resultCache,
		mode:     mode,
		limit:    limit,
		logger:   logging.WithComponent("search"),
	}
}

// Search runs the pipeline for a structured filter set. The bool reports
// whether the result was served from the bounded result cache.
func (s *Service) Search(ctx context.Context, f models.QueryFilterSet) (models.SearchResult, bool) {
	if f.Language == "" {
		f.Language = "en"
	}

	cacheKey := cache.GenerateKey("search", struct {
		Mode    string
		Filters models.QueryFilterSet
	}{s.mode, f})

	if cached, ok := s.results.Get(cacheKey); ok {
		if result, ok := cached.(models.SearchResult); ok {
			metrics.RecordCacheAccess("results", true)
			return result, true
		}
	}
	metrics.RecordCacheAccess("results", false)

	var result models.SearchResult
	if s.mode == ModeMerge {
		result = s.searchMerge(ctx, f)
	} else {
		result = s.searchAdaptive(ctx, f)
	}

	if s.enricher != nil {
		s.enricher.Apply(ctx, result.Results)
	}

	s.results.Set(cacheKey, result)
	return result, false
}

// SearchText extracts intent from free text and runs the pipeline. When
// no intent fires, the diagnostic carries the raw extracted entities and
// the result is empty; this is never a silent failure.
func (s *Service) SearchText(ctx context.Context, text, lang string) (models.SearchResult, bool, *models.IntentDiagnostic) {
	if lang == "" {
		lang = "en"
	}
	extracted := s.intents.Extract(ctx, text, lang)

	if !extracted.Any() {
		s.logger.Info().Str("text", text).Str("language", lang).
			Msg("no intent understood from query text")
		return models.SearchResult{Results: []models.MovieRecord{}}, false, &models.IntentDiagnostic{
			Text:     text,
			Language: lang,
			Persons:  extracted.Persons,
			Years:    extracted.Years,
			Genres:   extracted.Genres,
			Studios:  extracted.Studios,
		}
	}

	result, cached := s.Search(ctx, intent.ToFilterSet(extracted, lang))
	return result, cached, nil
}

// searchAdaptive queries exactly one source set: online means the live
// endpoint alone, offline means local plus reduced. A binary switch, not
// a blend.
func (s *Service) searchAdaptive(ctx context.Context, f models.QueryFilterSet) models.SearchResult {
	if s.prober(ctx) {
		records := s.queryStore(ctx, s.external, f)
		return models.SearchResult{
			Results: records,
			Total:   len(records),
			Mode:    "online",
			Sources: []string{string(models.SourceExternal)},
		}
	}

	records := s.queryStore(ctx, s.local, f)
	sources := []string{string(models.SourceLocal)}
	if s.reduced != nil {
		records = append(records, s.queryStore(ctx, s.reduced, f)...)
		sources = append(sources, string(models.SourceReduced))
	}
	records = Dedup(records)

	return models.SearchResult{
		Results: records,
		Total:   len(records),
		Mode:    "offline",
		Sources: sources,
	}
}

// searchMerge queries every source and deduplicates, first occurrence in
// (local, external, reduced) order winning.
func (s *Service) searchMerge(ctx context.Context, f models.QueryFilterSet) models.SearchResult {
	records := s.queryStore(ctx, s.local, f)
	records = append(records, s.queryStore(ctx, s.external, f)...)
	sources := []string{string(models.SourceLocal), string(models.SourceExternal)}
	if s.reduced != nil {
		records = append(records, s.queryStore(ctx, s.reduced, f)...)
		sources = append(sources, string(models.SourceReduced))
	}
	records = Dedup(records)

	return models.SearchResult{
		Results: records,
		Total:   len(records),
		Mode:    "merge",
		Sources: sources,
	}
}

// Browse returns up to limit records from one source with no filters.
func (s *Service) Browse(ctx context.Context, kind models.SourceKind, lang string) []models.MovieRecord {
	if lang == "" {
		lang = "en"
	}
	target := s.storeFor(kind)
	if target == nil {
		return []models.MovieRecord{}
	}
	return s.queryStore(ctx, target, models.QueryFilterSet{Language: lang})
}

func (s *Service) storeFor(kind models.SourceKind) store.Store {
	switch kind {
	case models.SourceLocal:
		return s.local
	case models.SourceExternal:
		return s.external
	case models.SourceReduced:
		return s.reduced
	default:
		return nil
	}
}

func (s *Service) queryStore(ctx context.Context, target store.Store, f models.QueryFilterSet) []models.MovieRecord {
	start := time.Now()
	q := sparql.Build(target.Kind(), f, s.limit)
	rows := target.Movies(ctx, q)
	records := normalize.Rows(rows, target.Kind(), q.Language)
	metrics.RecordStoreQuery(string(target.Kind()), q.Language, time.Since(start), len(records))
	return records
}

// Dedup keeps the first occurrence per dedup key (lowercased trimmed
// title, URI fallback) and drops later duplicates.
func Dedup(records []models.MovieRecord) []models.MovieRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]models.MovieRecord, 0, len(records))
	for _, rec := range records {
		key := rec.DedupKey()
		if key == "" {
			out = append(out, rec)
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// Health is the per-component status aggregate.
type Health struct {
	Status  string          `json:"status"`
	Online  bool            `json:"online"`
	Stores  map[string]bool `json:"stores"`
	Reduced int             `json:"reduced_movies"`
}

// HealthCheck reports per-store health, probe state, and the reduced
// store's row count.
func (s *Service) HealthCheck(ctx context.Context) Health {
	h := Health{
		Online: s.prober(ctx),
		Stores: make(map[string]bool),
	}

	h.Stores[string(models.SourceLocal)] = s.local.Healthy(ctx)
	h.Stores[string(models.SourceExternal)] = s.external.Healthy(ctx)
	if s.reduced != nil {
		h.Stores[string(models.SourceReduced)] = s.reduced.Healthy(ctx)
		if rs, ok := s.reduced.(*store.ReducedStore); ok {
			h.Reduced = rs.TotalCount()
		}
	}

	healthy, total := 0, 0
	for _, ok := range h.Stores {
		total++
		if ok {
			healthy++
		}
	}
	switch {
	case healthy == total:
		h.Status = "healthy"
	case healthy > 0:
		h.Status = "partial"
	default:
		h.Status = "unhealthy"
	}
	return h
}

// NormalizeLanguage lowers and validates a language parameter, falling
// back to the default for unsupported codes.
func NormalizeLanguage(lang, fallback string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	for _, supported := range config.SupportedLanguages {
		if lang == supported {
			return lang
		}
	}
	return fallback
}
