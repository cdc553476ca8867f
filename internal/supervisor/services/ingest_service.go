// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/cinegraph/cinegraph/internal/config"
	"github.com/cinegraph/cinegraph/internal/logging"
	"github.com/cinegraph/cinegraph/internal/sparql"
)

// PageFetcher pulls one page of movie rows from the live endpoint.
// Unlike query-path lookups this returns errors: ingestion must tell an
// empty page apart from a failed request.
type PageFetcher interface {
	Ingest(ctx context.Context, lang string, limit, offset int) ([]sparql.Binding, error)
}

// PageSink persists fetched rows. Returns how many rows were new.
type PageSink interface {
	Ingest(lang string, page []sparql.Binding) (int, error)
}

// IngestService periodically refreshes the reduced subset: for each
// configured language it pages through the live endpoint until an empty
// page or the page cap, persisting rows as it goes. A fetch error stops
// that language's pass but leaves previously persisted rows untouched.
type IngestService struct {
	fetcher  PageFetcher
	sink     PageSink
	cfg      config.ReducedConfig
	interval time.Duration
	logger   zerolog.Logger
}

// NewIngestService creates the ingestion loop service.
func NewIngestService(fetcher PageFetcher, sink PageSink, cfg config.ReducedConfig) *IngestService {
	interval := cfg.RefreshInterval
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &IngestService{
		fetcher:  fetcher,
		sink:     sink,
		cfg:      cfg,
		interval: interval,
		logger:   logging.WithComponent("ingest"),
	}
}

// Serve implements suture.Service. One full pass runs at startup, then
// every refresh interval.
func (s *IngestService) Serve(ctx context.Context) error {
	s.runPass(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runPass(ctx)
		}
	}
}

// runPass ingests every configured language once.
func (s *IngestService) runPass(ctx context.Context) {
	start := time.Now()
	total := 0
	for _, lang := range s.cfg.Languages {
		if ctx.Err() != nil {
			return
		}
		total += s.ingestLanguage(ctx, lang)
	}
	s.logger.Info().
		Int("new_rows", total).
		Dur("elapsed", time.Since(start)).
		Msg("reduced subset refresh complete")
}

func (s *IngestService) ingestLanguage(ctx context.Context, lang string) int {
	pageSize := s.cfg.PageSize
	if pageSize <= 0 {
		pageSize = 500
	}
	maxPages := s.cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 20
	}

	added := 0
	for page := 0; page < maxPages; page++ {
		offset := page * pageSize
		rows, err := s.fetcher.Ingest(ctx, lang, pageSize, offset)
		if err != nil {
			s.logger.Error().Err(err).
				Str("language", lang).
				Int("offset", offset).
				Msg("ingest page fetch failed, keeping existing rows")
			return added
		}
		if len(rows) == 0 {
			break
		}

		n, err := s.sink.Ingest(lang, rows)
		if err != nil {
			s.logger.Error().Err(err).
				Str("language", lang).
				Msg("ingest page persist failed")
			return added
		}
		added += n

		if len(rows) < pageSize {
			break
		}
	}

	s.logger.Debug().Str("language", lang).Int("new_rows", added).Msg("language ingest done")
	return added
}

// String implements fmt.Stringer; suture uses it in log messages.
func (s *IngestService) String() string {
	return "reduced-ingest"
}
