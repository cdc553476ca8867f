// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cinegraph/cinegraph/internal/config"
	"github.com/cinegraph/cinegraph/internal/sparql"
)

// fakeFetcher serves pre-built pages per language and can fail at a
// given offset.
type fakeFetcher struct {
	pages  map[string][][]sparql.Binding
	failAt int // offset that errors, -1 for never
	calls  int
}

func (f *fakeFetcher) Ingest(_ context.Context, lang string, limit, offset int) ([]sparql.Binding, error) {
	f.calls++
	if f.failAt >= 0 && offset == f.failAt {
		return nil, errors.New("endpoint unreachable")
	}
	page := offset / limit
	langPages := f.pages[lang]
	if page >= len(langPages) {
		return nil, nil
	}
	return langPages[page], nil
}

type fakeSink struct {
	rows map[string]int
}

func (s *fakeSink) Ingest(lang string, page []sparql.Binding) (int, error) {
	if s.rows == nil {
		s.rows = make(map[string]int)
	}
	s.rows[lang] += len(page)
	return len(page), nil
}

func fullPage(n int) []sparql.Binding {
	page := make([]sparql.Binding, n)
	for i := range page {
		page[i] = sparql.Binding{"film": "http://example.org/f", "title": "t"}
	}
	return page
}

func TestIngestLanguagePagination(t *testing.T) {
	fetcher := &fakeFetcher{
		failAt: -1,
		pages: map[string][][]sparql.Binding{
			"en": {fullPage(2), fullPage(1)}, // short second page ends the pass
		},
	}
	sink := &fakeSink{}
	svc := NewIngestService(fetcher, sink, config.ReducedConfig{
		Languages: []string{"en"},
		PageSize:  2,
		MaxPages:  10,
	})

	added := svc.ingestLanguage(context.Background(), "en")

	if added != 3 {
		t.Errorf("added = %d, want 3", added)
	}
	if sink.rows["en"] != 3 {
		t.Errorf("persisted = %d, want 3", sink.rows["en"])
	}
	if fetcher.calls != 2 {
		t.Errorf("fetch calls = %d, want 2 (short page stops pagination)", fetcher.calls)
	}
}

func TestIngestStopsAtEmptyPage(t *testing.T) {
	fetcher := &fakeFetcher{
		failAt: -1,
		pages: map[string][][]sparql.Binding{
			"en": {fullPage(2), fullPage(2)},
		},
	}
	sink := &fakeSink{}
	svc := NewIngestService(fetcher, sink, config.ReducedConfig{
		Languages: []string{"en"},
		PageSize:  2,
		MaxPages:  10,
	})

	added := svc.ingestLanguage(context.Background(), "en")

	if added != 4 {
		t.Errorf("added = %d, want 4", added)
	}
	// Two full pages plus the empty page that ends the pass.
	if fetcher.calls != 3 {
		t.Errorf("fetch calls = %d, want 3", fetcher.calls)
	}
}

func TestIngestFetchErrorKeepsExistingRows(t *testing.T) {
	fetcher := &fakeFetcher{
		failAt: 2, // second page errors
		pages: map[string][][]sparql.Binding{
			"en": {fullPage(2), fullPage(2), fullPage(2)},
		},
	}
	sink := &fakeSink{}
	svc := NewIngestService(fetcher, sink, config.ReducedConfig{
		Languages: []string{"en"},
		PageSize:  2,
		MaxPages:  10,
	})

	added := svc.ingestLanguage(context.Background(), "en")

	if added != 2 {
		t.Errorf("added = %d, want 2 (first page only)", added)
	}
	if sink.rows["en"] != 2 {
		t.Errorf("persisted = %d, want 2", sink.rows["en"])
	}
}

func TestIngestHonorsMaxPages(t *testing.T) {
	fetcher := &fakeFetcher{
		failAt: -1,
		pages: map[string][][]sparql.Binding{
			"en": {fullPage(2), fullPage(2), fullPage(2), fullPage(2)},
		},
	}
	sink := &fakeSink{}
	svc := NewIngestService(fetcher, sink, config.ReducedConfig{
		Languages: []string{"en"},
		PageSize:  2,
		MaxPages:  2,
	})

	svc.ingestLanguage(context.Background(), "en")

	if fetcher.calls != 2 {
		t.Errorf("fetch calls = %d, want 2 (page cap)", fetcher.calls)
	}
}

func TestIngestServeStopsOnCancel(t *testing.T) {
	fetcher := &fakeFetcher{failAt: -1, pages: map[string][][]sparql.Binding{}}
	svc := NewIngestService(fetcher, &fakeSink{}, config.ReducedConfig{
		Languages:       []string{"en", "es"},
		PageSize:        2,
		MaxPages:        1,
		RefreshInterval: time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not stop after cancellation")
	}
}

func TestIngestRunPassCoversAllLanguages(t *testing.T) {
	fetcher := &fakeFetcher{
		failAt: -1,
		pages: map[string][][]sparql.Binding{
			"en": {fullPage(1)},
			"es": {fullPage(1)},
		},
	}
	sink := &fakeSink{}
	svc := NewIngestService(fetcher, sink, config.ReducedConfig{
		Languages: []string{"en", "es"},
		PageSize:  2,
		MaxPages:  5,
	})

	svc.runPass(context.Background())

	if sink.rows["en"] != 1 || sink.rows["es"] != 1 {
		t.Errorf("rows = %v, want one per language", sink.rows)
	}
}
