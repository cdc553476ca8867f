// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cinegraph/cinegraph/internal/cache"
	"github.com/cinegraph/cinegraph/internal/config"
	"github.com/cinegraph/cinegraph/internal/models"
)

// slowClient returns a deterministic poster per title with deliberately
// inverted latency, so completion order differs from input order.
type slowClient struct {
	mu    sync.Mutex
	calls int
}

func (c *slowClient) MovieByTitle(_ context.Context, title, _ string) (Lookup, bool) {
	c.mu.Lock()
	c.calls++
	n := c.calls
	c.mu.Unlock()

	// Later calls finish sooner.
	time.Sleep(time.Duration(50/n) * time.Millisecond)
	return Lookup{Title: title, PosterPath: "/" + strings.ReplaceAll(title, " ", "_") + ".jpg"}, true
}

func (c *slowClient) Role(context.Context, string, string) (models.IntentKind, bool) {
	return "", false
}

func newTestEnricher(client Client) *Enricher {
	return New(client, cache.NewLRU(100, time.Minute), 5)
}

func TestApplyPositionalOrdering(t *testing.T) {
	records := make([]models.MovieRecord, 20)
	for i := range records {
		records[i] = models.MovieRecord{
			Title:    fmt.Sprintf("Movie %02d", i),
			Language: "en",
		}
	}

	newTestEnricher(&slowClient{}).Apply(context.Background(), records)

	for i, rec := range records {
		want := fmt.Sprintf("%s/Movie_%02d.jpg", posterBaseURL, i)
		if rec.PosterURL != want {
			t.Errorf("record %d: expected %q, got %q", i, want, rec.PosterURL)
		}
	}
}

// failingClient never finds anything.
type failingClient struct{}

func (failingClient) MovieByTitle(context.Context, string, string) (Lookup, bool) {
	return Lookup{}, false
}

func (failingClient) Role(context.Context, string, string) (models.IntentKind, bool) {
	return "", false
}

func TestApplyFailuresLeaveRecordsUntouched(t *testing.T) {
	records := []models.MovieRecord{
		{Title: "Obscure Film", Language: "en"},
		{Title: "Another One", Language: "en"},
	}

	newTestEnricher(failingClient{}).Apply(context.Background(), records)

	for _, rec := range records {
		if rec.PosterURL != "" {
			t.Errorf("failed lookups should leave PosterURL empty, got %q", rec.PosterURL)
		}
	}
}

// countingClient counts lookup invocations.
type countingClient struct {
	calls atomic.Int64
}

func (c *countingClient) MovieByTitle(_ context.Context, title, _ string) (Lookup, bool) {
	c.calls.Add(1)
	return Lookup{Title: title, PosterPath: "/x.jpg"}, true
}

func (c *countingClient) Role(context.Context, string, string) (models.IntentKind, bool) {
	return "", false
}

func TestApplyUsesLookupCache(t *testing.T) {
	client := &countingClient{}
	e := newTestEnricher(client)

	records := []models.MovieRecord{{Title: "The Matrix", Language: "en"}}
	e.Apply(context.Background(), records)
	e.Apply(context.Background(), records)

	if got := client.calls.Load(); got != 1 {
		t.Errorf("expected 1 upstream lookup with warm cache, got %d", got)
	}
}

func TestHTTPClientMovieByTitle(t *testing.T) {
	var gotQuery, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query().Get("query")
		gotLang = r.URL.Query().Get("language")
		_, _ = w.Write([]byte(`{"results":[{"title":"Matrix","poster_path":"/m.jpg","release_date":"1999-03-31"}]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(&config.EnrichConfig{BaseURL: srv.URL, APIKey: "k", Timeout: 5 * time.Second})

	lu, ok := c.MovieByTitle(context.Background(), "The Matrix (1999 film)", "es")
	if !ok {
		t.Fatal("expected a lookup result")
	}
	if lu.PosterPath != "/m.jpg" {
		t.Errorf("poster path: got %q", lu.PosterPath)
	}
	// Parenthetical disambiguation is stripped, Spanish maps to es-MX.
	if gotQuery != "The Matrix" {
		t.Errorf("query: got %q", gotQuery)
	}
	if gotLang != "es-MX" {
		t.Errorf("language: got %q", gotLang)
	}
}

func TestHTTPClientRole(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/person" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"name":"Stanley Kubrick","known_for_department":"Directing"}]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(&config.EnrichConfig{BaseURL: srv.URL, APIKey: "k", Timeout: 5 * time.Second})

	role, ok := c.Role(context.Background(), "Stanley Kubrick", "en")
	if !ok || role != models.IntentDirector {
		t.Errorf("expected director role, got %q ok=%v", role, ok)
	}
}

func TestHTTPClientDegradesOnFailure(t *testing.T) {
	c := NewHTTPClient(&config.EnrichConfig{BaseURL: "http://127.0.0.1:1", APIKey: "k", Timeout: time.Second})

	if _, ok := c.MovieByTitle(context.Background(), "Anything", "en"); ok {
		t.Error("unreachable service should yield ok=false")
	}
	if _, ok := c.Role(context.Background(), "Anyone", "en"); ok {
		t.Error("unreachable service should yield ok=false")
	}
}
