// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

package store

import (
	"context"
	"testing"

	"github.com/cinegraph/cinegraph/internal/models"
	"github.com/cinegraph/cinegraph/internal/sparql"
)

func openTestReduced(t *testing.T) *ReducedStore {
	t.Helper()
	s, err := OpenReduced(t.TempDir())
	if err != nil {
		t.Fatalf("OpenReduced failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func reducedQuery(f models.QueryFilterSet) sparql.Query {
	return sparql.Build(models.SourceReduced, f, 10)
}

var testPage = []sparql.Binding{
	{
		"film":        "http://dbpedia.org/resource/The_Matrix",
		"title":       "The Matrix",
		"releaseDate": "1999-03-31",
		"directors":   "The Wachowskis",
		"genres":      "Science fiction",
	},
	{
		"film":        "http://dbpedia.org/resource/Heat_(1995_film)",
		"title":       "Heat",
		"releaseDate": "1995-12-15",
		"directors":   "Michael Mann",
		"genres":      "Crime, Thriller",
	},
}

func TestReducedIngestAndQuery(t *testing.T) {
	s := openTestReduced(t)

	added, err := s.Ingest("en", testPage)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if added != 2 {
		t.Fatalf("expected 2 rows added, got %d", added)
	}
	if s.Count("en") != 2 {
		t.Errorf("expected count 2, got %d", s.Count("en"))
	}

	rows := s.Movies(context.Background(),
		reducedQuery(models.QueryFilterSet{Genre: "thriller", Language: "en"}))
	if len(rows) != 1 || rows[0]["title"] != "Heat" {
		t.Errorf("expected Heat for genre thriller, got %v", rows)
	}

	rows = s.Movies(context.Background(),
		reducedQuery(models.QueryFilterSet{Year: "1999", Language: "en"}))
	if len(rows) != 1 || rows[0]["title"] != "The Matrix" {
		t.Errorf("expected The Matrix for year 1999, got %v", rows)
	}

	rows = s.Movies(context.Background(),
		reducedQuery(models.QueryFilterSet{Director: "mann", Language: "en"}))
	if len(rows) != 1 || rows[0]["title"] != "Heat" {
		t.Errorf("expected Heat for director mann, got %v", rows)
	}
}

func TestReducedIngestDeduplicatesAcrossPages(t *testing.T) {
	s := openTestReduced(t)

	if _, err := s.Ingest("en", testPage); err != nil {
		t.Fatal(err)
	}

	// Second page overlaps the first: only the new row lands.
	overlap := []sparql.Binding{
		testPage[0],
		{
			"film":  "http://dbpedia.org/resource/Alien_(film)",
			"title": "Alien",
		},
	}
	added, err := s.Ingest("en", overlap)
	if err != nil {
		t.Fatal(err)
	}
	if added != 1 {
		t.Errorf("expected 1 new row, got %d", added)
	}
	if s.Count("en") != 3 {
		t.Errorf("expected 3 total rows, got %d", s.Count("en"))
	}
}

func TestReducedFailedIngestLeavesMirrorUntouched(t *testing.T) {
	s, err := OpenReduced(t.TempDir())
	if err != nil {
		t.Fatalf("OpenReduced failed: %v", err)
	}

	if _, err := s.Ingest("en", testPage[:1]); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	// A closed database fails the transaction; the mirror must still
	// match what was actually persisted.
	_ = s.Close()

	added, err := s.Ingest("en", testPage[1:])
	if err == nil {
		t.Fatal("Ingest on a closed store should fail")
	}
	if added != 0 {
		t.Errorf("failed ingest reported %d rows added, want 0", added)
	}
	if s.Count("en") != 1 {
		t.Errorf("mirror count = %d after failed ingest, want 1", s.Count("en"))
	}
	if _, dup := s.seen[testPage[1]["film"]]; dup {
		t.Error("URI from the failed page must not be marked seen")
	}
}

func TestReducedIngestSkipsDuplicatesWithinPage(t *testing.T) {
	s := openTestReduced(t)

	page := []sparql.Binding{testPage[0], testPage[0], testPage[1]}
	added, err := s.Ingest("en", page)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if added != 2 {
		t.Errorf("expected 2 rows added from page with repeat, got %d", added)
	}
	if s.Count("en") != 2 {
		t.Errorf("expected count 2, got %d", s.Count("en"))
	}
}

func TestReducedPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenReduced(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Ingest("en", testPage); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenReduced(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	if reopened.Count("en") != 2 {
		t.Errorf("expected 2 persisted rows, got %d", reopened.Count("en"))
	}

	// The mirror load seeds the seen set: re-ingesting is a no-op.
	added, err := reopened.Ingest("en", testPage)
	if err != nil {
		t.Fatal(err)
	}
	if added != 0 {
		t.Errorf("expected 0 rows added after reopen, got %d", added)
	}
}

func TestReducedActorConstraintYieldsNothing(t *testing.T) {
	s := openTestReduced(t)
	if _, err := s.Ingest("en", testPage); err != nil {
		t.Fatal(err)
	}

	// Actor data is not ingested into the subset.
	rows := s.Movies(context.Background(),
		reducedQuery(models.QueryFilterSet{Actor: "Keanu Reeves", Language: "en"}))
	if len(rows) != 0 {
		t.Errorf("expected 0 rows for actor constraint, got %d", len(rows))
	}
}

func TestReducedLanguageIsolation(t *testing.T) {
	s := openTestReduced(t)
	if _, err := s.Ingest("en", testPage); err != nil {
		t.Fatal(err)
	}

	rows := s.Movies(context.Background(),
		reducedQuery(models.QueryFilterSet{Language: "es"}))
	if len(rows) != 0 {
		t.Errorf("expected 0 Spanish rows, got %d", len(rows))
	}
}

func TestReducedHealthy(t *testing.T) {
	s := openTestReduced(t)
	if !s.Healthy(context.Background()) {
		t.Error("open store should be healthy")
	}
}
