// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/cinegraph/cinegraph/internal/logging"
	"github.com/cinegraph/cinegraph/internal/metrics"
	"github.com/cinegraph/cinegraph/internal/models"
	"github.com/cinegraph/cinegraph/internal/sparql"
)

// reducedKeyPrefix namespaces movie rows in Badger. Full key shape:
// movie:<lang>:<uri>.
const reducedKeyPrefix = "movie:"

// ReducedStore is the locally persisted DBpedia subset used when the live
// endpoint is unreachable. Rows are written by the background ingest
// service and mirrored in memory for querying; Badger provides the
// across-restart persistence.
//
// The reduced subset carries no actor or studio data (the ingest query
// does not fetch them), so those plan constraints yield zero matches here.
type ReducedStore struct {
	db     *badger.DB
	logger zerolog.Logger

	mu sync.RWMutex
	// rows mirrors the persisted subset, keyed by language.
	rows map[string][]sparql.Binding
	// seen tracks ingested URIs for the process lifetime so successive
	// paginated ingest calls never insert the same movie twice.
	seen map[string]struct{}
}

// OpenReduced opens (or creates) the Badger database at path and loads the
// persisted rows into the in-memory mirror.
func OpenReduced(path string) (*ReducedStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening reduced store at %s: %w", path, err)
	}

	s := &ReducedStore{
		db:     db,
		logger: logging.WithComponent("store.reduced"),
		rows:   make(map[string][]sparql.Binding),
		seen:   make(map[string]struct{}),
	}
	if err := s.loadMirror(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("loading reduced store mirror: %w", err)
	}

	total := 0
	for lang, rows := range s.rows {
		metrics.ReducedMovies.WithLabelValues(lang).Set(float64(len(rows)))
		total += len(rows)
	}
	s.logger.Info().Int("movies", total).Str("path", path).Msg("reduced store opened")
	return s, nil
}

func (s *ReducedStore) loadMirror() error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(reducedKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			lang, uri, ok := splitReducedKey(string(item.Key()))
			if !ok {
				continue
			}
			err := item.Value(func(val []byte) error {
				var row sparql.Binding
				if err := json.Unmarshal(val, &row); err != nil {
					s.logger.Warn().Err(err).Str("uri", uri).Msg("skipping corrupt reduced row")
					return nil
				}
				s.rows[lang] = append(s.rows[lang], row)
				s.seen[uri] = struct{}{}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func reducedKey(lang, uri string) []byte {
	return []byte(reducedKeyPrefix + lang + ":" + uri)
}

func splitReducedKey(key string) (lang, uri string, ok bool) {
	rest, found := strings.CutPrefix(key, reducedKeyPrefix)
	if !found {
		return "", "", false
	}
	lang, uri, found = strings.Cut(rest, ":")
	if !found || lang == "" || uri == "" {
		return "", "", false
	}
	return lang, uri, true
}

// Ingest persists one page of bulk-load rows, skipping URIs already seen
// this process lifetime or present from an earlier run. Returns how many
// rows were added.
func (s *ReducedStore) Ingest(lang string, page []sparql.Binding) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The page is staged here and merged into the mirror only after the
	// transaction commits; a failed Update must leave the mirror matching
	// what Badger actually persisted.
	var staged []sparql.Binding
	var stagedURIs []string
	pageSeen := make(map[string]struct{}, len(page))
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, row := range page {
			uri := row["film"]
			if uri == "" {
				continue
			}
			if _, dup := s.seen[uri]; dup {
				continue
			}
			if _, dup := pageSeen[uri]; dup {
				continue
			}
			pageSeen[uri] = struct{}{}
			val, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("encoding row %s: %w", uri, err)
			}
			if err := txn.Set(reducedKey(lang, uri), val); err != nil {
				return fmt.Errorf("persisting row %s: %w", uri, err)
			}
			staged = append(staged, row)
			stagedURIs = append(stagedURIs, uri)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.rows[lang] = append(s.rows[lang], staged...)
	for _, uri := range stagedURIs {
		s.seen[uri] = struct{}{}
	}

	metrics.ReducedMovies.WithLabelValues(lang).Set(float64(len(s.rows[lang])))
	metrics.ReducedIngestPages.WithLabelValues(lang).Inc()
	return len(staged), nil
}

// Movies evaluates the plan over the in-memory mirror for the query's
// language. Actor and studio constraints cannot match (not ingested).
func (s *ReducedStore) Movies(ctx context.Context, q sparql.Query) []sparql.Binding {
	plan := q.Plan

	s.mu.RLock()
	candidates := s.rows[q.Language]
	s.mu.RUnlock()

	if plan.Actor != "" || plan.Studio != "" {
		return nil
	}

	out := make([]sparql.Binding, 0, plan.Limit)
	for _, row := range candidates {
		if ctx.Err() != nil {
			break
		}
		if !reducedRowMatches(row, plan) {
			continue
		}
		out = append(out, row)
		if len(out) >= plan.Limit {
			break
		}
	}
	return out
}

func reducedRowMatches(row sparql.Binding, plan sparql.Plan) bool {
	if plan.Director != "" &&
		!strings.Contains(strings.ToLower(row["directors"]), strings.ToLower(plan.Director)) {
		return false
	}
	if plan.Genre != "" &&
		!strings.Contains(strings.ToLower(row["genres"]), strings.ToLower(plan.Genre)) {
		return false
	}
	if plan.YearPrefix != "" && !strings.HasPrefix(row["releaseDate"], plan.YearPrefix) {
		return false
	}
	return true
}

// Count returns the mirrored row count for a language.
func (s *ReducedStore) Count(lang string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows[lang])
}

// TotalCount returns the mirrored row count across all languages.
func (s *ReducedStore) TotalCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, rows := range s.rows {
		total += len(rows)
	}
	return total
}

// Healthy reports whether the database is open.
func (s *ReducedStore) Healthy(_ context.Context) bool {
	return s.db != nil && !s.db.IsClosed()
}

func (s *ReducedStore) Kind() models.SourceKind { return models.SourceReduced }

// Close flushes and closes the underlying database.
func (s *ReducedStore) Close() error {
	return s.db.Close()
}
