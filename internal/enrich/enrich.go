// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

package enrich

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cinegraph/cinegraph/internal/cache"
	"github.com/cinegraph/cinegraph/internal/logging"
	"github.com/cinegraph/cinegraph/internal/metrics"
	"github.com/cinegraph/cinegraph/internal/models"
)

// posterBaseURL prefixes TMDB poster paths into full image URLs.
const posterBaseURL = "https://image.tmdb.org/t/p/w500"

// Enricher fans title lookups out across a fixed worker pool and applies
// the results to movie records. Result order is positional: result[i]
// always belongs to input[i], regardless of completion order.
type Enricher struct {
	client  Client
	cache   cache.Cacher
	workers int
	logger  zerolog.Logger
}

// New builds an Enricher. The lookup cache is injected here rather than
// held as ambient state.
func New(client Client, lookupCache cache.Cacher, workers int) *Enricher {
	if workers < 1 {
		workers = 1
	}
	return &Enricher{
		client:  client,
		cache:   lookupCache,
		workers: workers,
		logger:  logging.WithComponent("enrich"),
	}
}

// Apply enriches records in place with poster URLs. Per-record lookup
// failures leave the record untouched; the batch always completes.
func (e *Enricher) Apply(ctx context.Context, records []models.MovieRecord) {
	if len(records) == 0 {
		return
	}
	start := time.Now()

	lookups := e.lookupAll(ctx, records)
	for i, lu := range lookups {
		if lu.PosterPath != "" {
			records[i].PosterURL = posterBaseURL + lu.PosterPath
		}
	}

	metrics.EnrichmentDuration.Observe(time.Since(start).Seconds())
}

// lookupAll resolves one Lookup per record, positionally. Workers pull
// indexes from a channel; writes go to distinct slice slots, so no result
// locking is needed.
func (e *Enricher) lookupAll(ctx context.Context, records []models.MovieRecord) []Lookup {
	results := make([]Lookup, len(records))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = e.lookupOne(ctx, records[i].Title, records[i].Language)
			}
		}()
	}

	for i := range records {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func (e *Enricher) lookupOne(ctx context.Context, title, lang string) Lookup {
	key := cache.GenerateKey("enrich", map[string]string{"title": title, "lang": lang})
	if cached, ok := e.cache.Get(key); ok {
		metrics.RecordCacheAccess("enrich", true)
		if lu, ok := cached.(Lookup); ok {
			return lu
		}
	}
	metrics.RecordCacheAccess("enrich", false)

	lu, found := e.client.MovieByTitle(ctx, title, lang)
	if !found {
		metrics.EnrichmentLookups.WithLabelValues("miss").Inc()
		// Negative results are cached too: repeated searches for obscure
		// titles should not hammer the lookup service.
		e.cache.Set(key, Lookup{})
		return Lookup{}
	}

	metrics.EnrichmentLookups.WithLabelValues("hit").Inc()
	e.cache.Set(key, lu)
	return lu
}
