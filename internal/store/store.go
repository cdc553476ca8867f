// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

// Package store provides the three triple-store adapters behind one
// interface: the in-memory local ontology, the live DBpedia SPARQL
// endpoint, and the Badger-persisted reduced subset.
//
// Adapters have degraded query semantics: transport failures, non-200
// responses, and malformed payloads are logged and metered, then surface
// as an empty row list. "Zero matches" and "store unreachable" are
// indistinguishable at this layer; callers that need the distinction use
// the connectivity probe and the Healthy method.
package store

import (
	"context"

	"github.com/cinegraph/cinegraph/internal/models"
	"github.com/cinegraph/cinegraph/internal/sparql"
)

// Store is a queryable movie source.
type Store interface {
	// Movies executes a built query and returns raw binding rows.
	// It never returns an error; failures degrade to an empty list.
	Movies(ctx context.Context, q sparql.Query) []sparql.Binding

	// Healthy reports whether the store is currently usable. An empty
	// but loaded store is healthy; a store behind an open circuit
	// breaker or a closed database is not.
	Healthy(ctx context.Context) bool

	// Kind identifies the store family for labeling and metrics.
	Kind() models.SourceKind
}
