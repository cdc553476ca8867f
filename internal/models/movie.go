// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

// Package models contains the shared domain types exchanged between the
// pipeline components: canonical movie records, structured filter sets,
// extracted intents, and the HTTP response envelope.
package models

import "strings"

// SourceKind identifies which store family produced a record.
type SourceKind string

const (
	// SourceLocal is the in-memory ontology loaded from file.
	SourceLocal SourceKind = "local"

	// SourceExternal is the live DBpedia SPARQL endpoint.
	SourceExternal SourceKind = "external"

	// SourceReduced is the locally persisted DBpedia subset.
	SourceReduced SourceKind = "reduced"
)

// MovieRecord is the canonical, normalized output shape shared by all three
// sources. Every field carries a non-empty fallback: the normalizer maps
// absent bindings to fixed placeholder values and never fails on a sparse
// row. Records are built fresh per query response and not mutated afterward.
type MovieRecord struct {
	Title       string     `json:"title"`
	Directors   []string   `json:"directors"`
	Actors      []string   `json:"actors"`
	Genres      []string   `json:"genres"`
	Synopsis    string     `json:"synopsis"`
	Year        string     `json:"year"`
	Duration    string     `json:"duration_minutes"`
	Country     string     `json:"country"`
	URI         string     `json:"uri"`
	SourceLabel string     `json:"source_label"`
	Kind        SourceKind `json:"kind"`
	Language    string     `json:"language"`

	// PosterURL is filled by the enrichment fan-out when a poster lookup
	// succeeds; empty otherwise.
	PosterURL string `json:"poster_url,omitempty"`
}

// DedupKey returns the case- and whitespace-insensitive key used for
// cross-source deduplication. Falls back to the URI when the title is a
// placeholder or empty, so distinct unnamed records are not collapsed.
func (m *MovieRecord) DedupKey() string {
	title := strings.ToLower(strings.TrimSpace(m.Title))
	if title == "" || title == "title unavailable" {
		return strings.ToLower(strings.TrimSpace(m.URI))
	}
	return title
}

// QueryFilterSet is the structured search request consumed by the query
// builder. All fields are optional except Language; an empty filter set is a
// valid browse-all query.
type QueryFilterSet struct {
	Actor    string `json:"actor,omitempty"`
	Director string `json:"director,omitempty"`
	Year     string `json:"year,omitempty"`
	Genre    string `json:"genre,omitempty"`
	Studio   string `json:"studio,omitempty"`
	Language string `json:"language" validate:"required,len=2,alpha"`
}

// Empty reports whether no filter field is populated (browse-all).
func (f QueryFilterSet) Empty() bool {
	return f.Actor == "" && f.Director == "" && f.Year == "" &&
		f.Genre == "" && f.Studio == ""
}

// IntentKind enumerates the filter categories intent extraction can detect.
type IntentKind string

const (
	IntentActor    IntentKind = "actor"
	IntentDirector IntentKind = "director"
	IntentGenre    IntentKind = "genre"
	IntentYear     IntentKind = "year"
	IntentStudio   IntentKind = "studio"
)

// RoleAssignment holds person names resolved to a concrete role.
type RoleAssignment struct {
	Actors    []string `json:"actors"`
	Directors []string `json:"directors"`
}

// Intent is the structured interpretation of one free-text query. Derived
// once per text+language pair and consumed immediately; never persisted.
//
// Ambiguous holds person names whose role could not be resolved: both actor
// and director keyword sets fired and no lookup service was reachable. These
// are surfaced to the caller instead of being force-assigned a role.
type Intent struct {
	Flags     map[IntentKind]bool `json:"flags"`
	Persons   []string            `json:"persons"`
	Roles     RoleAssignment      `json:"roles"`
	Ambiguous []string            `json:"ambiguous,omitempty"`
	Years     []string            `json:"years"`
	Genres    []string            `json:"genres"`
	Studios   []string            `json:"studios"`
}

// Any reports whether at least one intent category fired.
func (i *Intent) Any() bool {
	for _, fired := range i.Flags {
		if fired {
			return true
		}
	}
	return false
}
