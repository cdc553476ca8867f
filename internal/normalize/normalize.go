// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

// Package normalize maps heterogeneous SPARQL binding rows into the
// canonical MovieRecord shape. Every field has a fixed placeholder for
// absent or unparseable bindings; one malformed row never aborts a batch.
// Normalization is a pure function of the row: running it twice yields
// identical records.
package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cinegraph/cinegraph/internal/metrics"
	"github.com/cinegraph/cinegraph/internal/models"
	"github.com/cinegraph/cinegraph/internal/sparql"
)

// Placeholder values. Every MovieRecord field falls back to one of these;
// the normalizer never emits an empty required field.
const (
	PlaceholderTitle = "title unavailable"
	PlaceholderValue = "unavailable"
)

// synopsisLimit is the rendered synopsis cap: longer texts are cut to 297
// characters plus a three-character ellipsis marker.
const synopsisLimit = 300

// groupSeparator matches the GROUP_CONCAT separator the query builder
// emits, and the join the in-memory stores apply.
const groupSeparator = ", "

// Rows normalizes a batch. Row failures degrade to placeholder fields and
// are metered; the batch always completes.
func Rows(rows []sparql.Binding, kind models.SourceKind, lang string) []models.MovieRecord {
	records := make([]models.MovieRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, Row(row, kind, lang))
	}
	return records
}

// Row normalizes one binding row.
func Row(row sparql.Binding, kind models.SourceKind, lang string) models.MovieRecord {
	return models.MovieRecord{
		Title:       stringField(row, "title", PlaceholderTitle),
		Directors:   splitGrouped(row["directors"]),
		Actors:      splitGrouped(row["actors"]),
		Genres:      splitGrouped(row["genres"]),
		Synopsis:    truncateSynopsis(stringField(row, "synopsis", PlaceholderValue)),
		Year:        ExtractYear(row["releaseDate"]),
		Duration:    NormalizeDuration(row["runtime"]),
		Country:     stringField(row, "country", PlaceholderValue),
		URI:         row["film"],
		SourceLabel: sparql.SourceLabel(kind, lang),
		Kind:        kind,
		Language:    lang,
	}
}

func stringField(row sparql.Binding, key, placeholder string) string {
	if v, ok := row[key]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return placeholder
}

// ExtractYear derives a 4-character year from a date literal's string
// form. Datetime literals split at "T" then "-"; date literals split at
// "-"; anything else of length >= 4 yields its first 4 characters, by
// documented fallback. Unparseable input maps to the placeholder.
func ExtractYear(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return PlaceholderValue
	}
	if i := strings.Index(s, "T"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "-"); i > 0 {
		return s[:i]
	}
	if len(s) >= 4 {
		return s[:4]
	}
	return PlaceholderValue
}

// NormalizeDuration renders a runtime literal as "<N> min". Values over
// 1000 are treated as seconds and divided by 60; parse failure maps to
// the placeholder.
func NormalizeDuration(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return PlaceholderValue
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		metrics.NormalizerRowErrors.Inc()
		return PlaceholderValue
	}
	minutes := int(v)
	if v > 1000 {
		minutes = int(v) / 60
	}
	return fmt.Sprintf("%d min", minutes)
}

// truncateSynopsis cuts texts over the cap to 297 characters plus "...".
// Counted in runes so multibyte abstracts are not split mid-character.
func truncateSynopsis(s string) string {
	r := []rune(s)
	if len(r) > synopsisLimit {
		return string(r[:synopsisLimit-3]) + "..."
	}
	return s
}

// splitGrouped splits a GROUP_CONCAT-joined field into trimmed segments.
// An empty joined string yields a single-element placeholder list, never
// an empty list.
func splitGrouped(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return []string{PlaceholderValue}
	}
	parts := strings.Split(joined, groupSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{PlaceholderValue}
	}
	return out
}
