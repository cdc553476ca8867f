// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

package intent

import (
	"context"
	"regexp"
	"strings"
	"unicode"
)

// Entities is the best-effort output of an entity extractor. Any list may
// be empty.
type Entities struct {
	Persons []string `json:"persons"`
	Years   []string `json:"years"`
	Genres  []string `json:"genres"`
	Orgs    []string `json:"orgs"`
	Places  []string `json:"places"`
}

// EntityExtractor is the NER boundary. Implementations are treated as
// pure functions of (text, language).
type EntityExtractor interface {
	ExtractAll(ctx context.Context, text, lang string) Entities
}

// yearPattern matches standalone 4-digit years from 1800 through 2099.
var yearPattern = regexp.MustCompile(`\b(18|19|20)\d{2}\b`)

// HeuristicExtractor is the bundled EntityExtractor: capitalized-sequence
// person detection, the year regex, and dictionary lookups for genres and
// studios. A model-backed extractor can replace it without touching the
// pipeline.
type HeuristicExtractor struct{}

// NewHeuristicExtractor returns the dictionary-and-regex extractor.
func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{}
}

// ExtractAll implements EntityExtractor.
func (h *HeuristicExtractor) ExtractAll(_ context.Context, text, lang string) Entities {
	return Entities{
		Persons: extractCapitalizedSequences(text),
		Years:   ExtractYears(text),
		Genres:  extractVocabulary(text, genresFor(lang)),
		Orgs:    extractVocabulary(text, studioVocabulary),
	}
}

// ExtractYears returns the distinct 4-digit years in the text, in order
// of first appearance.
func ExtractYears(text string) []string {
	var years []string
	seen := make(map[string]struct{})
	for _, m := range yearPattern.FindAllString(text, -1) {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		years = append(years, m)
	}
	return years
}

func extractVocabulary(text string, vocab []string) []string {
	lower := strings.ToLower(text)
	var found []string
	seen := make(map[string]struct{})
	for _, term := range vocab {
		key := strings.ToLower(term)
		if _, dup := seen[key]; dup {
			continue
		}
		if strings.Contains(lower, key) {
			seen[key] = struct{}{}
			found = append(found, term)
		}
	}
	return found
}

// extractCapitalizedSequences finds runs of two or more capitalized words
// as person candidates. Single capitalized words are skipped: they are
// overwhelmingly sentence starts or genre/place names.
func extractCapitalizedSequences(text string) []string {
	words := strings.Fields(text)
	var persons []string
	var run []string

	flush := func() {
		if len(run) >= 2 {
			persons = append(persons, strings.Join(run, " "))
		}
		run = nil
	}

	for _, w := range words {
		trimmed := strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if trimmed == "" {
			flush()
			continue
		}
		first := []rune(trimmed)[0]
		if unicode.IsUpper(first) && unicode.IsLetter(first) {
			run = append(run, trimmed)
			// Trailing punctuation on the original word ends the run.
			if strings.IndexFunc(w, func(r rune) bool { return r == ',' || r == '.' || r == '?' || r == '!' }) >= 0 {
				flush()
			}
			continue
		}
		flush()
	}
	flush()
	return persons
}
