// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

package sparql

import (
	"fmt"
	"strings"

	"github.com/cinegraph/cinegraph/internal/models"
)

// Concept names a movie relation the query builder can filter on.
type Concept string

const (
	ConceptActor    Concept = "actor"
	ConceptDirector Concept = "director"
	ConceptGenre    Concept = "genre"
	ConceptStudio   Concept = "studio"
	ConceptSynopsis Concept = "synopsis"
)

// genericLang is the property-table key for languages without their own
// predicate bindings.
const genericLang = ""

// propertyTable is the single consolidated (concept, language) to predicate
// mapping. Language mirrors of DBpedia expose some relations through
// mirror-specific property URIs; everything not listed under a language key
// resolves through the generic entry.
var propertyTable = map[Concept]map[string][]string{
	ConceptActor: {
		genericLang: {"dbo:starring", "dbo:castMember", "dbp:starring", "dbo:actor"},
	},
	ConceptDirector: {
		genericLang: {"dbo:director", "dbp:director", "dbo:cinematography", "dbp:directedBy"},
	},
	ConceptGenre: {
		"en":        {"dbo:genre"},
		"es":        {"prop-es:género"},
		"fr":        {"prop-fr:genre"},
		"de":        {"prop-de:genre"},
		genericLang: {"dbo:genre"},
	},
	ConceptStudio: {
		genericLang: {"dbp:company", "dbo:distributor"},
	},
	ConceptSynopsis: {
		genericLang: {"dbo:abstract", "dbo:description"},
	},
}

// PredicatesFor returns the predicate list for a concept in a language,
// falling back to the generic entry for unbound languages.
func PredicatesFor(c Concept, lang string) []string {
	byLang, ok := propertyTable[c]
	if !ok {
		return nil
	}
	if preds, ok := byLang[lang]; ok {
		return preds
	}
	return byLang[genericLang]
}

// predicateAlternation renders a FILTER(?var IN (...)) predicate list.
func predicateAlternation(c Concept, lang string) string {
	return strings.Join(PredicatesFor(c, lang), ", ")
}

// SourceLabel returns the human origin string stamped on every record.
func SourceLabel(kind models.SourceKind, lang string) string {
	switch kind {
	case models.SourceLocal:
		return "Local Ontology"
	case models.SourceReduced:
		return "DBpedia Reduced (Offline)"
	default:
		return fmt.Sprintf("DBpedia (%s)", strings.ToUpper(lang))
	}
}
