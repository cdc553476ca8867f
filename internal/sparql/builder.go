// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

// Package sparql builds language-keyed SPARQL queries from structured
// filter sets and decodes SPARQL-results-JSON into flat binding rows.
//
// A built Query carries two equivalent representations: Text, the rendered
// SPARQL string executed over HTTP against remote endpoints, and Plan, the
// structured constraint list the in-memory stores evaluate directly. The
// builder is a pure function of its inputs and never fails; empty filter
// values contribute no clause, so an empty filter set is a valid browse-all
// query.
package sparql

import (
	"fmt"
	"strings"

	"github.com/cinegraph/cinegraph/internal/models"
)

const queryPrefixes = `PREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
PREFIX dbo: <http://dbpedia.org/ontology/>
PREFIX dbp: <http://dbpedia.org/property/>
PREFIX prop-es: <http://es.dbpedia.org/property/>
PREFIX prop-fr: <http://fr.dbpedia.org/property/>
PREFIX prop-de: <http://de.dbpedia.org/property/>
`

// Plan is the structured equivalent of the rendered query text, evaluated
// directly by the local and reduced stores. Match semantics mirror the
// remote query: person and studio terms match labels exactly in the
// requested language or English, the genre term matches case-insensitively
// as a substring, and YearPrefix matches the leading characters of the raw
// date literal.
type Plan struct {
	Actor      string
	Director   string
	Genre      string
	Studio     string
	YearPrefix string
	Language   string
	Limit      int
}

// Empty reports whether the plan carries no constraints.
func (p Plan) Empty() bool {
	return p.Actor == "" && p.Director == "" && p.Genre == "" &&
		p.Studio == "" && p.YearPrefix == ""
}

// Query is a built query for one target store.
type Query struct {
	Text     string
	Plan     Plan
	Kind     models.SourceKind
	Language string
}

// Build produces the query for a (store kind, filter set) pair. It never
// returns an error: absent filter values are omitted and unknown languages
// fall back to generic predicates.
func Build(kind models.SourceKind, f models.QueryFilterSet, limit int) Query {
	lang := f.Language
	if lang == "" {
		lang = "en"
	}
	if limit < 1 {
		limit = 10
	}

	return Query{
		Text: buildText(f, lang, limit),
		Plan: Plan{
			Actor:      strings.TrimSpace(f.Actor),
			Director:   strings.TrimSpace(f.Director),
			Genre:      strings.TrimSpace(f.Genre),
			Studio:     strings.TrimSpace(f.Studio),
			YearPrefix: strings.TrimSpace(f.Year),
			Language:   lang,
			Limit:      limit,
		},
		Kind:     kind,
		Language: lang,
	}
}

func buildText(f models.QueryFilterSet, lang string, limit int) string {
	var filters []string

	// Label filters match the requested language OR English. Many persons
	// lack labels in non-English mirrors; an AND here would silently drop
	// valid matches.
	if actor := strings.TrimSpace(f.Actor); actor != "" {
		filters = append(filters,
			`?actorRes rdfs:label ?actorLabel .`,
			fmt.Sprintf(`FILTER(str(?actorLabel) = "%s")`, EscapeLiteral(actor)),
			labelLangFilter("?actorLabel", lang),
			`?film ?pActor ?actorRes .`,
			fmt.Sprintf(`FILTER(?pActor IN (%s))`, predicateAlternation(ConceptActor, lang)),
		)
	}

	if director := strings.TrimSpace(f.Director); director != "" {
		filters = append(filters,
			`?dirRes rdfs:label ?dirLabel .`,
			fmt.Sprintf(`FILTER(str(?dirLabel) = "%s")`, EscapeLiteral(director)),
			labelLangFilter("?dirLabel", lang),
			`?film ?pDirector ?dirRes .`,
			fmt.Sprintf(`FILTER(?pDirector IN (%s))`, predicateAlternation(ConceptDirector, lang)),
		)
	}

	// Year matches by string prefix of the date literal, not a numeric
	// range: "1999" matches any literal whose string form starts with it.
	if year := strings.TrimSpace(f.Year); year != "" {
		filters = append(filters,
			`?film dbo:releaseDate ?rd .`,
			fmt.Sprintf(`FILTER(STRSTARTS(STR(?rd), "%s"))`, EscapeLiteral(year)),
		)
	}

	if genre := strings.TrimSpace(f.Genre); genre != "" {
		filters = append(filters,
			fmt.Sprintf(`?film %s ?genreRes .`, PredicatesFor(ConceptGenre, lang)[0]),
			`?genreRes rdfs:label ?genreLabel .`,
			labelLangFilter("?genreLabel", lang),
			fmt.Sprintf(`FILTER(regex(lcase(str(?genreLabel)), lcase("%s"), "i"))`,
				EscapeLiteral(genre)),
		)
	}

	if studio := strings.TrimSpace(f.Studio); studio != "" {
		filters = append(filters,
			`?studioRes rdfs:label ?studioLabel .`,
			fmt.Sprintf(`FILTER(str(?studioLabel) = "%s")`, EscapeLiteral(studio)),
			labelLangFilter("?studioLabel", lang),
			`?film ?pStudio ?studioRes .`,
			fmt.Sprintf(`FILTER(?pStudio IN (%s))`, predicateAlternation(ConceptStudio, lang)),
		)
	}

	var b strings.Builder
	b.WriteString(queryPrefixes)
	b.WriteString(`
SELECT DISTINCT ?film ?title ?releaseDate ?runtime ?country
    (GROUP_CONCAT(DISTINCT ?directorName; SEPARATOR=", ") AS ?directors)
    (GROUP_CONCAT(DISTINCT ?actorName; SEPARATOR=", ") AS ?actors)
    (GROUP_CONCAT(DISTINCT ?genreName; SEPARATOR=", ") AS ?genres)
    (SAMPLE(?abstract) AS ?synopsis)
WHERE {
    ?film rdf:type dbo:Film .
    ?film rdfs:label ?title .
    ` + labelLangFilter("?title", lang) + `

    OPTIONAL { ?film dbo:releaseDate ?releaseDate }
    OPTIONAL { ?film dbo:runtime ?runtime }
    OPTIONAL { ?film dbo:country ?countryRes . ?countryRes rdfs:label ?country .
        ` + labelLangFilter("?country", lang) + ` }

    OPTIONAL {
        ?film ?pDirectorOpt ?d .
        FILTER(?pDirectorOpt IN (` + predicateAlternation(ConceptDirector, lang) + `))
        ?d rdfs:label ?directorName .
        ` + labelLangFilter("?directorName", lang) + `
    }

    OPTIONAL {
        ?film ?pActorOpt ?a .
        FILTER(?pActorOpt IN (` + predicateAlternation(ConceptActor, lang) + `))
        ?a rdfs:label ?actorName .
        ` + labelLangFilter("?actorName", lang) + `
    }

    OPTIONAL {
        ?film ?pGenreOpt ?g .
        FILTER(?pGenreOpt IN (` + predicateAlternation(ConceptGenre, lang) + `))
        ?g rdfs:label ?genreName .
        ` + labelLangFilter("?genreName", lang) + `
    }

    OPTIONAL {
        ?film ?pSynopsis ?abstract .
        FILTER(?pSynopsis IN (` + predicateAlternation(ConceptSynopsis, lang) + `))
        ` + labelLangFilter("?abstract", lang) + `
    }
`)
	for _, clause := range filters {
		b.WriteString("    ")
		b.WriteString(clause)
		b.WriteString("\n")
	}
	b.WriteString(`}
GROUP BY ?film ?title ?releaseDate ?runtime ?country
`)
	fmt.Fprintf(&b, "LIMIT %d\n", limit)
	return b.String()
}

// labelLangFilter restricts a label variable to the requested language or
// English (OR, never AND).
func labelLangFilter(v, lang string) string {
	if lang == "en" {
		return fmt.Sprintf(`FILTER(lang(%s) = "en")`, v)
	}
	return fmt.Sprintf(`FILTER(lang(%s) = "%s" || lang(%s) = "en")`, v, lang, v)
}
