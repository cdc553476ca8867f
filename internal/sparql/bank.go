// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

package sparql

import (
	"strings"

	knakk "github.com/knakk/sparql"
)

// queryBank holds the fixed queries that are not built per request: the
// paginated reduced-store ingest and the endpoint liveness probe. Bank
// entries are tag-delimited and filled with text/template arguments.
const queryBank = `
# tag: reduced-ingest
PREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
PREFIX dbo: <http://dbpedia.org/ontology/>
SELECT DISTINCT ?film ?title ?releaseDate ?runtime
    (GROUP_CONCAT(DISTINCT ?directorName; SEPARATOR=", ") AS ?directors)
    (GROUP_CONCAT(DISTINCT ?genreName; SEPARATOR=", ") AS ?genres)
    (SAMPLE(?abstract) AS ?synopsis)
WHERE {
    ?film rdf:type dbo:Film .
    ?film rdfs:label ?title .
    FILTER(lang(?title) = "{{.Lang}}")
    OPTIONAL { ?film dbo:releaseDate ?releaseDate }
    OPTIONAL { ?film dbo:runtime ?runtime }
    OPTIONAL { ?film dbo:director ?d . ?d rdfs:label ?directorName .
        FILTER(lang(?directorName) = "{{.Lang}}" || lang(?directorName) = "en") }
    OPTIONAL { ?film dbo:genre ?g . ?g rdfs:label ?genreName .
        FILTER(lang(?genreName) = "{{.Lang}}" || lang(?genreName) = "en") }
    OPTIONAL { ?film dbo:abstract ?abstract .
        FILTER(lang(?abstract) = "{{.Lang}}") }
}
GROUP BY ?film ?title ?releaseDate ?runtime
ORDER BY ?film
LIMIT {{.Limit}} OFFSET {{.Offset}}

# tag: probe-ask
PREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>
PREFIX dbo: <http://dbpedia.org/ontology/>
ASK { ?film rdf:type dbo:Film }
`

var bank = knakk.LoadBank(strings.NewReader(queryBank))

// IngestQuery renders one page of the reduced-store bulk load for a
// language. ORDER BY keeps pagination stable across successive offsets.
func IngestQuery(lang string, limit, offset int) (string, error) {
	return bank.Prepare("reduced-ingest", struct {
		Lang          string
		Limit, Offset int
	}{lang, limit, offset})
}

// ProbeQuery renders the minimal ASK used to verify an endpoint answers
// SPARQL at all.
func ProbeQuery() (string, error) {
	return bank.Prepare("probe-ask", struct{}{})
}
