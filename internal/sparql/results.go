// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

package sparql

import (
	"io"

	knakk "github.com/knakk/sparql"
)

// Binding is one flat SPARQL result row: variable name to plain string
// value. Variable presence differs per source; the normalizer treats any
// missing key as an absent optional binding.
type Binding map[string]string

// DecodeResults parses a SPARQL-results-JSON body into binding rows.
// IRIs and literals both flatten to their plain string form.
func DecodeResults(r io.Reader) ([]Binding, error) {
	res, err := knakk.ParseJSON(r)
	if err != nil {
		return nil, err
	}
	solutions := res.Solutions()
	rows := make([]Binding, 0, len(solutions))
	for _, sol := range solutions {
		row := make(Binding, len(sol))
		for name, term := range sol {
			if term == nil {
				continue
			}
			row[name] = term.String()
		}
		rows = append(rows, row)
	}
	return rows, nil
}
