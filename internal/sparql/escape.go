// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

package sparql

import "strings"

// literalReplacer neutralizes the characters that would terminate or corrupt
// a double-quoted SPARQL string literal. Backslash must be handled first so
// the escapes it introduces are not re-escaped.
var literalReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// EscapeLiteral prepares a user-supplied value for interpolation into a
// quoted SPARQL literal. This is a best-effort, non-cryptographic escape,
// not a parameterized-query mechanism.
func EscapeLiteral(s string) string {
	return literalReplacer.Replace(s)
}
