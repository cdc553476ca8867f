// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

package models

import "time"

// APIResponse is the standardized response wrapper used by all HTTP
// endpoints. It provides a consistent structure for both successful and
// error responses, with metadata for observability and caching.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"results": [...], "sources": ["DBpedia (EN)"]},
//	  "metadata": {"timestamp": "2026-02-12T12:00:00Z", "query_time_ms": 45}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
//
// QueryTimeMS is the end-to-end pipeline execution time; Cached is true when
// the response was served from the bounded query-result cache (QueryTimeMS
// is 0 in that case).
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError represents an error response with structured details.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters
//   - INTENT_NOT_UNDERSTOOD: Free-text query produced no usable intent
//   - NOT_FOUND: Resource doesn't exist
//   - RATE_LIMIT_EXCEEDED: Too many requests
//   - INTERNAL_ERROR: Unexpected programming error
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SearchResult is the payload for search endpoints.
type SearchResult struct {
	Results []MovieRecord `json:"results"`
	Total   int           `json:"total"`

	// Mode records which adaptive branch served the request:
	// "online" (external only) or "offline" (local + reduced).
	Mode string `json:"mode"`

	// Sources lists the human-readable labels of the stores queried.
	Sources []string `json:"sources"`
}

// IntentDiagnostic is returned with an INTENT_NOT_UNDERSTOOD error so
// callers can see what the extractor found even when no intent fired.
type IntentDiagnostic struct {
	Text     string   `json:"text"`
	Language string   `json:"language"`
	Persons  []string `json:"persons"`
	Years    []string `json:"years"`
	Genres   []string `json:"genres"`
	Studios  []string `json:"studios"`
}
