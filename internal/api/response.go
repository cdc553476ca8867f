// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

// Package api provides HTTP routing and handlers using the Chi router.
// All endpoints answer with the models.APIResponse envelope.
package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/cinegraph/cinegraph/internal/logging"
	"github.com/cinegraph/cinegraph/internal/models"
)

// Error codes for API responses.
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeIntentUnderstood  = "INTENT_NOT_UNDERSTOOD"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeMethodNotAllowed  = "METHOD_NOT_ALLOWED"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// responseWriter builds envelope responses and tracks query time from
// the moment the handler started.
type responseWriter struct {
	w         http.ResponseWriter
	r         *http.Request
	startTime time.Time
}

func newResponseWriter(w http.ResponseWriter, r *http.Request) *responseWriter {
	return &responseWriter{
		w:         w,
		r:         r,
		startTime: time.Now(),
	}
}

// Success writes a 200 envelope with the payload.
func (rw *responseWriter) Success(data interface{}) {
	rw.writeJSON(http.StatusOK, models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(rw.startTime).Milliseconds(),
		},
	})
}

// SuccessCached marks the envelope as served from cache. QueryTimeMS is
// zero because no pipeline ran.
func (rw *responseWriter) SuccessCached(data interface{}) {
	rw.writeJSON(http.StatusOK, models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
			Cached:    true,
		},
	})
}

// Error writes an error envelope with the given status code.
func (rw *responseWriter) Error(statusCode int, code, message string, details map[string]interface{}) {
	rw.writeJSON(statusCode, models.APIResponse{
		Status: "error",
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(rw.startTime).Milliseconds(),
		},
	})
}

// ValidationError writes a 400 envelope from a validation failure.
func (rw *responseWriter) ValidationError(message string, details map[string]interface{}) {
	rw.Error(http.StatusBadRequest, ErrCodeValidation, message, details)
}

// IntentNotUnderstood writes a 422 envelope carrying the extractor's raw
// findings so clients can show what was recognized.
func (rw *responseWriter) IntentNotUnderstood(diag *models.IntentDiagnostic) {
	rw.Error(http.StatusUnprocessableEntity, ErrCodeIntentUnderstood,
		"could not extract a search intent from the query text",
		map[string]interface{}{
			"text":     diag.Text,
			"language": diag.Language,
			"persons":  diag.Persons,
			"years":    diag.Years,
			"genres":   diag.Genres,
			"studios":  diag.Studios,
		})
}

// NotFound writes a 404 envelope.
func (rw *responseWriter) NotFound(message string) {
	rw.Error(http.StatusNotFound, ErrCodeNotFound, message, nil)
}

// InternalError writes a 500 envelope.
func (rw *responseWriter) InternalError(message string) {
	rw.Error(http.StatusInternalServerError, ErrCodeInternalError, message, nil)
}

// writeJSON writes the JSON response with proper headers.
func (rw *responseWriter) writeJSON(statusCode int, data interface{}) {
	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(statusCode)

	if err := json.NewEncoder(rw.w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// rateLimitExceeded is the httprate limit handler; it keeps 429 responses
// inside the envelope format.
func rateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	newResponseWriter(w, r).Error(http.StatusTooManyRequests, ErrCodeRateLimitExceeded,
		"rate limit exceeded, retry later", nil)
}
