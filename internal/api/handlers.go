// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/cinegraph/cinegraph/internal/config"
	"github.com/cinegraph/cinegraph/internal/logging"
	"github.com/cinegraph/cinegraph/internal/models"
	"github.com/cinegraph/cinegraph/internal/search"
	"github.com/cinegraph/cinegraph/internal/validation"
)

// Searcher is the slice of the search service the handlers need.
type Searcher interface {
	Search(ctx context.Context, f models.QueryFilterSet) (models.SearchResult, bool)
	SearchText(ctx context.Context, text, lang string) (models.SearchResult, bool, *models.IntentDiagnostic)
	Browse(ctx context.Context, kind models.SourceKind, lang string) []models.MovieRecord
	HealthCheck(ctx context.Context) search.Health
}

// Handler holds dependencies for all HTTP handlers.
type Handler struct {
	searcher    Searcher
	defaultLang string
}

// NewHandler creates the handler set.
func NewHandler(searcher Searcher, cfg *config.SearchConfig) *Handler {
	lang := cfg.DefaultLanguage
	if lang == "" {
		lang = "en"
	}
	return &Handler{
		searcher:    searcher,
		defaultLang: lang,
	}
}

// SearchRequest captures the query parameters of GET /api/v1/search.
type SearchRequest struct {
	Actor    string `validate:"omitempty,max=200"`
	Director string `validate:"omitempty,max=200"`
	Genre    string `validate:"omitempty,max=100"`
	Studio   string `validate:"omitempty,max=200"`
	Year     string `validate:"omitempty,len=4,numeric"`
	Language string `validate:"omitempty,oneof=en es fr de"`
}

// Search handles GET /api/v1/search with structured filters.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	rw := newResponseWriter(w, r)

	q := r.URL.Query()
	req := SearchRequest{
		Actor:    strings.TrimSpace(q.Get("actor")),
		Director: strings.TrimSpace(q.Get("director")),
		Genre:    strings.TrimSpace(q.Get("genre")),
		Studio:   strings.TrimSpace(q.Get("studio")),
		Year:     strings.TrimSpace(q.Get("year")),
		Language: strings.ToLower(strings.TrimSpace(q.Get("lang"))),
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	lang := req.Language
	if lang == "" {
		lang = h.defaultLang
	}

	result, cached := h.searcher.Search(r.Context(), models.QueryFilterSet{
		Actor:    req.Actor,
		Director: req.Director,
		Genre:    req.Genre,
		Studio:   req.Studio,
		Year:     req.Year,
		Language: lang,
	})

	if cached {
		rw.SuccessCached(result)
		return
	}
	rw.Success(result)
}

// TextSearchRequest is the body of POST /api/v1/search/text.
type TextSearchRequest struct {
	Text     string `json:"text" validate:"required,min=2,max=500"`
	Language string `json:"language" validate:"omitempty,oneof=en es fr de"`
}

// SearchText handles POST /api/v1/search/text with a free-text query.
func (h *Handler) SearchText(w http.ResponseWriter, r *http.Request) {
	rw := newResponseWriter(w, r)

	var req TextSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.ValidationError("request body must be valid JSON", nil)
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	req.Language = strings.ToLower(strings.TrimSpace(req.Language))

	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	lang := req.Language
	if lang == "" {
		lang = h.defaultLang
	}

	result, cached, diag := h.searcher.SearchText(r.Context(), req.Text, lang)
	if diag != nil {
		rw.IntentNotUnderstood(diag)
		return
	}

	if cached {
		rw.SuccessCached(result)
		return
	}
	rw.Success(result)
}

// MoviesRequest captures the query parameters of GET /api/v1/movies.
type MoviesRequest struct {
	Source   string `validate:"omitempty,oneof=local external reduced"`
	Language string `validate:"omitempty,oneof=en es fr de"`
}

// Movies handles GET /api/v1/movies, browsing a single source unfiltered.
func (h *Handler) Movies(w http.ResponseWriter, r *http.Request) {
	rw := newResponseWriter(w, r)

	q := r.URL.Query()
	req := MoviesRequest{
		Source:   strings.ToLower(strings.TrimSpace(q.Get("source"))),
		Language: strings.ToLower(strings.TrimSpace(q.Get("lang"))),
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	source := models.SourceKind(req.Source)
	if req.Source == "" {
		source = models.SourceLocal
	}
	lang := req.Language
	if lang == "" {
		lang = h.defaultLang
	}

	records := h.searcher.Browse(r.Context(), source, lang)
	rw.Success(models.SearchResult{
		Results: records,
		Total:   len(records),
		Mode:    "browse",
		Sources: []string{string(source)},
	})
}

// Health handles GET /api/v1/health with the full component aggregate.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := newResponseWriter(w, r)
	health := h.searcher.HealthCheck(r.Context())

	if health.Status == "unhealthy" {
		rw.writeJSON(http.StatusServiceUnavailable, models.APIResponse{
			Status: "error",
			Data:   health,
			Error: &models.APIError{
				Code:    "SERVICE_UNAVAILABLE",
				Message: "no movie store is currently available",
			},
		})
		return
	}
	rw.Success(health)
}

// HealthLive handles GET /api/v1/health/live. Process liveness only.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	newResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady handles GET /api/v1/health/ready. Ready once at least one
// store can answer queries.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := newResponseWriter(w, r)
	health := h.searcher.HealthCheck(r.Context())

	if health.Status == "unhealthy" {
		logging.Warn().Interface("stores", health.Stores).Msg("readiness check failed")
		rw.writeJSON(http.StatusServiceUnavailable, models.APIResponse{
			Status: "error",
			Error: &models.APIError{
				Code:    "SERVICE_UNAVAILABLE",
				Message: "not ready",
			},
		})
		return
	}
	rw.Success(map[string]string{"status": "ready"})
}
