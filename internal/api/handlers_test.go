// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/cinegraph/cinegraph/internal/config"
	"github.com/cinegraph/cinegraph/internal/models"
	"github.com/cinegraph/cinegraph/internal/search"
)

// stubSearcher returns canned results and records the filter it saw.
type stubSearcher struct {
	lastFilters models.QueryFilterSet
	lastText    string
	result      models.SearchResult
	cached      bool
	diag        *models.IntentDiagnostic
	health      search.Health
}

func (s *stubSearcher) Search(_ context.Context, f models.QueryFilterSet) (models.SearchResult, bool) {
	s.lastFilters = f
	return s.result, s.cached
}

func (s *stubSearcher) SearchText(_ context.Context, text, lang string) (models.SearchResult, bool, *models.IntentDiagnostic) {
	s.lastText = text
	if s.diag != nil {
		return models.SearchResult{Results: []models.MovieRecord{}}, false, s.diag
	}
	return s.result, s.cached, nil
}

func (s *stubSearcher) Browse(_ context.Context, kind models.SourceKind, lang string) []models.MovieRecord {
	return s.result.Results
}

func (s *stubSearcher) HealthCheck(_ context.Context) search.Health {
	return s.health
}

func newTestRouter(stub *stubSearcher) http.Handler {
	cfg := &config.Config{
		Search:   config.SearchConfig{Mode: "adaptive", DefaultLanguage: "en"},
		Security: config.SecurityConfig{RateLimitDisabled: true},
	}
	return NewRouter(stub, cfg).Setup()
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var env models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v\nbody: %s", err, rec.Body.String())
	}
	return env
}

func TestSearchEndpoint(t *testing.T) {
	stub := &stubSearcher{
		result: models.SearchResult{
			Results: []models.MovieRecord{{Title: "The Matrix"}},
			Total:   1,
			Mode:    "online",
			Sources: []string{"external"},
		},
	}
	router := newTestRouter(stub)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/v1/search?actor=Keanu+Reeves&year=1999&lang=es", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	if env.Status != "success" {
		t.Errorf("envelope status = %q", env.Status)
	}
	if stub.lastFilters.Actor != "Keanu Reeves" {
		t.Errorf("actor filter = %q", stub.lastFilters.Actor)
	}
	if stub.lastFilters.Year != "1999" {
		t.Errorf("year filter = %q", stub.lastFilters.Year)
	}
	if stub.lastFilters.Language != "es" {
		t.Errorf("language = %q", stub.lastFilters.Language)
	}
}

func TestSearchDefaultsLanguage(t *testing.T) {
	stub := &stubSearcher{}
	router := newTestRouter(stub)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if stub.lastFilters.Language != "en" {
		t.Errorf("language = %q, want default en", stub.lastFilters.Language)
	}
}

func TestSearchRejectsBadYear(t *testing.T) {
	router := newTestRouter(&stubSearcher{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?year=99", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
}

func TestSearchRejectsUnsupportedLanguage(t *testing.T) {
	router := newTestRouter(&stubSearcher{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?lang=pt", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSearchCachedMetadata(t *testing.T) {
	stub := &stubSearcher{cached: true}
	router := newTestRouter(stub)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?genre=horror", nil))

	env := decodeEnvelope(t, rec)
	if !env.Metadata.Cached {
		t.Error("metadata.cached should be true for a cache hit")
	}
}

func TestSearchTextEndpoint(t *testing.T) {
	stub := &stubSearcher{
		result: models.SearchResult{
			Results: []models.MovieRecord{{Title: "Alien"}},
			Total:   1,
		},
	}
	router := newTestRouter(stub)

	body := strings.NewReader(`{"text": "movies starring Sigourney Weaver", "language": "en"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search/text", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if stub.lastText != "movies starring Sigourney Weaver" {
		t.Errorf("text = %q", stub.lastText)
	}
}

func TestSearchTextIntentNotUnderstood(t *testing.T) {
	stub := &stubSearcher{
		diag: &models.IntentDiagnostic{
			Text:     "hello there",
			Language: "en",
			Persons:  []string{},
			Years:    []string{},
			Genres:   []string{},
			Studios:  []string{},
		},
	}
	router := newTestRouter(stub)

	body := strings.NewReader(`{"text": "hello there"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search/text", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != "INTENT_NOT_UNDERSTOOD" {
		t.Fatalf("error = %+v", env.Error)
	}
	if env.Error.Details["text"] != "hello there" {
		t.Errorf("details.text = %v", env.Error.Details["text"])
	}
}

func TestSearchTextRejectsInvalidBody(t *testing.T) {
	router := newTestRouter(&stubSearcher{})

	for name, body := range map[string]string{
		"malformed json": `{"text": `,
		"missing text":   `{"language": "en"}`,
		"text too short": `{"text": "a"}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/search/text", strings.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestMoviesEndpoint(t *testing.T) {
	stub := &stubSearcher{
		result: models.SearchResult{
			Results: []models.MovieRecord{{Title: "Amelie"}, {Title: "Heat"}},
		},
	}
	router := newTestRouter(stub)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/movies?source=local&lang=fr", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	data, ok := env.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data type %T", env.Data)
	}
	if total, _ := data["total"].(float64); int(total) != 2 {
		t.Errorf("total = %v, want 2", data["total"])
	}
}

func TestMoviesRejectsUnknownSource(t *testing.T) {
	router := newTestRouter(&stubSearcher{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/movies?source=bogus", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	stub := &stubSearcher{
		health: search.Health{
			Status: "healthy",
			Online: true,
			Stores: map[string]bool{"local": true, "external": true},
		},
	}
	router := newTestRouter(stub)

	for _, path := range []string{"/api/v1/health", "/api/v1/health/live", "/api/v1/health/ready"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestHealthUnhealthyReturns503(t *testing.T) {
	stub := &stubSearcher{
		health: search.Health{
			Status: "unhealthy",
			Stores: map[string]bool{"local": false, "external": false},
		},
	}
	router := newTestRouter(stub)

	for _, path := range []string{"/api/v1/health", "/api/v1/health/ready"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s status = %d, want 503", path, rec.Code)
		}
	}

	// Liveness stays green even when every store is down.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("liveness status = %d, want 200", rec.Code)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := newTestRouter(&stubSearcher{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("expected Go runtime metrics in /metrics output")
	}
}

func TestRequestIDHeaderSet(t *testing.T) {
	router := newTestRouter(&stubSearcher{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing from response")
	}
}

func TestSecurityHeadersSet(t *testing.T) {
	router := newTestRouter(&stubSearcher{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search", nil))

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for header, value := range want {
		if got := rec.Header().Get(header); got != value {
			t.Errorf("header %s = %q, want %q", header, got, value)
		}
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS should not be set on plain HTTP requests")
	}
}
