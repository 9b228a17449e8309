package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/scrcorp/taskmanager-server/internal/domain"
)

func TestWriteErrorMapsTaxonomy(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", domain.NotFound("brand"), http.StatusNotFound},
		{"conflict", domain.Conflict("duplicate"), http.StatusConflict},
		{"validation", domain.Invalid("bad input"), http.StatusBadRequest},
		{"forbidden", domain.Forbidden("no access"), http.StatusForbidden},
		{"internal", errors.New("db exploded"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, logger, tc.err)

			if rec.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, rec.Code)
			}

			var body errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error == "" {
				t.Fatalf("expected an error message")
			}
		})
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := httptest.NewRecorder()
	writeError(rec, logger, errors.New("pq: connection refused on 10.0.0.5"))

	var body errorResponse
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Error != "internal error" {
		t.Fatalf("internal detail leaked: %q", body.Error)
	}
}

func newRequestWithParam(name, value string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(name, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestPathUUIDMalformedIsNotFound(t *testing.T) {
	r := newRequestWithParam("id", "not-a-uuid")
	_, err := pathUUID(r, "id", "work assignment")
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestQueryDate(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?date_from=2026-03-09", nil)
	got, err := queryDate(r, "date_from")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Format("2006-01-02") != "2026-03-09" {
		t.Fatalf("unexpected date: %v", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/?date_from=tomorrow", nil)
	if _, err := queryDate(r, "date_from"); !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	got, err = queryDate(r, "date_from")
	if err != nil || got != nil {
		t.Fatalf("expected nil for absent param, got %v, %v", got, err)
	}
}
