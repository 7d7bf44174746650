package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akolanti/DocSearch/internal/api"
	"github.com/akolanti/DocSearch/internal/domain/commonModels"
	"github.com/akolanti/DocSearch/internal/domain/jobModel"
	"github.com/akolanti/DocSearch/internal/rag/rag_test"
	"github.com/akolanti/DocSearch/internal/storage/s3Upload"
	"github.com/go-chi/chi/v5"
)

type mockUploads struct {
	OnIssue func(ctx context.Context, fileName, fileType string) (s3Upload.UploadTicket, error)
}

func (m *mockUploads) IssueUploadURL(ctx context.Context, fileName, fileType string) (s3Upload.UploadTicket, error) {
	return m.OnIssue(ctx, fileName, fileType)
}

type mockHealth struct {
	err error
}

func (m *mockHealth) Ping(ctx context.Context) error { return m.err }

func routerFor(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/search", h.SearchHandler)
	r.Post("/ingest", h.PostIngestHandler)
	r.Get("/status/{id}", h.GetStatusHandler)
	r.Post("/upload", h.PostUploadHandler)
	r.Get("/health", h.HealthHandler)
	return r
}

func do(t *testing.T, h *Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	routerFor(h).ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) api.OutgoingError {
	t.Helper()
	var body api.ErrorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body.Error == nil {
		t.Fatalf("expected error body, got %q (%v)", rec.Body.String(), err)
	}
	return *body.Error
}

func TestSearchHandler(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		body       string
		onSearch   func(ctx context.Context, q string, k int) ([]commonModels.SearchResult, error)
		wantStatus int
		wantCount  int
	}{
		{
			name: "results",
			body: `{"query_text":"invoice total","k":2}`,
			onSearch: func(ctx context.Context, q string, k int) ([]commonModels.SearchResult, error) {
				if q != "invoice total" || k != 2 {
					return nil, fmt.Errorf("unexpected args %q %d", q, k)
				}
				return []commonModels.SearchResult{
					{Score: 0.9, JobId: "job-123", DocumentId: "job-123", TextPreview: "Invoice", Timestamp: ts},
				}, nil
			},
			wantStatus: http.StatusOK,
			wantCount:  1,
		},
		{
			name:       "missing query text",
			body:       `{"k":3}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed json",
			body:       `{"query_text":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "embedding unavailable",
			body: `{"query_text":"anything"}`,
			onSearch: func(ctx context.Context, q string, k int) ([]commonModels.SearchResult, error) {
				return nil, fmt.Errorf("%w: 503", commonModels.ErrEmbeddingUnavailable)
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name: "empty index",
			body: `{"query_text":"anything"}`,
			onSearch: func(ctx context.Context, q string, k int) ([]commonModels.SearchResult, error) {
				return nil, nil
			},
			wantStatus: http.StatusOK,
			wantCount:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&rag_test.MockRagService{OnSearch: tt.onSearch}, nil, nil)
			rec := do(t, h, http.MethodPost, "/search", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d; want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				if e := decodeError(t, rec); e.Code != tt.wantStatus {
					t.Errorf("error code = %d; want %d", e.Code, tt.wantStatus)
				}
				return
			}
			var res api.SearchResponse
			if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
				t.Fatal(err)
			}
			if len(res.Results) != tt.wantCount {
				t.Errorf("got %d results; want %d", len(res.Results), tt.wantCount)
			}
		})
	}
}

func TestPostIngestHandler(t *testing.T) {
	h := NewHandler(&rag_test.MockRagService{}, nil, nil)
	rec := do(t, h, http.MethodPost, "/ingest", `{"bucket":"uploads","key":"a.pdf"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d; want 202", rec.Code)
	}
	var res api.JobAccepted
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Id != "job-123" || res.StatusURL != "status/job-123" {
		t.Errorf("unexpected response %+v", res)
	}

	failing := NewHandler(&rag_test.MockRagService{
		OnStartIngestion: func(ctx context.Context, e jobModel.ObjectCreatedEvent) (jobModel.IngestionJob, error) {
			return jobModel.IngestionJob{}, fmt.Errorf("%w: key is required", commonModels.ErrValidation)
		},
	}, nil, nil)
	if rec := do(t, failing, http.MethodPost, "/ingest", `{"bucket":"uploads"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", rec.Code)
	}
}

func TestGetStatusHandler(t *testing.T) {
	h := NewHandler(&rag_test.MockRagService{
		OnJobStatus: func(ctx context.Context, id string) (jobModel.IngestionJob, error) {
			if id == "job-123" {
				return jobModel.IngestionJob{Id: id, Status: jobModel.JobStatusIndexed}, nil
			}
			return jobModel.IngestionJob{}, fmt.Errorf("%w: %s", commonModels.ErrJobNotFound, id)
		},
	}, nil, nil)

	rec := do(t, h, http.MethodGet, "/status/job-123", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	var res api.JobStatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Status != "INDEXED" {
		t.Errorf("status field = %q; want INDEXED", res.Status)
	}

	if rec := do(t, h, http.MethodGet, "/status/missing", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d; want 404", rec.Code)
	}
}

func TestPostUploadHandler(t *testing.T) {
	if rec := do(t, NewHandler(&rag_test.MockRagService{}, nil, nil), http.MethodPost, "/upload",
		`{"fileName":"a.pdf","fileType":"application/pdf"}`); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unconfigured uploads: status = %d; want 503", rec.Code)
	}

	uploads := &mockUploads{OnIssue: func(ctx context.Context, name, typ string) (s3Upload.UploadTicket, error) {
		return s3Upload.UploadTicket{UploadURL: "https://uploads.s3/put", FileKey: "uuid_" + name}, nil
	}}
	h := NewHandler(&rag_test.MockRagService{}, uploads, nil)

	rec := do(t, h, http.MethodPost, "/upload", `{"fileName":"a.pdf","fileType":"application/pdf"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	var res api.UploadResponse
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.FileKey != "uuid_a.pdf" || res.UploadURL == "" {
		t.Errorf("unexpected response %+v", res)
	}

	if rec := do(t, h, http.MethodPost, "/upload", `{"fileName":"a.pdf"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing fileType: status = %d; want 400", rec.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	ok := NewHandler(&rag_test.MockRagService{}, nil, &mockHealth{})
	if rec := do(t, ok, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("status = %d; want 200", rec.Code)
	}
	down := NewHandler(&rag_test.MockRagService{}, nil, &mockHealth{err: errors.New("connection refused")})
	if rec := do(t, down, http.MethodGet, "/health", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d; want 503", rec.Code)
	}
}
