package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/soi-cli/internal/config"
	"github.com/ledgerline/soi-cli/internal/model"
	"github.com/ledgerline/soi-cli/internal/store"
	"github.com/ledgerline/soi-cli/internal/validate"
)

func newTestServer(t *testing.T) (*Server, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })

	cfg := config.ServerConfig{
		Port:           0,
		AllowedOrigins: []string{"*"},
	}
	return New(validate.New(), st, cfg), st
}

func validDocumentJSON() []byte {
	return []byte(`{
		"source_file": "fund_a.json",
		"num_pages": 5,
		"soi_pages": [2, 3],
		"rows": [
			{"section_path": ["Bonds"], "row_type": "HOLDING", "label": "Treasury Note", "fair_value": "600"},
			{"section_path": ["Bonds"], "row_type": "HOLDING", "label": "Agency Bond", "fair_value": "400"},
			{"section_path": ["Bonds"], "row_type": "SUBTOTAL", "label": "Total Bonds", "fair_value": "1000"},
			{"row_type": "GRAND_TOTAL", "label": "Total Investments", "fair_value": "1000"}
		]
	}`)
}

func TestHandleValidate(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", bytes.NewReader(validDocumentJSON()))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Run-ID"))

	var report model.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "fund_a.json", report.SourceFile)
	assert.True(t, report.Summary.Trustworthy)
	assert.Equal(t, 4, report.Summary.TotalRows)
}

func TestHandleValidate_PersistsRun(t *testing.T) {
	srv, st := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", bytes.NewReader(validDocumentJSON()))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	runID := rec.Header().Get("X-Run-ID")
	require.NotEmpty(t, runID)

	run, err := st.GetRun(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	assert.Equal(t, "fund_a.json", run.SourceFile)
	require.NotNil(t, run.Summary)
	assert.True(t, run.Summary.Trustworthy)
}

func TestHandleValidate_BadPayload(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", bytes.NewReader([]byte(`{"rows": [`)))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid document payload")
}

func TestHandleValidate_EmptyDocument(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", bytes.NewReader([]byte(`{"rows": []}`)))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var report model.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Issues, 1)
	assert.Equal(t, model.CodeNoRowsExtracted, report.Issues[0].Code)
}

func TestHandleListRuns(t *testing.T) {
	srv, _ := newTestServer(t)

	// Seed two runs through the API.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", bytes.NewReader(validDocumentJSON()))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs?status=complete", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var runs []model.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 2)
	// Listing carries summaries, not full reports.
	assert.Nil(t, runs[0].Report)
	assert.NotNil(t, runs[0].Summary)
}

func TestHandleListRuns_InvalidLimit(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=abc", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetRun(t *testing.T) {
	srv, _ := newTestServer(t)

	post := httptest.NewRequest(http.MethodPost, "/api/v1/validate", bytes.NewReader(validDocumentJSON()))
	postRec := httptest.NewRecorder()
	srv.ServeHTTP(postRec, post)
	runID := postRec.Header().Get("X-Run-ID")
	require.NotEmpty(t, runID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+runID, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var run model.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, runID, run.ID)
	require.NotNil(t, run.Report)
	assert.Equal(t, "fund_a.json", run.Report.SourceFile)
}

func TestHandleGetRun_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/nonexistent", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunEndpointsWithoutStore(t *testing.T) {
	srv := New(validate.New(), nil, config.ServerConfig{AllowedOrigins: []string{"*"}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	// Validation still works, just unpersisted.
	post := httptest.NewRequest(http.MethodPost, "/api/v1/validate", bytes.NewReader(validDocumentJSON()))
	postRec := httptest.NewRecorder()
	srv.ServeHTTP(postRec, post)
	assert.Equal(t, http.StatusOK, postRec.Code)
	assert.Empty(t, postRec.Header().Get("X-Run-ID"))
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Contains(t, resp, "metrics")
}

func TestRateLimit(t *testing.T) {
	cfg := config.ServerConfig{
		AllowedOrigins: []string{"*"},
		RateLimit:      1,
		RateBurst:      2,
	}
	srv := New(validate.New(), nil, cfg)

	var limited bool
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
		}
	}
	assert.True(t, limited)

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	srv := New(validate.New(), nil, config.ServerConfig{AllowedOrigins: []string{"*"}})

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = fmt.Sprintf("10.0.0.1:%d", 5000+i)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}
