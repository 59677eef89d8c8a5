package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/county-features-etl/internal/adapter/http"
	"github.com/couchcryptid/county-features-etl/internal/domain"
)

type mockStatus struct {
	err error
	run *domain.RunSummary
}

func (m *mockStatus) CheckReadiness(_ context.Context) error { return m.err }

func (m *mockStatus) LastRun() (domain.RunSummary, bool) {
	if m.run == nil {
		return domain.RunSummary{}, false
	}
	return *m.run, true
}

func newTestServer(status *mockStatus) *httpadapter.Server {
	return httpadapter.NewServer(":0", status, slog.Default())
}

func serve(srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := serve(newTestServer(&mockStatus{}), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := serve(newTestServer(&mockStatus{}), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := serve(newTestServer(&mockStatus{err: fmt.Errorf("feature table has not been built yet")}), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLatestRun(t *testing.T) {
	generated := time.Date(2026, 10, 1, 6, 0, 0, 0, time.UTC)
	srv := newTestServer(&mockStatus{run: &domain.RunSummary{
		Version:     "v2",
		GeneratedAt: generated,
		Rows:        3143,
		Columns:     []string{"area mi2", "GHI"},
	}})

	rec := serve(srv, "/runs/latest")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body domain.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "v2", body.Version)
	assert.Equal(t, 3143, body.Rows)
	assert.True(t, generated.Equal(body.GeneratedAt))
	assert.Equal(t, []string{"area mi2", "GHI"}, body.Columns)
}

func TestLatestRunNotFoundBeforeFirstRun(t *testing.T) {
	rec := serve(newTestServer(&mockStatus{}), "/runs/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(newTestServer(&mockStatus{}), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
