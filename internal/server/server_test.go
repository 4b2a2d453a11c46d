package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psantana5/timethis/internal/logging"
	"github.com/psantana5/timethis/internal/report"
)

func newTestHandler() *Handler {
	metrics := report.NewMetrics()
	recent := report.NewRecentResults(10)
	failures := report.NewFailureLog(10)

	start := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	ok := report.NewResult("probe", "curl", 1, start, 300*time.Millisecond)
	bad := report.NewFailure("probe", "curl", 1, start.Add(time.Minute), start.Add(time.Minute), errors.New("exit 7"), 7)
	for _, r := range []*report.Result{ok, bad} {
		metrics.RecordResult(r)
		recent.Add(r)
		failures.Record(r)
	}

	return NewHandler(metrics, recent, failures, nil)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestResults(t *testing.T) {
	router := newTestHandler().Router()

	rr := get(t, router, "/results?limit=1")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Results []report.Result `json:"results"`
		Count   int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "exit 7", body.Results[0].Error, "newest first")
}

func TestResultsBadLimit(t *testing.T) {
	rr := get(t, newTestHandler().Router(), "/results?limit=abc")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestFailures(t *testing.T) {
	rr := get(t, newTestHandler().Router(), "/failures")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Failures []report.FailureSample `json:"failures"`
		Count    int                    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, 7, body.Failures[0].ExitCode)
}

func TestMetrics(t *testing.T) {
	rr := get(t, newTestHandler().Router(), "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `timethis_last_duration_seconds{label="probe"} 0.3`)
}

func TestHealth(t *testing.T) {
	rr := get(t, newTestHandler().Router(), "/health")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"healthy"`)
}

func TestMethodNotAllowed(t *testing.T) {
	router := newTestHandler().Router()
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/results", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestWriteJSONLogsEncodeFailure(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(report.NewMetrics(), report.NewRecentResults(1), report.NewFailureLog(1),
		logging.NewLogger(logging.INFO, false, &buf))

	rr := httptest.NewRecorder()
	h.writeJSON(rr, http.StatusOK, map[string]interface{}{"bad": make(chan int)})

	assert.Contains(t, buf.String(), "failed to encode response")
}
