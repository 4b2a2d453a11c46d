package report

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psantana5/timethis/internal/hostinfo"
	"github.com/psantana5/timethis/internal/logging"
)

var start = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func TestModeFor(t *testing.T) {
	assert.Equal(t, ModeOnce, ModeFor(1))
	assert.Equal(t, ModeLoop, ModeFor(0))
	assert.Equal(t, ModeLoop, ModeFor(10))
}

func TestNewResult(t *testing.T) {
	r := NewResult("build", "make", 1, start, 1500*time.Millisecond)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, ModeOnce, r.Mode)
	assert.Equal(t, start.Add(1500*time.Millisecond), r.EndTime)
	assert.False(t, r.Failed())
	assert.Equal(t, "ok", r.Outcome())
}

func TestNewFailureHasNoDuration(t *testing.T) {
	r := NewFailure("build", "make", 3, start, start.Add(time.Second), errors.New("exit 2"), 2)

	assert.True(t, r.Failed())
	assert.Equal(t, "failed", r.Outcome())
	assert.Zero(t, r.Duration)
	assert.Equal(t, 2, r.ExitCode)
	assert.Equal(t, ModeLoop, r.Mode)
}

func TestNewFailureWithEmptyMessage(t *testing.T) {
	r := NewFailure("quiet", "", 1, start, start, errors.New(""), 1)

	assert.True(t, r.Failed())
	assert.Equal(t, "failed", r.Outcome())
	assert.Contains(t, r.Error, "*errors.errorString")
	assert.Zero(t, r.Duration)
}

func TestWithHostCopies(t *testing.T) {
	r := NewResult("x", "", 1, start, time.Second)
	annotated := r.WithHost(hostinfo.Info{OS: "linux"})

	assert.Nil(t, r.Host)
	require.NotNil(t, annotated.Host)
	assert.Equal(t, "linux", annotated.Host.OS)
	assert.Equal(t, r.ID, annotated.ID)
}

func TestLogSummary(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(logging.INFO, false, &buf)

	NewResult("build", "make", 1, start, 2*time.Second).LogSummary(logger)
	NewFailure("test", "go test", 1, start, start, errors.New("boom"), 1).LogSummary(logger)

	out := buf.String()
	assert.Contains(t, out, "MEASUREMENT build | outcome=ok | elapsed=2s")
	assert.Contains(t, out, "ERROR: MEASUREMENT test | outcome=failed")
	assert.Contains(t, out, "error=boom")
}

func TestMetricsRecordResult(t *testing.T) {
	m := NewMetrics()

	m.RecordResult(NewResult("build", "", 1, start, 2*time.Second))
	m.RecordResult(NewResult("build", "", 10, start, 3*time.Second))
	m.RecordResult(NewFailure("build", "", 1, start, start, errors.New("x"), 1))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.measurements.WithLabelValues("once", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.measurements.WithLabelValues("loop", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.measurements.WithLabelValues("once", "failed")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.measuredTotal.WithLabelValues("build")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.lastDuration.WithLabelValues("build")))
	assert.Equal(t, 11.0, testutil.ToFloat64(m.iterationsTotal.WithLabelValues("build")))
}

func TestMetricsWriteText(t *testing.T) {
	m := NewMetrics()
	m.RecordResult(NewResult("build", "", 1, start, 250*time.Millisecond))

	var buf bytes.Buffer
	require.NoError(t, m.WriteText(&buf))

	out := buf.String()
	assert.Contains(t, out, "# TYPE timethis_last_duration_seconds gauge")
	assert.Contains(t, out, `timethis_last_duration_seconds{label="build"} 0.25`)
	assert.Contains(t, out, `timethis_measurements_total{mode="once",outcome="ok"} 1`)
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.RecordResult(NewResult("build", "", 1, start, time.Second))

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "timethis_measured_seconds_total"))
}

func TestFailureLogRing(t *testing.T) {
	log := NewFailureLog(2)

	log.Record(NewResult("ok", "", 1, start, time.Second))
	assert.Equal(t, 0, log.Count(), "successful results are not kept")

	for _, label := range []string{"a", "b", "c"} {
		log.Record(NewFailure(label, "", 1, start, start, errors.New(label), 1))
	}

	recent := log.Recent(0)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].Label)
	assert.Equal(t, "b", recent[1].Label)
	assert.Len(t, log.Recent(1), 1)
}

func TestRecentResults(t *testing.T) {
	buf := NewRecentResults(3)
	for i := 0; i < 5; i++ {
		buf.Add(NewResult("r", "", uint(i), start, time.Duration(i)))
	}

	latest := buf.Latest(10)
	require.Len(t, latest, 3)
	assert.Equal(t, uint(4), latest[0].Loops)
	assert.Equal(t, uint(2), latest[2].Loops)
}
