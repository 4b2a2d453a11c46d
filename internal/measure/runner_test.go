package measure

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psantana5/timethis/internal/hostinfo"
	"github.com/psantana5/timethis/internal/logging"
	"github.com/psantana5/timethis/internal/report"
	"github.com/psantana5/timethis/internal/workload"
	"github.com/psantana5/timethis/pkg/timethis/testutil"
)

func collect(results *[]*report.Result) Sink {
	return SinkFunc(func(_ context.Context, r *report.Result) error {
		*results = append(*results, r)
		return nil
	})
}

func TestMeasureOnce(t *testing.T) {
	start := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	clock := testutil.NewFakeClock(start)
	var got []*report.Result
	runner := NewRunner(WithClock(clock), WithSink(collect(&got)), WithHost(hostinfo.Info{OS: "plan9"}))

	calls := 0
	result, err := runner.Measure(context.Background(), "unit", "", 1, func() error {
		calls++
		clock.Advance(40 * time.Millisecond)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, report.ModeOnce, result.Mode)
	assert.Equal(t, 40*time.Millisecond, result.Duration)
	assert.True(t, result.StartTime.Equal(start), "start is the timer's opening read")
	assert.True(t, result.EndTime.Equal(start.Add(40*time.Millisecond)))
	assert.Equal(t, 2, clock.Reads(), "no clock reads beyond the timer's")
	require.NotNil(t, result.Host)
	assert.Equal(t, "plan9", result.Host.OS)
	require.Len(t, got, 1)
	assert.Same(t, result, got[0])
}

func TestMeasureLoops(t *testing.T) {
	clock := testutil.NewFakeClock(time.Unix(0, 0))
	runner := NewRunner(WithClock(clock))

	calls := 0
	result, err := runner.Measure(context.Background(), "loop", "", 5, func() error {
		calls++
		clock.Advance(time.Millisecond)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 5, calls)
	assert.Equal(t, report.ModeLoop, result.Mode)
	assert.Equal(t, 5*time.Millisecond, result.Duration)
}

func TestMeasureZeroLoops(t *testing.T) {
	runner := NewRunner()

	result, err := runner.Measure(context.Background(), "zero", "", 0, func() error {
		t.Fatal("work must not run")
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, report.ModeLoop, result.Mode)
	assert.Less(t, result.Duration, time.Second)
}

func TestMeasureFailurePassesErrorThrough(t *testing.T) {
	var got []*report.Result
	runner := NewRunner(WithSink(collect(&got)))
	original := &workload.ExitError{Command: "false", Code: 1}

	result, err := runner.Measure(context.Background(), "bad", "false", 3, func() error {
		return original
	})

	assert.True(t, err == original, "error must not be wrapped")
	require.NotNil(t, result)
	assert.True(t, result.Failed())
	assert.Zero(t, result.Duration)
	assert.Equal(t, 1, result.ExitCode)
	require.Len(t, got, 1)
}

func TestSinkErrorsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(logging.INFO, false, &buf)
	failing := SinkFunc(func(context.Context, *report.Result) error {
		return errors.New("disk full")
	})
	var got []*report.Result
	runner := NewRunner(WithLogger(logger), WithSink(failing), WithSink(collect(&got)))

	_, err := runner.Measure(context.Background(), "x", "", 1, func() error { return nil })

	require.NoError(t, err)
	assert.Len(t, got, 1, "later sinks still run")
	assert.Contains(t, buf.String(), "disk full")
}

func TestBuiltinSinks(t *testing.T) {
	metrics := report.NewMetrics()
	failures := report.NewFailureLog(10)
	recent := report.NewRecentResults(10)
	var buf bytes.Buffer

	runner := NewRunner(
		WithSink(MetricsSink(metrics)),
		WithSink(FailureSink(failures)),
		WithSink(RecentSink(recent)),
		WithSink(LogSink(logging.NewLogger(logging.INFO, false, &buf))),
	)

	ctx := context.Background()
	runner.Measure(ctx, "ok", "", 1, func() error { return nil })
	runner.Measure(ctx, "bad", "", 1, func() error { return errors.New("nope") })

	assert.Len(t, recent.Latest(0), 2)
	assert.Equal(t, 1, failures.Count())
	assert.Contains(t, buf.String(), "MEASUREMENT ok")

	var text bytes.Buffer
	require.NoError(t, metrics.WriteText(&text))
	assert.Contains(t, text.String(), `timethis_measurements_total{mode="once",outcome="failed"} 1`)
}

func TestMeasureEmptyErrorMessageIsFailure(t *testing.T) {
	metrics := report.NewMetrics()
	failures := report.NewFailureLog(10)
	runner := NewRunner(WithSink(MetricsSink(metrics)), WithSink(FailureSink(failures)))

	result, err := runner.Measure(context.Background(), "quiet", "", 1, func() error {
		return errors.New("")
	})

	require.Error(t, err)
	assert.True(t, result.Failed())
	assert.Equal(t, "failed", result.Outcome())
	assert.Zero(t, result.Duration)
	assert.Equal(t, 1, failures.Count())

	var text bytes.Buffer
	require.NoError(t, metrics.WriteText(&text))
	assert.Contains(t, text.String(), `timethis_measurements_total{mode="once",outcome="failed"} 1`)
	assert.NotContains(t, text.String(), `outcome="ok"`)
}

func TestMeasureInterruptedIsNotRecorded(t *testing.T) {
	var got []*report.Result
	runner := NewRunner(WithSink(collect(&got)))
	ctx, cancel := context.WithCancel(context.Background())
	killed := errors.New("signal: killed")

	result, err := runner.Measure(ctx, "slow", "", 1, func() error {
		cancel()
		return killed
	})

	assert.True(t, err == killed)
	require.NotNil(t, result)
	assert.True(t, result.Failed())
	assert.Empty(t, got, "interrupted measurements stay out of the sinks")
}

func TestMeasureSuccessAfterCancelIsRecorded(t *testing.T) {
	var got []*report.Result
	runner := NewRunner(WithSink(collect(&got)))
	ctx, cancel := context.WithCancel(context.Background())

	_, err := runner.Measure(ctx, "done", "", 1, func() error {
		cancel()
		return nil
	})

	require.NoError(t, err)
	assert.Len(t, got, 1)
}
