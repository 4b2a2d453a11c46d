package measure

import (
	"context"

	"github.com/psantana5/timethis/internal/logging"
	"github.com/psantana5/timethis/internal/report"
)

// MetricsSink feeds Prometheus collectors
func MetricsSink(m *report.Metrics) Sink {
	return SinkFunc(func(_ context.Context, r *report.Result) error {
		m.RecordResult(r)
		return nil
	})
}

// FailureSink keeps failed measurements in a ring buffer
func FailureSink(f *report.FailureLog) Sink {
	return SinkFunc(func(_ context.Context, r *report.Result) error {
		f.Record(r)
		return nil
	})
}

// RecentSink keeps the latest results in memory
func RecentSink(b *report.RecentResults) Sink {
	return SinkFunc(func(_ context.Context, r *report.Result) error {
		b.Add(r)
		return nil
	})
}

// LogSink writes the one-line summary of each result
func LogSink(l *logging.Logger) Sink {
	return SinkFunc(func(_ context.Context, r *report.Result) error {
		r.LogSummary(l)
		return nil
	})
}
