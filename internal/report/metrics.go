package report

import (
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// Metrics are plain counters and gauges derived from Results.
// Every value can be explained by looking at the Results that fed it.
type Metrics struct {
	registry *prometheus.Registry

	measurements    *prometheus.CounterVec
	measuredTotal   *prometheus.CounterVec
	lastDuration    *prometheus.GaugeVec
	iterationsTotal *prometheus.CounterVec
}

// NewMetrics creates the collectors on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		measurements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "timethis_measurements_total",
				Help: "Measurements taken, by timing mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		measuredTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "timethis_measured_seconds_total",
				Help: "Sum of elapsed seconds over successful measurements",
			},
			[]string{"label"},
		),
		lastDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "timethis_last_duration_seconds",
				Help: "Elapsed seconds of the most recent successful measurement",
			},
			[]string{"label"},
		),
		iterationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "timethis_iterations_total",
				Help: "Iterations of the unit of work inside successful measurements",
			},
			[]string{"label"},
		),
	}

	m.registry.MustRegister(m.measurements)
	m.registry.MustRegister(m.measuredTotal)
	m.registry.MustRegister(m.lastDuration)
	m.registry.MustRegister(m.iterationsTotal)

	return m
}

// RecordResult updates all collectors from a single Result.
// This is the only way metrics change.
func (m *Metrics) RecordResult(r *Result) {
	m.measurements.WithLabelValues(string(r.Mode), r.Outcome()).Inc()
	if r.Failed() {
		return
	}

	seconds := r.Duration.Seconds()
	m.measuredTotal.WithLabelValues(r.Label).Add(seconds)
	m.lastDuration.WithLabelValues(r.Label).Set(seconds)
	m.iterationsTotal.WithLabelValues(r.Label).Add(float64(r.Loops))
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteText encodes every metric family in the text exposition format,
// suitable for node_exporter's textfile collector.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return err
	}

	encoder := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := encoder.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
