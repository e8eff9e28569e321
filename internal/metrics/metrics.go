// Package metrics defines the Prometheus collectors exposed at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes used as the "result" label.
const (
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

// Metrics groups the application collectors. A nil *Metrics is valid and
// records nothing, so tests can leave it out.
type Metrics struct {
	registry    *prometheus.Registry
	submissions *prometheus.CounterVec
	imports     *prometheus.CounterVec
	importRows  *prometheus.CounterVec
	exports     prometheus.Counter
}

// New creates the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "transfers",
			Name:      "submissions_total",
			Help:      "Transfer submissions by result (accepted, rejected, failed).",
		}, []string{"result"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "transfers",
			Name:      "imports_total",
			Help:      "Import requests by result (accepted, rejected, failed).",
		}, []string{"result"}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "transfers",
			Name:      "import_rows_total",
			Help:      "Rows seen by successful imports, split into added and duplicate.",
		}, []string{"outcome"}),
		exports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "transfers",
			Name:      "exports_total",
			Help:      "Full exports served or archived.",
		}),
	}
	m.registry.MustRegister(
		m.submissions, m.imports, m.importRows, m.exports,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Submission counts one submission with the given result.
func (m *Metrics) Submission(result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(result).Inc()
}

// Import counts one import request with the given result.
func (m *Metrics) Import(result string, added, duplicates int) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(result).Inc()
	if result == ResultAccepted {
		m.importRows.WithLabelValues("added").Add(float64(added))
		m.importRows.WithLabelValues("duplicate").Add(float64(duplicates))
	}
}

// Export counts one export.
func (m *Metrics) Export() {
	if m == nil {
		return
	}
	m.exports.Inc()
}
