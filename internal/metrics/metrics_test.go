package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/transfer-tracker/internal/metrics"
)

func TestMetrics_Counters(t *testing.T) {
	m := metrics.New()

	m.Submission(metrics.ResultAccepted)
	m.Submission(metrics.ResultRejected)
	m.Submission(metrics.ResultRejected)
	m.Import(metrics.ResultAccepted, 3, 2)
	m.Import(metrics.ResultRejected, 9, 9)
	m.Export()

	expected := `
# HELP transfers_import_rows_total Rows seen by successful imports, split into added and duplicate.
# TYPE transfers_import_rows_total counter
transfers_import_rows_total{outcome="added"} 3
transfers_import_rows_total{outcome="duplicate"} 2
# HELP transfers_submissions_total Transfer submissions by result (accepted, rejected, failed).
# TYPE transfers_submissions_total counter
transfers_submissions_total{result="accepted"} 1
transfers_submissions_total{result="rejected"} 2
`
	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"transfers_submissions_total", "transfers_import_rows_total")
	require.NoError(t, err)
	n, err := testutil.GatherAndCount(m.Registry(), "transfers_exports_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.Submission(metrics.ResultAccepted)
		m.Import(metrics.ResultAccepted, 1, 1)
		m.Export()
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := metrics.New()
	m.Export()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "transfers_exports_total 1")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
