package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusHandler(t *testing.T) {
	m := New()
	m.Inc(EventJoin)
	m.Inc(EventJoin)
	m.Inc(EventSignalDelivered)

	rec := httptest.NewRecorder()
	PrometheusHandler(m).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	body := rec.Body.String()
	assert.Contains(t, body, "# TYPE relay_events_total counter")
	assert.Contains(t, body, `relay_events_total{event="join"} 2`)
	assert.Contains(t, body, `relay_events_total{event="signal_delivered"} 1`)
	assert.Less(t, strings.Index(body, `event="join"`), strings.Index(body, `event="signal_delivered"`))
}

func TestPrometheusHandlerNilMetrics(t *testing.T) {
	rec := httptest.NewRecorder()
	PrometheusHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.Inc(EventJoin)
	assert.Zero(t, m.Get(EventJoin))
	assert.Empty(t, m.Snapshot())
}
