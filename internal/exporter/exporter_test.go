package exporter

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sonify-k8s/sonify-k8s/internal/errors"
	"github.com/sonify-k8s/sonify-k8s/internal/sonifier"
	"github.com/sonify-k8s/sonify-k8s/internal/sonify"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reading(metric string, value float64, index, freq int, note string) sonifier.Reading {
	return sonifier.Reading{
		Metric: metric,
		Value:  value,
		Mapping: sonify.Mapping{
			Metric:    metric,
			Index:     index,
			Frequency: freq,
			Note:      note,
		},
	}
}

func populatedStore() *Store {
	s := NewStore()
	s.Observe(reading("cpu_usage", 42, 2, 330, "E4"))
	s.Observe(reading("pod_status", 3, 3, 392, "G4"))
	s.Observe(reading("cpu_usage", 50, 3, 349, "F4"))
	s.Fail("mystery", errors.NewUnknownMetric("mystery"))
	s.Fail("mystery", errors.NewUnknownMetric("mystery"))
	s.Fail("replicas", fmt.Errorf("plain"))
	s.TickDone(20 * time.Millisecond)
	s.TickDone(2 * time.Second)
	return s
}

func TestStore(t *testing.T) {
	s := populatedStore()

	readings := s.Readings()
	require.Len(t, readings, 2)
	assert.Equal(t, "cpu_usage", readings[0].Metric)
	assert.Equal(t, 50.0, readings[0].Value, "latest reading wins")
	assert.Equal(t, "pod_status", readings[1].Metric)

	failures := s.Failures()
	assert.Equal(t, uint64(2), failures[FailureKey{"mystery", errors.ErrUnknownMetric}])
	assert.Equal(t, uint64(1), failures[FailureKey{"replicas", "UNKNOWN"}])

	ticks := s.Ticks()
	assert.Equal(t, uint64(2), ticks.Count)
	assert.InDelta(t, 2.02, ticks.Sum, 1e-9)
	assert.Equal(t, uint64(1), ticks.Buckets[0.025])
	assert.Equal(t, uint64(2), ticks.Buckets[2.5])
	assert.Equal(t, uint64(2), ticks.Buckets[10])
}

func TestPrometheusCollector(t *testing.T) {
	e := NewPrometheusExporter(populatedStore(), 9464, "/metrics", nil)

	expected := `
# HELP sonify_metric_value Latest raw value of a sonified metric.
# TYPE sonify_metric_value gauge
sonify_metric_value{metric="cpu_usage"} 50
sonify_metric_value{metric="pod_status"} 3
# HELP sonify_metric_frequency_hz Frequency of the note played for the latest value.
# TYPE sonify_metric_frequency_hz gauge
sonify_metric_frequency_hz{metric="cpu_usage",note="F4"} 349
sonify_metric_frequency_hz{metric="pod_status",note="G4"} 392
# HELP sonify_metric_bucket Note index selected for the latest value.
# TYPE sonify_metric_bucket gauge
sonify_metric_bucket{metric="cpu_usage"} 3
sonify_metric_bucket{metric="pod_status"} 3
# HELP sonify_metric_failures_total Metric fetch or mapping failures by error code.
# TYPE sonify_metric_failures_total counter
sonify_metric_failures_total{code="UNKNOWN",metric="replicas"} 1
sonify_metric_failures_total{code="UNKNOWN_METRIC",metric="mystery"} 2
`
	err := testutil.GatherAndCompare(e.Registry(), strings.NewReader(expected),
		MetricValue, MetricFrequency, MetricBucket, MetricFailures)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(e.Registry(), MetricTickDuration)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPrometheusCollector_EmptyStore(t *testing.T) {
	e := NewPrometheusExporter(NewStore(), 9464, "/metrics", nil)

	count, err := testutil.GatherAndCount(e.Registry(), MetricValue, MetricFailures)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestPrometheusHandler(t *testing.T) {
	e := NewPrometheusExporter(populatedStore(), 9464, "/metrics", nil)

	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `sonify_metric_value{metric="cpu_usage"} 50`)
	assert.Contains(t, body, "sonify_tick_duration_seconds_count 2")

	rec = httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/other", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPrometheusServe(t *testing.T) {
	e := NewPrometheusExporter(populatedStore(), 0, "/metrics", nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Serve(ctx, ln) }()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		body = string(b)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
	assert.Contains(t, body, "sonify_metric_bucket")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestOTELInstruments(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	e, err := newOTELWithReader(populatedStore(), reader, nil)
	require.NoError(t, err)
	defer func() { _ = e.Stop() }()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := map[string]metricdata.Metrics{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		byName[m.Name] = m
	}

	value, ok := byName[otelValue].Data.(metricdata.Gauge[float64])
	require.True(t, ok)
	assert.Len(t, value.DataPoints, 2)

	freq, ok := byName[otelFrequency].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	found := false
	for _, dp := range freq.DataPoints {
		note, _ := dp.Attributes.Value("note")
		if note.AsString() == "F4" {
			found = true
			assert.Equal(t, int64(349), dp.Value)
		}
	}
	assert.True(t, found, "F4 frequency point")

	failures, ok := byName[otelFailures].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.True(t, failures.IsMonotonic)
	assert.Len(t, failures.DataPoints, 2)

	ticks, ok := byName[otelTicks].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, ticks.DataPoints, 1)
	assert.Equal(t, int64(2), ticks.DataPoints[0].Value)
}

func TestNewOTELExporter_UnknownTransport(t *testing.T) {
	_, err := NewOTELExporter(context.Background(), NewStore(), OTELOptions{Transport: "carrier-pigeon"}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrExport))
}
