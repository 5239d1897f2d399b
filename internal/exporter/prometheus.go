package exporter

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sonify-k8s/sonify-k8s/internal/errors"
	"github.com/sonify-k8s/sonify-k8s/internal/logger"
)

// Prometheus metric names.
const (
	MetricValue        = "sonify_metric_value"
	MetricFrequency    = "sonify_metric_frequency_hz"
	MetricBucket       = "sonify_metric_bucket"
	MetricFailures     = "sonify_metric_failures_total"
	MetricTickDuration = "sonify_tick_duration_seconds"
)

// collector reads the store on every scrape.
type collector struct {
	store *Store

	value     *prometheus.Desc
	frequency *prometheus.Desc
	bucket    *prometheus.Desc
	failures  *prometheus.Desc
	ticks     *prometheus.Desc
}

func newCollector(store *Store) *collector {
	return &collector{
		store: store,
		value: prometheus.NewDesc(MetricValue,
			"Latest raw value of a sonified metric.", []string{"metric"}, nil),
		frequency: prometheus.NewDesc(MetricFrequency,
			"Frequency of the note played for the latest value.", []string{"metric", "note"}, nil),
		bucket: prometheus.NewDesc(MetricBucket,
			"Note index selected for the latest value.", []string{"metric"}, nil),
		failures: prometheus.NewDesc(MetricFailures,
			"Metric fetch or mapping failures by error code.", []string{"metric", "code"}, nil),
		ticks: prometheus.NewDesc(MetricTickDuration,
			"Time spent processing one poll tick.", nil, nil),
	}
}

// Describe sends metric descriptors to the channel.
func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.value
	ch <- c.frequency
	ch <- c.bucket
	ch <- c.failures
	ch <- c.ticks
}

// Collect snapshots the store.
func (c *collector) Collect(ch chan<- prometheus.Metric) {
	for _, r := range c.store.Readings() {
		ch <- prometheus.MustNewConstMetric(c.value, prometheus.GaugeValue, r.Value, r.Metric)
		ch <- prometheus.MustNewConstMetric(c.frequency, prometheus.GaugeValue,
			float64(r.Mapping.Frequency), r.Metric, r.Mapping.Note)
		ch <- prometheus.MustNewConstMetric(c.bucket, prometheus.GaugeValue,
			float64(r.Mapping.Index), r.Metric)
	}

	for key, n := range c.store.Failures() {
		ch <- prometheus.MustNewConstMetric(c.failures, prometheus.CounterValue,
			float64(n), key.Metric, key.Code)
	}

	ticks := c.store.Ticks()
	ch <- prometheus.MustNewConstHistogram(c.ticks, ticks.Count, ticks.Sum, ticks.Buckets)
}

// PrometheusExporter serves the store on an HTTP endpoint.
type PrometheusExporter struct {
	addr     string
	path     string
	registry *prometheus.Registry
	server   *http.Server
	log      logger.Logger
}

// NewPrometheusExporter creates an exporter listening on port and serving
// path.
func NewPrometheusExporter(store *Store, port int, path string, log logger.Logger) *PrometheusExporter {
	if log == nil {
		log = logger.Noop()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(newCollector(store))

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.InstrumentMetricHandler(registry,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{EnableOpenMetrics: true})))

	addr := fmt.Sprintf(":%d", port)
	return &PrometheusExporter{
		addr:     addr,
		path:     path,
		registry: registry,
		log:      log,
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Registry exposes the registry for tests and extra collectors.
func (e *PrometheusExporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler returns the HTTP handler serving the metrics path.
func (e *PrometheusExporter) Handler() http.Handler {
	return e.server.Handler
}

// Start serves until ctx is cancelled, then shuts the server down.
func (e *PrometheusExporter) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", e.addr)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrExport,
			fmt.Sprintf("Couldn't listen on %s", e.addr),
			"Pick a free port with export.prometheus.port")
	}
	return e.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (e *PrometheusExporter) Serve(ctx context.Context, ln net.Listener) error {
	errChan := make(chan error, 1)

	go func() {
		e.log.Info("Serving Prometheus metrics on %s%s", ln.Addr(), e.path)
		if err := e.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return errors.WrapWithCode(err, errors.ErrExport, "Prometheus exporter stopped", "")
	case <-ctx.Done():
		return e.Stop()
	}
}

// Stop gracefully stops the exporter.
func (e *PrometheusExporter) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	e.log.Debug("Shutting down Prometheus exporter")
	return e.server.Shutdown(ctx)
}
