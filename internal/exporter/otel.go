package exporter

import (
	"context"
	"fmt"
	"time"

	"github.com/sonify-k8s/sonify-k8s/internal/errors"
	"github.com/sonify-k8s/sonify-k8s/internal/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// OTEL instrument names.
const (
	otelValue     = "sonify.metric.value"
	otelFrequency = "sonify.metric.frequency_hz"
	otelBucket    = "sonify.metric.bucket"
	otelFailures  = "sonify.metric.failures"
	otelTicks     = "sonify.ticks"
)

// OTELOptions configures the OTLP push exporter.
type OTELOptions struct {
	Transport string // "grpc" or "http"
	Endpoint  string // host:port
	Insecure  bool
	Interval  time.Duration
}

// OTELExporter pushes the store to an OTLP collector on a fixed interval.
type OTELExporter struct {
	opts          OTELOptions
	meterProvider *sdkmetric.MeterProvider
	log           logger.Logger
}

// NewOTELExporter creates the OTLP exporter selected by opts.Transport and
// registers observable instruments over store.
func NewOTELExporter(ctx context.Context, store *Store, opts OTELOptions, log logger.Logger) (*OTELExporter, error) {
	exp, err := newMetricExporter(ctx, opts)
	if err != nil {
		return nil, err
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if opts.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(opts.Interval))
	}

	e, err := newOTELWithReader(store, sdkmetric.NewPeriodicReader(exp, readerOpts...), log)
	if err != nil {
		return nil, err
	}
	e.opts = opts
	return e, nil
}

func newMetricExporter(ctx context.Context, opts OTELOptions) (sdkmetric.Exporter, error) {
	var (
		exp sdkmetric.Exporter
		err error
	)

	switch opts.Transport {
	case "grpc", "":
		grpcOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(opts.Endpoint)}
		if opts.Insecure {
			grpcOpts = append(grpcOpts, otlpmetricgrpc.WithInsecure())
		}
		exp, err = otlpmetricgrpc.New(ctx, grpcOpts...)
	case "http":
		httpOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(opts.Endpoint)}
		if opts.Insecure {
			httpOpts = append(httpOpts, otlpmetrichttp.WithInsecure())
		}
		exp, err = otlpmetrichttp.New(ctx, httpOpts...)
	default:
		return nil, errors.New(errors.ErrExport,
			fmt.Sprintf("Unknown OTLP transport %q", opts.Transport),
			"Use grpc or http for export.otel.transport")
	}

	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrExport, "Couldn't create OTLP exporter", "")
	}
	return exp, nil
}

// newOTELWithReader wires instruments to an arbitrary reader.
func newOTELWithReader(store *Store, reader sdkmetric.Reader, log logger.Logger) (*OTELExporter, error) {
	if log == nil {
		log = logger.Noop()
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(attribute.String("service.name", "sonify-k8s")))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrExport, "Couldn't create OTEL resource", "")
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)

	if err := registerInstruments(provider.Meter("sonify-k8s"), store); err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, err
	}

	return &OTELExporter{meterProvider: provider, log: log}, nil
}

func registerInstruments(meter otelmetric.Meter, store *Store) error {
	value, err := meter.Float64ObservableGauge(otelValue,
		otelmetric.WithDescription("Latest raw value of a sonified metric."))
	if err != nil {
		return instrumentErr(otelValue, err)
	}
	frequency, err := meter.Int64ObservableGauge(otelFrequency,
		otelmetric.WithDescription("Frequency of the note played for the latest value."),
		otelmetric.WithUnit("Hz"))
	if err != nil {
		return instrumentErr(otelFrequency, err)
	}
	bucket, err := meter.Int64ObservableGauge(otelBucket,
		otelmetric.WithDescription("Note index selected for the latest value."))
	if err != nil {
		return instrumentErr(otelBucket, err)
	}
	failures, err := meter.Int64ObservableCounter(otelFailures,
		otelmetric.WithDescription("Metric fetch or mapping failures by error code."))
	if err != nil {
		return instrumentErr(otelFailures, err)
	}
	ticks, err := meter.Int64ObservableCounter(otelTicks,
		otelmetric.WithDescription("Poll ticks processed."))
	if err != nil {
		return instrumentErr(otelTicks, err)
	}

	_, err = meter.RegisterCallback(
		func(_ context.Context, o otelmetric.Observer) error {
			for _, r := range store.Readings() {
				m := otelmetric.WithAttributes(attribute.String("metric", r.Metric))
				o.ObserveFloat64(value, r.Value, m)
				o.ObserveInt64(bucket, int64(r.Mapping.Index), m)
				o.ObserveInt64(frequency, int64(r.Mapping.Frequency), otelmetric.WithAttributes(
					attribute.String("metric", r.Metric),
					attribute.String("note", r.Mapping.Note)))
			}
			for key, n := range store.Failures() {
				o.ObserveInt64(failures, int64(n), otelmetric.WithAttributes(
					attribute.String("metric", key.Metric),
					attribute.String("code", key.Code)))
			}
			o.ObserveInt64(ticks, int64(store.Ticks().Count))
			return nil
		},
		value, frequency, bucket, failures, ticks,
	)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrExport, "Couldn't register OTEL callback", "")
	}
	return nil
}

func instrumentErr(name string, err error) error {
	return errors.WrapWithCode(err, errors.ErrExport, fmt.Sprintf("Couldn't create instrument %s", name), "")
}

// Start blocks until ctx is cancelled and then flushes and shuts down the
// provider. The periodic reader pushes on its own goroutine.
func (e *OTELExporter) Start(ctx context.Context) error {
	e.log.Info("Pushing OTLP metrics to %s over %s every %s", e.opts.Endpoint, e.opts.Transport, e.opts.Interval)
	<-ctx.Done()
	return e.Stop()
}

// Stop flushes pending metrics and shuts the provider down.
func (e *OTELExporter) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	e.log.Debug("Shutting down OTEL exporter")
	if err := e.meterProvider.Shutdown(ctx); err != nil {
		return errors.WrapWithCode(err, errors.ErrExport, "OTEL shutdown failed", "")
	}
	return nil
}
