package config

import (
	"fmt"
	"strings"

	"github.com/sonify-k8s/sonify-k8s/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
// Metric names are not checked here; unknown names surface per tick.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if err := validateKubernetes(cfg.Kubernetes); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'kubernetes' section in your sonify.yaml.")
	}

	if err := validateMonitoring(cfg.Monitoring); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'monitoring' section in your sonify.yaml.")
	}

	if err := validateAudio(cfg.Audio); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'audio' section in your sonify.yaml.")
	}

	if err := validateMetrics(cfg.Metrics); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'metrics' section in your sonify.yaml.")
	}

	if err := validateExport(cfg.Export); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'export' section in your sonify.yaml.")
	}

	return nil
}

func validateKubernetes(k KubernetesConfig) error {
	if strings.TrimSpace(k.Namespace) == "" {
		return fmt.Errorf("kubernetes.namespace can't be empty")
	}
	if k.RequestTimeout < 0 {
		return fmt.Errorf("kubernetes.request_timeout can't be negative (got %v)", k.RequestTimeout)
	}
	if k.APIURL != "" && !strings.HasPrefix(k.APIURL, "http://") && !strings.HasPrefix(k.APIURL, "https://") {
		return fmt.Errorf("kubernetes.api_url '%s' needs an http:// or https:// scheme", k.APIURL)
	}
	return nil
}

func validateMonitoring(m MonitoringConfig) error {
	if m.PollInterval <= 0 {
		return fmt.Errorf("monitoring.poll_interval needs to be at least 1 second (got %d)", m.PollInterval)
	}
	switch m.UsageSource {
	case UsageSourceRequests, UsageSourceMetricsServer:
	default:
		return fmt.Errorf("monitoring.usage_source '%s' isn't valid - use '%s' or '%s'",
			m.UsageSource, UsageSourceRequests, UsageSourceMetricsServer)
	}
	return nil
}

func validateAudio(a AudioConfig) error {
	if a.NoteDuration <= 0 {
		return fmt.Errorf("audio.note_duration needs to be positive (got %g)", a.NoteDuration)
	}
	if a.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate needs to be positive (got %d)", a.SampleRate)
	}
	return nil
}

func validateMetrics(m MetricsConfig) error {
	for i, name := range m.Enabled {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("metrics.enabled[%d] is empty - remove it or add a metric name", i)
		}
	}
	return nil
}

func validateExport(e ExportConfig) error {
	if e.Prometheus.Enabled {
		if e.Prometheus.Port < 1 || e.Prometheus.Port > 65535 {
			return fmt.Errorf("export.prometheus.port needs to be 1-65535 (got %d)", e.Prometheus.Port)
		}
		if !strings.HasPrefix(e.Prometheus.Path, "/") {
			return fmt.Errorf("export.prometheus.path '%s' needs to start with '/'", e.Prometheus.Path)
		}
	}
	if e.OTel.Enabled {
		switch e.OTel.Transport {
		case TransportGRPC, TransportHTTP:
		default:
			return fmt.Errorf("export.otel.transport '%s' isn't valid - use '%s' or '%s'",
				e.OTel.Transport, TransportGRPC, TransportHTTP)
		}
		if e.OTel.Endpoint == "" {
			return fmt.Errorf("export.otel.endpoint can't be empty when otel export is enabled")
		}
		if e.OTel.Interval <= 0 {
			return fmt.Errorf("export.otel.interval needs to be positive (got %v)", e.OTel.Interval)
		}
	}
	return nil
}
