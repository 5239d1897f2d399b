package config

import "time"

// Usage sources for cpu_usage and memory_usage.
const (
	UsageSourceRequests      = "requests"
	UsageSourceMetricsServer = "metrics-server"
)

// OTLP transports.
const (
	TransportGRPC = "grpc"
	TransportHTTP = "http"
)

// DefaultMetrics is the metric list polled when none is configured, in
// polling order.
var DefaultMetrics = []string{
	"cpu_usage",
	"memory_usage",
	"pod_status",
	"http_latency",
	"errors_per_second",
	"replicas",
	"node_pressure",
}

// Config represents the complete sonify.yaml configuration file.
type Config struct {
	Kubernetes KubernetesConfig `yaml:"kubernetes" mapstructure:"kubernetes"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Audio      AudioConfig      `yaml:"audio" mapstructure:"audio"`
	Metrics    MetricsConfig    `yaml:"metrics" mapstructure:"metrics"`
	Export     ExportConfig     `yaml:"export" mapstructure:"export"`
}

// KubernetesConfig controls how the cluster is reached.
type KubernetesConfig struct {
	// Namespace whose pods and deployments are sampled.
	Namespace string `yaml:"namespace" mapstructure:"namespace"`

	// UseKubeconfig selects kubeconfig loading; false means in-cluster config.
	UseKubeconfig bool `yaml:"use_kubeconfig" mapstructure:"use_kubeconfig"`

	// Kubeconfig is an explicit kubeconfig path. Empty uses $KUBECONFIG or ~/.kube/config.
	Kubeconfig string `yaml:"kubeconfig" mapstructure:"kubeconfig"`

	// APIURL overrides the API server address from the kubeconfig.
	APIURL string `yaml:"api_url" mapstructure:"api_url"`

	// RequestTimeout bounds each metric fetch.
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
}

// MonitoringConfig controls the poll loop.
type MonitoringConfig struct {
	// PollInterval in whole seconds.
	PollInterval int    `yaml:"poll_interval" mapstructure:"poll_interval"`
	Verbose      bool   `yaml:"verbose" mapstructure:"verbose"`
	UseColor     bool   `yaml:"use_color" mapstructure:"use_color"`
	UsageSource  string `yaml:"usage_source" mapstructure:"usage_source"`
}

// Interval returns PollInterval as a duration.
func (m MonitoringConfig) Interval() time.Duration {
	return time.Duration(m.PollInterval) * time.Second
}

// AudioConfig controls tone playback.
type AudioConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	UseMIDI bool `yaml:"use_midi" mapstructure:"use_midi"`

	// MIDIPort is matched as a substring of the output port name. Empty picks the first port.
	MIDIPort string `yaml:"midi_port" mapstructure:"midi_port"`

	// NoteDuration in seconds.
	NoteDuration float64 `yaml:"note_duration" mapstructure:"note_duration"`
	SampleRate   int     `yaml:"sample_rate" mapstructure:"sample_rate"`

	// RecordPath, when set, receives a WAV copy of every tone played.
	RecordPath string `yaml:"record_path" mapstructure:"record_path"`
}

// MetricsConfig selects which metrics are polled.
type MetricsConfig struct {
	Enabled []string `yaml:"enabled" mapstructure:"enabled"`
}

// ExportConfig controls publishing of the latest readings.
type ExportConfig struct {
	Prometheus PrometheusConfig `yaml:"prometheus" mapstructure:"prometheus"`
	OTel       OTelConfig       `yaml:"otel" mapstructure:"otel"`
}

// PrometheusConfig serves a scrape endpoint.
type PrometheusConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Port    int    `yaml:"port" mapstructure:"port"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// OTelConfig pushes readings to an OTLP collector.
type OTelConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Transport string        `yaml:"transport" mapstructure:"transport"`
	Endpoint  string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure  bool          `yaml:"insecure" mapstructure:"insecure"`
	Interval  time.Duration `yaml:"interval" mapstructure:"interval"`
}

// DefaultConfig returns a Config with the stock defaults.
func DefaultConfig() *Config {
	metrics := make([]string, len(DefaultMetrics))
	copy(metrics, DefaultMetrics)

	return &Config{
		Kubernetes: KubernetesConfig{
			Namespace:      "default",
			UseKubeconfig:  true,
			RequestTimeout: 10 * time.Second,
		},
		Monitoring: MonitoringConfig{
			PollInterval: 5,
			Verbose:      false,
			UseColor:     true,
			UsageSource:  UsageSourceRequests,
		},
		Audio: AudioConfig{
			Enabled:      true,
			UseMIDI:      false,
			NoteDuration: 0.5,
			SampleRate:   44100,
		},
		Metrics: MetricsConfig{
			Enabled: metrics,
		},
		Export: ExportConfig{
			Prometheus: PrometheusConfig{
				Enabled: false,
				Port:    9464,
				Path:    "/metrics",
			},
			OTel: OTelConfig{
				Enabled:   false,
				Transport: TransportGRPC,
				Endpoint:  "localhost:4317",
				Insecure:  true,
				Interval:  10 * time.Second,
			},
		},
	}
}
