package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sonify-k8s/sonify-k8s/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = "sonify.yaml"
	// GlobalConfigDir is the directory for the per-user config.
	GlobalConfigDir = ".config/sonify-k8s"
)

// Environment overrides applied by MergeEnv.
const (
	EnvNamespace     = "K8S_NAMESPACE"
	EnvPollInterval  = "POLL_INTERVAL"
	EnvUseKubeConfig = "USE_KUBE_CONFIG"
	EnvTestMode      = "TEST_MODE"
)

// Load reads config from path. A path that does not exist yields the
// defaults; a path that exists but cannot be parsed is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot access config file: "+path,
			"Check file permissions")
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag), returned as-is even if missing
// 2. sonify.yaml in the current directory
// 3. ~/.config/sonify-k8s/sonify.yaml
//
// Returns an empty string when nothing is found.
func Find(explicit string) string {
	if explicit != "" {
		return ExpandTilde(explicit)
	}

	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, ConfigFileName)
		if _, err := os.Stat(local); err == nil {
			return local
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		global := filepath.Join(home, GlobalConfigDir, ConfigFileName)
		if _, err := os.Stat(global); err == nil {
			return global
		}
	}

	return ""
}

// LoadOrDefault finds and loads the config, then applies MergeEnv.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path := Find(explicit)
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	MergeEnv(cfg, os.LookupEnv)
	return cfg, path, nil
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	cfg.Kubernetes.Kubeconfig = Expand(cfg.Kubernetes.Kubeconfig)
	cfg.Audio.RecordPath = Expand(cfg.Audio.RecordPath)

	return cfg, nil
}

// setDefaults registers every default on the viper instance so partially
// written files keep the remaining defaults.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("kubernetes.namespace", d.Kubernetes.Namespace)
	v.SetDefault("kubernetes.use_kubeconfig", d.Kubernetes.UseKubeconfig)
	v.SetDefault("kubernetes.kubeconfig", d.Kubernetes.Kubeconfig)
	v.SetDefault("kubernetes.api_url", d.Kubernetes.APIURL)
	v.SetDefault("kubernetes.request_timeout", d.Kubernetes.RequestTimeout.String())

	v.SetDefault("monitoring.poll_interval", d.Monitoring.PollInterval)
	v.SetDefault("monitoring.verbose", d.Monitoring.Verbose)
	v.SetDefault("monitoring.use_color", d.Monitoring.UseColor)
	v.SetDefault("monitoring.usage_source", d.Monitoring.UsageSource)

	v.SetDefault("audio.enabled", d.Audio.Enabled)
	v.SetDefault("audio.use_midi", d.Audio.UseMIDI)
	v.SetDefault("audio.midi_port", d.Audio.MIDIPort)
	v.SetDefault("audio.note_duration", d.Audio.NoteDuration)
	v.SetDefault("audio.sample_rate", d.Audio.SampleRate)
	v.SetDefault("audio.record_path", d.Audio.RecordPath)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)

	v.SetDefault("export.prometheus.enabled", d.Export.Prometheus.Enabled)
	v.SetDefault("export.prometheus.port", d.Export.Prometheus.Port)
	v.SetDefault("export.prometheus.path", d.Export.Prometheus.Path)
	v.SetDefault("export.otel.enabled", d.Export.OTel.Enabled)
	v.SetDefault("export.otel.transport", d.Export.OTel.Transport)
	v.SetDefault("export.otel.endpoint", d.Export.OTel.Endpoint)
	v.SetDefault("export.otel.insecure", d.Export.OTel.Insecure)
	v.SetDefault("export.otel.interval", d.Export.OTel.Interval.String())
}

// MergeEnv applies environment overrides to cfg. lookup is normally
// os.LookupEnv. A POLL_INTERVAL that is not a non-negative integer is ignored.
func MergeEnv(cfg *Config, lookup func(string) (string, bool)) {
	if ns, ok := lookup(EnvNamespace); ok {
		cfg.Kubernetes.Namespace = ns
	}
	if raw, ok := lookup(EnvPollInterval); ok {
		if n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 31); err == nil {
			cfg.Monitoring.PollInterval = int(n)
		}
	}
	if raw, ok := lookup(EnvUseKubeConfig); ok {
		cfg.Kubernetes.UseKubeconfig = strings.ToLower(raw) == "true"
	}
	if raw, ok := lookup(EnvTestMode); ok && strings.ToLower(raw) == "true" {
		cfg.Audio.Enabled = false
	}
}
