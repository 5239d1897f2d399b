package config

import (
	"testing"
	"time"

	"github.com/sonify-k8s/sonify-k8s/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(cfg *Config)
		wantErr     bool
		errContains string
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:        "empty namespace",
			mutate:      func(cfg *Config) { cfg.Kubernetes.Namespace = " " },
			wantErr:     true,
			errContains: "kubernetes.namespace",
		},
		{
			name:        "negative request timeout",
			mutate:      func(cfg *Config) { cfg.Kubernetes.RequestTimeout = -time.Second },
			wantErr:     true,
			errContains: "request_timeout",
		},
		{
			name:        "api url without scheme",
			mutate:      func(cfg *Config) { cfg.Kubernetes.APIURL = "localhost:8080" },
			wantErr:     true,
			errContains: "api_url",
		},
		{
			name:   "api url with scheme",
			mutate: func(cfg *Config) { cfg.Kubernetes.APIURL = "http://localhost:8080" },
		},
		{
			name:        "zero poll interval",
			mutate:      func(cfg *Config) { cfg.Monitoring.PollInterval = 0 },
			wantErr:     true,
			errContains: "poll_interval",
		},
		{
			name:        "unknown usage source",
			mutate:      func(cfg *Config) { cfg.Monitoring.UsageSource = "prometheus" },
			wantErr:     true,
			errContains: "usage_source",
		},
		{
			name:        "zero note duration",
			mutate:      func(cfg *Config) { cfg.Audio.NoteDuration = 0 },
			wantErr:     true,
			errContains: "note_duration",
		},
		{
			name:        "negative sample rate",
			mutate:      func(cfg *Config) { cfg.Audio.SampleRate = -1 },
			wantErr:     true,
			errContains: "sample_rate",
		},
		{
			name:        "blank metric name",
			mutate:      func(cfg *Config) { cfg.Metrics.Enabled = []string{"cpu_usage", ""} },
			wantErr:     true,
			errContains: "metrics.enabled[1]",
		},
		{
			name:   "unknown metric name is not a config error",
			mutate: func(cfg *Config) { cfg.Metrics.Enabled = []string{"disk_usage"} },
		},
		{
			name:   "empty metric list",
			mutate: func(cfg *Config) { cfg.Metrics.Enabled = nil },
		},
		{
			name: "prometheus port out of range",
			mutate: func(cfg *Config) {
				cfg.Export.Prometheus.Enabled = true
				cfg.Export.Prometheus.Port = 70000
			},
			wantErr:     true,
			errContains: "prometheus.port",
		},
		{
			name: "prometheus port ignored when disabled",
			mutate: func(cfg *Config) {
				cfg.Export.Prometheus.Port = 0
			},
		},
		{
			name: "prometheus path without slash",
			mutate: func(cfg *Config) {
				cfg.Export.Prometheus.Enabled = true
				cfg.Export.Prometheus.Path = "metrics"
			},
			wantErr:     true,
			errContains: "prometheus.path",
		},
		{
			name: "otel bad transport",
			mutate: func(cfg *Config) {
				cfg.Export.OTel.Enabled = true
				cfg.Export.OTel.Transport = "udp"
			},
			wantErr:     true,
			errContains: "otel.transport",
		},
		{
			name: "otel empty endpoint",
			mutate: func(cfg *Config) {
				cfg.Export.OTel.Enabled = true
				cfg.Export.OTel.Endpoint = ""
			},
			wantErr:     true,
			errContains: "otel.endpoint",
		},
		{
			name: "otel zero interval",
			mutate: func(cfg *Config) {
				cfg.Export.OTel.Enabled = true
				cfg.Export.OTel.Interval = 0
			},
			wantErr:     true,
			errContains: "otel.interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	err := Validate(nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}
