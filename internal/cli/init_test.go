package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sonify-k8s/sonify-k8s/internal/config"
	"github.com/sonify-k8s/sonify-k8s/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestInit_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", config.ConfigFileName)

	var buf bytes.Buffer
	require.NoError(t, Init(InitOptions{Path: path, NonInteractive: true, Out: &buf}))

	assert.Contains(t, buf.String(), "Created "+path)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestInit_RefusesOverwrite(t *testing.T) {
	path := writeTestConfig(t, t.TempDir(), "monitoring:\n  poll_interval: 9\n")

	err := Init(InitOptions{Path: path, NonInteractive: true, Out: &bytes.Buffer{}})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "--force")

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Contains(t, string(data), "poll_interval: 9", "file untouched")
}

func TestInit_ForceOverwrites(t *testing.T) {
	path := writeTestConfig(t, t.TempDir(), "monitoring:\n  poll_interval: 9\n")

	require.NoError(t, Init(InitOptions{Path: path, NonInteractive: true, Overwrite: true, Out: &bytes.Buffer{}}))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Monitoring.PollInterval)
}

func TestInit_Prompted(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFileName)

	prompt := func(cfg *config.Config) error {
		cfg.Kubernetes.Namespace = "prod"
		cfg.Monitoring.PollInterval = 2
		cfg.Metrics.Enabled = []string{"pod_status"}
		return nil
	}
	require.NoError(t, Init(InitOptions{Path: path, Prompt: prompt, Out: &bytes.Buffer{}}))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Kubernetes.Namespace)
	assert.Equal(t, 2, cfg.Monitoring.PollInterval)
	assert.Equal(t, []string{"pod_status"}, cfg.Metrics.Enabled)
}

func TestInit_PromptErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFileName)

	t.Run("prompt aborted", func(t *testing.T) {
		err := Init(InitOptions{Path: path, Prompt: func(*config.Config) error { return fmt.Errorf("user aborted") }})
		require.Error(t, err)
		assert.NoFileExists(t, path)
	})

	t.Run("invalid answers", func(t *testing.T) {
		err := Init(InitOptions{Path: path, Prompt: func(cfg *config.Config) error {
			cfg.Monitoring.UsageSource = "guesswork"
			return nil
		}})
		require.Error(t, err)
		assert.NoFileExists(t, path)
	})
}
