package doctor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sonify.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestConfigFileCheck(t *testing.T) {
	t.Run("existing file passes", func(t *testing.T) {
		path := writeConfig(t, "monitoring:\n  poll_interval: 2\n")
		result := (&ConfigFileCheck{ConfigPath: path}).Run(context.Background())
		assert.Equal(t, StatusPass, result.Status)
		assert.Contains(t, result.Message, path)
	})

	t.Run("missing explicit file warns and fixes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "sonify.yaml")
		check := &ConfigFileCheck{ConfigPath: path}

		result := check.Run(context.Background())
		assert.Equal(t, StatusWarn, result.Status)
		assert.True(t, result.Fixable)
		assert.Contains(t, result.Message, "using defaults")

		require.NoError(t, check.Fix())
		assert.FileExists(t, path)
		assert.Equal(t, StatusPass, check.Run(context.Background()).Status)

		assert.Error(t, check.Fix(), "fix never overwrites")
	})

	t.Run("nothing found", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		t.Setenv("HOME", dir)

		result := (&ConfigFileCheck{}).Run(context.Background())
		assert.Equal(t, StatusWarn, result.Status)
		assert.Contains(t, result.Suggestion, "sonify-k8s init")
	})
}

func TestConfigSchemaCheck(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		lookup   func(string) (string, bool)
		status   CheckStatus
		contains string
	}{
		{
			name:     "valid",
			body:     "kubernetes:\n  namespace: prod\nmonitoring:\n  poll_interval: 3\n",
			lookup:   noEnv,
			status:   StatusPass,
			contains: "namespace prod, 7 metrics every 3s",
		},
		{
			name:     "invalid value",
			body:     "audio:\n  note_duration: 0\n",
			lookup:   noEnv,
			status:   StatusFail,
			contains: "audio.note_duration needs to be positive",
		},
		{
			name: "environment override is validated",
			body: "monitoring:\n  poll_interval: 3\n",
			lookup: func(k string) (string, bool) {
				if k == "POLL_INTERVAL" {
					return "0", true
				}
				return "", false
			},
			status:   StatusFail,
			contains: "poll_interval",
		},
		{
			name:     "malformed yaml",
			body:     "monitoring: [unclosed\n",
			lookup:   noEnv,
			status:   StatusFail,
			contains: "Failed to load config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := &ConfigSchemaCheck{ConfigPath: writeConfig(t, tt.body), Lookup: tt.lookup}
			result := check.Run(context.Background())
			assert.Equal(t, tt.status, result.Status)
			assert.Contains(t, result.Message, tt.contains)
		})
	}
}

func TestNewConfigChecks(t *testing.T) {
	checks := NewConfigChecks("x.yaml")
	require.Len(t, checks, 2)
	for _, c := range checks {
		assert.Equal(t, CategoryConfig, c.Category())
	}
}
