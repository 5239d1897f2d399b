package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "bare tilde", input: "~", expected: home},
		{name: "tilde path", input: "~/.kube/config", expected: filepath.Join(home, ".kube/config")},
		{name: "absolute unchanged", input: "/etc/kube/config", expected: "/etc/kube/config"},
		{name: "other user unchanged", input: "~bob/config", expected: "~bob/config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpandTilde(tt.input))
		})
	}
}

func TestExpand(t *testing.T) {
	t.Setenv("USER", "alice")
	orig := now
	now = func() time.Time { return time.Date(2026, 3, 14, 9, 15, 0, 0, time.UTC) }
	t.Cleanup(func() { now = orig })

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "home variable", input: "${HOME}/rec.wav", expected: home + "/rec.wav"},
		{name: "user variable", input: "/tmp/${USER}/rec.wav", expected: "/tmp/alice/rec.wav"},
		{name: "tilde", input: "~/rec.wav", expected: filepath.Join(home, "rec.wav")},
		{name: "plain", input: "rec.wav", expected: "rec.wav"},
		{name: "bare form", input: "$HOME/rec.wav", expected: home + "/rec.wav"},
		{name: "date", input: "/tmp/sonify-${DATE}.wav", expected: "/tmp/sonify-20260314-091500.wav"},
		{name: "unknown kept", input: "/tmp/${NAMESPACE}.wav", expected: "/tmp/${NAMESPACE}.wav"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Expand(tt.input))
		})
	}
}
