package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUnknownCommandError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unknown command", errors.New(`unknown command "foo" for "sonify-k8s"`), true},
		{"unknown flag", errors.New(`unknown flag: --foo`), true},
		{"unknown shorthand", errors.New(`unknown shorthand flag: 'x' in -x`), true},
		{"other error", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUnknownCommandError(tt.err))
		})
	}
}

func TestExtractUnknownCommand(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"standard cobra format", errors.New(`unknown command "foo" for "sonify-k8s"`), "foo"},
		{"command with hyphen", errors.New(`unknown command "play-all" for "sonify-k8s"`), "play-all"},
		{"no quotes returns empty", errors.New("unknown command foo"), ""},
		{"single quote returns empty", errors.New(`unknown command "foo`), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractUnknownCommand(tt.err))
		})
	}
}

func TestRootCommandFlags(t *testing.T) {
	tests := []struct {
		long, short, def string
	}{
		{"config", "f", ""},
		{"color", "c", "false"},
		{"midi", "m", "false"},
		{"interval", "i", "0"},
		{"namespace", "n", "default"},
		{"verbose", "v", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.long, func(t *testing.T) {
			f := rootCmd.PersistentFlags().Lookup(tt.long)
			if assert.NotNil(t, f) {
				assert.Equal(t, tt.short, f.Shorthand)
				assert.Equal(t, tt.def, f.DefValue)
			}
		})
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"dashboard", "notes", "play", "doctor", "init", "version", "completion"} {
		assert.True(t, names[want], want)
	}
}
