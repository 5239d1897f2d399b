package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinOrNone(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		want  string
	}{
		{name: "nil slice returns (none)", items: nil, want: "(none)"},
		{name: "empty slice returns (none)", items: []string{}, want: "(none)"},
		{name: "single item returns item", items: []string{"FluidSynth"}, want: "FluidSynth"},
		{name: "multiple items joined with comma", items: []string{"FluidSynth", "IAC Bus 1"}, want: "FluidSynth, IAC Bus 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinOrNone(tt.items))
		})
	}
}

func TestJoinOrDefault(t *testing.T) {
	assert.Equal(t, "N/A", JoinOrDefault(nil, "N/A"))
	assert.Equal(t, "", JoinOrDefault([]string{}, ""))
	assert.Equal(t, "a, b", JoinOrDefault([]string{"a", "b"}, "default"))
}

func TestPluralizeAndCount(t *testing.T) {
	tests := []struct {
		count     int
		wantWord  string
		wantCount string
	}{
		{0, "metrics", "0 metrics"},
		{1, "metric", "1 metric"},
		{7, "metrics", "7 metrics"},
	}

	for _, tt := range tests {
		t.Run(tt.wantCount, func(t *testing.T) {
			assert.Equal(t, tt.wantWord, Pluralize(tt.count, "metric", "metrics"))
			assert.Equal(t, tt.wantCount, Count(tt.count, "metric", "metrics"))
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"fits", "short", 10, "short"},
		{"exact", "exact", 5, "exact"},
		{"ellipsis", "abcdefghij", 7, "abcd..."},
		{"too narrow for ellipsis", "abcdef", 2, "ab"},
		{"zero width", "abc", 0, ""},
		{"negative width", "abc", -4, ""},
		{"runes not bytes", "♪♪♪♪♪♪", 5, "♪♪..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.s, tt.maxLen))
		})
	}
}
