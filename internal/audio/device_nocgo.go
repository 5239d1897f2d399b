//go:build !cgo

package audio

import "github.com/sonify-k8s/sonify-k8s/internal/errors"

const deviceBackend = "none"

// NewDeviceSink is unavailable without cgo.
func NewDeviceSink(sampleRate int) (Sink, error) {
	return nil, errors.New(errors.ErrAudio,
		"Audio output is not supported in this build",
		"Rebuild with CGO_ENABLED=1, or record tones with audio.record_path")
}
