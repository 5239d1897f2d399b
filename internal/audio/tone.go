// Package audio synthesizes enveloped sine tones and plays them through a
// pluggable Sink: the system audio device, a silent sink, or a WAV recording.
// MIDI output is available as an alternative TonePlayer.
package audio

import (
	"math"

	"github.com/sonify-k8s/sonify-k8s/internal/errors"
)

// Headroom is the peak amplitude NormalizeSamples scales to.
const Headroom = 0.95

// DefaultSampleRate is used when no rate is configured.
const DefaultSampleRate = 44100

// GenerateTone renders a sine wave at frequency Hz for duration seconds,
// shaped by DefaultADSR. Samples are in [-1,1].
func GenerateTone(frequency, duration float64, sampleRate int) ([]float32, error) {
	if !(frequency > 0) || math.IsInf(frequency, 1) {
		return nil, errors.NewInvalidFrequency(frequency)
	}

	env := DefaultADSR()
	n := sampleCount(duration, sampleRate)
	out := make([]float32, n)
	step := 2 * math.Pi * frequency / float64(sampleRate)
	for i := range out {
		t := float64(i) / float64(sampleRate)
		out[i] = float32(math.Sin(step*float64(i)) * env.Calculate(t, duration))
	}
	return out, nil
}

// NormalizeSamples scales samples in place so the peak magnitude is Headroom.
// All-zero input is left untouched.
func NormalizeSamples(samples []float32) {
	var peak float32
	for _, s := range samples {
		if a := float32(math.Abs(float64(s))); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return
	}
	scale := float32(Headroom) / peak
	for i := range samples {
		samples[i] *= scale
	}
}

// MIDINoteForFrequency returns the nearest MIDI note number for a frequency,
// clamped to [0,127]. A4 (440 Hz) is note 69.
func MIDINoteForFrequency(frequency float64) uint8 {
	if !(frequency > 0) {
		return 0
	}
	n := math.Round(69 + 12*math.Log2(frequency/440))
	switch {
	case n < 0:
		return 0
	case n > 127:
		return 127
	}
	return uint8(n)
}

// FrequencyForMIDINote returns the equal-tempered frequency of a MIDI note.
func FrequencyForMIDINote(note uint8) float64 {
	return 440 * math.Pow(2, (float64(note)-69)/12)
}
