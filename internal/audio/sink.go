package audio

import (
	"encoding/binary"
	"io"
	"math"
	"sync"
)

// Sink consumes mono float32 sample buffers. Play must not block for the
// duration of the sound; Wait blocks until everything queued has finished.
type Sink interface {
	Play(samples []float32, sampleRate int) error
	Wait()
	Close() error
}

// SilentSink discards audio but counts what it was given.
type SilentSink struct {
	mu      sync.Mutex
	tones   int
	samples int
}

// NewSilentSink returns a sink that plays nothing.
func NewSilentSink() *SilentSink {
	return &SilentSink{}
}

func (s *SilentSink) Play(samples []float32, sampleRate int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tones++
	s.samples += len(samples)
	return nil
}

func (s *SilentSink) Wait()        {}
func (s *SilentSink) Close() error { return nil }

// Tones returns how many buffers have been played.
func (s *SilentSink) Tones() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tones
}

// Samples returns the total number of samples played.
func (s *SilentSink) Samples() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.samples
}

// soundReader streams a pre-encoded PCM buffer to a player.
type soundReader struct {
	data []byte
	pos  int
}

func (r *soundReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

// encodeFloat32LE packs mono samples as little-endian float32 PCM.
func encodeFloat32LE(samples []float32) []byte {
	buf := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(s))
	}
	return buf
}
