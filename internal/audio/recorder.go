package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/sonify-k8s/sonify-k8s/internal/errors"
)

// Recorder tees every tone into an in-memory take and writes it as a 16-bit
// mono WAV file on Close. Tones are appended back to back.
type Recorder struct {
	next Sink
	path string

	mu         sync.Mutex
	take       []float32
	sampleRate int
	closed     bool
}

// NewRecorder wraps next so that everything it plays is also saved to path.
// A nil next records without playing.
func NewRecorder(next Sink, path string) *Recorder {
	if next == nil {
		next = NewSilentSink()
	}
	return &Recorder{next: next, path: path}
}

// Path returns the output file.
func (r *Recorder) Path() string {
	return r.path
}

func (r *Recorder) Play(samples []float32, sampleRate int) error {
	r.mu.Lock()
	switch {
	case r.closed:
		r.mu.Unlock()
		return errors.New(errors.ErrAudio, "Recorder is closed", "")
	case r.sampleRate == 0:
		r.sampleRate = sampleRate
	case r.sampleRate != sampleRate:
		r.mu.Unlock()
		return errors.New(errors.ErrAudio,
			fmt.Sprintf("Recording is %d Hz, got a %d Hz tone", r.sampleRate, sampleRate), "")
	}
	r.take = append(r.take, samples...)
	r.mu.Unlock()

	return r.next.Play(samples, sampleRate)
}

func (r *Recorder) Wait() {
	r.next.Wait()
}

// Close stops the wrapped sink and writes the WAV file. An empty take
// produces no file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	take, rate := r.take, r.sampleRate
	r.take = nil
	r.mu.Unlock()

	closeErr := r.next.Close()

	if len(take) > 0 {
		if err := writeWAV(r.path, take, rate); err != nil {
			return err
		}
	}
	return closeErr
}

// Len returns the number of samples recorded so far.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.take)
}

func writeWAV(path string, samples []float32, sampleRate int) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WrapWithCode(err, errors.ErrAudio, "Failed to create recording directory", "")
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrAudio,
			"Failed to create recording "+path,
			"Check audio.record_path is writable")
	}
	defer f.Close()

	format := beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: 1,
		Precision:   2,
	}
	if err := wav.Encode(f, &sampleStreamer{samples: samples}, format); err != nil {
		return errors.WrapWithCode(err, errors.ErrAudio, "Failed to encode recording", "")
	}
	return nil
}

// sampleStreamer adapts a mono buffer to beep's stereo Streamer.
type sampleStreamer struct {
	samples []float32
	pos     int
}

func (s *sampleStreamer) Stream(buf [][2]float64) (int, bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}
	n := 0
	for n < len(buf) && s.pos < len(s.samples) {
		v := float64(s.samples[s.pos])
		buf[n][0], buf[n][1] = v, v
		n++
		s.pos++
	}
	return n, true
}

func (s *sampleStreamer) Err() error { return nil }
