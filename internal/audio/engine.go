package audio

import (
	"sync"
	"sync/atomic"

	"github.com/sonify-k8s/sonify-k8s/internal/errors"
	"github.com/sonify-k8s/sonify-k8s/internal/logger"
)

// Options configures OpenEngine.
type Options struct {
	Enabled    bool
	SampleRate int

	// RecordPath, when set, also writes every tone to a WAV file.
	RecordPath string

	// OpenDevice opens the output device. Defaults to NewDeviceSink.
	OpenDevice func(sampleRate int) (Sink, error)
}

// Engine turns frequencies into enveloped tones on a shared Sink.
type Engine struct {
	mu         sync.Mutex
	sink       Sink
	enabled    bool
	muted      atomic.Bool
	sampleRate int
	log        logger.Logger
}

// NewEngine wraps sink. A nil sink yields a disabled engine.
func NewEngine(sink Sink, sampleRate int, log logger.Logger) *Engine {
	if log == nil {
		log = logger.Noop()
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Engine{
		sink:       sink,
		enabled:    sink != nil,
		sampleRate: sampleRate,
		log:        log,
	}
}

// OpenEngine builds an engine from opts. A device that fails to open is
// logged and the engine runs silently rather than failing startup.
func OpenEngine(opts Options, log logger.Logger) *Engine {
	if log == nil {
		log = logger.Noop()
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultSampleRate
	}
	if !opts.Enabled {
		return NewEngine(nil, opts.SampleRate, log)
	}

	open := opts.OpenDevice
	if open == nil {
		open = NewDeviceSink
	}

	device, err := open(opts.SampleRate)
	if err != nil {
		log.Warn("Failed to initialize audio output: %s", errors.Summary(err))
		device = nil
	}

	if opts.RecordPath != "" {
		log.Info("Recording tones to %s", opts.RecordPath)
		return NewEngine(NewRecorder(device, opts.RecordPath), opts.SampleRate, log)
	}
	return NewEngine(device, opts.SampleRate, log)
}

// Enabled reports whether tones reach a sink.
func (e *Engine) Enabled() bool {
	return e.enabled
}

// SampleRate returns the rate tones are rendered at.
func (e *Engine) SampleRate() int {
	return e.sampleRate
}

// SetMuted silences playback without closing the sink.
func (e *Engine) SetMuted(muted bool) {
	e.muted.Store(muted)
}

// Muted reports whether playback is silenced.
func (e *Engine) Muted() bool {
	return e.muted.Load()
}

// PlayTone renders and queues a tone. It returns once the tone is queued.
// Disabled or muted engines accept any frequency and do nothing.
func (e *Engine) PlayTone(frequency, seconds float64) error {
	if !e.enabled {
		e.log.Debug("Audio disabled, skipping tone at %g Hz", frequency)
		return nil
	}
	if e.muted.Load() {
		return nil
	}

	samples, err := GenerateTone(frequency, seconds, e.sampleRate)
	if err != nil {
		return err
	}
	NormalizeSamples(samples)

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sink.Play(samples, e.sampleRate)
}

// Wait blocks until queued tones have drained.
func (e *Engine) Wait() {
	if !e.enabled {
		return
	}
	e.mu.Lock()
	sink := e.sink
	e.mu.Unlock()
	sink.Wait()
}

// Close drains and releases the sink.
func (e *Engine) Close() error {
	if !e.enabled {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sink.Close()
}

// Backends names the device and MIDI drivers compiled into this binary,
// "none" for either when the build has no cgo.
func Backends() (device, midi string) {
	midi = "none"
	if midiDriverAvailable {
		midi = "rtmidi"
	}
	return deviceBackend, midi
}
