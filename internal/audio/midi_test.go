package audio

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sonify-k8s/sonify-k8s/internal/errors"
	"github.com/sonify-k8s/sonify-k8s/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMIDIOut struct {
	mu      sync.Mutex
	sent    [][]byte
	failOn  int // 1-based send index that fails; 0 never fails
	closed  bool
	sendErr error
}

func (f *fakeMIDIOut) Send(msg []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, append([]byte(nil), msg...))
	if f.failOn == len(f.sent) {
		return f.sendErr
	}
	return nil
}

func (f *fakeMIDIOut) Close() error {
	f.closed = true
	return nil
}

func (f *fakeMIDIOut) String() string { return "Fake Synth" }

type recordingPlayer struct {
	freqs []float64
}

func (r *recordingPlayer) PlayTone(frequency, seconds float64) error {
	r.freqs = append(r.freqs, frequency)
	return nil
}

func immediate(p *MIDIPlayer) *[]time.Duration {
	var delays []time.Duration
	p.after = func(d time.Duration, f func()) {
		delays = append(delays, d)
		f()
	}
	return &delays
}

func TestMIDIPlayer_NoteOnOff(t *testing.T) {
	out := &fakeMIDIOut{}
	p := NewMIDIPlayer(out, nil, logger.Noop())
	delays := immediate(p)

	require.NoError(t, p.PlayTone(440, 0.5))
	p.Wait()

	require.Len(t, out.sent, 2)
	assert.Equal(t, []byte{0x90, 69, 64}, out.sent[0])
	assert.Equal(t, byte(0x80), out.sent[1][0])
	assert.Equal(t, byte(69), out.sent[1][1])
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, *delays)
	assert.Equal(t, "Fake Synth", p.Port())

	require.NoError(t, p.Close())
	assert.True(t, out.closed)
}

func TestMIDIPlayer_FallbackOnSendError(t *testing.T) {
	out := &fakeMIDIOut{failOn: 1, sendErr: fmt.Errorf("port gone")}
	fallback := &recordingPlayer{}
	log := logger.NewBufferLogger()
	p := NewMIDIPlayer(out, fallback, log)
	immediate(p)

	require.NoError(t, p.PlayTone(262, 0.5))

	require.Len(t, fallback.freqs, 1)
	assert.InDelta(t, 261.63, fallback.freqs[0], 0.01, "fallback plays the MIDI note's frequency")
	assert.True(t, log.Contains("error", "Error playing MIDI note 60"))
}

func TestMIDIPlayer_SendErrorWithoutFallback(t *testing.T) {
	out := &fakeMIDIOut{failOn: 1, sendErr: fmt.Errorf("port gone")}
	p := NewMIDIPlayer(out, nil, nil)

	err := p.PlayTone(440, 0.5)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrMIDI))
}

func TestMIDIPlayer_InvalidFrequency(t *testing.T) {
	out := &fakeMIDIOut{}
	p := NewMIDIPlayer(out, nil, nil)

	err := p.PlayTone(-3, 0.5)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidFrequency))
	assert.Empty(t, out.sent)
}

func TestMIDIPlayer_Muted(t *testing.T) {
	out := &fakeMIDIOut{}
	p := NewMIDIPlayer(out, nil, nil)
	immediate(p)

	p.SetMuted(true)
	assert.True(t, p.Muted())
	require.NoError(t, p.PlayTone(440, 0.5))
	assert.Empty(t, out.sent)

	p.SetMuted(false)
	require.NoError(t, p.PlayTone(440, 0.5))
	assert.Len(t, out.sent, 2)
}
