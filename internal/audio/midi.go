package audio

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sonify-k8s/sonify-k8s/internal/errors"
	"github.com/sonify-k8s/sonify-k8s/internal/logger"
	"gitlab.com/gomidi/midi/v2"
)

const (
	defaultMIDIChannel  = 0
	defaultMIDIVelocity = 64
)

// midiDriverAvailable is set when a MIDI driver is compiled in.
var midiDriverAvailable bool

// TonePlayer plays a single tone without blocking for its duration.
type TonePlayer interface {
	PlayTone(frequency, seconds float64) error
}

// MIDIOut is the subset of a MIDI output port the player needs.
type MIDIOut interface {
	Send(msg []byte) error
	Close() error
	String() string
}

// MIDIPlayer sends each tone as a note-on/note-off pair. When a send fails it
// plays the equivalent tone on the fallback instead.
type MIDIPlayer struct {
	out      MIDIOut
	fallback TonePlayer
	channel  uint8
	velocity uint8
	log      logger.Logger
	muted    atomic.Bool

	pending sync.WaitGroup
	after   func(d time.Duration, f func())
}

// NewMIDIPlayer plays through out. fallback may be nil.
func NewMIDIPlayer(out MIDIOut, fallback TonePlayer, log logger.Logger) *MIDIPlayer {
	if log == nil {
		log = logger.Noop()
	}
	return &MIDIPlayer{
		out:      out,
		fallback: fallback,
		channel:  defaultMIDIChannel,
		velocity: defaultMIDIVelocity,
		log:      log,
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// Port returns the output port name.
func (p *MIDIPlayer) Port() string {
	return p.out.String()
}

// SetMuted stops new notes from being sent. Sounding notes still get their
// note-off.
func (p *MIDIPlayer) SetMuted(muted bool) {
	p.muted.Store(muted)
}

// Muted reports whether new notes are suppressed.
func (p *MIDIPlayer) Muted() bool {
	return p.muted.Load()
}

// PlayTone sends the nearest MIDI note and schedules its note-off.
func (p *MIDIPlayer) PlayTone(frequency, seconds float64) error {
	if !(frequency > 0) {
		return errors.NewInvalidFrequency(frequency)
	}
	if p.muted.Load() {
		return nil
	}

	note := MIDINoteForFrequency(frequency)
	if err := p.out.Send(midi.NoteOn(p.channel, note, p.velocity)); err != nil {
		p.log.Error("Error playing MIDI note %d: %v", note, err)
		if p.fallback == nil {
			return errors.WrapWithCode(err, errors.ErrMIDI, "Failed to send MIDI note", "")
		}
		return p.fallback.PlayTone(FrequencyForMIDINote(note), seconds)
	}

	p.pending.Add(1)
	p.after(time.Duration(seconds*float64(time.Second)), func() {
		defer p.pending.Done()
		if err := p.out.Send(midi.NoteOff(p.channel, note)); err != nil {
			p.log.Warn("Failed to release MIDI note %d: %v", note, err)
		}
	})
	return nil
}

// Wait blocks until every scheduled note-off has been sent.
func (p *MIDIPlayer) Wait() {
	p.pending.Wait()
}

// Close releases outstanding notes and the port.
func (p *MIDIPlayer) Close() error {
	p.Wait()
	return p.out.Close()
}

// MIDIPorts lists the available MIDI output port names.
func MIDIPorts() []string {
	if !midiDriverAvailable {
		return nil
	}
	ports := midi.GetOutPorts()
	names := make([]string, 0, len(ports))
	for _, port := range ports {
		names = append(names, port.String())
	}
	return names
}

// OpenMIDIOut opens the first output port whose name contains match, or the
// first port when match is empty.
func OpenMIDIOut(match string) (MIDIOut, error) {
	if !midiDriverAvailable {
		return nil, errors.New(errors.ErrMIDI,
			"MIDI is not supported in this build",
			"Rebuild with CGO_ENABLED=1 and the rtmidi library installed")
	}

	for _, port := range midi.GetOutPorts() {
		if match != "" && !strings.Contains(port.String(), match) {
			continue
		}
		if err := port.Open(); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrMIDI,
				fmt.Sprintf("Failed to open MIDI port %q", port.String()), "")
		}
		return port, nil
	}

	if match != "" {
		return nil, errors.New(errors.ErrMIDI,
			fmt.Sprintf("No MIDI output port matching %q", match),
			"Run 'sonify-k8s doctor' to list the available ports")
	}
	return nil, errors.New(errors.ErrMIDI,
		"No MIDI output ports found",
		"Start a software synth or connect a MIDI device")
}

// CloseMIDI shuts down the MIDI driver.
func CloseMIDI() {
	if midiDriverAvailable {
		midi.CloseDriver()
	}
}
