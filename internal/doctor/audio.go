package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/sonify-k8s/sonify-k8s/internal/audio"
	"github.com/sonify-k8s/sonify-k8s/internal/errors"
	"github.com/sonify-k8s/sonify-k8s/internal/util"
)

// AudioDeviceCheck opens and closes the output device once.
type AudioDeviceCheck struct {
	Enabled    bool
	SampleRate int

	// Open defaults to audio.NewDeviceSink.
	Open func(sampleRate int) (audio.Sink, error)
}

func (c *AudioDeviceCheck) Name() string     { return "audio_device" }
func (c *AudioDeviceCheck) Category() string { return CategoryAudio }

func (c *AudioDeviceCheck) Run(context.Context) CheckResult {
	if !c.Enabled {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "Audio disabled (audio.enabled is false or TEST_MODE is set)",
		}
	}

	open := c.Open
	if open == nil {
		open = audio.NewDeviceSink
	}

	sink, err := open(c.SampleRate)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No audio device, tones will be silent: " + errors.Summary(err),
			Suggestion: "Check your sound server, or set audio.record_path to capture tones to a WAV file",
		}
	}
	_ = sink.Close()

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Audio device ready at %d Hz", c.SampleRate),
	}
}

func (c *AudioDeviceCheck) Fix() error { return nil }

// MIDIPortsCheck lists MIDI outputs. Missing ports only matter when MIDI is
// requested.
type MIDIPortsCheck struct {
	UseMIDI bool
	Match   string

	// Ports defaults to audio.MIDIPorts.
	Ports func() []string
}

func (c *MIDIPortsCheck) Name() string     { return "midi_ports" }
func (c *MIDIPortsCheck) Category() string { return CategoryAudio }

func (c *MIDIPortsCheck) Run(context.Context) CheckResult {
	ports := c.Ports
	if ports == nil {
		ports = audio.MIDIPorts
	}
	names := ports()

	missing := StatusPass
	if c.UseMIDI {
		missing = StatusWarn
	}

	if len(names) == 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     missing,
			Message:    "No MIDI output ports",
			Suggestion: "Start a software synth or connect a MIDI device; tones fall back to the audio device",
		}
	}

	if c.Match != "" && !containsMatch(names, c.Match) {
		return CheckResult{
			Name:       c.Name(),
			Status:     missing,
			Message:    fmt.Sprintf("No MIDI port matches %q (have: %s)", c.Match, util.JoinOrNone(names)),
			Suggestion: "Set audio.midi_port to part of one of the listed names",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "MIDI ports: " + util.JoinOrNone(names),
	}
}

func (c *MIDIPortsCheck) Fix() error { return nil }

func containsMatch(names []string, match string) bool {
	for _, n := range names {
		if strings.Contains(n, match) {
			return true
		}
	}
	return false
}
