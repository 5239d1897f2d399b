//go:build cgo

package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/hajimehoshi/oto/v2"
	"github.com/sonify-k8s/sonify-k8s/internal/errors"
)

const (
	deviceBackend      = "oto"
	deviceChannels     = 1
	deviceReadyTimeout = 2 * time.Second
	playerPollInterval = 10 * time.Millisecond
)

// DeviceSink plays through the system audio device via oto.
type DeviceSink struct {
	ctx        *oto.Context
	sampleRate int
	active     sync.WaitGroup
}

var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoRate int
	otoErr  error
)

// NewDeviceSink opens the default audio output at sampleRate. oto allows one
// context per process, so later calls share it and must use the same rate.
func NewDeviceSink(sampleRate int) (Sink, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(sampleRate, deviceChannels, oto.FormatFloat32LE)
		if err != nil {
			otoErr = err
			return
		}
		select {
		case <-ready:
		case <-time.After(deviceReadyTimeout):
			otoErr = fmt.Errorf("audio device not ready after %v", deviceReadyTimeout)
			return
		}
		otoCtx, otoRate = ctx, sampleRate
	})

	if otoErr != nil {
		return nil, errors.WrapWithCode(otoErr, errors.ErrAudio,
			"Failed to open audio output device",
			"Check your sound setup, or set audio.enabled: false to run silently")
	}
	if otoRate != sampleRate {
		return nil, errors.New(errors.ErrAudio,
			fmt.Sprintf("Audio device already open at %d Hz, cannot reopen at %d Hz", otoRate, sampleRate),
			"Use a single audio.sample_rate per process")
	}
	return &DeviceSink{ctx: otoCtx, sampleRate: sampleRate}, nil
}

// Play queues samples on a new player and returns immediately.
func (d *DeviceSink) Play(samples []float32, sampleRate int) error {
	if sampleRate != d.sampleRate {
		return errors.New(errors.ErrAudio,
			fmt.Sprintf("Sample rate %d does not match device rate %d", sampleRate, d.sampleRate), "")
	}
	if len(samples) == 0 {
		return nil
	}

	player := d.ctx.NewPlayer(&soundReader{data: encodeFloat32LE(samples)})
	player.Play()

	d.active.Add(1)
	go func() {
		defer d.active.Done()
		for player.IsPlaying() {
			time.Sleep(playerPollInterval)
		}
		_ = player.Close()
	}()
	return nil
}

// Wait blocks until every queued tone has finished.
func (d *DeviceSink) Wait() {
	d.active.Wait()
}

// Close drains playback. The shared oto context stays open.
func (d *DeviceSink) Close() error {
	d.Wait()
	return nil
}
