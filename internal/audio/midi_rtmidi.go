//go:build cgo

package audio

import (
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func init() {
	midiDriverAvailable = true
}
