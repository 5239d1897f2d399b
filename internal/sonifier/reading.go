// Package sonifier runs the poll loop: fetch each metric, map it to a note
// and color, play the tone and print the line.
package sonifier

import (
	"fmt"
	"time"

	"github.com/sonify-k8s/sonify-k8s/internal/sonify"
)

// Reading is one processed metric within a tick.
type Reading struct {
	Metric      string
	DisplayName string
	Unit        string
	Value       float64
	Extra       map[string]string
	Mapping     sonify.Mapping
	At          time.Time
}

// Line formats the reading as it is printed and logged, e.g.
//
//	CPU Usage: 50.00 % | Note: F4 (349 Hz) | Color: #126E82 | Extra: map[type:cpu]
func (r Reading) Line() string {
	return fmt.Sprintf("%s: %.2f %s | Note: %s (%d Hz) | Color: %s | Extra: %v",
		r.DisplayName, r.Value, r.Unit,
		r.Mapping.Note, r.Mapping.Frequency, r.Mapping.Color,
		r.Extra)
}
