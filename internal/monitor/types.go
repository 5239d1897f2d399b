package monitor

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/sonify-k8s/sonify-k8s/internal/errors"
	"github.com/sonify-k8s/sonify-k8s/internal/sonifier"
)

// Ticker runs one pass of the pipeline over every configured metric.
type Ticker interface {
	Tick(ctx context.Context) []sonifier.Reading
}

// Muter toggles tone playback without stopping the poll loop.
type Muter interface {
	SetMuted(muted bool)
	Muted() bool
}

// CardStatus is the state shown on a metric card.
type CardStatus int

const (
	CardWaiting CardStatus = iota
	CardOK
	CardFailed
)

// String returns a human-readable status string.
func (s CardStatus) String() string {
	switch s {
	case CardWaiting:
		return "waiting"
	case CardOK:
		return "ok"
	case CardFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FailureLog keeps the latest failure message per metric. Hand it to the
// runner as an observer and to the model so cards can show why a metric is
// missing. A successful reading clears the metric's entry.
type FailureLog struct {
	mu   sync.Mutex
	last map[string]string
}

// NewFailureLog creates an empty FailureLog.
func NewFailureLog() *FailureLog {
	return &FailureLog{last: make(map[string]string)}
}

// Observe clears any failure recorded for the reading's metric.
func (f *FailureLog) Observe(r sonifier.Reading) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.last, r.Metric)
}

// Fail records err as the metric's latest failure.
func (f *FailureLog) Fail(metric string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last[metric] = errors.Summary(err)
}

// TickDone is a no-op.
func (f *FailureLog) TickDone(time.Duration) {}

// Snapshot returns a copy of the current failures.
func (f *FailureLog) Snapshot() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.last)
}
