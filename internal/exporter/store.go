// Package exporter publishes the latest sonified readings to Prometheus and
// OTLP collectors.
package exporter

import (
	"cmp"
	stderrors "errors"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sonify-k8s/sonify-k8s/internal/errors"
	"github.com/sonify-k8s/sonify-k8s/internal/sonifier"
)

// FailureKey identifies a failure counter.
type FailureKey struct {
	Metric string
	Code   string
}

// TickStats summarizes tick durations as a cumulative histogram.
type TickStats struct {
	Count   uint64
	Sum     float64
	Buckets map[float64]uint64 // upper bound -> cumulative count
}

// Store holds the latest reading per metric. It implements
// sonifier.Observer and is read by the exporters on scrape or push.
type Store struct {
	mu       sync.RWMutex
	latest   map[string]sonifier.Reading
	failures map[FailureKey]uint64

	bounds       []float64
	bucketCounts []uint64
	tickCount    uint64
	tickSum      float64
}

var _ sonifier.Observer = (*Store)(nil)

// NewStore creates an empty store using the default Prometheus buckets for
// tick durations.
func NewStore() *Store {
	return &Store{
		latest:       make(map[string]sonifier.Reading),
		failures:     make(map[FailureKey]uint64),
		bounds:       prometheus.DefBuckets,
		bucketCounts: make([]uint64, len(prometheus.DefBuckets)),
	}
}

// Observe records r as the latest reading for its metric.
func (s *Store) Observe(r sonifier.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[r.Metric] = r
}

// Fail counts a failure for metric under the error's code.
func (s *Store) Fail(metric string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[FailureKey{Metric: metric, Code: codeOf(err)}]++
}

// TickDone records the duration of one tick.
func (s *Store) TickDone(elapsed time.Duration) {
	sec := elapsed.Seconds()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickCount++
	s.tickSum += sec
	for i, upper := range s.bounds {
		if sec <= upper {
			s.bucketCounts[i]++
		}
	}
}

// Readings returns the latest readings sorted by metric name.
func (s *Store) Readings() []sonifier.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]sonifier.Reading, 0, len(s.latest))
	for _, r := range s.latest {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b sonifier.Reading) int {
		return cmp.Compare(a.Metric, b.Metric)
	})
	return out
}

// Failures returns a copy of the failure counters.
func (s *Store) Failures() map[FailureKey]uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[FailureKey]uint64, len(s.failures))
	for k, v := range s.failures {
		out[k] = v
	}
	return out
}

// Ticks returns the tick duration histogram.
func (s *Store) Ticks() TickStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buckets := make(map[float64]uint64, len(s.bounds))
	for i, upper := range s.bounds {
		buckets[upper] = s.bucketCounts[i]
	}
	return TickStats{Count: s.tickCount, Sum: s.tickSum, Buckets: buckets}
}

func codeOf(err error) string {
	var sErr *errors.Error
	if stderrors.As(err, &sErr) && sErr.Code != "" {
		return sErr.Code
	}
	return "UNKNOWN"
}
