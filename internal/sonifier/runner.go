package sonifier

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sonify-k8s/sonify-k8s/internal/cluster"
	"github.com/sonify-k8s/sonify-k8s/internal/errors"
	"github.com/sonify-k8s/sonify-k8s/internal/logger"
	"github.com/sonify-k8s/sonify-k8s/internal/sonify"
	"github.com/sonify-k8s/sonify-k8s/internal/ui"
)

// MetricSource supplies raw metric values. ok is false when the source has
// no data for the metric.
type MetricSource interface {
	Fetch(ctx context.Context, metric string) (sample cluster.Sample, ok bool, err error)
}

// TonePlayer plays one note.
type TonePlayer interface {
	PlayTone(frequency, seconds float64) error
}

// Observer receives the outcome of every metric in every tick.
type Observer interface {
	Observe(r Reading)
	Fail(metric string, err error)
	TickDone(elapsed time.Duration)
}

// Options configures a Runner.
type Options struct {
	Metrics      []string
	Interval     time.Duration
	NoteDuration float64
	UseColor     bool

	// FetchTimeout bounds each metric fetch. Zero means no extra deadline.
	FetchTimeout time.Duration

	// Table defaults to sonify.DefaultTable().
	Table *sonify.Table

	// Out receives one line per reading. Nil means stdout; io.Discard
	// silences printing while keeping the log line.
	Out io.Writer

	Observers []Observer
}

// Runner drives the fetch-map-play-print pipeline.
type Runner struct {
	source MetricSource
	player TonePlayer
	opts   Options
	log    logger.Logger

	outMu sync.Mutex
}

// New creates a Runner.
func New(source MetricSource, player TonePlayer, opts Options, log logger.Logger) *Runner {
	if log == nil {
		log = logger.Noop()
	}
	if opts.Table == nil {
		opts.Table = sonify.DefaultTable()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Runner{source: source, player: player, opts: opts, log: log}
}

// Run ticks immediately and then every Interval until ctx is cancelled. A
// tick that overruns the interval is followed at once by the next one and
// any further missed ticks are dropped.
func (r *Runner) Run(ctx context.Context) error {
	if r.opts.Interval <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Poll interval must be positive, got %s", r.opts.Interval),
			"Set monitoring.poll_interval or pass --interval")
	}

	r.log.Info("Starting metric sonification...")

	ticker := time.NewTicker(r.opts.Interval)
	defer ticker.Stop()

	r.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			r.log.Debug("Poll loop stopped")
			return nil
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

// Tick processes every configured metric once, in order, and returns the
// readings that were produced. Failures are logged and skipped.
func (r *Runner) Tick(ctx context.Context) []Reading {
	start := time.Now()
	readings := make([]Reading, 0, len(r.opts.Metrics))

	for _, metric := range r.opts.Metrics {
		if ctx.Err() != nil {
			break
		}
		reading, ok := r.process(ctx, metric)
		if ok {
			readings = append(readings, reading)
		}
	}

	elapsed := time.Since(start)
	for _, o := range r.opts.Observers {
		o.TickDone(elapsed)
	}
	if elapsed > r.opts.Interval && r.opts.Interval > 0 {
		r.log.Debug("Tick took %s, longer than the %s interval", elapsed, r.opts.Interval)
	}

	return readings
}

func (r *Runner) process(ctx context.Context, metric string) (Reading, bool) {
	sample, ok, err := r.fetch(ctx, metric)
	if err != nil {
		r.log.Error("Failed to get data for %s: %s", metric, errors.Summary(err))
		r.fail(metric, err)
		return Reading{}, false
	}
	if !ok {
		r.log.Warn("No data available for metric: %s", metric)
		return Reading{}, false
	}

	mapping, err := sonify.MapMetric(metric, sample.Value, r.opts.Table)
	if err != nil {
		r.log.Error("Failed to map metric %s: %s", metric, errors.Summary(err))
		r.fail(metric, err)
		return Reading{}, false
	}

	var playErr error
	if r.player != nil {
		if playErr = r.player.PlayTone(float64(mapping.Frequency), r.opts.NoteDuration); playErr != nil {
			r.log.Error("Failed to play tone: %s", errors.Summary(playErr))
		}
	}

	mc, _ := r.opts.Table.Get(metric)
	reading := Reading{
		Metric:      metric,
		DisplayName: mc.DisplayName,
		Unit:        mc.Unit,
		Value:       sample.Value,
		Extra:       sample.Extra,
		Mapping:     mapping,
		At:          time.Now(),
	}

	r.print(reading)
	for _, o := range r.opts.Observers {
		o.Observe(reading)
	}
	// Reported after Observe so it outlives the clear a reading triggers.
	if playErr != nil {
		r.fail(metric, playErr)
	}
	return reading, true
}

func (r *Runner) fetch(ctx context.Context, metric string) (cluster.Sample, bool, error) {
	if r.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.FetchTimeout)
		defer cancel()
	}
	return r.source.Fetch(ctx, metric)
}

func (r *Runner) fail(metric string, err error) {
	for _, o := range r.opts.Observers {
		o.Fail(metric, err)
	}
}

func (r *Runner) print(reading Reading) {
	line := reading.Line()

	r.outMu.Lock()
	fmt.Fprintln(r.opts.Out, ui.Colorize(line, reading.Mapping.Color, r.opts.UseColor))
	r.outMu.Unlock()

	r.log.Info("%s", line)
}
