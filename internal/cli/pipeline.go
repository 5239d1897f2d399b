package cli

import (
	"context"
	"io"

	"github.com/sonify-k8s/sonify-k8s/internal/audio"
	"github.com/sonify-k8s/sonify-k8s/internal/cluster"
	"github.com/sonify-k8s/sonify-k8s/internal/config"
	"github.com/sonify-k8s/sonify-k8s/internal/errors"
	"github.com/sonify-k8s/sonify-k8s/internal/exporter"
	"github.com/sonify-k8s/sonify-k8s/internal/logger"
	"github.com/sonify-k8s/sonify-k8s/internal/monitor"
	"github.com/sonify-k8s/sonify-k8s/internal/sonifier"
	"golang.org/x/sync/errgroup"
)

// pipeline wires the cluster source, the tone output and the export store
// for the poll loop and the dashboard.
type pipeline struct {
	cfg    *config.Config
	source sonifier.MetricSource
	engine *audio.Engine
	midi   *audio.MIDIPlayer
	store  *exporter.Store
	log    logger.Logger
}

// connectCluster builds the clients and checks the namespace is readable.
func connectCluster(ctx context.Context, cfg *config.Config, log logger.Logger) (*cluster.Source, error) {
	clients, err := cluster.NewClients(cluster.ClientOptions{
		UseKubeconfig: cfg.Kubernetes.UseKubeconfig,
		Kubeconfig:    cfg.Kubernetes.Kubeconfig,
		APIURL:        cfg.Kubernetes.APIURL,
		Timeout:       cfg.Kubernetes.RequestTimeout,
	})
	if err != nil {
		return nil, err
	}

	source := cluster.NewSource(clients.Kube, clients.Metrics,
		cfg.Kubernetes.Namespace, cfg.Monitoring.UsageSource, logger.With(log, "cluster"))
	if err := source.Connect(ctx); err != nil {
		return nil, err
	}
	return source, nil
}

// openOutput opens the audio engine and, when requested, a MIDI port in
// front of it. A MIDI port that can't be opened leaves the engine in charge.
func openOutput(cfg *config.Config, log logger.Logger) (*audio.Engine, *audio.MIDIPlayer) {
	engine := audio.OpenEngine(audio.Options{
		Enabled:    cfg.Audio.Enabled,
		SampleRate: cfg.Audio.SampleRate,
		RecordPath: cfg.Audio.RecordPath,
	}, logger.With(log, "audio"))

	var midi *audio.MIDIPlayer
	if cfg.Audio.UseMIDI {
		out, err := audio.OpenMIDIOut(cfg.Audio.MIDIPort)
		if err != nil {
			log.Warn("MIDI unavailable, using the audio device: %s", errors.Summary(err))
		} else {
			midi = audio.NewMIDIPlayer(out, engine, logger.With(log, "midi"))
			log.Info("Sending notes to MIDI port %s", midi.Port())
		}
	}

	if !engine.Enabled() && midi == nil {
		log.Warn("Audio is disabled or unavailable - running in silent mode")
	}
	return engine, midi
}

func newPipeline(source sonifier.MetricSource, cfg *config.Config, log logger.Logger) *pipeline {
	engine, midi := openOutput(cfg, log)
	return &pipeline{
		cfg:    cfg,
		source: source,
		engine: engine,
		midi:   midi,
		store:  exporter.NewStore(),
		log:    log,
	}
}

// player is where tones go: MIDI when a port is open, else the engine.
func (p *pipeline) player() sonifier.TonePlayer {
	if p.midi != nil {
		return p.midi
	}
	return p.engine
}

// muter is the output the dashboard's mute key controls.
func (p *pipeline) muter() monitor.Muter {
	if p.midi != nil {
		return p.midi
	}
	return p.engine
}

// runner builds the poll loop. The export store always observes; extra
// observers follow it.
func (p *pipeline) runner(out io.Writer, observers ...sonifier.Observer) *sonifier.Runner {
	return sonifier.New(p.source, p.player(), sonifier.Options{
		Metrics:      p.cfg.Metrics.Enabled,
		Interval:     p.cfg.Monitoring.Interval(),
		NoteDuration: p.cfg.Audio.NoteDuration,
		UseColor:     p.cfg.Monitoring.UseColor,
		FetchTimeout: p.cfg.Kubernetes.RequestTimeout,
		Out:          out,
		Observers:    append([]sonifier.Observer{p.store}, observers...),
	}, p.log)
}

// startExporters adds the enabled exporters to g. They stop when ctx is
// cancelled.
func (p *pipeline) startExporters(ctx context.Context, g *errgroup.Group) error {
	exp := p.cfg.Export

	if exp.Prometheus.Enabled {
		prom := exporter.NewPrometheusExporter(p.store, exp.Prometheus.Port, exp.Prometheus.Path,
			logger.With(p.log, "prometheus"))
		g.Go(func() error { return prom.Start(ctx) })
	}

	if exp.OTel.Enabled {
		otel, err := exporter.NewOTELExporter(ctx, p.store, exporter.OTELOptions{
			Transport: exp.OTel.Transport,
			Endpoint:  exp.OTel.Endpoint,
			Insecure:  exp.OTel.Insecure,
			Interval:  exp.OTel.Interval,
		}, logger.With(p.log, "otel"))
		if err != nil {
			return err
		}
		g.Go(func() error { return otel.Start(ctx) })
	}

	return nil
}

// Close lets sounding notes finish and releases the outputs.
func (p *pipeline) Close() {
	if p.midi != nil {
		if err := p.midi.Close(); err != nil {
			p.log.Debug("Closing MIDI port: %v", err)
		}
		audio.CloseMIDI()
	}
	p.engine.Wait()
	if err := p.engine.Close(); err != nil {
		p.log.Warn("Closing audio output: %s", errors.Summary(err))
	}
}
