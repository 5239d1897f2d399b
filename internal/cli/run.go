package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/sonify-k8s/sonify-k8s/internal/logger"
	"github.com/sonify-k8s/sonify-k8s/internal/ui"
	"golang.org/x/sync/errgroup"
)

// runCommand implements the root command: poll, play and print until the
// context is cancelled.
func runCommand(ctx context.Context, out io.Writer, o overrides) error {
	cfg, path, err := loadConfig(o)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Monitoring.Verbose)
	defer logger.Sync(log)

	if path != "" {
		log.Debug("Loaded config from %s", path)
	}
	log.Info("Monitoring namespace: %s with %d second polling interval",
		cfg.Kubernetes.Namespace, cfg.Monitoring.PollInterval)

	ui.PrintHeader(out, ui.HeaderInfo{
		Version:   formatVersion(GetVersion()),
		Namespace: cfg.Kubernetes.Namespace,
		Interval:  fmt.Sprintf("%ds", cfg.Monitoring.PollInterval),
	})

	source, err := connectCluster(ctx, cfg, log)
	if err != nil {
		return err
	}

	p := newPipeline(source, cfg, log)
	defer p.Close()

	return runLoop(ctx, p, out)
}

// runLoop runs the poll loop and the enabled exporters until ctx is
// cancelled or one of them fails.
func runLoop(ctx context.Context, p *pipeline, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if err := p.startExporters(gctx, g); err != nil {
		cancel()
		_ = g.Wait()
		return err
	}

	runner := p.runner(out)
	g.Go(func() error { return runner.Run(gctx) })

	err := g.Wait()
	p.log.Info("Stopped after %d tick(s)", p.store.Ticks().Count)
	return err
}
