package cli

import (
	"context"
	"io"

	"github.com/sonify-k8s/sonify-k8s/internal/logger"
	"github.com/sonify-k8s/sonify-k8s/internal/monitor"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var dashboardLogFile string

// dashboardCmd shows the poll loop as a full-screen card view.
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Full-screen view of live readings",
	Long: `Show every enabled metric as a card colored by its mapped color, with
the note, the frequency and a sparkline of recent values. Tones keep
playing on each poll.

Keys: q quit, r refresh now, m mute, up/down select, ? help.

Logs would corrupt the screen, so they are discarded unless --log-file
is given.

Examples:
  sonify-k8s dashboard
  sonify-k8s dashboard -n prod -i 2 --log-file /tmp/sonify.log`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd.Context(), flagOverrides(cmd))
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardLogFile, "log-file", "", "write logs to this file while the dashboard runs")
}

func dashboardCommand(ctx context.Context, o overrides) error {
	cfg, _, err := loadConfig(o)
	if err != nil {
		return err
	}

	log := logger.Noop()
	if dashboardLogFile != "" {
		log = logger.NewWithOutput(cfg.Monitoring.Verbose, dashboardLogFile)
		defer logger.Sync(log)
	}

	source, err := connectCluster(ctx, cfg, log)
	if err != nil {
		return err
	}

	p := newPipeline(source, cfg, log)
	defer p.Close()

	return runDashboard(ctx, p, func(m monitor.Model) error {
		return monitor.Run(ctx, m)
	})
}

// runDashboard runs the exporters beside the dashboard program and stops
// them when show returns.
func runDashboard(ctx context.Context, p *pipeline, show func(monitor.Model) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if err := p.startExporters(gctx, g); err != nil {
		cancel()
		_ = g.Wait()
		return err
	}

	failures := monitor.NewFailureLog()
	runner := p.runner(io.Discard, failures)

	model := monitor.NewModel(gctx, runner, monitor.Options{
		Metrics:   p.cfg.Metrics.Enabled,
		Namespace: p.cfg.Kubernetes.Namespace,
		Interval:  p.cfg.Monitoring.Interval(),
		Muter:     p.muter(),
		Failures:  failures,
	})

	g.Go(func() error {
		defer cancel()
		return show(model)
	})
	return g.Wait()
}
