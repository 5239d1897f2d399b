package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/sonify-k8s/sonify-k8s/internal/errors"
	"github.com/sonify-k8s/sonify-k8s/internal/logger"
	"github.com/sonify-k8s/sonify-k8s/internal/sonifier"
	"github.com/sonify-k8s/sonify-k8s/internal/sonify"
	"github.com/sonify-k8s/sonify-k8s/internal/ui"
	"github.com/spf13/cobra"
)

// playCmd maps one value and plays it without touching the cluster.
var playCmd = &cobra.Command{
	Use:   "play <metric> <value>",
	Short: "Map a value to its note and play it once",
	Long: `Map a value on a metric's scale, play the note and print the line the
poll loop would print. No cluster is needed.

Examples:
  sonify-k8s play cpu_usage 42
  sonify-k8s play pod_status 0 --color
  sonify-k8s play http_latency 480 --midi`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: sonify.DefaultTable().Names(),
	RunE: func(cmd *cobra.Command, args []string) error {
		return playCommand(cmd.OutOrStdout(), flagOverrides(cmd), args[0], args[1])
	},
}

func playCommand(out io.Writer, o overrides, metric, raw string) error {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' isn't a number", raw),
			"Pass the value in the metric's unit, e.g. sonify-k8s play cpu_usage 42")
	}

	cfg, _, err := loadConfig(o)
	if err != nil {
		return err
	}

	table := sonify.DefaultTable()
	mapping, err := sonify.MapMetric(metric, value, table)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Monitoring.Verbose)
	defer logger.Sync(log)

	engine, midi := openOutput(cfg, log)
	p := &pipeline{cfg: cfg, engine: engine, midi: midi, log: log}
	defer p.Close()

	if err := p.player().PlayTone(float64(mapping.Frequency), cfg.Audio.NoteDuration); err != nil {
		return err
	}

	mc, _ := table.Get(metric)
	reading := sonifier.Reading{
		Metric:      metric,
		DisplayName: mc.DisplayName,
		Unit:        mc.Unit,
		Value:       value,
		Mapping:     mapping,
		At:          time.Now(),
	}
	fmt.Fprintln(out, ui.Colorize(reading.Line(), mapping.Color, cfg.Monitoring.UseColor))
	return nil
}
