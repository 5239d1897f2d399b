package cli

import (
	"github.com/sonify-k8s/sonify-k8s/internal/config"
	"github.com/spf13/cobra"
)

// Persistent flag values.
var (
	cfgFile       string
	flagColor     bool
	flagMIDI      bool
	flagInterval  int
	flagNamespace string
	flagVerbose   bool
)

// overrides holds the flag values that take precedence over file and
// environment settings.
type overrides struct {
	Color     bool
	MIDI      bool
	Interval  *int
	Namespace string
	Verbose   bool
}

// flagOverrides snapshots the persistent flags. Interval only counts when it
// was given on the command line.
func flagOverrides(cmd *cobra.Command) overrides {
	o := overrides{
		Color:     flagColor,
		MIDI:      flagMIDI,
		Namespace: flagNamespace,
		Verbose:   flagVerbose,
	}
	if f := cmd.Flags().Lookup("interval"); f != nil && f.Changed {
		interval := flagInterval
		o.Interval = &interval
	}
	return o
}

// apply layers the flags onto cfg. Boolean flags can only switch features on.
func (o overrides) apply(cfg *config.Config) {
	if o.Color {
		cfg.Monitoring.UseColor = true
	}
	if o.MIDI {
		cfg.Audio.UseMIDI = true
	}
	if o.Interval != nil {
		cfg.Monitoring.PollInterval = *o.Interval
	}
	if o.Namespace != "" {
		cfg.Kubernetes.Namespace = o.Namespace
	}
	if o.Verbose {
		cfg.Monitoring.Verbose = true
	}
}

// loadConfig resolves file, environment and flags, then validates.
func loadConfig(o overrides) (*config.Config, string, error) {
	cfg, path, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, path, err
	}
	o.apply(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}
