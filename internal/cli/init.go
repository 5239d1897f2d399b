package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/sonify-k8s/sonify-k8s/internal/config"
	"github.com/sonify-k8s/sonify-k8s/internal/errors"
	"github.com/sonify-k8s/sonify-k8s/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	initDefaults bool
	initForce    bool
)

// initCmd creates a config file.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a " + config.ConfigFileName + " configuration",
	Long: `Create a configuration file, by default ./` + config.ConfigFileName + `.
Use --config to write somewhere else.

Prompts for the namespace, polling interval, metrics and audio settings.
--defaults skips the prompts and writes the stock configuration.

Examples:
  sonify-k8s init
  sonify-k8s init --defaults
  sonify-k8s init --config ~/.config/sonify-k8s/sonify.yaml --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = filepath.Join(".", config.ConfigFileName)
		}
		return Init(InitOptions{
			Path:           config.ExpandTilde(path),
			Overwrite:      initForce,
			NonInteractive: initDefaults,
			Out:            cmd.OutOrStdout(),
		})
	},
}

func init() {
	initCmd.Flags().BoolVar(&initDefaults, "defaults", false, "write the default config without prompting")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

// InitOptions holds options for the init command.
type InitOptions struct {
	Path           string
	Overwrite      bool
	NonInteractive bool
	Out            io.Writer

	// Prompt fills in cfg interactively. Defaults to a huh form.
	Prompt func(cfg *config.Config) error
}

// Init writes a new config file to opts.Path.
func Init(opts InitOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	exists := false
	if _, err := os.Stat(opts.Path); err == nil {
		exists = true
	}

	if exists && !opts.Overwrite {
		if opts.NonInteractive || !stdinIsTerminal() {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", opts.Path),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", opts.Path)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(opts.Out, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()

	if !opts.NonInteractive {
		prompt := opts.Prompt
		if prompt == nil {
			if !stdinIsTerminal() {
				return errors.New(errors.ErrConfig,
					"Can't prompt without a terminal",
					"Run with --defaults to write the default config")
			}
			prompt = promptConfig
		}
		if err := prompt(cfg); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Check terminal compatibility or use --defaults")
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	if err := config.Save(cfg, opts.Path, true); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", opts.Path),
			"Check directory permissions")
	}

	fmt.Fprintf(opts.Out, "%s Created %s\n\n", ui.SymbolSuccess, opts.Path)
	fmt.Fprintln(opts.Out, "Next steps:")
	fmt.Fprintln(opts.Out, "  sonify-k8s doctor     - Check cluster and audio")
	fmt.Fprintln(opts.Out, "  sonify-k8s notes      - See the sound/color table")
	fmt.Fprintln(opts.Out, "  sonify-k8s            - Start listening")
	return nil
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// promptConfig asks for the settings most people change.
func promptConfig(cfg *config.Config) error {
	interval := strconv.Itoa(cfg.Monitoring.PollInterval)

	metricOptions := make([]huh.Option[string], len(config.DefaultMetrics))
	for i, m := range config.DefaultMetrics {
		metricOptions[i] = huh.NewOption(m, m).Selected(true)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Namespace").
				Description("Pods and deployments in this namespace are sampled").
				Value(&cfg.Kubernetes.Namespace).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("namespace is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Polling interval (seconds)").
				Value(&interval).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n <= 0 {
						return fmt.Errorf("enter a whole number of seconds above 0")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("CPU and memory usage from").
				Options(
					huh.NewOption("Pod requests (works everywhere)", config.UsageSourceRequests),
					huh.NewOption("metrics-server (live usage)", config.UsageSourceMetricsServer),
				).
				Value(&cfg.Monitoring.UsageSource),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Metrics").
				Description("Polled and played in this order").
				Options(metricOptions...).
				Value(&cfg.Metrics.Enabled),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Play tones on the audio device?").
				Value(&cfg.Audio.Enabled),
			huh.NewConfirm().
				Title("Send notes to a MIDI output instead?").
				Value(&cfg.Audio.UseMIDI),
			huh.NewConfirm().
				Title("Colorize output?").
				Value(&cfg.Monitoring.UseColor),
			huh.NewConfirm().
				Title("Serve Prometheus metrics?").
				Value(&cfg.Export.Prometheus.Enabled),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	n, err := strconv.Atoi(strings.TrimSpace(interval))
	if err != nil {
		return err
	}
	cfg.Monitoring.PollInterval = n
	return nil
}
