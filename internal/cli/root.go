package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sonify-k8s/sonify-k8s/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sonify-k8s",
	Short: "Listen to your Kubernetes cluster",
	Long: `sonify-k8s polls a Kubernetes namespace and turns each metric into a
note and a color: pod health, CPU and memory, replicas, node pressure.

Run without a subcommand to start the poll loop. Press Ctrl+C to stop.

Examples:
  sonify-k8s -n prod -i 2
  sonify-k8s --midi --color
  sonify-k8s dashboard -n staging`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd.Context(), cmd.OutOrStdout(), flagOverrides(cmd))
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "f", "", "config file (default ./"+config.ConfigFileName+", then ~/"+config.GlobalConfigDir+"/"+config.ConfigFileName+")")
	pf.BoolVarP(&flagColor, "color", "c", false, "colorize output")
	pf.BoolVarP(&flagMIDI, "midi", "m", false, "send notes to a MIDI output instead of the audio device")
	pf.IntVarP(&flagInterval, "interval", "i", 0, "polling interval in seconds")
	pf.StringVarP(&flagNamespace, "namespace", "n", "default", "Kubernetes namespace to monitor")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM
// and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err == nil {
		return
	}

	fmt.Fprint(os.Stderr, err.Error())
	if !strings.HasSuffix(err.Error(), "\n") {
		fmt.Fprintln(os.Stderr)
	}
	if isUnknownCommandError(err) {
		if name := extractUnknownCommand(err); name != "" {
			fmt.Fprintf(os.Stderr, "\n  '%s' is not a sonify-k8s command. See 'sonify-k8s --help'.\n", name)
		}
	}
	os.Exit(1)
}

// isUnknownCommandError reports whether err came from cobra's argument
// parsing rather than from a command.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// extractUnknownCommand pulls the quoted command name out of cobra's
// `unknown command "x" for "y"` error.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
