package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sonify-k8s/sonify-k8s/internal/cluster"
	"github.com/sonify-k8s/sonify-k8s/internal/config"
	"github.com/sonify-k8s/sonify-k8s/internal/doctor"
	"github.com/sonify-k8s/sonify-k8s/internal/ui"
	"github.com/spf13/cobra"
)

var (
	doctorJSON    bool
	doctorFix     bool
	doctorTimeout time.Duration
)

// doctorCmd diagnoses config, cluster access and audio output.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose config, cluster and audio problems",
	Long: `Run diagnostic checks and suggest fixes:

  - config file present and valid after environment overrides
  - cluster reachable and the namespace readable
  - metrics.k8s.io available for usage_source metrics-server
  - audio device and MIDI output ports

Examples:
  sonify-k8s doctor
  sonify-k8s doctor -n prod --json
  sonify-k8s doctor --fix`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd.Context(), cmd.OutOrStdout(), flagOverrides(cmd))
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "attempt automatic fixes where possible")
	doctorCmd.Flags().DurationVar(&doctorTimeout, "timeout", 15*time.Second, "time limit for all checks")
}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	Fixable  int  `json:"fixable"`
	AllClear bool `json:"all_clear"`
}

func doctorCommand(ctx context.Context, out io.Writer, o overrides) error {
	ctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()

	checks := collectChecks(doctorConfig(o))
	results := doctor.RunAllParallel(ctx, checks)

	if doctorFix {
		results = doctor.AttemptFixes(ctx, checks, results)
	}

	if doctorJSON {
		return outputDoctorJSON(out, checks, results)
	}
	return outputDoctorText(out, checks, results, doctorFix)
}

// doctorConfig resolves the config the other commands would use. A broken
// file falls back to defaults so the cluster and audio checks still run;
// the config checks report the problem.
func doctorConfig(o overrides) *config.Config {
	cfg, _, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	o.apply(cfg)
	return cfg
}

// collectChecks gathers every diagnostic check for cfg.
func collectChecks(cfg *config.Config) []doctor.Check {
	checks := doctor.NewConfigChecks(cfgFile)

	connect := &doctor.ClusterConnectCheck{Namespace: cfg.Kubernetes.Namespace}
	metrics := &doctor.MetricsAPICheck{
		Namespace:   cfg.Kubernetes.Namespace,
		UsageSource: cfg.Monitoring.UsageSource,
	}

	clients, err := cluster.NewClients(cluster.ClientOptions{
		UseKubeconfig: cfg.Kubernetes.UseKubeconfig,
		Kubeconfig:    cfg.Kubernetes.Kubeconfig,
		APIURL:        cfg.Kubernetes.APIURL,
		Timeout:       cfg.Kubernetes.RequestTimeout,
	})
	if err != nil {
		connect.ClientErr = err
	} else {
		connect.Source = cluster.NewSource(clients.Kube, clients.Metrics,
			cfg.Kubernetes.Namespace, cfg.Monitoring.UsageSource, nil)
		metrics.Metrics = clients.Metrics
	}

	return append(checks,
		connect,
		metrics,
		&doctor.AudioDeviceCheck{Enabled: cfg.Audio.Enabled, SampleRate: cfg.Audio.SampleRate},
		&doctor.MIDIPortsCheck{UseMIDI: cfg.Audio.UseMIDI, Match: cfg.Audio.MIDIPort},
	)
}

// groupByCategory orders results by doctor.CategoryOrder, then any
// category not listed there in first-seen order.
func groupByCategory(checks []doctor.Check, results []doctor.CheckResult) []CategoryOutput {
	grouped := make(map[string][]doctor.CheckResult)
	var seen []string
	for i, check := range checks {
		cat := check.Category()
		if _, ok := grouped[cat]; !ok {
			seen = append(seen, cat)
		}
		grouped[cat] = append(grouped[cat], results[i])
	}

	order := make([]string, 0, len(seen))
	for _, cat := range doctor.CategoryOrder {
		if _, ok := grouped[cat]; ok {
			order = append(order, cat)
		}
	}
	for _, cat := range seen {
		if !slices.Contains(doctor.CategoryOrder, cat) {
			order = append(order, cat)
		}
	}

	categories := make([]CategoryOutput, 0, len(order))
	for _, cat := range order {
		categories = append(categories, CategoryOutput{Name: cat, Results: grouped[cat]})
	}
	return categories
}

// outputDoctorJSON outputs results in JSON format.
func outputDoctorJSON(out io.Writer, checks []doctor.Check, results []doctor.CheckResult) error {
	tally := doctor.Count(results)
	output := DoctorOutput{
		Categories: groupByCategory(checks, results),
		Summary: SummaryOutput{
			Pass:     tally.Pass,
			Warn:     tally.Warn,
			Fail:     tally.Fail,
			Fixable:  tally.Fixable,
			AllClear: tally.Clear(),
		},
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// outputDoctorText outputs results in human-readable format.
//
//nolint:unparam // error return kept symmetric with outputDoctorJSON
func outputDoctorText(out io.Writer, checks []doctor.Check, results []doctor.CheckResult, fixed bool) error {
	headerStyle := lipgloss.NewStyle().Bold(true)

	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render("sonify-k8s diagnostic report"))
	fmt.Fprintln(out)

	var rows []ui.DoctorCheckRow
	for _, cat := range groupByCategory(checks, results) {
		for _, r := range cat.Results {
			rows = append(rows, ui.DoctorCheckRow{
				Status:     r.Status.String(),
				Category:   cat.Name,
				Message:    r.Message,
				Suggestion: r.Suggestion,
			})
		}
	}
	fmt.Fprint(out, ui.RenderDoctorTable(rows))

	fmt.Fprintln(out, strings.Repeat("━", 60))
	fmt.Fprintln(out)

	tally := doctor.Count(results)
	switch {
	case tally.Clear():
		fmt.Fprintf(out, "%s %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), tally.Summary())
	case tally.Fail == 0:
		fmt.Fprintf(out, "%s %s\n", ui.WarningStyle().Render("!"), tally.Summary())
	default:
		fmt.Fprintf(out, "%s %s\n", ui.ErrorStyle().Render(ui.SymbolFail), tally.Summary())
	}
	if tally.Fixable > 0 && !fixed {
		fmt.Fprintf(out, "\n  Run with %s to attempt automatic fixes where possible.\n",
			ui.MutedStyle().Render("--fix"))
	}

	fmt.Fprintln(out)
	return nil
}
