// Package doctor runs the diagnostic checks behind 'sonify-k8s doctor'.
package doctor

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sonify-k8s/sonify-k8s/internal/util"
	"golang.org/x/sync/errgroup"
)

// Check categories, in report order.
const (
	CategoryConfig  = "CONFIG"
	CategoryCluster = "CLUSTER"
	CategoryAudio   = "AUDIO"
)

// CategoryOrder lists the categories in the order they are reported.
var CategoryOrder = []string{CategoryConfig, CategoryCluster, CategoryAudio}

// CheckStatus represents the result status of a check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

// String returns a human-readable status string.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name written by MarshalText.
func (s *CheckStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "pass":
		*s = StatusPass
	case "warn":
		*s = StatusWarn
	case "fail":
		*s = StatusFail
	default:
		return fmt.Errorf("unknown check status %q", text)
	}
	return nil
}

// CheckResult contains the outcome of running a check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Fixable    bool        `json:"fixable,omitempty"` // Whether --fix can address this
}

// Check defines the interface for diagnostic checks.
type Check interface {
	// Name returns the check's identifier.
	Name() string

	// Category returns the check's category (e.g., "CONFIG", "CLUSTER").
	Category() string

	// Run executes the check and returns the result.
	Run(ctx context.Context) CheckResult

	// Fix attempts to automatically fix the issue (if supported).
	// Returns nil if fix was successful or not applicable.
	Fix() error
}

// RunAll executes all checks in order and returns the results.
func RunAll(ctx context.Context, checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	for i, check := range checks {
		results[i] = check.Run(ctx)
	}
	return results
}

// RunAllParallel executes all checks concurrently. Results keep the order of
// checks. Cluster checks wait on the network, so running them alongside the
// local ones keeps doctor close to the slowest single check.
func RunAllParallel(ctx context.Context, checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	var g errgroup.Group
	for i, check := range checks {
		g.Go(func() error {
			results[i] = check.Run(ctx)
			return nil
		})
	}
	_ = g.Wait() // checks report problems in their results, never as errors
	return results
}

// AttemptFixes runs Fix on every fixable check that did not pass and re-runs
// the ones that fixed cleanly.
func AttemptFixes(ctx context.Context, checks []Check, results []CheckResult) []CheckResult {
	for i, result := range results {
		if !result.Fixable || result.Status == StatusPass {
			continue
		}
		if err := checks[i].Fix(); err == nil {
			results[i] = checks[i].Run(ctx)
		}
	}
	return results
}

// Tally counts results by status. Fixable counts only the warn and fail
// results that --fix could address.
type Tally struct {
	Pass    int
	Warn    int
	Fail    int
	Fixable int
}

// Count tallies results.
func Count(results []CheckResult) Tally {
	var t Tally
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			t.Pass++
			continue
		case StatusWarn:
			t.Warn++
		case StatusFail:
			t.Fail++
		}
		if r.Fixable {
			t.Fixable++
		}
	}
	return t
}

// Issues is the number of warn and fail results.
func (t Tally) Issues() int {
	return t.Warn + t.Fail
}

// Clear reports whether every check passed.
func (t Tally) Clear() bool {
	return t.Issues() == 0
}

// Summary is the one-line verdict printed under the report.
func (t Tally) Summary() string {
	switch {
	case t.Clear():
		return "Ready to play"
	case t.Fail == 0:
		return util.Count(t.Issues(), "warning", "warnings") + ", sonify-k8s can still run"
	default:
		return util.Count(t.Issues(), "issue", "issues") + " found, " + strconv.Itoa(t.Fail) + " failing"
	}
}
