package doctor

import (
	"context"
	"fmt"
	"os"

	"github.com/sonify-k8s/sonify-k8s/internal/config"
	"github.com/sonify-k8s/sonify-k8s/internal/errors"
	"github.com/sonify-k8s/sonify-k8s/internal/util"
)

// ConfigFileCheck reports which config file is in use. Running on defaults
// is a warning that --fix resolves by writing the defaults out.
type ConfigFileCheck struct {
	ConfigPath string // Explicit path, or empty to search
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return CategoryConfig }

func (c *ConfigFileCheck) Run(context.Context) CheckResult {
	path := config.Find(c.ConfigPath)

	if path == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No config file found, using defaults",
			Suggestion: "Run 'sonify-k8s init' to create " + config.ConfigFileName,
			Fixable:    true,
		}
	}

	if _, err := os.Stat(path); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Config file %s not found, using defaults", path),
			Suggestion: "Check the --config path or run 'sonify-k8s init --config " + path + "'",
			Fixable:    true,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "Config file: " + path,
	}
}

// Fix writes the default configuration to the explicit path, or to
// sonify.yaml in the current directory.
func (c *ConfigFileCheck) Fix() error {
	target := c.ConfigPath
	if target == "" {
		target = config.ConfigFileName
	}
	return config.Save(config.DefaultConfig(), config.ExpandTilde(target), false)
}

// ConfigSchemaCheck loads the config, applies environment overrides and
// validates the result.
type ConfigSchemaCheck struct {
	ConfigPath string

	// Lookup reads environment overrides. Defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
}

func (c *ConfigSchemaCheck) Name() string     { return "config_schema" }
func (c *ConfigSchemaCheck) Category() string { return CategoryConfig }

func (c *ConfigSchemaCheck) Run(context.Context) CheckResult {
	cfg, err := config.Load(config.Find(c.ConfigPath))
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Failed to load config: " + errors.Summary(err),
			Suggestion: "Check the YAML syntax in your config file",
		}
	}

	lookup := c.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	config.MergeEnv(cfg, lookup)

	if err := config.Validate(cfg); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Schema error: " + errors.Summary(err),
			Suggestion: "Fix the values in your config file or environment overrides",
		}
	}

	return CheckResult{
		Name:   c.Name(),
		Status: StatusPass,
		Message: fmt.Sprintf("Config valid: namespace %s, %s every %ds",
			cfg.Kubernetes.Namespace,
			util.Count(len(cfg.Metrics.Enabled), "metric", "metrics"),
			cfg.Monitoring.PollInterval),
	}
}

func (c *ConfigSchemaCheck) Fix() error {
	return nil // Schema issues require manual intervention
}

// NewConfigChecks returns the CONFIG checks for a config path.
func NewConfigChecks(configPath string) []Check {
	return []Check{
		&ConfigFileCheck{ConfigPath: configPath},
		&ConfigSchemaCheck{ConfigPath: configPath},
	}
}
