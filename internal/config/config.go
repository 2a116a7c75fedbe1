// Package config loads mumei's optional project configuration: an
// on-disk mumei.yaml layer with environment-variable overrides on top
// of computed defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is mumei's project configuration. Every field has a computed
// default; mumei.yaml overrides the default, and the matching
// environment variable overrides mumei.yaml.
type Config struct {
	// SolverTimeoutMS bounds each individual obligation's solver call
	// (§5: "configurable wall-clock timeout (default 5 000 ms)").
	SolverTimeoutMS int64 `yaml:"solver_timeout_ms"`
	// OutputDir is where generated .ll files are written when the CLI
	// is not given an explicit --output path.
	OutputDir string `yaml:"output_dir"`
	// ReportDir is where visualizer/report.json is written (§4.7, §6).
	ReportDir string `yaml:"report_dir"`
}

const (
	defaultSolverTimeoutMS = 5000
	defaultOutputDir       = "."
	defaultReportDir       = "visualizer"

	envHome           = "MUMEI_HOME"
	envSolverTimeout  = "MUMEI_SOLVER_TIMEOUT_MS"
	envOutputDir      = "MUMEI_OUTPUT_DIR"
	envReportDir      = "MUMEI_REPORT_DIR"
	defaultConfigFile = "mumei.yaml"
)

// Default returns the built-in defaults before any file or
// environment overrides are applied.
func Default() *Config {
	return &Config{
		SolverTimeoutMS: defaultSolverTimeoutMS,
		OutputDir:       defaultOutputDir,
		ReportDir:       defaultReportDir,
	}
}

// Load builds a Config by starting from Default, overlaying
// mumei.yaml if present in dir (missing file is not an error — it's
// the common case), and finally overlaying any MUMEI_* environment
// variables that are set.
func Load(dir string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(dir, defaultConfigFile)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// no project config; defaults stand
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(envSolverTimeout); v != "" {
		if ms, err := parseMillis(v); err == nil {
			cfg.SolverTimeoutMS = ms
		}
	}
	if v := os.Getenv(envOutputDir); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv(envReportDir); v != "" {
		cfg.ReportDir = v
	}
}

func parseMillis(s string) (int64, error) {
	var ms int64
	_, err := fmt.Sscanf(s, "%d", &ms)
	return ms, err
}

// SolverTimeout returns SolverTimeoutMS as a time.Duration.
func (c *Config) SolverTimeout() time.Duration {
	return time.Duration(c.SolverTimeoutMS) * time.Millisecond
}

// Home resolves mumei's toolchain home directory: MUMEI_HOME if set,
// otherwise ~/.mumei.
func Home() string {
	if h := os.Getenv(envHome); h != "" {
		return h
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".mumei")
	}
	return ".mumei"
}
