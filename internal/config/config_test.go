package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(defaultSolverTimeoutMS), cfg.SolverTimeoutMS)
	assert.Equal(t, defaultReportDir, cfg.ReportDir)
}

func TestLoadReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mumei.yaml")
	require.NoError(t, os.WriteFile(path, []byte("solver_timeout_ms: 1500\noutput_dir: build\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), cfg.SolverTimeoutMS)
	assert.Equal(t, "build", cfg.OutputDir)
	// report_dir absent from the file, default stands
	assert.Equal(t, defaultReportDir, cfg.ReportDir)
}

func TestEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mumei.yaml")
	require.NoError(t, os.WriteFile(path, []byte("solver_timeout_ms: 1500\n"), 0o644))

	t.Setenv("MUMEI_SOLVER_TIMEOUT_MS", "9000")
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(9000), cfg.SolverTimeoutMS)
}

func TestSolverTimeoutDuration(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "5s", cfg.SolverTimeout().String())
}

func TestHomeRespectsEnvVar(t *testing.T) {
	t.Setenv("MUMEI_HOME", "/tmp/custom-mumei-home")
	assert.Equal(t, "/tmp/custom-mumei-home", Home())
}
