package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcdannyboy/optanalytics/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, models.DefaultIVConfig(), cfg.IVSolver())
	assert.Equal(t, 0.3, cfg.Analysis.RangeFraction)
	assert.Equal(t, 100, cfg.Analysis.Steps)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeFile(t, "optanalytics.yaml", `
risk_free_rate: 0.03
iv:
  max_iterations: 50
curve:
  steps: 20
log:
  format: json
`)

	cfg, err := Load("", path)
	require.NoError(t, err)
	assert.Equal(t, 0.03, cfg.RiskFreeRate)
	assert.Equal(t, 50, cfg.IV.MaxIterations)
	assert.Equal(t, models.DefaultIVTolerance, cfg.IV.Tolerance)
	assert.Equal(t, 20, cfg.Curve.Steps)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "optanalytics.yaml", "simulation:\n  paths: 500\n")
	t.Setenv("OPTANALYTICS_SIMULATION_PATHS", "2000")
	t.Setenv("OPTANALYTICS_IV_TOLERANCE", "0.001")

	cfg, err := Load("", path)
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.Simulation.Paths)
	assert.Equal(t, 0.001, cfg.IV.Tolerance)
}

func TestLoadEnvFile(t *testing.T) {
	// Registers the restore before godotenv writes the variable.
	t.Setenv("OPTANALYTICS_RISK_FREE_RATE", "")
	require.NoError(t, os.Unsetenv("OPTANALYTICS_RISK_FREE_RATE"))

	envFile := writeFile(t, ".env", "OPTANALYTICS_RISK_FREE_RATE=0.0379\n")
	cfg, err := Load(envFile, "")
	require.NoError(t, err)
	assert.Equal(t, 0.0379, cfg.RiskFreeRate)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing env file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.env"), "")
		assert.Error(t, err)
	})

	t.Run("missing config file", func(t *testing.T) {
		_, err := Load("", filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("OPTANALYTICS_IV_MAX_ITERATIONS", "0")
		_, err := Load("", "")
		assert.ErrorContains(t, err, "config validation failed")
	})

	t.Run("unknown log format", func(t *testing.T) {
		t.Setenv("OPTANALYTICS_LOG_FORMAT", "xml")
		_, err := Load("", "")
		assert.Error(t, err)
	})
}

func TestConversions(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 50, cfg.Curve.Grid().Steps)
	assert.Equal(t, 0.2, cfg.Curve.Grid().RangeFraction)

	sampler := cfg.Simulation.Sampler()
	assert.Equal(t, cfg.Simulation.Paths, sampler.Paths)
	assert.Equal(t, cfg.Simulation.Seed, sampler.Seed)
}

func TestNewLogger(t *testing.T) {
	logger, err := LogConfig{Level: "debug", Format: "json"}.NewLogger()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	_, err = LogConfig{Level: "loud", Format: "text"}.NewLogger()
	assert.Error(t, err)
}
