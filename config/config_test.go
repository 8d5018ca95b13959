package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/credlib/config"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credlib.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	c := config.DefaultConfig()
	require.NoError(t, c.Validate())
	assert.Equal(t, 100, c.Solver.MaxIter)
	assert.Equal(t, 50, c.Solver.MaxBracketAttempts)
}

func TestLoad_YAMLOverlaysDefaults(t *testing.T) {
	path := writeFile(t, `
pricing:
  step: 1W
  default_timing: 0
solver:
  max_iter: 250
`)
	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "1W", c.Pricing.Step)
	assert.Equal(t, 0.0, c.Pricing.DefaultTiming)
	assert.Equal(t, 250, c.Solver.MaxIter)
	assert.Equal(t, 1e-10, c.Solver.Tolerance)
	assert.True(t, c.Pricing.AccrueOnDefault)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("CREDLIB_STEP", "3M")
	t.Setenv("CREDLIB_SOLVER_MAX_ITER", "42")
	t.Setenv("CREDLIB_LOG_LEVEL", "debug")

	c, err := config.Load(writeFile(t, "pricing:\n  step: 1D\n"))
	require.NoError(t, err)
	assert.Equal(t, "3M", c.Pricing.Step)
	assert.Equal(t, 42, c.Solver.MaxIter)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = config.Load(writeFile(t, "pricing:\n  default_timing: 1.5\n"))
	assert.ErrorContains(t, err, "default_timing")

	t.Setenv("CREDLIB_SOLVER_MAX_ITER", "many")
	_, err = config.Load("")
	assert.ErrorContains(t, err, "CREDLIB_SOLVER_MAX_ITER")
}

func TestSetGetConfig(t *testing.T) {
	orig := config.GetConfig()
	t.Cleanup(func() { config.SetConfig(orig) })

	c := config.DefaultConfig()
	c.Solver.MaxIter = 7
	config.SetConfig(c)
	assert.Equal(t, 7, config.GetConfig().Solver.MaxIter)
}
