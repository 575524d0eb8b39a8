package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/recycler/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Pools, 2)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative frames", func(c *Config) { c.Simulation.Frames = -1 }},
		{"negative spawn", func(c *Config) { c.Simulation.SpawnPerFrame = -3 }},
		{"despawn above one", func(c *Config) { c.Simulation.DespawnRatio = 1.5 }},
		{"sampling below zero", func(c *Config) { c.Tracing.SamplingRate = -0.1 }},
		{"metrics without address", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Address = "" }},
		{"unnamed pool", func(c *Config) { c.Pools[0].Name = "" }},
		{"pool without template", func(c *Config) { c.Pools[1].Template = "" }},
		{"duplicate pool", func(c *Config) { c.Pools[1].Name = c.Pools[0].Name }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
		})
	}
}

func TestValidateLeavesCapacityToThePool(t *testing.T) {
	cfg := Default()
	cfg.Pools[0].Capacity = -4
	cfg.Pools[0].PreAllocate = 1000

	assert.NoError(t, cfg.Validate())
}

func TestLoadSubstitutesEnvironment(t *testing.T) {
	t.Setenv("RECYCLER_TEST_LEVEL", "debug")
	path := filepath.Join(t.TempDir(), "recycler.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: ${RECYCLER_TEST_LEVEL}
pools:
  - name: Rocket
    template: Rocket
    capacity: 4
    deferred: true
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	require.Len(t, cfg.Pools, 1, "file pools replace the defaults")
	assert.Equal(t, PoolConfig{Name: "Rocket", Template: "Rocket", Capacity: 4, Deferred: true}, cfg.Pools[0])
	assert.Equal(t, Default().Simulation, cfg.Simulation, "omitted sections keep their defaults")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	_, err = Parse([]byte("pools: [unterminated"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	_, err = Parse([]byte("simulation:\n  despawn_ratio: 2\n"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Simulation.Seed = 42

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg, loaded)
}

func TestPoolLookup(t *testing.T) {
	cfg := Default()

	p, ok := cfg.Pool("Spark")
	assert.True(t, ok)
	assert.True(t, p.Deferred)

	_, ok = cfg.Pool("Missing")
	assert.False(t, ok)
}

func TestSubstituteEnvVarsUnset(t *testing.T) {
	assert.Equal(t, "level: ", substituteEnvVars("level: ${RECYCLER_TEST_UNSET_VAR}"))
	assert.Equal(t, "level: ${open", substituteEnvVars("level: ${open"))
}

func TestSubstituteEnvVarsDoesNotRescanValues(t *testing.T) {
	t.Setenv("RECYCLER_TEST_SELF", "${RECYCLER_TEST_SELF}")
	t.Setenv("RECYCLER_TEST_A", "a")
	t.Setenv("RECYCLER_TEST_B", "b")

	assert.Equal(t, "level: ${RECYCLER_TEST_SELF}", substituteEnvVars("level: ${RECYCLER_TEST_SELF}"))
	assert.Equal(t, "a-b}", substituteEnvVars("${RECYCLER_TEST_A}-${RECYCLER_TEST_B}}"))
}
