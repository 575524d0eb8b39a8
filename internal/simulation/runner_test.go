package simulation

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/recycler/pkg/config"
	"github.com/ajitpratap0/recycler/pkg/errors"
	"github.com/ajitpratap0/recycler/pkg/metrics"
	"github.com/ajitpratap0/recycler/pkg/registry"
	rtestutil "github.com/ajitpratap0/recycler/pkg/testutil"
)

func newRunner(t *testing.T, cfg *config.Config, opts ...Option) (*Runner, *registry.Registry) {
	t.Helper()
	log := rtestutil.TestLogger(t)
	reg := registry.New(registry.WithLogger(log))
	t.Cleanup(reg.Shutdown)
	r, err := NewRunner(cfg, reg, append([]Option{WithLogger(log)}, opts...)...)
	require.NoError(t, err)
	return r, reg
}

func TestRunKeepsActiveEntitiesVisible(t *testing.T) {
	cfg := config.Default()
	cfg.Simulation.Frames = 200
	cfg.Simulation.DespawnRatio = 0.5

	r, _ := newRunner(t, cfg)
	report, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 200, report.Frames)
	assert.NotEmpty(t, report.RunID)
	assert.Zero(t, report.HiddenActive)
	assert.Equal(t, report.Spawned-report.Despawned, int64(report.Active))
	require.Contains(t, report.Pools, "Bullet")
	require.Contains(t, report.Pools, "Spark")
	for name, p := range report.Pools {
		assert.LessOrEqual(t, p.Stats.Stored, p.Stats.Capacity, name)
		assert.Zero(t, p.Pending, "%s: every frame ends with a flush", name)
	}
}

func TestRunIsDeterministicForSeed(t *testing.T) {
	run := func() *Report {
		cfg := config.Default()
		cfg.Simulation.Frames = 50
		cfg.Simulation.Seed = 7
		r, _ := newRunner(t, cfg)
		report, err := r.Run(context.Background())
		require.NoError(t, err)
		return report
	}

	a, b := run(), run()
	assert.Equal(t, a.Spawned, b.Spawned)
	assert.Equal(t, a.Despawned, b.Despawned)
	assert.Equal(t, a.Pools, b.Pools)
	assert.Equal(t, a.Scene, b.Scene)
}

func TestDeferredPoolCancelsSameFrameMoves(t *testing.T) {
	cfg := config.Default()
	cfg.Pools = []config.PoolConfig{{Name: "sparks", Template: "Spark", Capacity: 64, Deferred: true}}
	cfg.Simulation.Frames = 100
	cfg.Simulation.SpawnPerFrame = 8
	cfg.Simulation.DespawnRatio = 0.9

	r, _ := newRunner(t, cfg)
	report, err := r.Run(context.Background())
	require.NoError(t, err)

	spark := report.Pools["Spark"]
	assert.Positive(t, spark.Reparenter.Cancelled)
	assert.Positive(t, spark.Reparenter.Committed)
	assert.Less(t, report.Scene.Reparents, 2*spark.Stats.Returns, "cancelled moves never reach the scene")
}

func TestRunFeedsCollector(t *testing.T) {
	cfg := config.Default()
	cfg.Simulation.Frames = 10
	c := metrics.NewCollector("recycler")

	r, _ := newRunner(t, cfg, WithCollector(c))
	_, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, c.Snapshot(), 2)
	assert.Equal(t, 1, testutil.CollectAndCount(c, "recycler_frame_duration_seconds"))
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, _ := newRunner(t, config.Default())
	_, err := r.Run(ctx)

	assert.True(t, errors.IsType(err, errors.ErrorTypeState))
}

func TestNewRunnerValidatesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Simulation.DespawnRatio = 3

	_, err := NewRunner(cfg, registry.New())
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	_, err = NewRunner(nil, registry.New())
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}
