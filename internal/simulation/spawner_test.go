package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/recycler/internal/scene"
	"github.com/ajitpratap0/recycler/pkg/config"
	"github.com/ajitpratap0/recycler/pkg/errors"
	"github.com/ajitpratap0/recycler/pkg/pool"
	"github.com/ajitpratap0/recycler/pkg/registry"
	"github.com/ajitpratap0/recycler/pkg/testutil"
)

func newSpawner(t *testing.T, reg *registry.Registry, graph *scene.Graph, cfg config.PoolConfig) *Spawner {
	t.Helper()
	s, err := NewSpawner(reg, graph, cfg, testutil.TestLogger(t))
	require.NoError(t, err)
	return s
}

func TestSpawnerCreatesPoolLazily(t *testing.T) {
	reg := registry.New(registry.WithLogger(testutil.TestLogger(t)))
	s := newSpawner(t, reg, scene.NewGraph(), config.PoolConfig{Name: "bullets", Template: "Bullet", Capacity: 2})

	assert.False(t, reg.Contains("Bullet"))

	n, err := s.Provide()
	require.NoError(t, err)
	assert.Equal(t, "Bullet", n.Name())
	assert.True(t, reg.Contains("Bullet"))
}

func TestSpawnerRecyclesEntities(t *testing.T) {
	reg := registry.New(registry.WithLogger(testutil.TestLogger(t)))
	s := newSpawner(t, reg, scene.NewGraph(), config.PoolConfig{Name: "bullets", Template: "Bullet", Capacity: 2})

	a, err := s.Provide()
	require.NoError(t, err)
	require.NoError(t, s.Remove(a))
	b, err := s.Provide()
	require.NoError(t, err)

	assert.Same(t, a, b)
}

func TestSpawnersShareTemplatePool(t *testing.T) {
	reg := registry.New(registry.WithLogger(testutil.TestLogger(t)))
	graph := scene.NewGraph()
	left := newSpawner(t, reg, graph, config.PoolConfig{Name: "left", Template: "Bullet", Capacity: 2})
	right := newSpawner(t, reg, graph, config.PoolConfig{Name: "right", Template: "Bullet", Capacity: 9})

	a, err := left.Provide()
	require.NoError(t, err)
	require.NoError(t, right.Remove(a))

	p, err := right.Pool()
	require.NoError(t, err)
	assert.Equal(t, 2, p.Capacity(), "the first spawner created the pool")
	assert.Equal(t, 1, reg.Len())
}

func TestSpawnerReportsKindMismatch(t *testing.T) {
	reg := registry.New(registry.WithLogger(testutil.TestLogger(t)))
	require.NoError(t, reg.Add("Bullet", pool.New[int](1, 0)))
	s := newSpawner(t, reg, scene.NewGraph(), config.PoolConfig{Name: "bullets", Template: "Bullet", Capacity: 2})

	_, err := s.Provide()
	assert.True(t, errors.IsType(err, errors.ErrorTypeTypeMismatch))
	assert.True(t, errors.IsType(s.Remove(nil), errors.ErrorTypeTypeMismatch))
}

func TestNewSpawnerValidation(t *testing.T) {
	reg := registry.New(registry.WithLogger(testutil.TestLogger(t)))

	_, err := NewSpawner(nil, scene.NewGraph(), config.PoolConfig{Template: "Bullet"}, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = NewSpawner(reg, scene.NewGraph(), config.PoolConfig{Name: "x"}, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}
