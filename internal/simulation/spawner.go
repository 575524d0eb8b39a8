// Package simulation drives entity pools through a frame loop
package simulation

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/recycler/internal/scene"
	"github.com/ajitpratap0/recycler/pkg/config"
	"github.com/ajitpratap0/recycler/pkg/entity"
	"github.com/ajitpratap0/recycler/pkg/errors"
	"github.com/ajitpratap0/recycler/pkg/registry"
)

// NodePool is the entity pool kind spawners register
type NodePool = entity.Pool[*scene.Node]

// Spawner hands out entities of one template. Its pool lives in the
// registry under the template name and is created on first use, so
// spawners sharing a template share a pool.
type Spawner struct {
	name     string
	registry *registry.Registry
	graph    *scene.Graph
	template *scene.Node
	cfg      config.PoolConfig
	logger   *zap.Logger
}

// NewSpawner creates a spawner for cfg. The template node is created in graph.
func NewSpawner(reg *registry.Registry, graph *scene.Graph, cfg config.PoolConfig, logger *zap.Logger) (*Spawner, error) {
	if reg == nil || graph == nil {
		return nil, errors.New(errors.ErrorTypeValidation, "spawner requires a registry and a scene").WithDetail("spawner", cfg.Name)
	}
	if cfg.Template == "" {
		return nil, errors.New(errors.ErrorTypeValidation, "spawner requires a template").WithDetail("spawner", cfg.Name)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Spawner{
		name:     cfg.Name,
		registry: reg,
		graph:    graph,
		template: graph.NewNode(cfg.Template),
		cfg:      cfg,
		logger:   logger.With(zap.String("spawner", cfg.Name)),
	}, nil
}

// Name returns the spawner name
func (s *Spawner) Name() string {
	return s.name
}

// Key returns the registry key of the spawner's pool
func (s *Spawner) Key() string {
	return s.cfg.Template
}

// Pool returns the spawner's pool, creating and registering it if absent
func (s *Spawner) Pool() (*NodePool, error) {
	return registry.GetOrCreate(s.registry, s.Key(), func() (*NodePool, error) {
		s.logger.Debug("creating pool", zap.String("pool", s.Key()), zap.Int("capacity", s.cfg.Capacity))
		return entity.NewPool(s.Key(), s.template, s.graph, s.cfg.Capacity, s.cfg.PreAllocate,
			entity.WithDeferredAttach(s.cfg.Deferred),
			entity.WithLogger(s.logger),
		)
	})
}

// Provide borrows an entity
func (s *Spawner) Provide() (*scene.Node, error) {
	p, err := s.Pool()
	if err != nil {
		return nil, err
	}
	return p.Borrow(), nil
}

// Remove returns n to the pool
func (s *Spawner) Remove(n *scene.Node) error {
	p, err := s.Pool()
	if err != nil {
		return err
	}
	p.Return(n)
	return nil
}
