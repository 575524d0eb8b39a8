package simulation

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ajitpratap0/recycler/internal/scene"
	"github.com/ajitpratap0/recycler/pkg/config"
	"github.com/ajitpratap0/recycler/pkg/entity"
	"github.com/ajitpratap0/recycler/pkg/errors"
	"github.com/ajitpratap0/recycler/pkg/logger"
	"github.com/ajitpratap0/recycler/pkg/metrics"
	"github.com/ajitpratap0/recycler/pkg/observability"
	"github.com/ajitpratap0/recycler/pkg/performance"
	"github.com/ajitpratap0/recycler/pkg/pool"
	"github.com/ajitpratap0/recycler/pkg/registry"
)

// Option configures a Runner
type Option func(*Runner)

// WithLogger sets the runner logger
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithCollector feeds pool statistics to c after every frame
func WithCollector(c *metrics.Collector) Option {
	return func(r *Runner) { r.collector = c }
}

// WithTracer opens one span per frame on p
func WithTracer(p *observability.Provider) Option {
	return func(r *Runner) { r.tracer = p }
}

// WithResourceMonitor adds process resource usage to the report
func WithResourceMonitor(m *performance.ResourceMonitor) Option {
	return func(r *Runner) { r.resources = m }
}

// PoolReport is the end-of-run state of one pool
type PoolReport struct {
	Stats      pool.Stats                `json:"stats"`
	Reparenter entity.ReparenterCounters `json:"reparenter"`
	Pending    int                       `json:"pending"`
}

// Report summarizes a simulation run. Flushes is the number of pool
// flushes that committed work. HiddenActive counts borrowed entities found
// under a collapsed container at the end of a frame and is always zero for
// a correct pool.
type Report struct {
	RunID        string                     `json:"run_id"`
	Frames       int                        `json:"frames"`
	Seed         int64                      `json:"seed"`
	Spawned      int64                      `json:"spawned"`
	Despawned    int64                      `json:"despawned"`
	Active       int                        `json:"active"`
	Flushes      int                        `json:"flushes"`
	HiddenActive int                        `json:"hidden_active"`
	Pools        map[string]PoolReport      `json:"pools"`
	Scene        scene.Counters             `json:"scene"`
	LiveNodes    int                        `json:"live_nodes"`
	Heap         performance.HeapSnapshot   `json:"heap"`
	Resources    *performance.ResourceUsage `json:"resources,omitempty"`
	Duration     time.Duration              `json:"duration"`
}

// Runner spawns and despawns entities for a number of frames
type Runner struct {
	cfg      config.SimulationConfig
	registry *registry.Registry
	graph    *scene.Graph
	spawners []*Spawner
	active   [][]*scene.Node
	rng      *rand.Rand

	collector *metrics.Collector
	tracer    *observability.Provider
	resources *performance.ResourceMonitor
	logger    *zap.Logger

	report Report
}

// NewRunner creates a runner with one spawner per configured pool
func NewRunner(cfg *config.Config, reg *registry.Registry, opts ...Option) (*Runner, error) {
	if cfg == nil || reg == nil {
		return nil, errors.New(errors.ErrorTypeValidation, "runner requires a config and a registry")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:      cfg.Simulation,
		registry: reg,
		graph:    scene.NewGraph(),
		rng:      rand.New(rand.NewSource(cfg.Simulation.Seed)), //nolint:gosec // deterministic by seed
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get()
	}
	if r.tracer == nil {
		r.tracer = observability.Noop()
	}
	r.logger = r.logger.With(zap.String("component", "simulation"))

	for _, pc := range cfg.Pools {
		s, err := NewSpawner(reg, r.graph, pc, r.logger)
		if err != nil {
			return nil, err
		}
		r.spawners = append(r.spawners, s)
	}
	r.active = make([][]*scene.Node, len(r.spawners))
	return r, nil
}

// Graph returns the scene the runner spawns into
func (r *Runner) Graph() *scene.Graph {
	return r.graph
}

// Run executes every configured frame and returns the report. A
// cancelled ctx stops the run between frames.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	ctx = context.WithValue(ctx, logger.RunIDKey, runID)
	log := r.logger.With(logger.ContextFields(ctx)...)

	r.report = Report{RunID: runID, Seed: r.cfg.Seed}
	heapBefore := performance.ReadHeap()
	start := time.Now()

	log.Info("simulation started",
		zap.Int("frames", r.cfg.Frames),
		zap.Int("spawners", len(r.spawners)),
		zap.Int64("seed", r.cfg.Seed),
	)

	for frame := 0; frame < r.cfg.Frames; frame++ {
		if err := ctx.Err(); err != nil {
			log.Warn("simulation cancelled", zap.Int("frame", frame))
			return nil, errors.Wrap(err, errors.ErrorTypeState, "simulation cancelled")
		}
		if err := r.Step(ctx, frame); err != nil {
			return nil, err
		}
		r.report.Frames++
	}

	r.report.Duration = time.Since(start)
	r.report.Heap = performance.ReadHeap().Since(heapBefore)
	r.finishReport()

	log.Info("simulation finished",
		zap.Int64("spawned", r.report.Spawned),
		zap.Int64("despawned", r.report.Despawned),
		zap.Int("flushes", r.report.Flushes),
		zap.Duration("duration", r.report.Duration),
	)
	report := r.report
	return &report, nil
}

// Step runs one frame: despawn, spawn, then flush every batching pool.
// A spawn may reuse an entity despawned earlier in the same frame, before
// its storage move is committed.
func (r *Runner) Step(ctx context.Context, frame int) error {
	ctx = context.WithValue(ctx, logger.FrameKey, frame)
	_, span := r.tracer.StartFrame(ctx, frame)
	defer span.End()
	timer := metrics.NewTimer("frame")

	var spawned, despawned int
	for i, s := range r.spawners {
		kept := r.active[i][:0]
		for _, n := range r.active[i] {
			if r.rng.Float64() < r.cfg.DespawnRatio {
				if err := s.Remove(n); err != nil {
					span.RecordError(err)
					return err
				}
				despawned++
				continue
			}
			kept = append(kept, n)
		}
		clear(r.active[i][len(kept):])
		r.active[i] = kept

		for n := r.rng.Intn(r.cfg.SpawnPerFrame + 1); n > 0; n-- {
			e, err := s.Provide()
			if err != nil {
				span.RecordError(err)
				return err
			}
			r.active[i] = append(r.active[i], e)
			spawned++
		}
	}

	flushed := r.registry.EndFrame()
	r.report.Spawned += int64(spawned)
	r.report.Despawned += int64(despawned)
	r.report.Flushes += flushed
	r.report.HiddenActive += r.hiddenActive()

	span.SetAttribute("spawned", spawned)
	span.SetAttribute("despawned", despawned)
	span.SetAttribute("flushed", flushed)

	if r.collector != nil {
		r.collector.ObserveFlushes(flushed)
		r.collector.ObserveFrame(timer.Stop())
		r.collector.Observe(r.registry)
	}

	if ce := r.logger.Check(zap.DebugLevel, "frame done"); ce != nil {
		ce.Write(append(logger.ContextFields(ctx),
			zap.Int("spawned", spawned),
			zap.Int("despawned", despawned),
			zap.Int("flushed", flushed),
		)...)
	}
	return nil
}

func (r *Runner) hiddenActive() int {
	hidden := 0
	for _, nodes := range r.active {
		for _, n := range nodes {
			if !n.Visible() {
				hidden++
			}
		}
	}
	return hidden
}

func (r *Runner) finishReport() {
	r.report.Pools = make(map[string]PoolReport, len(r.spawners))
	for _, s := range r.spawners {
		p, status := registry.Lookup[*NodePool](r.registry, s.Key())
		if status != registry.Found {
			continue
		}
		r.report.Pools[s.Key()] = PoolReport{
			Stats:      p.Stats(),
			Reparenter: p.Reparenter(),
			Pending:    p.Pending(),
		}
	}
	for _, nodes := range r.active {
		r.report.Active += len(nodes)
	}
	r.report.Scene = r.graph.Counters()
	r.report.LiveNodes = r.graph.Live()
	if r.resources != nil {
		usage := r.resources.Usage()
		r.report.Resources = &usage
	}
}
