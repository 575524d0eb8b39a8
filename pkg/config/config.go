// Package config defines the recycler configuration file.
//
// A configuration names the pools to build, the frame simulation to run
// against them and the ambient logging, metrics and tracing settings.
//
// Example usage:
//
//	cfg, err := config.Load("recycler.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, p := range cfg.Pools {
//	    fmt.Println(p.Name, p.Capacity)
//	}
package config

import (
	"github.com/ajitpratap0/recycler/pkg/errors"
	"github.com/ajitpratap0/recycler/pkg/logger"
)

// Config is the root configuration structure
type Config struct {
	Logging    logger.Config    `yaml:"logging" json:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics" json:"metrics"`
	Tracing    TracingConfig    `yaml:"tracing" json:"tracing"`
	Simulation SimulationConfig `yaml:"simulation" json:"simulation"`
	Pools      []PoolConfig     `yaml:"pools" json:"pools"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Address is the listen address of the /metrics handler
	Address string `yaml:"address" json:"address"`
}

// TracingConfig controls per-frame tracing
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	ServiceName string `yaml:"service_name" json:"service_name"`
	// SamplingRate is the fraction of frames traced (0.0-1.0)
	SamplingRate float64 `yaml:"sampling_rate" json:"sampling_rate"`
}

// SimulationConfig drives the frame simulation
type SimulationConfig struct {
	Frames int `yaml:"frames" json:"frames"`
	// SpawnPerFrame is the maximum number of entities spawned each frame
	SpawnPerFrame int `yaml:"spawn_per_frame" json:"spawn_per_frame"`
	// DespawnRatio is the chance an active entity is returned each frame
	DespawnRatio float64 `yaml:"despawn_ratio" json:"despawn_ratio"`
	Seed         int64   `yaml:"seed" json:"seed"`
}

// PoolConfig describes one entity pool. Capacity and PreAllocate are
// clamped by the pool itself.
type PoolConfig struct {
	Name        string `yaml:"name" json:"name"`
	Template    string `yaml:"template" json:"template"`
	Capacity    int    `yaml:"capacity" json:"capacity"`
	PreAllocate int    `yaml:"pre_allocate" json:"pre_allocate"`
	// Deferred batches container attaches until the end of the frame
	Deferred bool `yaml:"deferred" json:"deferred"`
}

// Default returns a configuration with two demo pools
func Default() *Config {
	return &Config{
		Logging: logger.Config{
			Level:       "info",
			Encoding:    "console",
			OutputPaths: []string{"stderr"},
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Address: ":9090",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			ServiceName:  "recycler",
			SamplingRate: 1.0,
		},
		Simulation: SimulationConfig{
			Frames:        120,
			SpawnPerFrame: 4,
			DespawnRatio:  0.25,
			Seed:          1,
		},
		Pools: []PoolConfig{
			{Name: "Bullet", Template: "Bullet", Capacity: 32, PreAllocate: 8},
			{Name: "Spark", Template: "Spark", Capacity: 16, Deferred: true},
		},
	}
}

// Validate checks the configuration for values no component can clamp
func (c *Config) Validate() error {
	if c.Simulation.Frames < 0 {
		return errors.New(errors.ErrorTypeConfig, "simulation.frames cannot be negative")
	}
	if c.Simulation.SpawnPerFrame < 0 {
		return errors.New(errors.ErrorTypeConfig, "simulation.spawn_per_frame cannot be negative")
	}
	if c.Simulation.DespawnRatio < 0 || c.Simulation.DespawnRatio > 1 {
		return errors.Newf(errors.ErrorTypeConfig, "simulation.despawn_ratio must be in [0,1], got %v", c.Simulation.DespawnRatio)
	}
	if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
		return errors.Newf(errors.ErrorTypeConfig, "tracing.sampling_rate must be in [0,1], got %v", c.Tracing.SamplingRate)
	}
	if c.Metrics.Enabled && c.Metrics.Address == "" {
		return errors.New(errors.ErrorTypeConfig, "metrics.address is required when metrics are enabled")
	}

	seen := make(map[string]struct{}, len(c.Pools))
	for i, p := range c.Pools {
		if p.Name == "" {
			return errors.Newf(errors.ErrorTypeConfig, "pools[%d].name is required", i)
		}
		if p.Template == "" {
			return errors.Newf(errors.ErrorTypeConfig, "pools[%d].template is required", i).WithDetail("pool", p.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return errors.Newf(errors.ErrorTypeConfig, "pool %s is defined twice", p.Name).WithDetail("pool", p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}

// Pool returns the pool configuration named name
func (c *Config) Pool(name string) (PoolConfig, bool) {
	for _, p := range c.Pools {
		if p.Name == name {
			return p, true
		}
	}
	return PoolConfig{}, false
}
