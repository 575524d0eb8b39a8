package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime/pprof"
	"sort"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/recycler/internal/simulation"
	"github.com/ajitpratap0/recycler/pkg/config"
	"github.com/ajitpratap0/recycler/pkg/errors"
	"github.com/ajitpratap0/recycler/pkg/json"
	"github.com/ajitpratap0/recycler/pkg/logger"
	"github.com/ajitpratap0/recycler/pkg/metrics"
	"github.com/ajitpratap0/recycler/pkg/observability"
	"github.com/ajitpratap0/recycler/pkg/performance"
	"github.com/ajitpratap0/recycler/pkg/registry"
)

func newSimulateCmd(v *viper.Viper) *cobra.Command {
	var cpuProfile string

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the frame simulation against the configured pools",
		Long: `Run the frame simulation. Each frame despawns a random share of the active
entities, spawns new ones, then flushes every pool with batched work.

Example:
  recycler simulate --config recycler.yaml --frames 600 --seed 42 --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			if cpuProfile != "" {
				stop, err := startCPUProfile(cpuProfile)
				if err != nil {
					return err
				}
				defer stop()
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			report, err := simulate(ctx, cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if v.GetString("format") == "json" {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			writeReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().Int("frames", 0, "Number of frames to simulate")
	cmd.Flags().Int64("seed", 0, "Random seed")
	cmd.Flags().Int("spawn-per-frame", 0, "Maximum entities spawned per pool per frame")
	cmd.Flags().Float64("despawn-ratio", 0, "Chance an active entity is returned each frame (0-1)")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().Bool("trace", false, "Export one span per frame to stderr")
	cmd.Flags().StringVar(&cpuProfile, "cpuprofile", "", "Write a CPU profile to file")
	_ = v.BindPFlags(cmd.Flags())

	return cmd
}

// simulate wires the registry, metrics and tracing around one run
func simulate(ctx context.Context, cfg *config.Config, diag io.Writer) (*simulation.Report, error) {
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to build logger")
	}
	defer func() { _ = log.Sync() }()
	log = log.With(zap.String("component", "recycler-cli"))

	reg, err := registry.Open(registry.WithLogger(log))
	if err != nil {
		return nil, err
	}
	defer reg.Shutdown()

	opts := []simulation.Option{simulation.WithLogger(log)}

	collector := metrics.NewCollector("recycler")
	opts = append(opts, simulation.WithCollector(collector))
	if cfg.Metrics.Enabled {
		stop, err := serveMetrics(cfg.Metrics.Address, collector, log)
		if err != nil {
			return nil, err
		}
		defer stop()
	}

	if cfg.Tracing.Enabled {
		tp, err := observability.NewProvider(observability.TracingConfig{
			ServiceName:    cfg.Tracing.ServiceName,
			ServiceVersion: version,
			SamplingRate:   cfg.Tracing.SamplingRate,
			Writer:         diag,
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to start tracing")
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				log.Warn("tracer shutdown failed", zap.Error(err))
			}
		}()
		opts = append(opts, simulation.WithTracer(tp))
	}

	if rm, err := performance.NewResourceMonitor(); err == nil {
		opts = append(opts, simulation.WithResourceMonitor(rm))
	} else {
		log.Warn("resource usage unavailable", zap.Error(err))
	}

	runner, err := simulation.NewRunner(cfg, reg, opts...)
	if err != nil {
		return nil, err
	}
	return runner.Run(ctx)
}

// serveMetrics exposes collector on addr until the returned stop is called
func serveMetrics(addr string, collector *metrics.Collector, log *zap.Logger) (func(), error) {
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collector,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to listen for metrics").WithDetail("address", addr)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("address", ln.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

func startCPUProfile(path string) (func(), error) {
	f, err := os.Create(path) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create CPU profile").WithDetail("path", path)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to start CPU profile")
	}
	return func() {
		pprof.StopCPUProfile()
		_ = f.Close()
	}, nil
}

var output = json.NewEncoder(1, "  ")

func writeJSON(w io.Writer, v interface{}) error {
	if err := output.Encode(w, v); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode output")
	}
	return nil
}

func writeReport(w io.Writer, r *simulation.Report) {
	fmt.Fprintf(w, "Run %s: %d frames in %s (seed %d)\n", r.RunID, r.Frames, r.Duration.Round(time.Microsecond), r.Seed)
	fmt.Fprintf(w, "Spawned %d, despawned %d, active %d, hidden active %d\n", r.Spawned, r.Despawned, r.Active, r.HiddenActive)
	fmt.Fprintf(w, "Scene: %d live nodes, %d instantiations, %d destructions, %d reparents\n",
		r.LiveNodes, r.Scene.Instantiations, r.Scene.Destructions, r.Scene.Reparents)
	fmt.Fprintf(w, "Heap: %d mallocs, %d GC cycles\n", r.Heap.Mallocs, r.Heap.NumGC)

	names := make([]string, 0, len(r.Pools))
	for name := range r.Pools {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "\n%-12s %8s %8s %8s %8s %8s %9s %9s %9s\n",
		"POOL", "STORED", "CAP", "ALLOCS", "MISSES", "OVERFLOW", "FLUSHES", "COMMITTED", "CANCELLED")
	for _, name := range names {
		p := r.Pools[name]
		fmt.Fprintf(w, "%-12s %8d %8d %8d %8d %8d %9d %9d %9d\n",
			name, p.Stats.Stored, p.Stats.Capacity, p.Stats.Allocations, p.Stats.Misses, p.Stats.Overflows,
			p.Reparenter.Flushes, p.Reparenter.Committed, p.Reparenter.Cancelled)
	}
}
