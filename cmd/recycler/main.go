// Command recycler inspects pool configurations and runs the frame
// simulation against them.
package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ajitpratap0/recycler/pkg/config"
	"github.com/ajitpratap0/recycler/pkg/errors"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("RECYCLER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "recycler",
		Short:         "Recycler - object pools for frame-driven scenes",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `Recycler manages capacity-bounded object pools whose stored entities are
parked under a collapsed container until they are borrowed again.`,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to a YAML configuration file")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().String("format", "text", "Output format (text, json)")
	_ = v.BindPFlags(root.PersistentFlags())

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Recycler v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})
	root.AddCommand(newPoolsCmd(v))
	root.AddCommand(newSimulateCmd(v))
	return root
}

func newPoolsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "pools",
		Short: "List the configured pools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			if v.GetString("format") == "json" {
				return writeJSON(cmd.OutOrStdout(), cfg.Pools)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-16s %-16s %8s %12s %8s\n", "NAME", "TEMPLATE", "CAPACITY", "PREALLOCATE", "DEFERRED")
			for _, p := range cfg.Pools {
				fmt.Fprintf(out, "%-16s %-16s %8d %12d %8v\n", p.Name, p.Template, p.Capacity, p.PreAllocate, p.Deferred)
			}
			return nil
		},
	}
}

// loadConfig reads --config, or the defaults, and applies flag and
// RECYCLER_* environment overrides on top.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg := config.Default()
	if path := v.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if v.IsSet("log-level") && v.GetString("log-level") != "" {
		cfg.Logging.Level = v.GetString("log-level")
	}
	if v.IsSet("frames") {
		cfg.Simulation.Frames = v.GetInt("frames")
	}
	if v.IsSet("seed") {
		cfg.Simulation.Seed = v.GetInt64("seed")
	}
	if v.IsSet("spawn-per-frame") {
		cfg.Simulation.SpawnPerFrame = v.GetInt("spawn-per-frame")
	}
	if v.IsSet("despawn-ratio") {
		cfg.Simulation.DespawnRatio = v.GetFloat64("despawn-ratio")
	}
	if v.IsSet("metrics-addr") && v.GetString("metrics-addr") != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Address = v.GetString("metrics-addr")
	}
	if v.IsSet("trace") {
		cfg.Tracing.Enabled = v.GetBool("trace")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid configuration")
	}
	return cfg, nil
}
