package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vast-sim/sps-sim/sim/experiment"
	"github.com/vast-sim/sps-sim/sim/trace"
)

var (
	logLevel string // Log verbosity level

	// CLI flags shared by run, sweep and figure
	seed        int64  // Master seed for node layouts
	workers     int    // Sweep parallelism
	partitioner string // Spatial partition (voronoi, grid)

	// CLI flags for a single run
	nodes          int     // Number of nodes
	width          float64 // World width and height
	step           float64 // Publication grid spacing
	renderDistance int     // Publication radius in blocks
	outDir         string  // Artifact directory
	traceLevel     string  // Trace verbosity
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "sps-sim",
	Short: "Traffic simulator for spatial publish/subscribe overlays",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(cmd)
	},
}

// setupLogging applies --log, falling back to SPSSIM_LOG_LEVEL.
func setupLogging(cmd *cobra.Command) {
	envCfg, err := parseEnv()
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	lvl := resolveString(cmd, "log", logLevel, envCfg.LogLevel)
	level, err := logrus.ParseLevel(lvl)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", lvl)
	}
	logrus.SetLevel(level)
}

// signalContext is cancelled on interrupt so long sweeps stop cleanly.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// runCmd executes one simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation and print its statistics",
	Run: func(cmd *cobra.Command, args []string) {
		envCfg, err := parseEnv()
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		cfg := experiment.DefaultConfig(nodes)
		cfg.Width = width
		cfg.Step = step
		cfg.RenderDistance = renderDistance
		cfg.Seed = seed
		cfg.Workers = resolveInt(cmd, "workers", workers, envCfg.Workers)
		cfg.Partitioner = experiment.Partitioner(partitioner)
		cfg.TraceLevel = trace.TraceLevel(traceLevel)
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		logrus.Infof("Starting simulation with %d nodes, width=%g, step=%g, workers=%d, partition=%s",
			cfg.Nodes, cfg.Width, cfg.Step, cfg.Workers, cfg.Partitioner)

		ctx, cancel := signalContext()
		defer cancel()
		res, err := experiment.Run(ctx, cfg)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		if outDir != "" {
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				logrus.Fatalf("Failed to create %s: %v", outDir, err)
			}
			if err := experiment.WriteArtifacts(outDir, res); err != nil {
				logrus.Fatalf("Failed to write artifacts: %v", err)
			}
			logrus.Infof("Artifacts written to %s", outDir)
		}

		data, err := json.MarshalIndent(res.Stats, "", "  ")
		if err != nil {
			logrus.Fatalf("Failed to encode stats: %v", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		logrus.Infof("Completed simulation of %d nodes in %.2fs: %s",
			cfg.Nodes, res.Elapsed.Seconds(), experiment.ComparisonLine(res.Stats))
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().IntVar(&nodes, "nodes", 30, "Number of nodes")
	runCmd.Flags().Float64Var(&width, "width", experiment.DefaultWidth, "World width and height")
	runCmd.Flags().Float64Var(&step, "step", 1, "Spacing of the publication grid")
	runCmd.Flags().IntVar(&renderDistance, "render-distance", experiment.DefaultRenderDistance, "Publication radius in blocks of 16 units")
	runCmd.Flags().StringVar(&outDir, "out", "", "Directory for neighbors.json, sites.json, simulation.json and results.json")
	runCmd.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Trace level (none, publications)")
	addSharedFlags(runCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(figureCmd)
}

// addSharedFlags registers the seed, workers and partition flags on c.
func addSharedFlags(c *cobra.Command) {
	c.Flags().Int64Var(&seed, "seed", 42, "Master seed for node layouts")
	c.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "Publications evaluated in parallel (env SPSSIM_WORKERS)")
	c.Flags().StringVar(&partitioner, "partition", string(experiment.PartitionVoronoi), "Spatial partition (voronoi, grid)")
}
