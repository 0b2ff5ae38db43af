package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/game"
	"github.com/pthm-cable/flock/telemetry"
)

func main() {
	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	rootCmd := &cobra.Command{
		Use:   "flock",
		Short: "Boids flocking simulation with grid-accelerated neighbor search",
		Long: `flock simulates agents steered by cohesion, separation and alignment.
Neighbor search runs brute force (naive), through a sorted uniform grid
(scattered), or through a grid with agent data reordered into cell order
(coherent).`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to config.yaml (empty = use defaults)")
	rootCmd.PersistentFlags().String("strategy", "", "Override strategy: naive, scattered, coherent")
	rootCmd.PersistentFlags().Uint32("seed", 1, "Frame counter mixed into the initial layout")
	rootCmd.PersistentFlags().Int("agents", 0, "Override agent count (0 = use config)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation headless",
		RunE:  runHeadless,
	}
	runCmd.Flags().Int64("frames", 1000, "Number of frames to step")
	runCmd.Flags().String("output-dir", "", "Directory for perf.csv, flock.csv and config.yaml")
	runCmd.Flags().Int("stats-every", 0, "Frames between CSV rows (0 = telemetry.perf_window)")
	rootCmd.AddCommand(runCmd)

	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "Run the simulation in a window",
		RunE:  runView,
	}
	viewCmd.Flags().Int64("frames", 0, "Stop after N frames (0 = until the window closes)")
	rootCmd.AddCommand(viewCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("flock failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig loads the config file and applies command line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if strategy, _ := cmd.Flags().GetString("strategy"); strategy != "" {
		cfg.Strategy = strategy
	}
	if agents, _ := cmd.Flags().GetInt("agents"); agents > 0 {
		cfg.Agents.Count = agents
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newSimulation(cmd *cobra.Command) (*game.Simulation, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	seed, _ := cmd.Flags().GetUint32("seed")
	return game.NewSimulation(cfg, game.Options{Seed: seed})
}

func runHeadless(cmd *cobra.Command, _ []string) error {
	frames, _ := cmd.Flags().GetInt64("frames")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	statsEvery, _ := cmd.Flags().GetInt("stats-every")

	sim, err := newSimulation(cmd)
	if err != nil {
		return err
	}
	defer sim.Close()

	cfg := sim.Config()
	if statsEvery <= 0 {
		statsEvery = cfg.Telemetry.PerfWindow
	}

	out, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting headless simulation",
		"frames", frames,
		"strategy", sim.Strategy(),
		"output_dir", outputDir,
	)

	start := time.Now()
	dt := cfg.Derived.DT32
	for sim.Frame() < frames {
		if ctx.Err() != nil {
			slog.Info("interrupted", "frame", sim.Frame())
			break
		}
		if err := sim.Step(dt); err != nil {
			return err
		}
		if sim.Frame()%int64(statsEvery) == 0 {
			flock := sim.FlockStats()
			if err := out.WritePerf(sim.Perf().Stats(), sim.Frame(), sim.Strategy()); err != nil {
				return err
			}
			if err := out.WriteFlock(flock); err != nil {
				return err
			}
			slog.Debug("flock", "stats", flock)
		}
	}

	elapsed := time.Since(start)
	slog.Info("run complete",
		"frames", sim.Frame(),
		"elapsed", elapsed.Round(time.Millisecond).String(),
		"perf", sim.Perf().Stats(),
		"flock", sim.FlockStats(),
	)
	return nil
}

func runView(cmd *cobra.Command, _ []string) error {
	frames, _ := cmd.Flags().GetInt64("frames")

	sim, err := newSimulation(cmd)
	if err != nil {
		return err
	}
	defer sim.Close()

	return game.RunViewer(sim, frames)
}
