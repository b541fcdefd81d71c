package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/pthm-cable/galaxy/compute"
	"github.com/pthm-cable/galaxy/config"
	"github.com/pthm-cable/galaxy/simulation"
	"github.com/pthm-cable/galaxy/trajectory"
)

func main() {
	os.Exit(run())
}

func run() int {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outPath := flag.String("out", "timeline.dat", "Trajectory output file")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = time-based)")
	days := flag.Int("days", 0, "Days to simulate (0 = use config)")
	backendName := flag.String("backend", "", "Compute backend: parallel or offload (empty = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	cfg := config.Cfg()

	// CLI overrides
	if *days > 0 {
		cfg.Run.Days = *days
	}
	if *backendName != "" {
		cfg.Compute.Backend = *backendName
	}

	backend, err := compute.New(cfg)
	if err != nil {
		slog.Error("failed to create compute backend", "error", err)
		return 1
	}
	defer backend.Close()

	writer, err := trajectory.Create(*outPath, cfg.Galaxy.InitialBodyCount)
	if err != nil {
		slog.Error("failed to create trajectory", "error", err)
		return 1
	}

	sim, err := simulation.New(cfg, backend, writer, simulation.Options{
		Seed:      *seed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
	})
	if err != nil {
		writer.Close()
		slog.Error("failed to create simulation", "error", err)
		return 1
	}
	defer sim.Close()

	runErr := sim.Run()

	// Frames written before a failure are kept
	if err := writer.Close(); err != nil {
		slog.Error("failed to close trajectory", "error", err)
		return 1
	}
	slog.Info("trajectory written", "path", *outPath, "frames", writer.Frames())

	if runErr != nil {
		return 1
	}
	return 0
}
