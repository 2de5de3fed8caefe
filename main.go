package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pthm-cable/ecotope/components"
	"github.com/pthm-cable/ecotope/config"
	"github.com/pthm-cable/ecotope/game"
	"github.com/pthm-cable/ecotope/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Int("stats-window", 0, "Stats window size in ticks (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	unindexed := flag.Bool("unindexed", false, "Scan full species lists instead of spatial buckets")
	ants := flag.Int("ants", 40, "Initial ants, placed in a nest at the world center")
	birds := flag.Int("birds", 6, "Initial birds")
	anteaters := flag.Int("anteaters", 1, "Initial anteaters")
	snakes := flag.Int("snakes", 1, "Initial snakes")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	sim, err := game.New(cfg, game.Options{
		Seed:      rngSeed,
		Unindexed: *unindexed,
		LogStats:  *logStats,
		Output:    out,
	})
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}

	var counts [components.NumSpecies]int
	counts[components.SpeciesAnt] = *ants
	counts[components.SpeciesBird] = *birds
	counts[components.SpeciesAnteater] = *anteaters
	counts[components.SpeciesSnake] = *snakes
	if err := sim.Populate(counts); err != nil {
		slog.Error("failed to populate", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("starting headless simulation",
		"seed", rngSeed,
		"stats_window", cfg.Telemetry.StatsWindow,
		"max_ticks", *maxTicks,
		"unindexed", *unindexed,
		"output_dir", out.Dir(),
	)

	for ctx.Err() == nil {
		sim.Step()

		if *maxTicks > 0 && sim.Tick() >= *maxTicks {
			slog.Info("max ticks reached", "tick", sim.Tick())
			break
		}
	}
	if ctx.Err() != nil {
		slog.Info("interrupted", "tick", sim.Tick())
	}

	pop := sim.Population()
	slog.Info("final population",
		"ants", pop[components.SpeciesAnt],
		"birds", pop[components.SpeciesBird],
		"anteaters", pop[components.SpeciesAnteater],
		"snakes", pop[components.SpeciesSnake],
		"nests", len(sim.Nests()),
		"deliveries", sim.Deliveries(),
	)

	if err := out.WriteNests(sim.NestRecords()); err != nil {
		slog.Error("failed to write nests", "error", err)
	}
}
