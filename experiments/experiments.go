package experiments

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"jungle/engine"
	"jungle/experiments/metrics"
	"jungle/searcher"
)

// Setup describes a throughput experiment. It is usually read from YAML.
type Setup struct {
	Name        string `yaml:"name"`
	Games       int    `yaml:"games"`
	Simulations int    `yaml:"simulations"`
	MaxMoves    int    `yaml:"max_moves"`
	Workers     []int  `yaml:"workers"`
	Seed        uint64 `yaml:"seed"`
	OutDir      string `yaml:"out_dir"`
}

var DefaultSetup = Setup{
	Name:        "throughput",
	Games:       16,
	Simulations: 100,
	MaxMoves:    engine.MaxMoves,
	Workers:     []int{1, 2, 4, 8},
	OutDir:      "experiments",
}

// LoadSetup reads a YAML setup file; missing fields keep DefaultSetup's values.
func LoadSetup(path string) (Setup, error) {
	setup := DefaultSetup
	b, err := os.ReadFile(path)
	if err != nil {
		return setup, fmt.Errorf("failed to read setup: %w", err)
	}
	if err := yaml.Unmarshal(b, &setup); err != nil {
		return setup, fmt.Errorf("failed to parse setup %s: %w", path, err)
	}
	if setup.Games <= 0 || len(setup.Workers) == 0 {
		return setup, fmt.Errorf("setup %s: needs games and workers", path)
	}
	return setup, nil
}

// RunThroughput plays the setup's games once per worker count and stores
// configs, per-run metrics and per-game records as CSV under setup.OutDir.
// A histogram of game lengths over all runs goes to out.
func RunThroughput(ctx context.Context, setup Setup, evaluator searcher.Evaluator, out io.Writer) ([]metrics.RunMetric, error) {
	writer, err := metrics.NewWriter(setup.OutDir, setup.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create experiment writer: %w", err)
	}

	configs := make([]metrics.RunConfig, len(setup.Workers))
	for i, w := range setup.Workers {
		configs[i] = metrics.RunConfig{
			ID:          i + 1,
			Workers:     w,
			Games:       setup.Games,
			Simulations: setup.Simulations,
			MaxMoves:    setup.MaxMoves,
		}
	}
	if err := writer.WriteRunConfigs(configs); err != nil {
		return nil, fmt.Errorf("failed to store run configs: %w", err)
	}

	log.Info().Msgf("starting %s experiment...", setup.Name)

	var runMetrics []metrics.RunMetric
	var gameRecords []metrics.GameRecord
	var plies []float64
	for _, config := range configs {
		log.Info().Msgf("starting run %d of %d with %+v...", config.ID, len(configs), config)

		start := time.Now()
		records, err := engine.RunSelfPlayGames(ctx, config.Games, evaluator, config.Workers,
			engine.WithSimulations(config.Simulations),
			engine.WithMaxMoves(config.MaxMoves),
			engine.WithSeed(setup.Seed),
		)
		if err != nil {
			return runMetrics, fmt.Errorf("run %d: %w", config.ID, err)
		}
		m := metrics.Summarize(config, records, time.Since(start))
		runMetrics = append(runMetrics, m)
		gameRecords = append(gameRecords, metrics.GameRecords(config.ID, records)...)
		plies = append(plies, metrics.PlyCounts(records)...)

		log.Info().Msgf("completed run %d: %.3f games/s, %.1f plies/game", config.ID, m.GamesPerSecond, m.MeanPlies)
	}

	log.Info().Msgf("completed %s experiment", setup.Name)

	if err := writer.WriteRunMetrics(runMetrics); err != nil {
		return runMetrics, fmt.Errorf("failed to write run metrics: %w", err)
	}
	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return runMetrics, fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msgf("stored results in %s", writer.Dir())

	if out != nil && len(plies) > 0 {
		fmt.Fprintln(out, "game length (plies):")
		if err := histogram.Fprint(out, histogram.Hist(15, plies), histogram.Linear(40)); err != nil {
			return runMetrics, err
		}
	}
	return runMetrics, nil
}
