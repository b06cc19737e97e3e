package metrics

import (
	"time"

	"github.com/samber/lo"

	"jungle/engine"
)

// RunConfig is one self-play configuration of an experiment.
type RunConfig struct {
	ID          int
	Workers     int
	Games       int
	Simulations int
	MaxMoves    int
}

// RunMetric summarizes the games of one configuration.
type RunMetric struct {
	RunConfig
	Duration       time.Duration
	GamesPerSecond float64
	MeanPlies      float64
	Outcomes       map[engine.Outcome]int
	Samples        int
}

// GameRecord is one game of a run, without its training samples.
type GameRecord struct {
	Run       int // RunConfig.ID
	Game      int
	Outcome   engine.Outcome
	Plies     int
	StartTime time.Time
	Duration  time.Duration
}

// Summarize aggregates the records a run produced in elapsed wall time.
func Summarize(config RunConfig, records []engine.GameRecord, elapsed time.Duration) RunMetric {
	m := RunMetric{
		RunConfig: config,
		Duration:  elapsed,
		Outcomes:  lo.CountValuesBy(records, func(r engine.GameRecord) engine.Outcome { return r.Outcome }),
		Samples:   lo.SumBy(records, func(r engine.GameRecord) int { return len(r.Samples) }),
	}
	if len(records) > 0 {
		m.MeanPlies = float64(lo.SumBy(records, engine.GameRecord.Plies)) / float64(len(records))
	}
	if elapsed > 0 {
		m.GamesPerSecond = float64(len(records)) / elapsed.Seconds()
	}
	return m
}

// GameRecords flattens a run's records for the CSV writer.
func GameRecords(run int, records []engine.GameRecord) []GameRecord {
	return lo.Map(records, func(r engine.GameRecord, _ int) GameRecord {
		return GameRecord{
			Run:       run,
			Game:      r.ID,
			Outcome:   r.Outcome,
			Plies:     r.Plies(),
			StartTime: r.StartTime,
			Duration:  r.Duration,
		}
	})
}

// PlyCounts returns the game lengths as floats, for histograms.
func PlyCounts(records []engine.GameRecord) []float64 {
	return lo.Map(records, func(r engine.GameRecord, _ int) float64 { return float64(r.Plies()) })
}
