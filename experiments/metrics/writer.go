package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"jungle/engine"
)

type Writer struct {
	baseDir string
}

// NewWriter creates a subfolder of root named by experiment and current timestamp.
func NewWriter(root, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteRunConfigs(configs []RunConfig) error {
	header := []string{"id", "workers", "games", "simulations", "max_moves"}
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			strconv.Itoa(config.Workers),
			strconv.Itoa(config.Games),
			strconv.Itoa(config.Simulations),
			strconv.Itoa(config.MaxMoves),
		})
	}
	return w.write("run_configs.csv", header, rows)
}

func (w *Writer) WriteRunMetrics(metrics []RunMetric) error {
	header := []string{"id", "workers", "duration", "games_per_second", "mean_plies", "red", "black", "draw", "move_limit", "samples"}
	rows := make([][]string, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, []string{
			strconv.Itoa(m.ID),
			strconv.Itoa(m.Workers),
			m.Duration.String(),
			strconv.FormatFloat(m.GamesPerSecond, 'f', 4, 64),
			strconv.FormatFloat(m.MeanPlies, 'f', 2, 64),
			strconv.Itoa(m.Outcomes[engine.RedWin]),
			strconv.Itoa(m.Outcomes[engine.BlackWin]),
			strconv.Itoa(m.Outcomes[engine.Draw]),
			strconv.Itoa(m.Outcomes[engine.MoveLimit]),
			strconv.Itoa(m.Samples),
		})
	}
	return w.write("run_metrics.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"run", "game", "outcome", "plies", "start_time", "duration"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Run),
			strconv.Itoa(record.Game),
			record.Outcome.String(),
			strconv.Itoa(record.Plies),
			record.StartTime.Format(time.RFC3339),
			record.Duration.String(),
		})
	}
	return w.write("game_records.csv", header, rows)
}

func (w *Writer) write(name string, header []string, rows [][]string) error {
	// Create a file
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return f.Close()
}
