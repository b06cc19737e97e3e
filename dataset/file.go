package dataset

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"lukechampine.com/frand"

	"jungle/engine"
)

// FileSink writes one gzipped JSON-lines file per game under dir/iter<N>/.
// The first line holds the record without samples, then one sample per line.
// File names carry a run id so several runs can share an iteration.
type FileSink struct {
	dir string
	run string
}

func NewFileSink(root string, iteration int) (*FileSink, error) {
	dir := filepath.Join(root, fmt.Sprintf("iter%d", iteration))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	run := fmt.Sprintf("%s-%08x", time.Now().UTC().Format("20060102T150405"), frand.Uint64n(1<<32))
	return &FileSink{dir: dir, run: run}, nil
}

func (s *FileSink) Dir() string {
	return s.dir
}

// Path is the file a game is written to.
func (s *FileSink) Path(id int) string {
	return filepath.Join(s.dir, fmt.Sprintf("game-%s-%05d.jsonl.gz", s.run, id))
}

func (s *FileSink) Write(ctx context.Context, rec engine.GameRecord) error {
	path := s.Path(rec.ID)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("could not create record file: %w", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	enc := json.NewEncoder(gz)
	header := rec
	header.Samples = nil
	if err := enc.Encode(header); err != nil {
		return fmt.Errorf("could not write record header: %w", err)
	}
	for _, sample := range rec.Samples {
		if err := enc.Encode(sample); err != nil {
			return fmt.Errorf("could not write sample: %w", err)
		}
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("could not close gzip writer: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("file", path).Int("samples", len(rec.Samples)).Msg("wrote game")
	return f.Close()
}

func (s *FileSink) Close() error {
	return nil
}

// ReadFile loads a record written by FileSink.
func ReadFile(path string) (engine.GameRecord, error) {
	var rec engine.GameRecord
	file, err := os.Open(path)
	if err != nil {
		return rec, fmt.Errorf("could not open record file: %w", err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return rec, fmt.Errorf("could not create gzip reader: %w", err)
	}
	defer gzReader.Close()

	scanner := bufio.NewScanner(gzReader)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return rec, fmt.Errorf("error while scanning file: %w", err)
		}
		return rec, fmt.Errorf("%s: empty record file", path)
	}
	if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
		return rec, fmt.Errorf("could not unmarshal record header: %w", err)
	}
	for scanner.Scan() {
		var sample engine.Sample
		if err := json.Unmarshal(scanner.Bytes(), &sample); err != nil {
			return rec, fmt.Errorf("could not unmarshal sample: %w", err)
		}
		rec.Samples = append(rec.Samples, sample)
	}
	if err := scanner.Err(); err != nil {
		return rec, fmt.Errorf("error while scanning file: %w", err)
	}
	return rec, nil
}

// ReadDir loads every record file in dir.
func ReadDir(dir string) ([]engine.GameRecord, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.jsonl.gz"))
	if err != nil {
		return nil, err
	}
	records := make([]engine.GameRecord, 0, len(paths))
	for _, p := range paths {
		rec, err := ReadFile(p)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
