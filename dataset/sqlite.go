package dataset

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	_ "modernc.org/sqlite"

	"jungle/engine"
	"jungle/game"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	iteration   INTEGER NOT NULL,
	id          INTEGER NOT NULL,
	outcome     TEXT    NOT NULL,
	value       REAL    NOT NULL,
	plies       INTEGER NOT NULL,
	moves       TEXT    NOT NULL,
	started_at  TEXT    NOT NULL,
	duration_ms INTEGER NOT NULL,
	PRIMARY KEY (iteration, id)
);
CREATE TABLE IF NOT EXISTS samples (
	iteration INTEGER NOT NULL,
	game_id   INTEGER NOT NULL,
	ply       INTEGER NOT NULL,
	side      INTEGER NOT NULL,
	encoding  BLOB    NOT NULL,
	shape     TEXT    NOT NULL,
	layout    INTEGER NOT NULL,
	policy    BLOB    NOT NULL,
	value     REAL    NOT NULL,
	PRIMARY KEY (iteration, game_id, ply)
);`

// SQLiteSink stores records in a SQLite database, one transaction per game.
type SQLiteSink struct {
	db        *sql.DB
	iteration int
}

func OpenSQLite(path string, iteration int) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteSink{db: db, iteration: iteration}, nil
}

func (s *SQLiteSink) Write(ctx context.Context, rec engine.GameRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO games (iteration, id, outcome, value, plies, moves, started_at, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.iteration, rec.ID, rec.Outcome.String(), rec.Value, rec.Plies(), strings.Join(rec.Moves, " "),
		rec.StartTime.UTC().Format("2006-01-02T15:04:05.000Z07:00"), rec.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO samples (iteration, game_id, ply, side, encoding, shape, layout, policy, value) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, sample := range rec.Samples {
		_, err := stmt.ExecContext(ctx, s.iteration, rec.ID, sample.Ply, int(sample.Side),
			packFloat32(sample.Encoding.Data), joinInts(sample.Encoding.Shape), sample.Encoding.Layout,
			packFloat64(sample.Policy), sample.Value)
		if err != nil {
			return fmt.Errorf("insert sample %d: %w", sample.Ply, err)
		}
	}
	return tx.Commit()
}

// Samples loads the samples of one game in ply order.
func (s *SQLiteSink) Samples(ctx context.Context, gameID int) ([]engine.Sample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ply, side, encoding, shape, layout, policy, value FROM samples WHERE iteration = ? AND game_id = ? ORDER BY ply`,
		s.iteration, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []engine.Sample
	for rows.Next() {
		var (
			sample        engine.Sample
			side          int
			encoding, pol []byte
			shape         string
		)
		if err := rows.Scan(&sample.Ply, &side, &encoding, &shape, &sample.Encoding.Layout, &pol, &sample.Value); err != nil {
			return nil, err
		}
		sample.Side = game.Side(side)
		sample.Encoding.Data = unpackFloat32(encoding)
		sample.Encoding.Shape, err = splitInts(shape)
		if err != nil {
			return nil, err
		}
		sample.Policy = unpackFloat64(pol)
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

// CountGames returns the number of stored games per outcome.
func (s *SQLiteSink) CountGames(ctx context.Context) (map[engine.Outcome]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT outcome, COUNT(*) FROM games WHERE iteration = ? GROUP BY outcome`, s.iteration)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[engine.Outcome]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		var o engine.Outcome
		if err := o.UnmarshalText([]byte(name)); err != nil {
			return nil, err
		}
		counts[o] = n
	}
	return counts, rows.Err()
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func packFloat32(v []float32) []byte {
	buf := make([]byte, 0, 4*len(v))
	for _, x := range v {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(x))
	}
	return buf
}

func unpackFloat32(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v
}

func packFloat64(v []float64) []byte {
	buf := make([]byte, 0, 8*len(v))
	for _, x := range v {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(x))
	}
	return buf
}

func unpackFloat64(b []byte) []float64 {
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8*i:]))
	}
	return v
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ",")
}

func splitInts(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	v := make([]int, len(parts))
	for i, p := range parts {
		if _, err := fmt.Sscan(p, &v[i]); err != nil {
			return nil, fmt.Errorf("bad shape %q: %w", s, err)
		}
	}
	return v, nil
}
