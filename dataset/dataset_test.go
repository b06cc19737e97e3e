package dataset

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jungle/engine"
	"jungle/game"
)

func testRecord(id int, outcome engine.Outcome) engine.GameRecord {
	board := game.NewJungle()
	rec := engine.GameRecord{
		ID:        id,
		Outcome:   outcome,
		Value:     outcome.Value(),
		StartTime: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
	}
	for ply := 0; ply < 3; ply++ {
		policy := make([]float64, game.MaxAction)
		actions := board.LegalActions()
		policy[actions[0]] = 0.75
		policy[actions[1]] = 0.25
		value := outcome.Value()
		if ply == 0 {
			value = 0
		}
		rec.Samples = append(rec.Samples, engine.Sample{
			Ply:      ply,
			Side:     board.SideToMove(),
			Encoding: board.Encode(),
			Policy:   policy,
			Value:    value,
		})
		rec.Moves = append(rec.Moves, board.DecodeMove(actions[0]))
		board.Apply(actions[0])
	}
	return rec
}

type fakePublisher struct {
	subjects []string
	payloads [][]byte
	flushed  bool
	err      error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakePublisher) Flush() error {
	f.flushed = true
	return nil
}

func TestFileSink(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	sink, err := NewFileSink(root, 2)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "iter2"), sink.Dir())

	want := testRecord(7, engine.BlackWin)
	require.NoError(t, sink.Write(ctx, want))
	require.NoError(t, sink.Write(ctx, testRecord(8, engine.RedWin)))
	require.NoError(t, sink.Close())

	got, err := ReadFile(sink.Path(7))
	require.NoError(t, err)
	require.Equal(t, want.ID, got.ID)
	require.Equal(t, want.Outcome, got.Outcome)
	require.Equal(t, want.Moves, got.Moves)
	require.True(t, want.StartTime.Equal(got.StartTime))
	require.Equal(t, want.Samples, got.Samples, "Samples should survive the round trip")
	require.True(t, got.Consistent())

	all, err := ReadDir(sink.Dir())
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = ReadFile(filepath.Join(sink.Dir(), "missing.jsonl.gz"))
	require.Error(t, err)

	t.Run("second run keeps the first run's games", func(t *testing.T) {
		again, err := NewFileSink(root, 2)
		require.NoError(t, err)
		require.NotEqual(t, sink.Path(7), again.Path(7), "Runs should write distinct files")
		require.NoError(t, again.Write(ctx, testRecord(7, engine.RedWin)))

		all, err := ReadDir(sink.Dir())
		require.NoError(t, err)
		require.Len(t, all, 3)
		first, err := ReadFile(sink.Path(7))
		require.NoError(t, err)
		require.Equal(t, engine.BlackWin, first.Outcome, "The earlier game should be untouched")

		require.Error(t, again.Write(ctx, testRecord(7, engine.RedWin)), "Rewriting a game should fail")
	})
}

func TestSQLiteSink(t *testing.T) {
	ctx := context.Background()
	sink, err := OpenSQLite(filepath.Join(t.TempDir(), "games.db"), 1)
	require.NoError(t, err)
	defer sink.Close()

	rec := testRecord(3, engine.RedWin)
	require.NoError(t, sink.Write(ctx, rec))
	require.NoError(t, sink.Write(ctx, testRecord(4, engine.Draw)))
	require.Error(t, sink.Write(ctx, rec), "Duplicate game ids should be rejected")

	samples, err := sink.Samples(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, rec.Samples, samples)

	counts, err := sink.CountGames(ctx)
	require.NoError(t, err)
	require.Equal(t, map[engine.Outcome]int{engine.RedWin: 1, engine.Draw: 1}, counts)
}

func TestNATSSink(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	sink := NewNATSSink(pub, "jungle.games")

	require.NoError(t, sink.Write(ctx, testRecord(1, engine.RedWin)))
	require.Equal(t, []string{"jungle.games"}, pub.subjects)

	gz, err := gzip.NewReader(bytes.NewReader(pub.payloads[0]))
	require.NoError(t, err)
	var got engine.GameRecord
	require.NoError(t, json.NewDecoder(gz).Decode(&got))
	require.Equal(t, 1, got.ID)
	require.Len(t, got.Samples, 3)

	require.NoError(t, sink.Close())
	require.True(t, pub.flushed)

	pub.err = errors.New("no responders")
	require.ErrorIs(t, sink.Write(ctx, testRecord(2, engine.RedWin)), pub.err)
}

func TestFilterSink(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	sink := FilterSink{Policy: engine.DrawDiscard, Next: NewNATSSink(pub, "s")}

	for i, o := range []engine.Outcome{engine.RedWin, engine.Draw, engine.MoveLimit, engine.BlackWin} {
		require.NoError(t, sink.Write(ctx, testRecord(i, o)))
	}
	require.Len(t, pub.payloads, 2, "Draws should be discarded")

	pub = &fakePublisher{}
	sink = FilterSink{Policy: engine.DrawZero, Next: Tee{NewNATSSink(pub, "a"), NewNATSSink(pub, "b")}}
	require.NoError(t, sink.Write(ctx, testRecord(0, engine.Draw)))
	require.Equal(t, []string{"a", "b"}, pub.subjects)
	require.NoError(t, sink.Close())
}
