package evaluator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"jungle/game"
	"jungle/searcher"
)

func TestUniform(t *testing.T) {
	priors, value, err := Uniform{Size: 4, Value: 0.5}.Infer(context.Background(), game.Encoding{})
	require.NoError(t, err)
	require.Equal(t, []float32{0.25, 0.25, 0.25, 0.25}, priors)
	require.Equal(t, 0.5, value)
}

func TestMaterial(t *testing.T) {
	t.Run("balanced opening", func(t *testing.T) {
		priors, value, err := NewMaterial().Infer(context.Background(), game.NewJungle().Encode())
		require.NoError(t, err)
		require.Len(t, priors, game.MaxAction)
		require.Zero(t, value, "Opening should be balanced")
	})

	t.Run("material edge", func(t *testing.T) {
		board, err := game.NewJungleFromFEN("7/7/7/7/7/7/2Cw3/7/E6 b")
		require.NoError(t, err)
		_, value, err := NewMaterial().Infer(context.Background(), board.Encode())
		require.NoError(t, err)
		require.Greater(t, value, 0.0, "Red is ahead regardless of the side to move")
	})

	t.Run("short encoding", func(t *testing.T) {
		_, _, err := NewMaterial().Infer(context.Background(), game.Encoding{Data: []float32{1}, Layout: 4})
		require.ErrorIs(t, err, ErrShortEncoding)
	})
}

func TestSoftmax(t *testing.T) {
	t.Run("normalizes logits", func(t *testing.T) {
		got := softmax([]float32{0, 0, 2, -1})
		var sum float32
		for _, p := range got {
			sum += p
		}
		require.InDelta(t, 1.0, sum, 1e-5)
		require.Greater(t, got[2], got[0])
	})

	t.Run("keeps distributions", func(t *testing.T) {
		require.Equal(t, []float32{0.5, 0.25, 0.25}, softmax([]float32{0.5, 0.25, 0.25}))
	})
}

func TestRemoteRoundTrip(t *testing.T) {
	srv := httptest.NewServer(NewServer(Uniform{Size: game.MaxAction, Value: -0.25}))
	defer srv.Close()

	remote := NewRemote(srv.URL)
	priors, value, err := remote.Infer(context.Background(), game.NewJungle().Encode())
	require.NoError(t, err)
	require.Len(t, priors, game.MaxAction)
	require.Equal(t, -0.25, value)

	t.Run("drives a search", func(t *testing.T) {
		board := game.NewJungle()
		best, _, err := searcher.NewMCTS().Search(context.Background(), board, 20, remote)
		require.NoError(t, err)
		require.Contains(t, board.LegalActions(), best)
	})
}

func TestServerErrors(t *testing.T) {
	failing := searcher.EvaluatorFunc(func(ctx context.Context, enc game.Encoding) ([]float32, float64, error) {
		return nil, 0, context.DeadlineExceeded
	})
	srv := httptest.NewServer(NewServer(failing))
	defer srv.Close()

	t.Run("bad body", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/infer", "application/json", strings.NewReader("{"))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("evaluator failure", func(t *testing.T) {
		_, _, err := NewRemote(srv.URL).Infer(context.Background(), game.NewJungle().Encode())
		require.Error(t, err)
		require.Contains(t, err.Error(), "500")
	})

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestNew(t *testing.T) {
	e, err := New("material", "", 0, 1)
	require.NoError(t, err)
	require.IsType(t, Material{}, e)

	e, err = New("rollout", "", 30, 1)
	require.NoError(t, err)
	require.IsType(t, &Rollout{}, e)
	require.Equal(t, 30, e.(*Rollout).Cutoff)

	_, err = New("oracle", "", 0, 1)
	require.Error(t, err)
}

func TestRollout(t *testing.T) {
	ctx := context.Background()

	t.Run("finished game", func(t *testing.T) {
		board, err := game.NewJungleFromFEN("3D3/7/7/7/7/7/7/7/d6 b")
		require.NoError(t, err)
		priors, value, err := NewRollout(50, nil, 1).Infer(ctx, board.Encode())
		require.NoError(t, err)
		require.Len(t, priors, game.MaxAction)
		require.Equal(t, 1.0, value, "Red already occupies the black den")
	})

	t.Run("zero cutoff scores the position", func(t *testing.T) {
		board, err := game.NewJungleFromFEN("7/7/7/7/7/7/2Cw3/7/E6 b")
		require.NoError(t, err)
		calls := 0
		eval := func(j *game.Jungle) float64 {
			calls++
			require.Equal(t, board.FEN(), j.FEN(), "cut-off position should be the input")
			return game.EvaluateMaterial(j)
		}
		_, value, err := NewRollout(0, eval, 1).Infer(ctx, board.Encode())
		require.NoError(t, err)
		require.Equal(t, 1, calls)
		require.Equal(t, game.EvaluateMaterial(board), value)
	})

	t.Run("seeded playouts repeat", func(t *testing.T) {
		enc := game.NewJungle().Encode()
		a, b := NewRollout(60, nil, 9), NewRollout(60, nil, 9)
		for i := 0; i < 5; i++ {
			_, va, err := a.Infer(ctx, enc)
			require.NoError(t, err)
			_, vb, err := b.Infer(ctx, enc)
			require.NoError(t, err)
			require.Equal(t, va, vb, "call %d should replay the same moves", i)
			require.GreaterOrEqual(t, va, -1.0)
			require.LessOrEqual(t, va, 1.0)
		}
	})

	t.Run("bad encoding", func(t *testing.T) {
		_, _, err := NewRollout(10, nil, 1).Infer(ctx, game.Encoding{Data: []float32{1}})
		require.Error(t, err)
	})

	t.Run("canceled context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, _, err := NewRollout(10, nil, 1).Infer(canceled, game.NewJungle().Encode())
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("drives a search", func(t *testing.T) {
		board := game.NewJungle()
		before := board.FEN()
		best, policy, err := searcher.NewMCTS(searcher.WithSeed(2)).Search(ctx, board, 40, NewRollout(20, nil, 2))
		require.NoError(t, err)
		require.Contains(t, board.LegalActions(), best)
		require.Len(t, policy, game.MaxAction)
		require.Equal(t, before, board.FEN(), "rollouts must not touch the searched board")
	})
}
