package searcher

import (
	"context"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"jungle/game"
)

// mockBoard is a tiny game tree. Red picks k in [0, 4); Black then has k+1
// replies, the first k of which lose for Black at once. The last reply ends
// in a quiet position with no moves and no winner.
type mockBoard struct {
	path    []game.Action
	applies int
	winner  *game.Side // forced winner, for terminal roots
}

func (m *mockBoard) ActionSpace() int {
	return 4
}

func (m *mockBoard) LegalActions() []game.Action {
	if m.winner != nil {
		return nil
	}
	switch len(m.path) {
	case 0:
		return []game.Action{0, 1, 2, 3}
	case 1:
		replies := make([]game.Action, 0, 4)
		for j := game.Action(0); j <= m.path[0]; j++ {
			replies = append(replies, j)
		}
		return replies
	}
	return nil
}

func (m *mockBoard) Apply(a game.Action) {
	legal := false
	for _, l := range m.LegalActions() {
		legal = legal || l == a
	}
	if !legal {
		panic("illegal mock action")
	}
	m.path = append(m.path, a)
	m.applies++
}

func (m *mockBoard) Undo() {
	m.path = m.path[:len(m.path)-1]
}

func (m *mockBoard) UndoDepth() int {
	return len(m.path)
}

func (m *mockBoard) Winner() (game.Side, bool) {
	if m.winner != nil {
		return *m.winner, true
	}
	if len(m.path) == 2 && m.path[1] < m.path[0] {
		return game.Red, true
	}
	return game.Red, false
}

func (m *mockBoard) SideToMove() game.Side {
	return game.Side(len(m.path) % 2)
}

func (m *mockBoard) Encode() game.Encoding {
	data := []float32{float32(len(m.path))}
	return game.Encoding{Data: data, Shape: []int{1}, Layout: 1}
}

func (m *mockBoard) DecodeMove(a game.Action) string {
	return string(rune('a' + int(a)))
}

func (m *mockBoard) Clone() game.Board {
	c := *m
	c.path = append([]game.Action(nil), m.path...)
	return &c
}

// uniform returns equal priors and a constant value, counting its calls.
type uniform struct {
	size  int
	value float64
	calls atomic.Int64
}

func (u *uniform) Infer(_ context.Context, _ game.Encoding) ([]float32, float64, error) {
	u.calls.Add(1)
	priors := make([]float32, u.size)
	for i := range priors {
		priors[i] = 1 / float32(u.size)
	}
	return priors, u.value, nil
}

func TestTreeExpand(t *testing.T) {
	t.Run("masks illegal priors", func(t *testing.T) {
		tr := newTree(game.Red, 4)
		tr.expand(0, []game.Action{1, 3}, []float32{0.4, 0.3, 0.2, 0.1})

		root := tr.nodes[0]
		require.True(t, root.expanded, "Node with legal actions should expand")
		require.Equal(t, []float64{0, float64(float32(0.3)), 0, float64(float32(0.1))}, root.priors,
			"Only legal priors should be kept")
	})

	t.Run("no legal actions stays unexpanded", func(t *testing.T) {
		tr := newTree(game.Red, 4)
		tr.expand(0, nil, []float32{0.25, 0.25, 0.25, 0.25})
		require.False(t, tr.nodes[0].expanded, "Terminal node should not expand")
		require.Nil(t, tr.nodes[0].priors)
	})

	t.Run("noise touches only legal priors", func(t *testing.T) {
		m := NewMCTS(WithSeed(7))
		tr := newTree(game.Red, 4)
		tr.expand(0, []game.Action{0, 2}, []float32{0.5, 0.5, 0.5, 0.5})
		dirichlet{alpha: m.alpha, epsilon: m.epsilon, src: m.src}.apply(&tr.nodes[0])

		priors := tr.nodes[0].priors
		require.Zero(t, priors[1], "Illegal prior should stay zero")
		require.Zero(t, priors[3], "Illegal prior should stay zero")
		require.InDelta(t, 0.75*1.0+0.25, priors[0]+priors[2], 1e-9,
			"Noise should mix (1-eps)*p with eps*Dir(alpha)")
	})
}

func TestTreeBackup(t *testing.T) {
	t.Run("signs values by the side that moved", func(t *testing.T) {
		tr := newTree(game.Red, 4)
		child := tr.child(0, 2, game.Black)
		grandChild := tr.child(child, 1, game.Red)

		undos := 0
		tr.backup(grandChild, 1, func() { undos++ })

		require.Equal(t, 2, undos, "Each non-root node should undo its move")
		require.Equal(t, 1.0, tr.nodes[0].visits)
		require.Equal(t, 1.0, tr.nodes[child].visits)
		require.Equal(t, 1.0, tr.nodes[child].total, "Red moved into the child, a Red win is good for it")
		require.Equal(t, -1.0, tr.nodes[grandChild].total, "Black moved into the grandchild")
	})

	t.Run("child q stays finite", func(t *testing.T) {
		tr := newTree(game.Red, 4)
		tr.expand(0, []game.Action{0, 1, 2, 3}, []float32{0.25, 0.25, 0.25, 0.25})
		for i := 0; i < 10; i++ {
			c := tr.child(0, game.Action(i%2), game.Black)
			tr.backup(c, float64(i%3-1), func() {})
		}
		for _, q := range tr.childQ(0) {
			require.False(t, math.IsNaN(q) || math.IsInf(q, 0), "Q should be finite")
		}
	})
}

func TestBestChild(t *testing.T) {
	t.Run("ties pick the first legal action", func(t *testing.T) {
		tr := newTree(game.Red, 4)
		tr.expand(0, []game.Action{1, 2, 3}, []float32{0.25, 0.25, 0.25, 0.25})
		tr.nodes[0].visits = 1
		require.Equal(t, game.Action(1), tr.bestChild(0, CPuct))
	})

	t.Run("prefers higher prior on unvisited children", func(t *testing.T) {
		tr := newTree(game.Red, 4)
		tr.expand(0, []game.Action{0, 1, 2, 3}, []float32{0.1, 0.2, 0.6, 0.1})
		tr.nodes[0].visits = 4
		require.Equal(t, game.Action(2), tr.bestChild(0, CPuct))
	})

	t.Run("u term matches the formula", func(t *testing.T) {
		tr := newTree(game.Red, 4)
		tr.expand(0, []game.Action{0, 1}, []float32{0.5, 0.5, 0, 0})
		tr.nodes[0].visits = 9
		c := tr.child(0, 0, game.Black)
		tr.nodes[c].visits = 2

		u := tr.childU(0, 2.0)
		require.InDelta(t, 2.0*3*0.5/3, u[0], 1e-9, "Should compute c*sqrt(N)*|p|/(1+n)")
		require.InDelta(t, 2.0*3*0.5/1, u[1], 1e-9)
		require.Zero(t, u[2])
	})
}
