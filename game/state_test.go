package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustFEN(t *testing.T, fen string) *Jungle {
	t.Helper()
	j, err := NewJungleFromFEN(fen)
	require.NoError(t, err, "FEN should parse")
	return j
}

func TestStartPosition(t *testing.T) {
	t.Run("FEN round trip", func(t *testing.T) {
		j := NewJungle()
		require.Equal(t, StartFEN, j.FEN(), "FEN should round trip")
		require.Equal(t, Red, j.SideToMove(), "Red should move first")
		require.Equal(t, 8, j.Count(Red))
		require.Equal(t, 8, j.Count(Black))
		require.Equal(t, MaxAction, j.ActionSpace())
		require.Equal(t, 252, j.ActionSpace())
	})

	t.Run("legal actions", func(t *testing.T) {
		j := NewJungle()
		require.Len(t, j.LegalActions(), 24, "Opening position should have 24 moves")
		_, over := j.Winner()
		require.False(t, over)
	})

	t.Run("bad FEN", func(t *testing.T) {
		for _, fen := range []string{
			"",
			"7/7/7 w",
			"l5t/1d3c1/r1p1w1e/7/7/7/E1W1P1R/1C3D1/T5L x",
			"l5t/1d3c1/r1p1w1e/7/7/7/E1W1P1R/1C3D1/T5Q w",
			"l6t/1d3c1/r1p1w1e/7/7/7/E1W1P1R/1C3D1/T5L w",
		} {
			_, err := NewJungleFromFEN(fen)
			require.Error(t, err, "FEN %q should be rejected", fen)
		}
	})
}

func TestApplyUndo(t *testing.T) {
	t.Run("restores position", func(t *testing.T) {
		j := NewJungle()
		fen, key := j.FEN(), j.Key()

		plies := 0
		for ; plies < 40; plies++ {
			actions := j.LegalActions()
			if len(actions) == 0 {
				break
			}
			j.Apply(actions[plies%len(actions)])
		}
		require.Equal(t, plies, j.UndoDepth())
		require.Equal(t, j.computeKey(), j.Key(), "Incremental key should match a full recompute")

		for j.UndoDepth() > 0 {
			j.Undo()
		}
		require.Equal(t, fen, j.FEN(), "Undo should restore the FEN")
		require.Equal(t, key, j.Key(), "Undo should restore the key")
		require.Equal(t, 8, j.Count(Red))
		require.Equal(t, 8, j.Count(Black))
	})

	t.Run("illegal action panics", func(t *testing.T) {
		j := NewJungle()
		require.Panics(t, func() { j.Apply(0) }, "Moving an opponent piece should panic")
		require.Panics(t, func() { j.Apply(-1) })
		require.Panics(t, func() { j.Apply(Action(MaxAction)) })
	})

	t.Run("rule-breaking moves panic", func(t *testing.T) {
		for _, tc := range []struct {
			name     string
			fen      string
			from, to Square
		}{
			{"wolf into water", StartFEN, NewSquare(6, 2), NewSquare(5, 2)},
			{"dog into own den", "7/7/7/7/7/7/7/3D3/d6 w", NewSquare(7, 3), RedDen},
			{"cat onto a stronger piece", "7/7/7/7/7/7/2Cw3/7/7 w", NewSquare(6, 2), NewSquare(6, 3)},
			{"elephant onto the rat", "7/7/Re5/7/7/7/7/7/7 b", NewSquare(2, 1), NewSquare(2, 0)},
		} {
			j := mustFEN(t, tc.fen)
			a := ActionOf(tc.from, tc.to)
			require.NotContains(t, j.LegalActions(), a, "%s should not be legal", tc.name)
			fen, key := j.FEN(), j.Key()
			require.Panics(t, func() { j.Apply(a) }, "%s should panic", tc.name)
			require.Equal(t, fen, j.FEN(), "%s should leave the board untouched", tc.name)
			require.Equal(t, key, j.Key())
			require.Zero(t, j.UndoDepth())
		}
	})

	t.Run("undo without apply panics", func(t *testing.T) {
		require.Panics(t, func() { NewJungle().Undo() })
	})

	t.Run("clone is independent", func(t *testing.T) {
		j := NewJungle()
		c := j.Clone().(*Jungle)
		c.Apply(c.LegalActions()[0])
		require.Equal(t, StartFEN, j.FEN(), "Original should not change")
		require.Equal(t, 0, j.UndoDepth())
		require.Equal(t, 1, c.UndoDepth())
	})
}

func TestJumps(t *testing.T) {
	up := func(s Square) Action { return Action(2*NumSquares + int(s)) }
	from := NewSquare(6, 1)

	t.Run("tiger jumps the river", func(t *testing.T) {
		j := mustFEN(t, "e6/7/7/7/7/7/1T5/7/7 w")
		require.Contains(t, j.LegalActions(), up(from))
		require.Equal(t, "b3-b7", j.DecodeMove(up(from)))

		j.Apply(up(from))
		require.Equal(t, NewPiece(Red, Tiger), j.PieceAt(NewSquare(2, 1)))
		require.True(t, j.PieceAt(from).IsEmpty())
	})

	t.Run("rat in water blocks the jump", func(t *testing.T) {
		j := mustFEN(t, "e6/7/7/7/1r5/7/1T5/7/7 w")
		require.NotContains(t, j.LegalActions(), up(from))
	})

	t.Run("horizontal jump from the middle column", func(t *testing.T) {
		j := mustFEN(t, "e6/7/7/7/3L3/7/7/7/7 w")
		mid := NewSquare(4, 3)
		left := Action(3*NumSquares + int(mid))
		right := Action(1*NumSquares + int(mid))
		require.Subset(t, j.LegalActions(), []Action{left, right})
		gotFrom, gotTo := j.MoveOf(left)
		require.Equal(t, mid, gotFrom)
		require.Equal(t, NewSquare(4, 0), gotTo)
		_, gotTo = j.MoveOf(right)
		require.Equal(t, NewSquare(4, 6), gotTo)
	})

	t.Run("other pieces stay out of the water", func(t *testing.T) {
		j := mustFEN(t, "e6/7/7/7/7/7/1D5/7/7 w")
		require.NotContains(t, j.LegalActions(), up(from))
	})
}

func TestCaptures(t *testing.T) {
	t.Run("rat leaving the water cannot take the elephant", func(t *testing.T) {
		j := mustFEN(t, "7/7/1e5/1R5/7/7/7/7/7 w")
		require.NotContains(t, j.LegalActions(), ActionOf(NewSquare(3, 1), NewSquare(2, 1)))
	})

	t.Run("rat on land takes the elephant", func(t *testing.T) {
		j := mustFEN(t, "7/7/Re5/7/7/7/7/7/7 w")
		a := ActionOf(NewSquare(2, 0), NewSquare(2, 1))
		require.Contains(t, j.LegalActions(), a)
		j.Apply(a)
		require.Equal(t, 0, j.Count(Black))
		winner, over := j.Winner()
		require.True(t, over)
		require.Equal(t, Red, winner, "Side with pieces left should win")
		require.Empty(t, j.LegalActions(), "Finished game should have no moves")

		j.Undo()
		require.Equal(t, 1, j.Count(Black), "Undo should restore the captured piece")
		_, over = j.Winner()
		require.False(t, over)
	})

	t.Run("elephant cannot take the rat", func(t *testing.T) {
		j := mustFEN(t, "7/7/Re5/7/7/7/7/7/7 b")
		require.NotContains(t, j.LegalActions(), ActionOf(NewSquare(2, 1), NewSquare(2, 0)))
	})

	t.Run("weaker piece cannot take a stronger one", func(t *testing.T) {
		j := mustFEN(t, "7/7/7/7/7/7/2Cw3/7/7 w")
		require.NotContains(t, j.LegalActions(), ActionOf(NewSquare(6, 2), NewSquare(6, 3)))
	})

	t.Run("trap weakens the defender", func(t *testing.T) {
		j := mustFEN(t, "7/7/7/7/7/7/7/2Cw3/7 w")
		require.Contains(t, j.LegalActions(), ActionOf(NewSquare(7, 2), NewSquare(7, 3)))
	})

	t.Run("own pieces are not captured", func(t *testing.T) {
		j := mustFEN(t, "e6/7/7/7/7/7/EW5/7/7 w")
		require.NotContains(t, j.LegalActions(), ActionOf(NewSquare(6, 0), NewSquare(6, 1)))
	})
}

func TestDens(t *testing.T) {
	t.Run("entering the enemy den wins", func(t *testing.T) {
		j := mustFEN(t, "7/3D3/7/7/7/7/7/7/d6 w")
		a := ActionOf(NewSquare(1, 3), BlackDen)
		require.Contains(t, j.LegalActions(), a)
		j.Apply(a)
		winner, over := j.Winner()
		require.True(t, over)
		require.Equal(t, Red, winner)
		j.Undo()
		_, over = j.Winner()
		require.False(t, over, "Undo should clear the den win")
	})

	t.Run("own den is forbidden", func(t *testing.T) {
		j := mustFEN(t, "7/7/7/7/7/7/7/3D3/d6 w")
		require.NotContains(t, j.LegalActions(), ActionOf(NewSquare(7, 3), RedDen))
	})
}

func TestEncode(t *testing.T) {
	sum := func(data []float32) float32 {
		var s float32
		for _, v := range data {
			s += v
		}
		return s
	}

	j := NewJungle()
	enc := j.Encode()
	require.Equal(t, []int{NumPlanes, Rows, Cols}, enc.Shape)
	require.Len(t, enc.Data, EncodingSize)
	require.Len(t, enc.LayoutData(), LayoutSize)
	require.Equal(t, float32(16), sum(enc.Data), "One value per piece with Red to move")
	require.Equal(t, float32(1), enc.Data[NewPiece(Red, Elephant).Index()*NumSquares+int(NewSquare(6, 0))])
	require.Equal(t, float32(1), enc.Data[NewPiece(Black, Lion).Index()*NumSquares+int(NewSquare(0, 0))])

	j.Apply(j.LegalActions()[0])
	enc = j.Encode()
	require.Equal(t, float32(16+NumSquares), sum(enc.Data), "Side plane should be set for Black")
	require.Equal(t, float32(16), sum(enc.LayoutData()))
}

func TestNewJungleFromEncoding(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		j := NewJungle()
		for i := 0; i < 7; i++ {
			j.Apply(j.LegalActions()[i])
		}
		got, err := NewJungleFromEncoding(j.Encode())
		require.NoError(t, err)
		require.Equal(t, j.FEN(), got.FEN())
		require.Equal(t, j.Key(), got.Key())
		require.Equal(t, j.Count(Red), got.Count(Red))
		require.Zero(t, got.UndoDepth())
	})

	t.Run("winner survives", func(t *testing.T) {
		j := mustFEN(t, "3D3/7/7/7/7/7/7/7/d6 b")
		got, err := NewJungleFromEncoding(j.Encode())
		require.NoError(t, err)
		winner, over := got.Winner()
		require.True(t, over, "Den occupation should be read back")
		require.Equal(t, Red, winner)
	})

	t.Run("bad encodings", func(t *testing.T) {
		_, err := NewJungleFromEncoding(Encoding{Data: make([]float32, 3)})
		require.Error(t, err)

		enc := NewJungle().Encode()
		enc.Data[NewPiece(Red, Cat).Index()*NumSquares+int(NewSquare(6, 0))] = 1
		_, err = NewJungleFromEncoding(enc)
		require.Error(t, err, "Two pieces on one square should be rejected")
	})
}

func TestEvaluateMaterial(t *testing.T) {
	j := NewJungle()
	require.Equal(t, 0.0, EvaluateMaterial(j), "Opening should be balanced")
	require.Equal(t, 0.0, MaterialFromLayout(j.Encode().LayoutData()))

	j = mustFEN(t, "7/7/7/7/7/7/2Cw3/7/E6 w")
	require.Greater(t, EvaluateMaterial(j), 0.0, "Red has more material")
	require.InDelta(t, EvaluateMaterial(j), MaterialFromLayout(j.Encode().LayoutData()), 1e-9)

	j = mustFEN(t, "7/3D3/7/7/7/7/7/7/d6 w")
	j.Apply(ActionOf(NewSquare(1, 3), BlackDen))
	require.Equal(t, 1.0, EvaluateMaterial(j), "Won games score as decisive")
}

func TestEvaluatePosition(t *testing.T) {
	j := NewJungle()
	require.InDelta(t, 0.0, EvaluatePosition(j), 1e-9, "Opening should be symmetric")

	adv := mustFEN(t, "e6/7/7/7/7/3R3/7/7/6E w")
	back := mustFEN(t, "e6/7/7/7/7/7/7/3R3/6E w")
	require.Greater(t, EvaluatePosition(adv), EvaluatePosition(back), "An advanced rat should score higher")

	won := mustFEN(t, "3D3/7/7/7/7/7/7/7/d6 b")
	require.Equal(t, 1.0, EvaluatePosition(won))

	var eval Evaluate = EvaluatePosition
	require.InDelta(t, 0.0, eval(NewJungle()), 1e-9)
}
