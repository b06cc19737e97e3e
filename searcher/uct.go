package searcher

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"jungle/game"
)

// childQ is total/(visits+1) per action.
func (t *tree) childQ(idx int) []float64 {
	visits, totals := t.childStats(idx)
	floats.AddConst(1, visits)
	return floats.DivTo(make([]float64, t.size), totals, visits)
}

// childU is cPuct*sqrt(N)*|prior|/(1+n) per action, N being the node's own visits.
func (t *tree) childU(idx int, cPuct float64) []float64 {
	n := &t.nodes[idx]
	u := make([]float64, t.size)
	if n.priors == nil {
		return u
	}
	visits, _ := t.childStats(idx)
	floats.AddConst(1, visits)
	for i, p := range n.priors {
		u[i] = math.Abs(p)
	}
	floats.Div(u, visits)
	floats.Scale(cPuct*math.Sqrt(n.visits), u)
	return u
}

// bestChild is the first action maximizing Q+U among the legal actions, or
// over the whole action space when none are known.
func (t *tree) bestChild(idx int, cPuct float64) game.Action {
	score := t.childQ(idx)
	floats.Add(score, t.childU(idx, cPuct))
	return argmax(score, t.nodes[idx].legal)
}

// argmax returns the first maximal entry among the given actions, or of the
// whole vector when actions is empty.
func argmax(v []float64, actions []game.Action) game.Action {
	if len(actions) == 0 {
		return game.Action(floats.MaxIdx(v))
	}
	best := actions[0]
	for _, a := range actions[1:] {
		if v[a] > v[best] {
			best = a
		}
	}
	return best
}
