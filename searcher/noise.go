package searcher

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distmv"
)

// dirichlet mixes Dir(alpha) noise into the legal priors of a node.
type dirichlet struct {
	alpha   float64
	epsilon float64
	src     rand.Source
}

func (d dirichlet) apply(n *node) {
	if len(n.legal) == 0 || d.epsilon == 0 {
		return
	}
	alpha := make([]float64, len(n.legal))
	for i := range alpha {
		alpha[i] = d.alpha
	}
	sample := distmv.NewDirichlet(alpha, d.src).Rand(nil)

	legal := make([]float64, len(n.legal))
	for i, a := range n.legal {
		legal[i] = n.priors[a]
	}
	floats.Scale(1-d.epsilon, legal)
	floats.AddScaled(legal, d.epsilon, sample)
	for i, a := range n.legal {
		n.priors[a] = legal[i]
	}
}
