package searcher

import (
	"gonum.org/v1/gonum/floats"
)

// policy returns the root's child visit counts normalized to sum to one.
// It is all zeros when the root was never expanded.
func (t *tree) policy() []float64 {
	visits, _ := t.childStats(0)
	if sum := floats.Sum(visits); sum > 0 {
		floats.Scale(1/sum, visits)
	}
	return visits
}
