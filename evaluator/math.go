package evaluator

import (
	"math"

	"github.com/samber/lo"
)

func exp32(x float32) float32 {
	return float32(math.Exp(float64(x)))
}

func isDistribution(v []float32) bool {
	if lo.ContainsBy(v, func(x float32) bool { return x < 0 }) {
		return false
	}
	return math.Abs(float64(lo.Sum(v))-1) < 1e-3
}
