package agent

import (
	"context"
	"math"

	"golang.org/x/exp/rand"

	"jungle/game"
	"jungle/searcher"
)

type trainingAgent struct {
	mcts             *searcher.MCTS
	evaluator        searcher.Evaluator
	temperatureMoves int
	temperature      float64
	rng              *rand.Rand
}

// NewTrainingAgent returns a new agent for self-play during training. For the
// first temperatureMoves plies it samples moves from the visit policy
// sharpened by temperature; afterwards it plays the most visited move.
func NewTrainingAgent(mcts *searcher.MCTS, evaluator searcher.Evaluator, temperatureMoves int, temperature float64, seed uint64) Agent {
	if temperature <= 0 {
		temperature = 1.0
	}
	return &trainingAgent{
		mcts:             mcts,
		evaluator:        evaluator,
		temperatureMoves: temperatureMoves,
		temperature:      temperature,
		rng:              rand.New(rand.NewSource(seed)),
	}
}

func (a *trainingAgent) FindMove(ctx context.Context, board game.Board, ply int) (game.Action, []float64, searcher.MoveMetrics, error) {
	best, policy, metric, err := search(ctx, a.mcts, a.evaluator, board)
	if err != nil {
		return 0, nil, metric, err
	}
	if ply >= a.temperatureMoves {
		return best, policy, metric, nil
	}
	adjusted := adjustTemperature(policy, a.temperature)
	return sample(adjusted, a.rng.Float64(), best), policy, metric, nil
}

func adjustTemperature(policy []float64, temperature float64) []float64 {
	// Compute temperature-adjusted move probabilities
	exponent := 1.0 / temperature
	sum := 0.0
	adjusted := make([]float64, len(policy))
	for action, visit := range policy {
		if visit == 0 {
			continue
		}
		prob := math.Pow(visit, exponent)
		sum += prob
		adjusted[action] = prob
	}
	if sum == 0 {
		return adjusted
	}
	// Normalize
	for action := range adjusted {
		adjusted[action] /= sum
	}
	return adjusted
}

// sample picks the action whose cumulative probability first exceeds u.
// fallback is used when the policy is empty.
func sample(policy []float64, u float64, fallback game.Action) game.Action {
	cumulative := 0.0
	last := fallback
	for action, prob := range policy {
		if prob == 0 {
			continue
		}
		last = game.Action(action)
		cumulative += prob
		if u < cumulative {
			return last
		}
	}
	return last // Fallback in case of rounding errors
}
