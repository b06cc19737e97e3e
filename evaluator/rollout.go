package evaluator

import (
	"context"
	"sync/atomic"

	"golang.org/x/exp/rand"

	"jungle/game"
	"jungle/searcher"
)

// Rollout values a position by playing random legal moves from it. A rollout
// that has not finished after Cutoff plies is scored by Evaluate. Priors are
// uniform, so Rollout turns the PUCT search into plain random-playout MCTS.
type Rollout struct {
	Size     int
	Cutoff   int
	Evaluate game.Evaluate

	seed  uint64
	calls atomic.Uint64
}

var _ searcher.Evaluator = (*Rollout)(nil)

// NewRollout returns a rollout evaluator. A nil evaluate scores cut-off
// rollouts by material.
func NewRollout(cutoff int, evaluate game.Evaluate, seed uint64) *Rollout {
	if evaluate == nil {
		evaluate = game.EvaluateMaterial
	}
	return &Rollout{Size: game.MaxAction, Cutoff: cutoff, Evaluate: evaluate, seed: seed}
}

// Infer is safe for concurrent use; each call draws its own random stream.
func (r *Rollout) Infer(ctx context.Context, enc game.Encoding) ([]float32, float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	board, err := game.NewJungleFromEncoding(enc)
	if err != nil {
		return nil, 0, err
	}
	rng := rand.New(rand.NewSource(r.seed + r.calls.Add(1)))
	return uniformPriors(r.Size), r.playout(board, rng), nil
}

func (r *Rollout) playout(board *game.Jungle, rng *rand.Rand) float64 {
	for ply := 0; ply < r.Cutoff; ply++ {
		if winner, over := board.Winner(); over {
			return winner.Value()
		}
		actions := board.LegalActions()
		if len(actions) == 0 {
			return 0
		}
		board.Apply(actions[rng.Intn(len(actions))])
	}
	if winner, over := board.Winner(); over {
		return winner.Value()
	}
	return r.Evaluate(board)
}
