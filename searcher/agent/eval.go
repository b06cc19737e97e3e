package agent

import (
	"context"

	"jungle/game"
	"jungle/searcher"
)

type evaluationAgent struct {
	mcts      *searcher.MCTS
	evaluator searcher.Evaluator
}

// NewEvaluationAgent returns a new agent for actual game play during evaluation.
func NewEvaluationAgent(mcts *searcher.MCTS, evaluator searcher.Evaluator) Agent {
	return evaluationAgent{mcts: mcts, evaluator: evaluator}
}

func (a evaluationAgent) FindMove(ctx context.Context, board game.Board, _ int) (game.Action, []float64, searcher.MoveMetrics, error) {
	return search(ctx, a.mcts, a.evaluator, board)
}
