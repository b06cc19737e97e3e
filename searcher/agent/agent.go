package agent

import (
	"context"

	"jungle/game"
	"jungle/searcher"
)

type Agent interface {
	// FindMove returns the chosen action, the search's visit policy and performance metrics (if collected)
	FindMove(ctx context.Context, board game.Board, ply int) (game.Action, []float64, searcher.MoveMetrics, error)
}

// search runs one search with the agent's budget.
func search(ctx context.Context, mcts *searcher.MCTS, evaluator searcher.Evaluator, board game.Board) (game.Action, []float64, searcher.MoveMetrics, error) {
	best, policy, err := mcts.Search(ctx, board, mcts.Simulations(), evaluator)
	if err != nil {
		return 0, nil, searcher.MoveMetrics{}, err
	}
	return best, policy, mcts.Metrics(), nil
}
