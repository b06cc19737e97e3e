package agent

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"jungle/game"
	"jungle/searcher"
)

var ErrNotJungle = errors.New("alpha-beta agent needs a jungle board")

// winScore outweighs any evaluation in [-1, 1]. Wins found nearer the root
// score higher.
const winScore = 1000.0

// alphaBetaAgent is a negamax baseline with iterative deepening and a
// history heuristic for move ordering. It is not safe for concurrent use.
type alphaBetaAgent struct {
	depth    int
	evaluate game.Evaluate
	history  [game.NumPieceTypes][game.NumSquares]int
	nodes    int64
}

// NewAlphaBetaAgent returns an agent searching depth plies and scoring the
// horizon with evaluate (EvaluatePosition when nil).
func NewAlphaBetaAgent(depth int, evaluate game.Evaluate) Agent {
	if depth < 1 {
		depth = 1
	}
	if evaluate == nil {
		evaluate = game.EvaluatePosition
	}
	return &alphaBetaAgent{depth: depth, evaluate: evaluate}
}

// FindMove deepens one ply at a time and checks ctx between iterations. A
// canceled search returns the best move of the last finished depth.
func (a *alphaBetaAgent) FindMove(ctx context.Context, board game.Board, _ int) (game.Action, []float64, searcher.MoveMetrics, error) {
	metrics := searcher.MoveMetrics{StartTime: time.Now()}
	j, ok := board.(*game.Jungle)
	if !ok {
		return 0, nil, metrics, fmt.Errorf("%w, got %T", ErrNotJungle, board)
	}
	actions := j.LegalActions()
	if len(actions) == 0 {
		return 0, nil, metrics, searcher.ErrNoLegalActions
	}

	a.nodes = 0
	best := actions[0]
	for depth := 1; depth <= a.depth; depth++ {
		if err := ctx.Err(); err != nil {
			if depth == 1 {
				return 0, nil, metrics, err
			}
			break
		}
		var score float64
		best, score = a.searchRoot(j, actions, depth)
		if score >= winScore-float64(depth) {
			break
		}
	}

	policy := make([]float64, j.ActionSpace())
	policy[best] = 1
	metrics.Duration = time.Since(metrics.StartTime)
	metrics.Nodes = a.nodes
	return best, policy, metrics, nil
}

func (a *alphaBetaAgent) searchRoot(j *game.Jungle, actions []game.Action, depth int) (game.Action, float64) {
	a.order(j, actions)
	alpha, beta := math.Inf(-1), math.Inf(1)
	best := actions[0]
	for _, action := range actions {
		j.Apply(action)
		score := -a.negamax(j, 1, depth, -beta, -alpha)
		j.Undo()
		if score > alpha {
			alpha, best = score, action
		}
	}
	a.reward(j, best, depth)
	return best, alpha
}

// negamax scores the position for the side to move.
func (a *alphaBetaAgent) negamax(j *game.Jungle, ply, depth int, alpha, beta float64) float64 {
	a.nodes++
	if winner, over := j.Winner(); over {
		if winner == j.SideToMove() {
			return winScore - float64(ply)
		}
		return -(winScore - float64(ply))
	}
	if ply >= depth {
		v := a.evaluate(j)
		if j.SideToMove() == game.Black {
			v = -v
		}
		return v
	}
	actions := j.LegalActions()
	if len(actions) == 0 {
		return 0
	}

	a.order(j, actions)
	best := math.Inf(-1)
	bestAction := game.Action(-1)
	for _, action := range actions {
		j.Apply(action)
		score := -a.negamax(j, ply+1, depth, -beta, -alpha)
		j.Undo()
		if score <= best {
			continue
		}
		best = score
		if score > alpha {
			alpha, bestAction = score, action
		}
		if alpha >= beta {
			break
		}
	}
	if bestAction >= 0 {
		a.reward(j, bestAction, depth-ply)
	}
	return best
}

// order sorts actions by history score, highest first.
func (a *alphaBetaAgent) order(j *game.Jungle, actions []game.Action) {
	slices.SortStableFunc(actions, func(x, y game.Action) int {
		return cmp.Compare(*a.historyOf(j, y), *a.historyOf(j, x))
	})
}

func (a *alphaBetaAgent) reward(j *game.Jungle, action game.Action, depth int) {
	*a.historyOf(j, action) += depth * depth
}

func (a *alphaBetaAgent) historyOf(j *game.Jungle, action game.Action) *int {
	from, to := j.MoveOf(action)
	return &a.history[j.PieceAt(from).Index()][to]
}
