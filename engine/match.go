package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"jungle/game"
	"jungle/searcher"
	"jungle/searcher/agent"
)

// MatchResult is one game between two agents.
type MatchResult struct {
	Outcome Outcome
	Moves   []string
}

// PlayMatch plays one game from board with red and black moving for their
// sides. Moves outside the legal set are rejected.
func PlayMatch(ctx context.Context, red, black agent.Agent, board game.Board, maxMoves int) (MatchResult, error) {
	if maxMoves <= 0 {
		maxMoves = MaxMoves
	}
	agents := [2]agent.Agent{game.Red: red, game.Black: black}
	var res MatchResult
	for ply := 0; ply < maxMoves; ply++ {
		side := board.SideToMove()
		action, _, _, err := agents[side].FindMove(ctx, board, ply)
		if errors.Is(err, searcher.ErrNoLegalActions) {
			res.Outcome = Draw
			return res, nil
		}
		if err != nil {
			return res, fmt.Errorf("%s at ply %d: %w", side, ply, err)
		}
		if !slices.Contains(board.LegalActions(), action) {
			return res, fmt.Errorf("%s at ply %d: illegal action %d", side, ply, action)
		}
		res.Moves = append(res.Moves, board.DecodeMove(action))
		board.Apply(action)
		if winner, over := board.Winner(); over {
			res.Outcome = outcomeOf(winner)
			return res, nil
		}
	}
	res.Outcome = MoveLimit
	return res, nil
}

// Tally counts results from the first agent's perspective.
type Tally struct {
	Wins, Losses, Draws int
}

// PlayMatches plays n games between a and b, swapping colours every game.
func PlayMatches(ctx context.Context, a, b agent.Agent, n, maxMoves int) (Tally, error) {
	logger := zerolog.Ctx(ctx)
	var t Tally
	for i := 0; i < n; i++ {
		red, black, aSide := a, b, game.Red
		if i%2 == 1 {
			red, black, aSide = b, a, game.Black
		}
		res, err := PlayMatch(ctx, red, black, game.NewJungle(), maxMoves)
		if err != nil {
			return t, fmt.Errorf("match game %d: %w", i, err)
		}
		switch {
		case !res.Outcome.Decisive():
			t.Draws++
		case (res.Outcome == RedWin) == (aSide == game.Red):
			t.Wins++
		default:
			t.Losses++
		}
		logger.Info().Int("game", i).Str("outcome", res.Outcome.String()).Int("plies", len(res.Moves)).Msg("match game finished")
	}
	return t, nil
}
