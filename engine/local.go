package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"jungle/game"
	"jungle/searcher"
	"jungle/searcher/agent"
)

// MaxMoves bounds the length of a self-play game.
const MaxMoves = 500

type Engine interface {
	// Run plays one game from a fresh board until a winner, a draw or the move limit
	Run(ctx context.Context, id int) (GameRecord, error)
}

// LocalEngine plays self-play games with a single agent moving for both sides.
type LocalEngine struct {
	agent       agent.Agent
	newBoard    func() game.Board
	maxMoves    int
	repetitions int
}

var _ Engine = (*LocalEngine)(nil)

func NewLocalEngine(a agent.Agent, newBoard func() game.Board, maxMoves, repetitions int) *LocalEngine {
	if newBoard == nil {
		newBoard = func() game.Board { return game.NewJungle() }
	}
	if maxMoves <= 0 {
		maxMoves = MaxMoves
	}
	return &LocalEngine{
		agent:       a,
		newBoard:    newBoard,
		maxMoves:    maxMoves,
		repetitions: repetitions,
	}
}

// Run executes the entire game loop until the game is over.
func (e *LocalEngine) Run(ctx context.Context, id int) (GameRecord, error) {
	logger := zerolog.Ctx(ctx).With().Int("game", id).Logger()
	board := e.newBoard()
	reps := newRepetition(e.repetitions)
	rec := GameRecord{ID: id, StartTime: time.Now()}

	logger.Debug().Msgf("%s is starting", board.SideToMove())

	outcome := MoveLimit
	for ply := 0; ply < e.maxMoves; ply++ {
		if err := ctx.Err(); err != nil {
			return rec, err
		}

		enc := board.Encode()
		fp := fingerprint(enc.LayoutData())
		if reps.repeated(fp) {
			logger.Debug().Msgf("repetition draw at ply %d", ply)
			outcome = Draw
			break
		}

		action, policy, metric, err := e.agent.FindMove(ctx, board, ply)
		if errors.Is(err, searcher.ErrNoLegalActions) {
			logger.Debug().Msgf("no legal moves at ply %d", ply)
			outcome = Draw
			break
		}
		if err != nil {
			return rec, fmt.Errorf("ply %d: %w", ply, err)
		}
		reps.record(fp)
		rec.Samples = append(rec.Samples, Sample{
			Ply:      ply,
			Side:     board.SideToMove(),
			Encoding: enc,
			Policy:   policy,
		})

		rec.Moves = append(rec.Moves, board.DecodeMove(action))
		board.Apply(action)
		logger.Trace().Msgf("ply %d: %s (%d simulations in %s)", ply, rec.Moves[ply], metric.Simulations, metric.Duration)

		if winner, over := board.Winner(); over {
			outcome = outcomeOf(winner)
			break
		}
	}

	rec.Outcome = outcome
	rec.label()
	rec.Duration = time.Since(rec.StartTime)
	return rec, nil
}
