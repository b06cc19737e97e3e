package engine

import (
	"context"
	"fmt"
	"math"
	"runtime/debug"
	"slices"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"jungle/game"
	"jungle/searcher"
	"jungle/searcher/agent"
)

// Sink receives finished games. Write is only ever called from one goroutine.
type Sink interface {
	Write(ctx context.Context, rec GameRecord) error
	Close() error
}

type Option func(o *orchestrator)

type orchestrator struct {
	simulations      int
	noise            searcher.NoiseMode
	cPuct            float64
	alpha, epsilon   float64
	maxMoves         int
	repetitions      int
	temperatureMoves int
	temperature      float64
	seed             uint64
	newBoard         func() game.Board
	sink             Sink
}

func WithSimulations(n int) Option {
	return func(o *orchestrator) { o.simulations = n }
}

func WithNoise(mode searcher.NoiseMode) Option {
	return func(o *orchestrator) { o.noise = mode }
}

func WithCPuct(c float64) Option {
	return func(o *orchestrator) { o.cPuct = c }
}

func WithDirichlet(alpha, epsilon float64) Option {
	return func(o *orchestrator) { o.alpha, o.epsilon = alpha, epsilon }
}

func WithMaxMoves(n int) Option {
	return func(o *orchestrator) { o.maxMoves = n }
}

func WithRepetitions(n int) Option {
	return func(o *orchestrator) { o.repetitions = n }
}

func WithTemperature(moves int, temperature float64) Option {
	return func(o *orchestrator) { o.temperatureMoves, o.temperature = moves, temperature }
}

// WithSeed makes worker randomness reproducible; worker i uses seed+i. Zero
// draws a random seed.
func WithSeed(seed uint64) Option {
	return func(o *orchestrator) { o.seed = seed }
}

func WithBoard(newBoard func() game.Board) Option {
	return func(o *orchestrator) { o.newBoard = newBoard }
}

func WithSink(sink Sink) Option {
	return func(o *orchestrator) { o.sink = sink }
}

// newOrchestrator applies opts over the self-play defaults. Without a seed
// one is drawn, so separate runs play different games.
func newOrchestrator(opts ...Option) *orchestrator {
	o := &orchestrator{
		simulations: searcher.DefaultSimulations,
		noise:       searcher.NoiseEvery,
		cPuct:       searcher.CPuct,
		alpha:       searcher.DirichletAlpha,
		epsilon:     searcher.DirichletEpsilon,
		maxMoves:    MaxMoves,
		repetitions: DefaultRepetitions,
		temperature: 1.0,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.seed == 0 {
		o.seed = frand.Uint64n(math.MaxUint64-1) + 1
	}
	return o
}

func (o *orchestrator) newEngine(worker int, evaluator searcher.Evaluator) Engine {
	seed := o.seed + uint64(worker)
	mcts := searcher.NewMCTS(
		searcher.WithSimulations(o.simulations),
		searcher.WithNoise(o.noise),
		searcher.WithCPuct(o.cPuct),
		searcher.WithDirichlet(o.alpha, o.epsilon),
		searcher.WithSeed(seed),
		searcher.WithMetrics(),
	)
	a := agent.NewTrainingAgent(mcts, evaluator, o.temperatureMoves, o.temperature, seed)
	return NewLocalEngine(a, o.newBoard, o.maxMoves, o.repetitions)
}

// RunSelfPlayGames plays numGames games on numWorkers goroutines sharing
// evaluator and returns every finished record ordered by game id. The first
// failing game cancels the rest.
func RunSelfPlayGames(ctx context.Context, numGames int, evaluator searcher.Evaluator, numWorkers int, opts ...Option) ([]GameRecord, error) {
	o := newOrchestrator(opts...)
	if numWorkers <= 0 {
		numWorkers = 1
	}
	numWorkers = min(numWorkers, max(numGames, 1))
	logger := zerolog.Ctx(ctx)
	logger.Debug().Msgf("self-play seed %d", o.seed)

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	g, gctx := errgroup.WithContext(ctx)

	jobs := make(chan int, numGames)
	for i := 0; i < numGames; i++ {
		jobs <- i
	}
	close(jobs)

	results := make(chan GameRecord, numWorkers)
	for w := 0; w < numWorkers; w++ {
		eng := o.newEngine(w, evaluator)
		g.Go(func() error {
			wctx := logger.With().Int("worker", w).Logger().WithContext(gctx)
			for id := range jobs {
				rec, err := runGame(wctx, eng, id)
				if err != nil {
					return fmt.Errorf("game %d: %w", id, err)
				}
				zerolog.Ctx(wctx).Info().
					Int("game", id).
					Str("outcome", rec.Outcome.String()).
					Int("plies", rec.Plies()).
					Dur("duration", rec.Duration).
					Msg("game finished")
				select {
				case results <- rec:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	// A single writer owns the records and the sink.
	var records []GameRecord
	writeErr := make(chan error, 1)
	go func() {
		var err error
		for rec := range results {
			records = append(records, rec)
			if o.sink == nil || err != nil {
				continue
			}
			if err = o.sink.Write(ctx, rec); err != nil {
				err = fmt.Errorf("write game %d: %w", rec.ID, err)
				cancel(err)
			}
		}
		writeErr <- err
	}()

	err := g.Wait()
	close(results)
	werr := <-writeErr
	slices.SortFunc(records, func(a, b GameRecord) int { return a.ID - b.ID })
	if werr != nil {
		return records, werr
	}
	if err != nil {
		return records, err
	}
	logger.Info().Msgf("played %d games on %d workers", len(records), numWorkers)
	return records, nil
}

// runGame converts a panic inside one game into its error.
func runGame(ctx context.Context, eng Engine, id int) (rec GameRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return eng.Run(ctx, id)
}
