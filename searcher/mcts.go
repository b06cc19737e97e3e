package searcher

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog/log"

	"jungle/game"
)

type Option func(mcts *MCTS)

// MCTS runs PUCT searches guided by an Evaluator. An MCTS is not safe for
// concurrent use; give each goroutine its own.
type MCTS struct {
	simulations int
	cPuct       float64
	noise       NoiseMode
	alpha       float64
	epsilon     float64
	src         rand.Source
	metrics     MetricsCollector
	last        MoveMetrics
}

func WithSimulations(simulations int) Option {
	return func(m *MCTS) {
		if simulations > 0 {
			m.simulations = simulations
		}
	}
}

func WithCPuct(c float64) Option {
	return func(m *MCTS) {
		if c > 0 {
			m.cPuct = c
		}
	}
}

func WithNoise(mode NoiseMode) Option {
	return func(m *MCTS) {
		m.noise = mode
	}
}

func WithDirichlet(alpha, epsilon float64) Option {
	return func(m *MCTS) {
		if alpha > 0 {
			m.alpha = alpha
		}
		if epsilon >= 0 && epsilon <= 1 {
			m.epsilon = epsilon
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.src = rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = NewMetricsCollector()
	}
}

func NewMCTS(options ...Option) *MCTS {
	m := &MCTS{ // Default values
		simulations: DefaultSimulations,
		cPuct:       CPuct,
		noise:       NoiseOff,
		alpha:       DirichletAlpha,
		epsilon:     DirichletEpsilon,
		metrics:     NewNoMetricsCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.src == nil {
		m.src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return m
}

// Simulations is the default budget used when Search is given n <= 0.
func (m *MCTS) Simulations() int {
	return m.simulations
}

// Metrics returns the metrics of the last search; zero unless WithMetrics was given.
func (m *MCTS) Metrics() MoveMetrics {
	return m.last
}

// Search runs n simulations from board and returns the most visited root
// action with the normalized root visit counts. board is mutated during the
// search and restored before Search returns. A finished game backs up its
// result every simulation and yields action 0 with an all-zero policy.
func (m *MCTS) Search(ctx context.Context, board game.Board, n int, evaluator Evaluator) (game.Action, []float64, error) {
	if n <= 0 {
		n = m.simulations
	}
	if _, over := board.Winner(); !over && len(board.LegalActions()) == 0 {
		return 0, nil, ErrNoLegalActions
	}

	m.metrics.Start()
	t := newTree(board.SideToMove(), board.ActionSpace())
	path := newTrail(board)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}
		if err := m.simulate(ctx, t, board, path, evaluator); err != nil {
			path.rewind()
			return 0, nil, fmt.Errorf("simulation %d: %w", i, err)
		}
		m.metrics.AddSimulation()
	}
	m.last = m.metrics.Complete(len(t.nodes))

	visits, _ := t.childStats(0)
	best := argmax(visits, t.nodes[0].legal)
	log.Debug().Msgf("search: %d simulations, %d nodes, best %s", n, len(t.nodes), board.DecodeMove(best))
	return best, t.policy(), nil
}

func (m *MCTS) simulate(ctx context.Context, t *tree, board game.Board, path *trail, evaluator Evaluator) error {
	leaf := m.selectLeaf(t, board, path)

	if winner, over := board.Winner(); over {
		m.metrics.AddTerminal()
		t.backup(leaf, winner.Value(), path.undo)
		path.assertRoot()
		return nil
	}

	priors, value, err := evaluator.Infer(ctx, board.Encode())
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	m.metrics.AddEvaluation()
	if len(priors) != t.size {
		return fmt.Errorf("%w: %d priors for %d actions", ErrBadEncoding, len(priors), t.size)
	}

	t.expand(leaf, board.LegalActions(), priors)
	if m.noise == NoiseEvery || (m.noise == NoiseRoot && leaf == 0) {
		dirichlet{alpha: m.alpha, epsilon: m.epsilon, src: m.src}.apply(&t.nodes[leaf])
	}
	t.backup(leaf, value, path.undo)
	path.assertRoot()
	return nil
}

// selectLeaf walks expanded nodes by PUCT, applying each move to board.
func (m *MCTS) selectLeaf(t *tree, board game.Board, path *trail) int {
	idx := 0
	for t.nodes[idx].expanded {
		a := t.bestChild(idx, m.cPuct)
		path.apply(a)
		idx = t.child(idx, a, board.SideToMove())
	}
	return idx
}
