// meta/meta.go
package meta

// GO_ROUTINES defines the number of self-play workers.
const GO_ROUTINES = 8

// GAMES defines the number of self-play games per iteration.
const GAMES = 64

// SIMULATIONS defines the number of MCTS simulations per move.
const SIMULATIONS = 500

// MAX_MOVES ends a game as a move-limit draw.
const MAX_MOVES = 500

// REPETITIONS defines how many times a layout may recur before the game is drawn.
const REPETITIONS = 3

// NOISE defines where Dirichlet noise is mixed into the priors during self-play.
const NOISE = "every"

// DRAW_POLICY defines what happens to drawn games in the dataset.
const DRAW_POLICY = "discard"

// TEMPERATURE_MOVES defines how many opening plies are sampled instead of played greedily.
const TEMPERATURE_MOVES = 0

const TEMPERATURE = 1.0

// EVALUATOR defines the evaluator used when no model is given.
const EVALUATOR = "uniform"

// DATA_DIR defines where self-play records are written.
const DATA_DIR = "data"

const EVAL_ADDR = ":8090"

const AGENT_ADDR = ":8080"

const NATS_SUBJECT = "jungle.games"

// ROLLOUT_CUTOFF defines how many random plies a rollout plays before the position is scored.
const ROLLOUT_CUTOFF = 100

// ALPHABETA_DEPTH defines the search depth of the local match baseline.
const ALPHABETA_DEPTH = 4
