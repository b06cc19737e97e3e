package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"lukechampine.com/frand"

	"jungle/engine"
	"jungle/meta"
	"jungle/searcher"
)

// Keys shared by flags, JUNGLE_* environment variables and the config file.
const (
	KeyWorkers          = "workers"
	KeyGames            = "games"
	KeySimulations      = "simulations"
	KeyMaxMoves         = "max-moves"
	KeyRepetitions      = "repetitions"
	KeyNoise            = "noise"
	KeyDrawPolicy       = "draw-policy"
	KeyCPuct            = "cpuct"
	KeyDirichletAlpha   = "dirichlet-alpha"
	KeyDirichletEpsilon = "dirichlet-epsilon"
	KeyTemperatureMoves = "temperature-moves"
	KeyTemperature      = "temperature"
	KeySeed             = "seed"
	KeyEvaluator        = "evaluator"
	KeyModel            = "model"
	KeyRolloutCutoff    = "rollout-cutoff"
	KeyAlphaBetaDepth   = "alphabeta-depth"
	KeyDataDir          = "data-dir"
	KeyIteration        = "iteration"
	KeySQLite           = "sqlite"
	KeyNATSURL          = "nats-url"
	KeyNATSSubject      = "nats-subject"
	KeyEvalAddr         = "eval-addr"
	KeyAgentAddr        = "agent-addr"
	KeyOpponentURL      = "opponent-url"
	KeyFEN              = "fen"
	KeySetup            = "setup"
	KeyLogLevel         = "log-level"
	KeyConfigFile       = "config"
)

type Config struct {
	*viper.Viper
	args []string
}

func New() *Config {
	return &Config{Viper: viper.New()}
}

// Load parses command line args. Values come from, in order of precedence,
// flags, JUNGLE_* environment variables, the --config YAML file and the
// defaults in package meta.
func (c *Config) Load(args []string) error {
	if c.Viper == nil {
		c.Viper = viper.New()
	}
	fs := pflag.NewFlagSet("jungle", pflag.ContinueOnError)
	fs.Int(KeyWorkers, meta.GO_ROUTINES, "number of self-play workers")
	fs.Int(KeyGames, meta.GAMES, "number of games to play")
	fs.Int(KeySimulations, meta.SIMULATIONS, "MCTS simulations per move")
	fs.Int(KeyMaxMoves, meta.MAX_MOVES, "plies before a game is stopped as a move-limit draw")
	fs.Int(KeyRepetitions, meta.REPETITIONS, "occurrences of a layout that draw the game")
	fs.String(KeyNoise, meta.NOISE, "where Dirichlet noise is applied: off, root or every")
	fs.String(KeyDrawPolicy, meta.DRAW_POLICY, "what to do with drawn games: discard or zero")
	fs.Float64(KeyCPuct, searcher.CPuct, "PUCT exploration constant")
	fs.Float64(KeyDirichletAlpha, searcher.DirichletAlpha, "Dirichlet concentration")
	fs.Float64(KeyDirichletEpsilon, searcher.DirichletEpsilon, "weight of the noise against the priors")
	fs.Int(KeyTemperatureMoves, meta.TEMPERATURE_MOVES, "opening plies sampled from the visit distribution")
	fs.Float64(KeyTemperature, meta.TEMPERATURE, "sampling temperature for the opening plies")
	fs.Uint64(KeySeed, 0, "random seed, 0 draws one")
	fs.String(KeyEvaluator, meta.EVALUATOR, "evaluator: uniform, material, rollout, onnx or remote")
	fs.String(KeyModel, "", "ONNX model path or evaluator server URL")
	fs.Int(KeyRolloutCutoff, meta.ROLLOUT_CUTOFF, "random plies per rollout before the position is scored")
	fs.Int(KeyAlphaBetaDepth, meta.ALPHABETA_DEPTH, "search depth of the alpha-beta match opponent")
	fs.String(KeyDataDir, meta.DATA_DIR, "directory for gzipped game records, empty to disable")
	fs.Int(KeyIteration, 0, "training iteration the games belong to")
	fs.String(KeySQLite, "", "SQLite database for game records")
	fs.String(KeyNATSURL, "", "NATS server to publish game records to")
	fs.String(KeyNATSSubject, meta.NATS_SUBJECT, "NATS subject for game records")
	fs.String(KeyEvalAddr, meta.EVAL_ADDR, "listen address of the evaluator server")
	fs.String(KeyAgentAddr, meta.AGENT_ADDR, "listen address of the agent server")
	fs.String(KeyOpponentURL, "", "agent server to play matches against, empty for the alpha-beta baseline")
	fs.String(KeyFEN, "", "position to search, defaults to the opening")
	fs.String(KeySetup, "", "YAML throughput experiment setup")
	fs.String(KeyLogLevel, "info", "log level")
	fs.String(KeyConfigFile, "", "YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.args = fs.Args()

	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	c.SetEnvPrefix("JUNGLE")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	if path := c.GetString(KeyConfigFile); path != "" {
		c.SetConfigFile(path)
		if err := c.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	if c.GetUint64(KeySeed) == 0 {
		c.Set(KeySeed, frand.Uint64n(math.MaxUint64-1)+1)
	}
	return nil
}

// Args returns the positional arguments left after flag parsing.
func (c *Config) Args() []string {
	return c.args
}

func (c *Config) NoiseMode() (searcher.NoiseMode, error) {
	return searcher.ParseNoiseMode(c.GetString(KeyNoise))
}

func (c *Config) DrawPolicy() (engine.DrawPolicy, error) {
	return engine.ParseDrawPolicy(c.GetString(KeyDrawPolicy))
}

func (c *Config) LogLevel() (zerolog.Level, error) {
	return zerolog.ParseLevel(c.GetString(KeyLogLevel))
}

// SelfPlayOptions translates the search and game settings into orchestrator
// options.
func (c *Config) SelfPlayOptions() ([]engine.Option, error) {
	noise, err := c.NoiseMode()
	if err != nil {
		return nil, err
	}
	return []engine.Option{
		engine.WithSimulations(c.GetInt(KeySimulations)),
		engine.WithNoise(noise),
		engine.WithCPuct(c.GetFloat64(KeyCPuct)),
		engine.WithDirichlet(c.GetFloat64(KeyDirichletAlpha), c.GetFloat64(KeyDirichletEpsilon)),
		engine.WithMaxMoves(c.GetInt(KeyMaxMoves)),
		engine.WithRepetitions(c.GetInt(KeyRepetitions)),
		engine.WithTemperature(c.GetInt(KeyTemperatureMoves), c.GetFloat64(KeyTemperature)),
		engine.WithSeed(c.GetUint64(KeySeed)),
	}, nil
}

// SearchOptions are the MCTS options for a single, noise-free search.
func (c *Config) SearchOptions() []searcher.Option {
	return []searcher.Option{
		searcher.WithSimulations(c.GetInt(KeySimulations)),
		searcher.WithCPuct(c.GetFloat64(KeyCPuct)),
		searcher.WithSeed(c.GetUint64(KeySeed)),
		searcher.WithMetrics(),
	}
}
