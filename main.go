package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"jungle/config"
	"jungle/dataset"
	"jungle/engine"
	"jungle/evaluator"
	"jungle/experiments"
	"jungle/experiments/metrics"
	"jungle/game"
	"jungle/searcher"
	"jungle/searcher/agent"
)

func usage(w io.Writer) {
	io.WriteString(w, "usage: jungle <command> [flags]\n")
	io.WriteString(w, "commands:\n")
	io.WriteString(w, "selfplay - play self-play games and store the training records\n")
	io.WriteString(w, "search - search one position (--fen) and print the move and policy\n")
	io.WriteString(w, "serve-eval - serve the evaluator over HTTP on --eval-addr\n")
	io.WriteString(w, "serve-agent - serve an evaluation agent over HTTP on --agent-addr\n")
	io.WriteString(w, "match - play --games games against the agent at --opponent-url, or the local alpha-beta baseline\n")
	io.WriteString(w, "throughput - run the --setup throughput experiment\n")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	cmd := os.Args[1]

	cfg := config.New()
	if err := cfg.Load(os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage(os.Stderr)
		os.Exit(2)
	}
	level, err := cfg.LogLevel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	zerolog.DefaultContextLogger = &log.Logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = log.Logger.WithContext(ctx)

	switch cmd {
	case "selfplay":
		err = runSelfPlay(ctx, cfg)
	case "search":
		err = runSearch(ctx, cfg)
	case "serve-eval":
		err = serveEvaluator(ctx, cfg)
	case "serve-agent":
		err = serveAgent(ctx, cfg)
	case "match":
		err = runMatch(ctx, cfg)
	case "throughput":
		err = runThroughput(ctx, cfg)
	default:
		usage(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Msgf("%s failed", cmd)
	}
}

func newEvaluator(cfg *config.Config) (searcher.Evaluator, error) {
	return evaluator.New(cfg.GetString(config.KeyEvaluator), cfg.GetString(config.KeyModel),
		cfg.GetInt(config.KeyRolloutCutoff), cfg.GetUint64(config.KeySeed))
}

// newSink combines every configured record destination behind the draw policy.
func newSink(cfg *config.Config) (engine.Sink, error) {
	policy, err := cfg.DrawPolicy()
	if err != nil {
		return nil, err
	}
	iteration := cfg.GetInt(config.KeyIteration)
	var sinks dataset.Tee
	if dir := cfg.GetString(config.KeyDataDir); dir != "" {
		s, err := dataset.NewFileSink(dir, iteration)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if path := cfg.GetString(config.KeySQLite); path != "" {
		s, err := dataset.OpenSQLite(path, iteration)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if url := cfg.GetString(config.KeyNATSURL); url != "" {
		s, err := dataset.ConnectNATS(url, cfg.GetString(config.KeyNATSSubject))
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if len(sinks) == 0 {
		return nil, nil
	}
	return dataset.FilterSink{Policy: policy, Next: sinks}, nil
}

func runSelfPlay(ctx context.Context, cfg *config.Config) error {
	ev, err := newEvaluator(cfg)
	if err != nil {
		return err
	}
	opts, err := cfg.SelfPlayOptions()
	if err != nil {
		return err
	}
	sink, err := newSink(cfg)
	if err != nil {
		return err
	}
	if sink != nil {
		opts = append(opts, engine.WithSink(sink))
	}

	games, workers := cfg.GetInt(config.KeyGames), cfg.GetInt(config.KeyWorkers)
	log.Info().Msgf("starting self-play: %d games on %d workers, seed %d", games, workers, cfg.GetUint64(config.KeySeed))
	start := time.Now()
	records, err := engine.RunSelfPlayGames(ctx, games, ev, workers, opts...)
	if sink != nil {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil {
		return err
	}
	if policy, err := cfg.DrawPolicy(); err == nil {
		log.Info().Msgf("%d of %d games kept under the %s draw policy", len(policy.Filter(records)), len(records), policy)
	}

	m := metrics.Summarize(metrics.RunConfig{
		ID:          cfg.GetInt(config.KeyIteration),
		Workers:     workers,
		Games:       games,
		Simulations: cfg.GetInt(config.KeySimulations),
		MaxMoves:    cfg.GetInt(config.KeyMaxMoves),
	}, records, time.Since(start))
	log.Info().
		Int("red", m.Outcomes[engine.RedWin]).
		Int("black", m.Outcomes[engine.BlackWin]).
		Int("draw", m.Outcomes[engine.Draw]).
		Int("move-limit", m.Outcomes[engine.MoveLimit]).
		Int("samples", m.Samples).
		Float64("games/s", m.GamesPerSecond).
		Msg("self-play finished")
	return nil
}

func loadBoard(cfg *config.Config) (*game.Jungle, error) {
	fen := cfg.GetString(config.KeyFEN)
	if fen == "" {
		return game.NewJungle(), nil
	}
	return game.NewJungleFromFEN(fen)
}

func runSearch(ctx context.Context, cfg *config.Config) error {
	board, err := loadBoard(cfg)
	if err != nil {
		return err
	}
	ev, err := newEvaluator(cfg)
	if err != nil {
		return err
	}
	mcts := searcher.NewMCTS(cfg.SearchOptions()...)
	best, policy, err := mcts.Search(ctx, board, 0, ev)
	if err != nil {
		return err
	}
	metric := mcts.Metrics()

	fmt.Println(board)
	fmt.Printf("best move: %s (action %d) after %d simulations in %s\n",
		board.DecodeMove(best), best, metric.Simulations, metric.Duration)
	actions := board.LegalActions()
	slices.SortFunc(actions, func(a, b game.Action) int {
		switch {
		case policy[a] > policy[b]:
			return -1
		case policy[a] < policy[b]:
			return 1
		}
		return int(a - b)
	})
	for _, a := range actions {
		fmt.Printf("  %-6s %.3f\n", board.DecodeMove(a), policy[a])
	}
	return nil
}

func serveEvaluator(ctx context.Context, cfg *config.Config) error {
	ev, err := newEvaluator(cfg)
	if err != nil {
		return err
	}
	return evaluator.NewServer(ev).ListenAndServe(ctx, cfg.GetString(config.KeyEvalAddr))
}

func newEvaluationAgent(cfg *config.Config) (agent.Agent, error) {
	ev, err := newEvaluator(cfg)
	if err != nil {
		return nil, err
	}
	return agent.NewEvaluationAgent(searcher.NewMCTS(cfg.SearchOptions()...), ev), nil
}

func serveAgent(ctx context.Context, cfg *config.Config) error {
	a, err := newEvaluationAgent(cfg)
	if err != nil {
		return err
	}
	return agent.StartAgentServer(ctx, cfg.GetString(config.KeyAgentAddr), a)
}

func runMatch(ctx context.Context, cfg *config.Config) error {
	a, err := newEvaluationAgent(cfg)
	if err != nil {
		return err
	}
	opponent := agent.NewAlphaBetaAgent(cfg.GetInt(config.KeyAlphaBetaDepth), game.EvaluatePosition)
	if url := cfg.GetString(config.KeyOpponentURL); url != "" {
		opponent = engine.NewRemoteAgent(url)
	}
	tally, err := engine.PlayMatches(ctx, a, opponent, cfg.GetInt(config.KeyGames), cfg.GetInt(config.KeyMaxMoves))
	if err != nil {
		return err
	}
	log.Info().Msgf("match finished: %d wins, %d losses, %d draws", tally.Wins, tally.Losses, tally.Draws)
	return nil
}

func runThroughput(ctx context.Context, cfg *config.Config) error {
	setup := experiments.DefaultSetup
	if path := cfg.GetString(config.KeySetup); path != "" {
		var err error
		if setup, err = experiments.LoadSetup(path); err != nil {
			return err
		}
	}
	ev, err := newEvaluator(cfg)
	if err != nil {
		return err
	}
	_, err = experiments.RunThroughput(ctx, setup, ev, os.Stdout)
	return err
}
