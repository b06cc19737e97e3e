package searcher

import (
	"context"
	"errors"
	"fmt"

	"jungle/game"
)

// Evaluator scores a position. Priors cover the board's whole action space;
// value is the expected outcome from Red's perspective, in [-1, 1].
// Implementations must be safe for concurrent use.
type Evaluator interface {
	Infer(ctx context.Context, enc game.Encoding) (priors []float32, value float64, err error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, enc game.Encoding) ([]float32, float64, error)

func (f EvaluatorFunc) Infer(ctx context.Context, enc game.Encoding) ([]float32, float64, error) {
	return f(ctx, enc)
}

var (
	ErrNoLegalActions = errors.New("no legal actions")
	ErrBadEncoding    = errors.New("evaluator output does not match the action space")
)

// NoiseMode selects the nodes whose priors get Dirichlet noise on expansion.
type NoiseMode int

const (
	NoiseOff NoiseMode = iota
	NoiseRoot
	NoiseEvery
)

func (n NoiseMode) String() string {
	switch n {
	case NoiseOff:
		return "off"
	case NoiseRoot:
		return "root"
	case NoiseEvery:
		return "every"
	}
	return fmt.Sprintf("NoiseMode(%d)", int(n))
}

func ParseNoiseMode(s string) (NoiseMode, error) {
	switch s {
	case "off", "":
		return NoiseOff, nil
	case "root":
		return NoiseRoot, nil
	case "every":
		return NoiseEvery, nil
	}
	return NoiseOff, fmt.Errorf("unknown noise mode %q", s)
}
