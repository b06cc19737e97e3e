// Package evaluator provides searcher.Evaluator implementations: fixed
// heuristics for bootstrapping, an ONNX network, and an HTTP client/server
// pair for sharing one evaluator between processes.
package evaluator

import (
	"context"
	"errors"
	"fmt"

	"jungle/game"
	"jungle/searcher"
)

var ErrShortEncoding = errors.New("encoding shorter than its layout")

// Uniform returns equal priors over the action space and a constant value.
type Uniform struct {
	Size  int
	Value float64
}

var _ searcher.Evaluator = Uniform{}

func NewUniform() Uniform {
	return Uniform{Size: game.MaxAction}
}

func (u Uniform) Infer(_ context.Context, _ game.Encoding) ([]float32, float64, error) {
	return uniformPriors(u.Size), u.Value, nil
}

// Material returns uniform priors and the material balance of the encoded layout.
type Material struct {
	Size int
}

var _ searcher.Evaluator = Material{}

func NewMaterial() Material {
	return Material{Size: game.MaxAction}
}

func (m Material) Infer(_ context.Context, enc game.Encoding) ([]float32, float64, error) {
	if len(enc.Data) < enc.Layout {
		return nil, 0, fmt.Errorf("%w: %d < %d", ErrShortEncoding, len(enc.Data), enc.Layout)
	}
	return uniformPriors(m.Size), game.MaterialFromLayout(enc.LayoutData()), nil
}

func uniformPriors(size int) []float32 {
	priors := make([]float32, size)
	p := 1 / float32(size)
	for i := range priors {
		priors[i] = p
	}
	return priors
}

// New builds an evaluator by name: "uniform", "material", "rollout" (random
// playouts of up to cutoff plies), "onnx" (model is a file path) or "remote"
// (model is a base URL).
func New(kind, model string, cutoff int, seed uint64) (searcher.Evaluator, error) {
	switch kind {
	case "uniform", "":
		return NewUniform(), nil
	case "material":
		return NewMaterial(), nil
	case "rollout":
		return NewRollout(cutoff, game.EvaluateMaterial, seed), nil
	case "onnx":
		return LoadONNX(model)
	case "remote":
		return NewRemote(model), nil
	}
	return nil, fmt.Errorf("unknown evaluator %q", kind)
}
