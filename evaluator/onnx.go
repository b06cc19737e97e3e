package evaluator

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/owulveryck/onnx-go"
	"github.com/owulveryck/onnx-go/backend/x/gorgonnx"
	"gorgonia.org/tensor"

	"jungle/game"
)

// ONNX runs a policy/value network exported to ONNX. The model takes one
// [1, planes, rows, cols] input and produces policy logits or probabilities
// [1, actions] followed by a value [1, 1].
type ONNX struct {
	mu      sync.Mutex
	backend *gorgonnx.Graph
	model   *onnx.Model
	size    int
}

func LoadONNX(path string) (*ONNX, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read onnx file: %w", err)
	}
	return NewONNX(b)
}

func NewONNX(b []byte) (*ONNX, error) {
	backend := gorgonnx.NewGraph()
	model := onnx.NewModel(backend)
	if err := model.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("failed to unmarshal onnx model: %w", err)
	}
	return &ONNX{backend: backend, model: model, size: game.MaxAction}, nil
}

func (o *ONNX) Infer(ctx context.Context, enc game.Encoding) ([]float32, float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	shape := append([]int{1}, enc.Shape...)
	input := tensor.New(tensor.WithShape(shape...), tensor.WithBacking(append([]float32(nil), enc.Data...)))

	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.model.SetInput(0, input); err != nil {
		return nil, 0, fmt.Errorf("failed to set input: %w", err)
	}
	if err := o.backend.Run(); err != nil {
		return nil, 0, fmt.Errorf("failed to run inference: %w", err)
	}
	output, err := o.model.GetOutputTensors()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get output tensors: %w", err)
	}
	if len(output) < 2 {
		return nil, 0, fmt.Errorf("want policy and value outputs, got %d", len(output))
	}

	logits, ok := output[0].Data().([]float32)
	if !ok || len(logits) != o.size {
		return nil, 0, fmt.Errorf("unexpected policy output %v", output[0].Shape())
	}
	value, ok := output[1].Data().([]float32)
	if !ok || len(value) == 0 {
		return nil, 0, fmt.Errorf("unexpected value output %v", output[1].Shape())
	}
	return softmax(logits), float64(value[0]), nil
}

// softmax normalizes logits into probabilities. Outputs that are already a
// distribution pass through unchanged up to rounding.
func softmax(logits []float32) []float32 {
	if isDistribution(logits) {
		return append([]float32(nil), logits...)
	}
	maxLogit := logits[0]
	for _, l := range logits[1:] {
		maxLogit = max(maxLogit, l)
	}
	out := make([]float32, len(logits))
	var sum float32
	for i, l := range logits {
		out[i] = exp32(l - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
