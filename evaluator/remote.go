package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"jungle/game"
)

type inferRequest struct {
	Encoding game.Encoding `json:"encoding"`
}

type inferResponse struct {
	Priors []float32 `json:"priors"`
	Value  float64   `json:"value"`
}

// Remote calls an evaluator served by Server.
type Remote struct {
	serverURL string
	client    *http.Client
}

// NewRemote initializes and returns a new Remote for the server at serverURL.
func NewRemote(serverURL string) *Remote {
	return &Remote{
		serverURL: serverURL,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (r *Remote) Infer(ctx context.Context, enc game.Encoding) ([]float32, float64, error) {
	data, err := json.Marshal(inferRequest{Encoding: enc})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.serverURL+"/infer", bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("infer request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("infer request: status %s", resp.Status)
	}

	var out inferResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, 0, fmt.Errorf("failed to decode response: %w", err)
	}
	return out.Priors, out.Value, nil
}
