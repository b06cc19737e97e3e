package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"jungle/game"
	"jungle/searcher"
	"jungle/searcher/agent"
)

var errNoFEN = errors.New("board cannot be sent to a remote agent")

// RemoteAgent asks an agent server for moves.
type RemoteAgent struct {
	URL    string
	client *http.Client
}

var _ agent.Agent = (*RemoteAgent)(nil)

func NewRemoteAgent(url string) *RemoteAgent {
	return &RemoteAgent{URL: url, client: http.DefaultClient}
}

// FindMove encodes the board as FEN and posts it to /findmove on the agent side.
func (r *RemoteAgent) FindMove(ctx context.Context, board game.Board, _ int) (game.Action, []float64, searcher.MoveMetrics, error) {
	fb, ok := board.(interface{ FEN() string })
	if !ok {
		return 0, nil, searcher.MoveMetrics{}, errNoFEN
	}
	body, err := json.Marshal(struct {
		FEN string `json:"fen"`
	}{FEN: fb.FEN()})
	if err != nil {
		return 0, nil, searcher.MoveMetrics{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL+"/findmove", bytes.NewReader(body))
	if err != nil {
		return 0, nil, searcher.MoveMetrics{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return 0, nil, searcher.MoveMetrics{}, fmt.Errorf("findmove: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnprocessableEntity:
		return 0, nil, searcher.MoveMetrics{}, searcher.ErrNoLegalActions
	default:
		out, _ := io.ReadAll(resp.Body)
		return 0, nil, searcher.MoveMetrics{}, fmt.Errorf("agent returned status %d: %s", resp.StatusCode, bytes.TrimSpace(out))
	}

	var move struct {
		Action game.Action `json:"action"`
		Policy []float64   `json:"policy"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&move); err != nil {
		return 0, nil, searcher.MoveMetrics{}, fmt.Errorf("failed to decode move: %w", err)
	}
	return move.Action, move.Policy, searcher.MoveMetrics{}, nil
}
