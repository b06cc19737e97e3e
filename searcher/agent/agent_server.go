package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"jungle/game"
	"jungle/searcher"
)

type findMoveRequest struct {
	FEN string `json:"fen"`
}

type findMoveResponse struct {
	Action   game.Action `json:"action"`
	Move     string      `json:"move"`
	Policy   []float64   `json:"policy"`
	Duration string      `json:"duration,omitempty"`
}

// Server answers move requests with one agent. Searches are serialized since
// an agent owns a single search tree.
type Server struct {
	mu    sync.Mutex
	agent Agent
	mux   *http.ServeMux
}

func NewServer(agent Agent) *Server {
	s := &Server{agent: agent, mux: http.NewServeMux()}
	// Create a local mux rather than using the global DefaultServeMux
	s.mux.HandleFunc("POST /findmove", s.handleFindMove)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// StartAgentServer serves agent on addr until ctx is done.
func StartAgentServer(ctx context.Context, addr string, agent Agent) error {
	log.Info().Msgf("[AgentServer] Starting agent server on %s ...", addr)
	srv := &http.Server{Addr: addr, Handler: NewServer(agent)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleFindMove(w http.ResponseWriter, r *http.Request) {
	var payload findMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}
	board, err := game.NewJungleFromFEN(payload.FEN)
	if err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}

	if winner, over := board.Winner(); over {
		http.Error(w, "game is over: "+winner.String()+" won", http.StatusUnprocessableEntity)
		return
	}

	s.mu.Lock()
	action, policy, metric, err := s.agent.FindMove(r.Context(), board, 0)
	s.mu.Unlock()
	if errors.Is(err, searcher.ErrNoLegalActions) {
		http.Error(w, "no legal moves", http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("fen", payload.FEN).Msg("search failed")
		http.Error(w, "search failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := findMoveResponse{
		Action: action,
		Move:   board.DecodeMove(action),
		Policy: policy,
	}
	if metric.Duration > 0 {
		resp.Duration = metric.Duration.String()
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode move: "+err.Error(), http.StatusInternalServerError)
	}
}
