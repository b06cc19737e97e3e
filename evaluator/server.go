package evaluator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"jungle/searcher"
)

// Server exposes an evaluator over HTTP on /infer.
type Server struct {
	evaluator searcher.Evaluator
	mux       *http.ServeMux
}

func NewServer(evaluator searcher.Evaluator) *Server {
	s := &Server{evaluator: evaluator, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /infer", s.handleInfer)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	log.Info().Msgf("[EvalServer] Starting evaluator server on %s ...", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleInfer(w http.ResponseWriter, r *http.Request) {
	var req inferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Encoding.Data) == 0 {
		http.Error(w, "bad request: empty encoding", http.StatusBadRequest)
		return
	}

	priors, value, err := s.evaluator.Infer(r.Context(), req.Encoding)
	if err != nil {
		log.Error().Err(err).Msg("inference failed")
		http.Error(w, "inference failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(inferResponse{Priors: priors, Value: value}); err != nil {
		http.Error(w, "failed to encode response: "+err.Error(), http.StatusInternalServerError)
	}
}
