package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/commit-swipe/internal/deck"
	"github.com/example/commit-swipe/internal/storage"
)

// DeckSource exposes a goroutine-safe view of the card stack.
type DeckSource interface {
	Snapshot() deck.State
}

// Server is the local status endpoint: health, metrics, the current deck
// position and the recent decision log. It never mutates client state.
type Server struct {
	Deck      DeckSource
	Decisions storage.DecisionStore
	logger    *slog.Logger
	mux       *mux.Router
}

func NewServer(d DeckSource, decisions storage.DecisionStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{Deck: d, Decisions: decisions, logger: logger, mux: mux.NewRouter()}
	s.mux.Use(s.instrument)
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) }).Methods("GET")
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.HandleFunc("/api/v1/deck", s.handleDeck).Methods("GET")
	s.mux.HandleFunc("/api/v1/decisions", s.handleDecisions).Methods("GET")
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request) {
	if s.Deck == nil {
		http.Error(w, "deck not loaded", 503)
		return
	}
	writeJSON(w, s.Deck.Snapshot())
}

func (s *Server) handleDecisions(w http.ResponseWriter, r *http.Request) {
	if s.Decisions == nil {
		http.Error(w, "decision log disabled", 503)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", 400)
			return
		}
		limit = n
	}
	out, err := s.Decisions.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("decisions.recent.failed", "err", err)
		http.Error(w, "decision log unavailable", 500)
		return
	}
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func newID() string { return uuid.NewString() }
