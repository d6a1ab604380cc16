package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/RyanBlaney/sonido-armonia/algorithms/bass"
	"github.com/RyanBlaney/sonido-armonia/algorithms/chords"
	"github.com/RyanBlaney/sonido-armonia/algorithms/keys"
	"github.com/RyanBlaney/sonido-armonia/algorithms/progression"
	"github.com/RyanBlaney/sonido-armonia/harmony"
	"github.com/RyanBlaney/sonido-armonia/logging"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

const maxBodyBytes = 1 << 20

// Server exposes the harmony engine over HTTP JSON
type Server struct {
	engine  *harmony.Engine
	router  *mux.Router
	handler http.Handler
	logger  logging.Logger
}

// New builds the router for engine. Allowed CORS origins come from the
// engine's server config.
func New(engine *harmony.Engine) *Server {
	s := &Server{
		engine: engine,
		router: mux.NewRouter().StrictSlash(true),
		logger: logging.WithFields(logging.Fields{
			"component": "http_server",
		}),
	}

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/chords/parse", s.handleParseChord).Methods(http.MethodPost)
	s.router.HandleFunc("/chords/detect", s.handleDetectChord).Methods(http.MethodPost)
	s.router.HandleFunc("/keys/detect", s.handleDetectKey).Methods(http.MethodPost)
	s.router.HandleFunc("/progressions/suggest", s.handleSuggest).Methods(http.MethodPost)
	s.router.HandleFunc("/progressions/analyze", s.handleAnalyze).Methods(http.MethodPost)
	s.router.HandleFunc("/bass", s.handleBass).Methods(http.MethodPost)

	s.handler = cors.New(cors.Options{
		AllowedOrigins: engine.Config().Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept"},
	}).Handler(s.router)

	return s
}

// Handler returns the CORS-wrapped router
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", logging.Fields{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}

type parseChordRequest struct {
	Symbol string `json:"symbol"`
}

type detectChordRequest struct {
	Notes []string `json:"notes"`
	// Magnitudes is an FFT magnitude frame; used when Notes is empty
	Magnitudes []float64 `json:"magnitudes,omitempty"`
}

type detectChordResponse struct {
	Chord string        `json:"chord"`
	Notes []string      `json:"notes"`
	Match *chords.Match `json:"match,omitempty"`
}

type detectKeyRequest struct {
	Progression []string `json:"progression"`
	Candidates  int      `json:"candidates,omitempty"` // runners-up to include
}

type detectKeyResponse struct {
	Key        keys.Key   `json:"key"`
	Candidates []keys.Key `json:"candidates,omitempty"`
}

type suggestRequest struct {
	Current string `json:"current"`
	Key     string `json:"key,omitempty"`
}

type suggestResponse struct {
	Key         string                   `json:"key"`
	Suggestions []progression.Suggestion `json:"suggestions"`
}

type progressionRequest struct {
	Progression []string `json:"progression"`
	Style       string   `json:"style,omitempty"`
	Format      string   `json:"format,omitempty"` // "json" (default) or "midi"
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleParseChord(w http.ResponseWriter, r *http.Request) {
	var req parseChordRequest
	if !s.decode(w, r, &req) {
		return
	}

	chord, ok := s.engine.ParseChord(req.Symbol)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("cannot parse chord %q", req.Symbol))
		return
	}
	writeJSON(w, http.StatusOK, chord)
}

func (s *Server) handleDetectChord(w http.ResponseWriter, r *http.Request) {
	var req detectChordRequest
	if !s.decode(w, r, &req) {
		return
	}

	if len(req.Notes) == 0 && len(req.Magnitudes) > 0 {
		name, notes, ok := s.engine.DetectChordFromFrame(req.Magnitudes)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, "no chord in frame")
			return
		}
		writeJSON(w, http.StatusOK, detectChordResponse{Chord: name, Notes: notes})
		return
	}

	m, ok := s.engine.DetectChord(req.Notes)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "no chord matches the notes")
		return
	}
	writeJSON(w, http.StatusOK, detectChordResponse{Chord: m.Chord.Symbol, Notes: req.Notes, Match: &m})
}

func (s *Server) handleDetectKey(w http.ResponseWriter, r *http.Request) {
	var req detectKeyRequest
	if !s.decode(w, r, &req) {
		return
	}

	ranked := s.engine.RankKeys(req.Progression)
	if len(ranked) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "progression is empty")
		return
	}

	resp := detectKeyResponse{Key: ranked[0]}
	if req.Candidates > 0 {
		resp.Candidates = ranked[1:min(len(ranked), req.Candidates+1)]
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if !s.decode(w, r, &req) {
		return
	}

	key, suggestions, ok := s.engine.Suggest(req.Current, req.Key)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("cannot suggest after %q in %q", req.Current, req.Key))
		return
	}
	writeJSON(w, http.StatusOK, suggestResponse{Key: key.Name, Suggestions: suggestions})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req progressionRequest
	if !s.decode(w, r, &req) {
		return
	}

	analysis, err := s.engine.Analyze(req.Progression, req.Style)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleBass(w http.ResponseWriter, r *http.Request) {
	var req progressionRequest
	if !s.decode(w, r, &req) {
		return
	}

	line, err := s.engine.Bass(req.Progression, req.Style)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Format != "midi" {
		writeJSON(w, http.StatusOK, line)
		return
	}

	if len(line.Notes) == 0 {
		writeError(w, http.StatusUnprocessableEntity, bass.ErrEmptyLine.Error())
		return
	}
	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("Content-Disposition", `attachment; filename="bass.mid"`)
	if err := s.engine.WriteBassMIDI(w, line); err != nil {
		s.logger.Error(err, "Failed to write MIDI response")
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.logger.Debug("Rejected request body", logging.Fields{
			"path":  r.URL.Path,
			"error": err.Error(),
		})
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
