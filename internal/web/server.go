package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
	"touchline/internal/back"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/", noContent)

	// No pagination nor any fancy stuff, lists are capped.
	r.Get("/v1/clubs", s.getClubs)
	r.Get("/v1/club/{id}", s.getClub)
	r.Get("/v1/matches", s.getMatches)

	return r
}

type Server struct {
	http *http.Server
	back *back.Back
}

func NewServer(back *back.Back, address string) *Server {
	s := &Server{
		back: back,
	}

	s.http = &http.Server{
		Addr:         address,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  10 * time.Second,
		Handler:      s.setupRouter(),
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// Serve listens until ctx is done, then gracefully shuts the server down.
func (s *Server) Serve(ctx context.Context) error {
	log.Info().Str("address", s.http.Addr).Msg("starting HTTP server")

	errs := make(chan error, 1)
	go func() {
		errs <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("webserver crashed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("unable to close webserver")
	}

	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	log.Info().Msg("HTTP server closed")
	return nil
}

func (s *Server) response(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	response, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("unable to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(code)

	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("unable to send response")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// error answers with a status matching err, only client errors are detailed.
func (s *Server) error(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	var badRequest errBadRequest
	switch {
	case errors.As(err, &badRequest):
		code = http.StatusBadRequest
	case errors.Is(err, back.ErrClubNotFound):
		code = http.StatusNotFound
	case errors.Is(err, back.ErrStoreUnavailable):
		code = http.StatusServiceUnavailable
	}

	if code >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Int("status", code).Msg("request failed")
		s.response(w, code, errorResponse{http.StatusText(code)})
		return
	}

	s.response(w, code, errorResponse{err.Error()})
}

type errBadRequest string

func (e errBadRequest) Error() string {
	return string(e)
}

func (s *Server) cache(w http.ResponseWriter, scope string, d time.Duration) {
	w.Header().Set("Cache-Control", fmt.Sprintf("%s,max-age=%d", scope, d/time.Second))
}
