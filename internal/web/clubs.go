package web

import (
	"net/http"
	"strconv"
	"time"
	"touchline/internal/back"

	"github.com/go-chi/chi"
)

func (s *Server) getClubs(w http.ResponseWriter, r *http.Request) {
	clubs, err := s.back.GetClubs(r.Context())
	if err != nil {
		s.error(w, r, err)
		return
	}

	if clubs == nil {
		clubs = []back.ClubWithOwner{}
	}

	s.cache(w, "public", 30*time.Second)
	s.response(w, http.StatusOK, clubs)
}

func (s *Server) getClub(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.error(w, r, errBadRequest("invalid club ID"))
		return
	}

	club, players, err := s.back.GetClub(r.Context(), id)
	if err != nil {
		s.error(w, r, err)
		return
	}

	if players == nil {
		players = []back.Player{}
	}

	s.cache(w, "public", 30*time.Second)
	s.response(w, http.StatusOK, struct {
		Club    back.Club
		Players []back.Player
	}{club, players})
}
