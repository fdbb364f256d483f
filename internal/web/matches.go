package web

import (
	"net/http"
	"time"
	"touchline/internal/back"
)

const matchesLimit = 50

func (s *Server) getMatches(w http.ResponseWriter, r *http.Request) {
	status := back.MatchStatusPlayed
	if str := r.URL.Query().Get("status"); str != "" {
		var err error
		status, err = back.ParseMatchStatus(str)
		if err != nil {
			s.error(w, r, errBadRequest(err.Error()))
			return
		}
	}

	matches, err := s.back.GetMatches(r.Context(), status, matchesLimit)
	if err != nil {
		s.error(w, r, err)
		return
	}

	if matches == nil {
		matches = []back.MatchWithClubs{}
	}

	s.cache(w, "public", 10*time.Second)
	s.response(w, http.StatusOK, matches)
}
