package server

import (
	"net/http"

	"tasklet/internal/api"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.writeServiceError(w, r, storeFailure(err))
		return
	}
	s.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}
