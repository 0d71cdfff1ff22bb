package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /api/format", s.handleFormat)

	s.router.HandleFunc("GET /api/marks", s.handleListMarks)
	s.router.HandleFunc("GET /api/marks/{name}", s.handleGetMark)

	s.router.HandleFunc("GET /api/health", s.handleHealth)
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
