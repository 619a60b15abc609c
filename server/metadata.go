package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) metadataRoutes(r chi.Router) {
	r.Get("/tools", func(w http.ResponseWriter, r *http.Request) {
		tools, err := s.deps.Discovery.ListTools(r.Context())
		s.respond(w, r, tools, err)
	})
	r.Get("/prompts", func(w http.ResponseWriter, r *http.Request) {
		prompts, err := s.deps.Discovery.ListPrompts(r.Context())
		s.respond(w, r, prompts, err)
	})
	r.Get("/resources", func(w http.ResponseWriter, r *http.Request) {
		resources, err := s.deps.Discovery.ListResources(r.Context())
		s.respond(w, r, resources, err)
	})
	r.Get("/health", s.handleHealth)
}

// handleHealth reports 503 when any MCP listing fails.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.deps.Discovery.Health(r.Context())
	status := http.StatusOK
	if !health.Healthy() {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, health)
}
