package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) resourceRoutes(r chi.Router) {
	r.Get("/stock/{symbol}", func(w http.ResponseWriter, r *http.Request) {
		result, err := s.deps.Portfolio.StockResource(r.Context(), chi.URLParam(r, "symbol"))
		s.respond(w, r, result, err)
	})
	r.Get("/portfolio/summary", func(w http.ResponseWriter, r *http.Request) {
		result, err := s.deps.Portfolio.PortfolioSummary(r.Context())
		s.respond(w, r, result, err)
	})
	r.Get("/portfolio/list", func(w http.ResponseWriter, r *http.Request) {
		result, err := s.deps.Portfolio.StockList(r.Context())
		s.respond(w, r, result, err)
	})
}
