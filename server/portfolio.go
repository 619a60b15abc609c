package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mlapp/folio/portfolio"
)

func (s *Server) portfolioRoutes(r chi.Router) {
	r.Get("/stocks", s.handleListStocks)
	r.Post("/stocks", s.handleAddStock)
	r.Get("/stocks/search", s.handleSearchStocks)
	r.Get("/stocks/{symbol}", s.handleGetStock)
	r.Put("/stocks/{symbol}/price", s.handleUpdatePrice)
	r.Put("/stocks/{symbol}/shares", s.handleUpdateShares)
	r.Delete("/stocks/{symbol}", s.handleDeleteStock)
	r.Get("/value", s.handlePortfolioValue)
}

type updatePriceRequest struct {
	NewPrice *float64 `json:"newPrice"`
}

type updateSharesRequest struct {
	NewShares *int `json:"newShares"`
}

// respond writes result as JSON or err as an error body.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, result any, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListStocks(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.Portfolio.ListAllStocks(r.Context())
	s.respond(w, r, result, err)
}

func (s *Server) handleGetStock(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.Portfolio.GetStock(r.Context(), chi.URLParam(r, "symbol"))
	s.respond(w, r, result, err)
}

func (s *Server) handleAddStock(w http.ResponseWriter, r *http.Request) {
	var req portfolio.NewStock
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Symbol) == "" {
		s.writeError(w, r, badRequest("Symbol is required"))
		return
	}
	result, err := s.deps.Portfolio.AddStock(r.Context(), req)
	s.respond(w, r, result, err)
}

func (s *Server) handleUpdatePrice(w http.ResponseWriter, r *http.Request) {
	var req updatePriceRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.NewPrice == nil {
		s.writeError(w, r, badRequest("newPrice is required"))
		return
	}
	result, err := s.deps.Portfolio.UpdateStockPrice(r.Context(), chi.URLParam(r, "symbol"), *req.NewPrice)
	s.respond(w, r, result, err)
}

func (s *Server) handleUpdateShares(w http.ResponseWriter, r *http.Request) {
	var req updateSharesRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.NewShares == nil {
		s.writeError(w, r, badRequest("newShares is required"))
		return
	}
	result, err := s.deps.Portfolio.UpdateStockShares(r.Context(), chi.URLParam(r, "symbol"), *req.NewShares)
	s.respond(w, r, result, err)
}

func (s *Server) handleDeleteStock(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Portfolio.DeleteStock(r.Context(), chi.URLParam(r, "symbol")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearchStocks(w http.ResponseWriter, r *http.Request) {
	pattern, err := requiredQuery(r, "pattern")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.deps.Portfolio.SearchStocks(r.Context(), pattern)
	s.respond(w, r, result, err)
}

func (s *Server) handlePortfolioValue(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.Portfolio.CalculatePortfolioValue(r.Context())
	s.respond(w, r, result, err)
}
