package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mlapp/folio/portfolio"
)

func (s *Server) marketRoutes(r chi.Router) {
	r.Get("/quote/{symbol}", s.handleQuote)
	r.Get("/historical/{symbol}", s.handleHistorical)
	r.Post("/refresh-prices", s.handleRefreshPrices)
	r.Get("/search", s.handleSymbolSearch)
	r.Get("/api-usage", s.handleAPIUsage)
	r.Get("/indicators/{indicator}/{symbol}", s.handleIndicator)
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.Portfolio.FetchRealtimeQuote(r.Context(), chi.URLParam(r, "symbol"))
	s.respond(w, r, result, err)
}

func (s *Server) handleHistorical(w http.ResponseWriter, r *http.Request) {
	interval, err := requiredQuery(r, "interval")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	outputSize, err := optionalInt(r, "outputSize")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.deps.Portfolio.GetHistoricalData(r.Context(), chi.URLParam(r, "symbol"), interval, outputSize)
	s.respond(w, r, result, err)
}

func (s *Server) handleRefreshPrices(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.Portfolio.RefreshAllPrices(r.Context())
	s.respond(w, r, result, err)
}

func (s *Server) handleSymbolSearch(w http.ResponseWriter, r *http.Request) {
	query, err := requiredQuery(r, "query")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.deps.Portfolio.SearchStockSymbols(r.Context(), query)
	s.respond(w, r, result, err)
}

func (s *Server) handleAPIUsage(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.Portfolio.GetAPIUsage(r.Context())
	s.respond(w, r, result, err)
}

func (s *Server) handleIndicator(w http.ResponseWriter, r *http.Request) {
	indicator, err := portfolio.ParseIndicator(chi.URLParam(r, "indicator"))
	if err != nil {
		s.writeError(w, r, &apiError{status: http.StatusNotFound, kind: kindNotFound, message: err.Error()})
		return
	}
	timePeriod, err := optionalInt(r, "timePeriod")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	result, err := s.deps.Portfolio.GetIndicator(r.Context(), indicator, chi.URLParam(r, "symbol"), portfolio.IndicatorQuery{
		TimePeriod: timePeriod,
		Interval:   strings.TrimSpace(q.Get("interval")),
		SeriesType: strings.TrimSpace(q.Get("seriesType")),
	})
	s.respond(w, r, result, err)
}
