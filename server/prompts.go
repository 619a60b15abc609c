package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mlapp/folio/history"
	"github.com/mlapp/folio/llm"
	"github.com/samber/lo"
)

func (s *Server) promptRoutes(r chi.Router) {
	r.Get("/stock-analysis/{symbol}", s.handleStockAnalysisPrompt)
	r.Get("/portfolio-review", s.handlePortfolioReviewPrompt)
	r.Get("/investment-advice", s.handleInvestmentAdvicePrompt)

	r.Post("/generate-ai-response", s.handleGenerate)
	r.Get("/available-providers", s.handleAvailableProviders)

	r.Post("/save", s.handleSaveHistory)
	r.Get("/history", s.handleListHistory)
	r.Get("/history/paginated", s.handlePageHistory)
	r.Get("/history/{id}", s.handleGetHistory)
	r.Delete("/history/{id}", s.handleDeleteHistory)
}

func (s *Server) handleStockAnalysisPrompt(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.Portfolio.StockAnalysisPrompt(r.Context(), chi.URLParam(r, "symbol"))
	s.respond(w, r, result, err)
}

func (s *Server) handlePortfolioReviewPrompt(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.Portfolio.PortfolioReviewPrompt(r.Context(), r.URL.Query().Get("focus"))
	s.respond(w, r, result, err)
}

func (s *Server) handleInvestmentAdvicePrompt(w http.ResponseWriter, r *http.Request) {
	raw, err := requiredQuery(r, "amount")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		s.writeError(w, r, badRequest("Parameter 'amount' must be a number: %q", raw))
		return
	}
	result, err := s.deps.Portfolio.InvestmentAdvicePrompt(r.Context(), amount, r.URL.Query().Get("riskTolerance"))
	s.respond(w, r, result, err)
}

// generateRequest is the body of POST /generate-ai-response.
type generateRequest struct {
	Provider    string   `json:"provider"`
	Prompt      string   `json:"prompt"`
	Model       *string  `json:"model,omitempty"`
	MaxTokens   *int     `json:"maxTokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

func (req generateRequest) toLLM() llm.Request {
	out := llm.Request{
		Provider: strings.TrimSpace(req.Provider),
		Prompt:   req.Prompt,
		Overrides: llm.Overrides{
			MaxTokens:   llm.FromPtr(req.MaxTokens),
			Temperature: llm.FromPtr(req.Temperature),
		},
	}
	if req.Model != nil && strings.TrimSpace(*req.Model) != "" {
		out.Model = llm.Some(strings.TrimSpace(*req.Model))
	}
	return out
}

// handleGenerate checks provider availability before validating the prompt,
// so an unconfigured provider is reported even for an empty request.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	req := body.toLLM()

	provider := req.Provider
	if provider == "" {
		provider = s.deps.LLM.DefaultProvider()
	}
	if !s.deps.LLM.IsAvailable(provider) {
		s.writeError(w, r, &apiError{
			status:  http.StatusBadGateway,
			kind:    kindLLM,
			message: "Provider not available or not configured: " + provider,
		})
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, badRequest("Prompt is required"))
		return
	}

	resp, err := s.deps.LLM.SendPrompt(r.Context(), req)
	s.respond(w, r, resp, err)
}

func (s *Server) handleAvailableProviders(w http.ResponseWriter, r *http.Request) {
	names := lo.Map(s.deps.LLM.ListAvailable(), func(p llm.Provider, _ int) string {
		return p.String()
	})
	s.writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleSaveHistory(w http.ResponseWriter, r *http.Request) {
	var req history.SaveRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.deps.History.Save(r.Context(), req)
	s.respond(w, r, result, err)
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Has("promptType") {
		records, err := s.deps.History.ListByType(r.Context(), q.Get("promptType"))
		s.respond(w, r, records, err)
		return
	}
	records, err := s.deps.History.List(r.Context())
	s.respond(w, r, records, err)
}

func (s *Server) handlePageHistory(w http.ResponseWriter, r *http.Request) {
	page, err := intQuery(r, "page", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	size, err := intQuery(r, "size", history.DefaultPageSize)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if page < 0 || size < 1 {
		s.writeError(w, r, badRequest("Page must be >= 0 and size >= 1"))
		return
	}

	q := r.URL.Query()
	query := history.PageQuery{
		PromptType: q.Get("promptType"),
		Page:       page,
		Size:       size,
		Sort:       history.ParseSortOrder(q.Get("sort")),
	}
	if _, err := query.Offset(); err != nil {
		s.writeError(w, r, badRequest("%s", err.Error()))
		return
	}
	result, err := s.deps.History.Page(r.Context(), query)
	s.respond(w, r, result, err)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	id, err := historyID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	record, err := s.deps.History.Get(r.Context(), id)
	s.respond(w, r, record, err)
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id, err := historyID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.History.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func historyID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, badRequest("Invalid history id: %q", raw)
	}
	return id, nil
}
