package portfolio

import (
	"context"
	"strconv"
	"strings"
)

// Prompt names and resource URIs exposed by the portfolio MCP server.
const (
	PromptStockAnalysis    = "stock-analysis"
	PromptPortfolioReview  = "portfolio-review"
	PromptInvestmentAdvice = "investment-advice"

	ResourcePortfolioSummary = "portfolio://summary"
	ResourcePortfolioList    = "portfolio://list"
	stockResourcePrefix      = "stock://"
)

// PromptResult is a resolved prompt as returned to HTTP callers.
type PromptResult struct {
	PromptName string `json:"promptName"`
	Content    string `json:"content"`
}

// ResourceContent is a read resource as returned to HTTP callers.
type ResourceContent struct {
	URI     string `json:"uri"`
	Content string `json:"content"`
}

// StockAnalysisPrompt resolves the stock-analysis prompt for symbol.
func (s *Service) StockAnalysisPrompt(ctx context.Context, symbol string) (*PromptResult, error) {
	return s.prompt(ctx, PromptStockAnalysis, map[string]string{"symbol": symbol})
}

// PortfolioReviewPrompt resolves the portfolio-review prompt. A blank focus is not sent.
func (s *Service) PortfolioReviewPrompt(ctx context.Context, focus string) (*PromptResult, error) {
	args := map[string]string{}
	if strings.TrimSpace(focus) != "" {
		args["focus"] = focus
	}
	return s.prompt(ctx, PromptPortfolioReview, args)
}

// InvestmentAdvicePrompt resolves the investment-advice prompt. Prompt
// arguments are strings, so amount is sent in decimal form.
func (s *Service) InvestmentAdvicePrompt(ctx context.Context, amount float64, riskTolerance string) (*PromptResult, error) {
	args := map[string]string{"amount": strconv.FormatFloat(amount, 'f', -1, 64)}
	if strings.TrimSpace(riskTolerance) != "" {
		args["riskTolerance"] = riskTolerance
	}
	return s.prompt(ctx, PromptInvestmentAdvice, args)
}

// StockResource reads stock://{symbol}.
func (s *Service) StockResource(ctx context.Context, symbol string) (*ResourceContent, error) {
	return s.resource(ctx, stockResourcePrefix+symbol)
}

// PortfolioSummary reads portfolio://summary.
func (s *Service) PortfolioSummary(ctx context.Context) (*ResourceContent, error) {
	return s.resource(ctx, ResourcePortfolioSummary)
}

// StockList reads portfolio://list.
func (s *Service) StockList(ctx context.Context) (*ResourceContent, error) {
	return s.resource(ctx, ResourcePortfolioList)
}

func (s *Service) prompt(ctx context.Context, name string, args map[string]string) (*PromptResult, error) {
	s.logger.Debug().Str("prompt", name).Msg("Getting prompt")
	text, err := s.backend.GetPrompt(ctx, name, args)
	if err != nil {
		return nil, err
	}
	return &PromptResult{PromptName: name + "-prompt", Content: text}, nil
}

func (s *Service) resource(ctx context.Context, uri string) (*ResourceContent, error) {
	s.logger.Debug().Str("uri", uri).Msg("Reading resource")
	text, err := s.backend.ReadResource(ctx, uri)
	if err != nil {
		return nil, err
	}
	return &ResourceContent{URI: uri, Content: text}, nil
}
