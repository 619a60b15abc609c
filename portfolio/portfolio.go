// Package portfolio maps typed portfolio, market-data, prompt and resource
// operations onto MCP tool, prompt and resource calls.
package portfolio

import (
	"context"

	"github.com/mlapp/folio/mcp"
	"github.com/rs/zerolog"
)

// Tool names exposed by the portfolio MCP server.
const (
	ToolListAllStocks           = "list-all-stocks"
	ToolGetStock                = "get-stock"
	ToolAddStock                = "add-stock"
	ToolUpdateStockPrice        = "update-stock-price"
	ToolUpdateStockShares       = "update-stock-shares"
	ToolDeleteStock             = "delete-stock"
	ToolSearchStocks            = "search-stocks"
	ToolCalculatePortfolioValue = "calculate-portfolio-value"
)

// Backend is the MCP surface the Service needs. *mcp.Client implements it.
type Backend interface {
	Invoke(ctx context.Context, tool string, args *mcp.Args) (any, error)
	GetPrompt(ctx context.Context, name string, args map[string]string) (string, error)
	ReadResource(ctx context.Context, uri string) (string, error)
}

var _ Backend = (*mcp.Client)(nil)

// Service exposes the portfolio server's operations with typed arguments.
// Results are the decoded tool payloads, passed through unchanged.
type Service struct {
	backend Backend
	logger  zerolog.Logger
}

// NewService creates a Service over backend.
func NewService(backend Backend, logger zerolog.Logger) *Service {
	return &Service{
		backend: backend,
		logger:  logger.With().Str("component", "portfolioService").Logger(),
	}
}

// NewStock describes a holding to add. Nil fields are left to the server's defaults.
type NewStock struct {
	Symbol string   `json:"symbol"`
	Name   *string  `json:"name,omitempty"`
	Price  *float64 `json:"price,omitempty"`
	Shares *int     `json:"shares,omitempty"`
}

// ListAllStocks returns every holding.
func (s *Service) ListAllStocks(ctx context.Context) (any, error) {
	return s.call(ctx, ToolListAllStocks, nil)
}

// GetStock returns one holding.
func (s *Service) GetStock(ctx context.Context, symbol string) (any, error) {
	return s.call(ctx, ToolGetStock, mcp.NewArgs().Set("symbol", symbol))
}

// AddStock adds a holding. Only the optional fields that are set are sent.
func (s *Service) AddStock(ctx context.Context, stock NewStock) (any, error) {
	args := mcp.NewArgs().Set("symbol", stock.Symbol)
	mcp.SetIfPresent(args, "name", stock.Name)
	mcp.SetIfPresent(args, "price", stock.Price)
	mcp.SetIfPresent(args, "shares", stock.Shares)
	return s.call(ctx, ToolAddStock, args)
}

// UpdateStockPrice sets the stored price of a holding.
func (s *Service) UpdateStockPrice(ctx context.Context, symbol string, newPrice float64) (any, error) {
	return s.call(ctx, ToolUpdateStockPrice, mcp.NewArgs().
		Set("symbol", symbol).
		Set("newPrice", newPrice))
}

// UpdateStockShares sets the share count of a holding.
func (s *Service) UpdateStockShares(ctx context.Context, symbol string, newShares int) (any, error) {
	return s.call(ctx, ToolUpdateStockShares, mcp.NewArgs().
		Set("symbol", symbol).
		Set("newShares", newShares))
}

// DeleteStock removes a holding. The tool's payload is discarded.
func (s *Service) DeleteStock(ctx context.Context, symbol string) error {
	_, err := s.call(ctx, ToolDeleteStock, mcp.NewArgs().Set("symbol", symbol))
	return err
}

// SearchStocks returns holdings whose symbol or name matches pattern.
func (s *Service) SearchStocks(ctx context.Context, pattern string) (any, error) {
	return s.call(ctx, ToolSearchStocks, mcp.NewArgs().Set("pattern", pattern))
}

// CalculatePortfolioValue returns the total value of all holdings.
func (s *Service) CalculatePortfolioValue(ctx context.Context) (any, error) {
	return s.call(ctx, ToolCalculatePortfolioValue, nil)
}

func (s *Service) call(ctx context.Context, tool string, args *mcp.Args) (any, error) {
	if args == nil {
		args = mcp.NewArgs()
	}
	s.logger.Debug().Str("tool", tool).Int("arg_count", args.Len()).Msg("Calling tool")
	return s.backend.Invoke(ctx, tool, args)
}
