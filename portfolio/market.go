package portfolio

import (
	"context"
	"fmt"
	"strings"

	"github.com/mlapp/folio/mcp"
)

// Market-data tool names.
const (
	ToolFetchRealtimeQuote = "fetch-realtime-quote"
	ToolGetHistoricalData  = "get-historical-data"
	ToolRefreshAllPrices   = "refresh-all-prices"
	ToolSearchStockSymbols = "search-stock-symbols"
	ToolGetAPIUsage        = "get-api-usage"
)

// Indicator is a technical indicator served by the market-data tools.
type Indicator string

const (
	IndicatorSMA    Indicator = "sma"
	IndicatorEMA    Indicator = "ema"
	IndicatorRSI    Indicator = "rsi"
	IndicatorMACD   Indicator = "macd"
	IndicatorBBands Indicator = "bbands"
)

// Tool returns the MCP tool name serving the indicator.
func (i Indicator) Tool() string {
	return "get-" + string(i)
}

// ParseIndicator resolves a case-insensitive indicator name.
func ParseIndicator(name string) (Indicator, error) {
	switch ind := Indicator(strings.ToLower(strings.TrimSpace(name))); ind {
	case IndicatorSMA, IndicatorEMA, IndicatorRSI, IndicatorMACD, IndicatorBBands:
		return ind, nil
	default:
		return "", fmt.Errorf("unknown indicator: %s", name)
	}
}

// IndicatorQuery holds the optional indicator parameters. Nil or blank
// values are not sent. MACD has no time period and ignores TimePeriod.
type IndicatorQuery struct {
	TimePeriod *int
	Interval   string
	SeriesType string
}

// SymbolSearch is the shape returned by SearchStockSymbols.
type SymbolSearch struct {
	Data   any    `json:"data"`
	Status string `json:"status"`
}

// FetchRealtimeQuote returns a live quote for symbol.
func (s *Service) FetchRealtimeQuote(ctx context.Context, symbol string) (any, error) {
	return s.call(ctx, ToolFetchRealtimeQuote, mcp.NewArgs().Set("symbol", symbol))
}

// GetHistoricalData returns a price series. outputSize is optional.
func (s *Service) GetHistoricalData(ctx context.Context, symbol, interval string, outputSize *int) (any, error) {
	args := mcp.NewArgs().
		Set("symbol", symbol).
		Set("interval", interval)
	mcp.SetIfPresent(args, "outputSize", outputSize)
	return s.call(ctx, ToolGetHistoricalData, args)
}

// RefreshAllPrices asks the server to refresh the price of every holding.
func (s *Service) RefreshAllPrices(ctx context.Context) (any, error) {
	return s.call(ctx, ToolRefreshAllPrices, nil)
}

// SearchStockSymbols looks up listed symbols matching query. The payload is
// always wrapped as {"data": payload, "status": "ok"}.
func (s *Service) SearchStockSymbols(ctx context.Context, query string) (*SymbolSearch, error) {
	payload, err := s.call(ctx, ToolSearchStockSymbols, mcp.NewArgs().Set("query", query))
	if err != nil {
		return nil, err
	}
	return &SymbolSearch{Data: payload, Status: "ok"}, nil
}

// GetAPIUsage returns the market-data provider's quota usage.
func (s *Service) GetAPIUsage(ctx context.Context) (any, error) {
	return s.call(ctx, ToolGetAPIUsage, nil)
}

// GetIndicator computes a technical indicator for symbol.
func (s *Service) GetIndicator(ctx context.Context, indicator Indicator, symbol string, q IndicatorQuery) (any, error) {
	args := mcp.NewArgs().Set("symbol", symbol)
	if indicator != IndicatorMACD {
		mcp.SetIfPresent(args, "timePeriod", q.TimePeriod)
	}
	// Blank strings count as absent; the HTTP layer cannot tell them apart.
	args.SetIfNotBlank("interval", q.Interval)
	args.SetIfNotBlank("seriesType", q.SeriesType)
	return s.call(ctx, indicator.Tool(), args)
}
