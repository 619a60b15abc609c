// Package client is a Go client for the foliod HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mlapp/folio/history"
	"github.com/mlapp/folio/llm"
	"github.com/mlapp/folio/mcp"
)

// DefaultAddress is where foliod listens by default.
const DefaultAddress = "localhost:8080"

// APIError is a non-2xx answer from the daemon.
type APIError struct {
	Status  int    `json:"status"`
	Kind    string `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Kind, e.Message)
}

// Client talks to a running foliod.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// Connect returns a client for the daemon at address.
// The address can be:
//   - A full URL (e.g., "http://folio.internal:8080")
//   - A host:port pair (e.g., "localhost:8080"), which is treated as http
//
// No request is made until the first call.
func Connect(address string, timeout time.Duration) (*Client, error) {
	if address == "" {
		address = DefaultAddress
	}
	if !strings.HasPrefix(address, "http://") && !strings.HasPrefix(address, "https://") {
		address = "http://" + address
	}
	u, err := url.Parse(strings.TrimRight(address, "/"))
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid daemon address %q", address)
	}
	return &Client{baseURL: u, http: &http.Client{Timeout: timeout}}, nil
}

// GenerateRequest asks the daemon to send a prompt to an LLM provider.
type GenerateRequest struct {
	Provider    string   `json:"provider,omitempty"`
	Prompt      string   `json:"prompt"`
	Model       string   `json:"model,omitempty"`
	MaxTokens   *int     `json:"maxTokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// Generate sends a prompt through the daemon's dispatch router.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*llm.Response, error) {
	var resp llm.Response
	if err := c.do(ctx, http.MethodPost, "/api/prompts/generate-ai-response", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AvailableProviders lists the providers the daemon can dispatch to.
func (c *Client) AvailableProviders(ctx context.Context) ([]string, error) {
	var names []string
	err := c.do(ctx, http.MethodGet, "/api/prompts/available-providers", nil, nil, &names)
	return names, err
}

// Health returns the daemon's MCP health. A DOWN status is returned with a
// nil error.
func (c *Client) Health(ctx context.Context) (*mcp.HealthStatus, error) {
	var status mcp.HealthStatus
	err := c.do(ctx, http.MethodGet, "/api/metadata/health", nil, nil, &status)
	var apiErr *APIError
	if err != nil && !(errors.As(err, &apiErr) && apiErr.Status == http.StatusServiceUnavailable) {
		return nil, err
	}
	return &status, nil
}

// ListStocks returns every holding as decoded JSON.
func (c *Client) ListStocks(ctx context.Context) (any, error) {
	var out any
	err := c.do(ctx, http.MethodGet, "/api/portfolio/stocks", nil, nil, &out)
	return out, err
}

// Quote returns a live quote for symbol as decoded JSON.
func (c *Client) Quote(ctx context.Context, symbol string) (any, error) {
	var out any
	err := c.do(ctx, http.MethodGet, "/api/market/quote/"+url.PathEscape(symbol), nil, nil, &out)
	return out, err
}

// SaveHistory stores a prompt/response exchange.
func (c *Client) SaveHistory(ctx context.Context, req history.SaveRequest) (*history.SaveResult, error) {
	var out history.SaveResult
	if err := c.do(ctx, http.MethodPost, "/api/prompts/save", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History returns saved exchanges, newest first. An empty promptType lists all.
func (c *Client) History(ctx context.Context, promptType string) ([]history.Record, error) {
	query := url.Values{}
	if promptType != "" {
		query.Set("promptType", promptType)
	}
	var out []history.Record
	err := c.do(ctx, http.MethodGet, "/api/prompts/history", query, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.baseURL
	u.Path += path
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // No remedy for body close errors

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(data, apiErr); jsonErr != nil || apiErr.Kind == "" {
			apiErr.Kind = http.StatusText(resp.StatusCode)
			apiErr.Message = strings.TrimSpace(string(data))
		}
		apiErr.Status = resp.StatusCode
		// Health answers 503 with a status body worth decoding.
		if out != nil && resp.StatusCode == http.StatusServiceUnavailable {
			_ = json.Unmarshal(data, out)
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
