package mcp

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mark3labs/mcp-go/client"
	"github.com/rs/zerolog"
)

// NewHTTPSession connects to an MCP server over the streamable HTTP
// transport. The latest protocol version is tried first, then older ones.
func NewHTTPSession(ctx context.Context, logger zerolog.Logger, baseURL string) (*client.Client, error) {
	logger = logger.With().Str("component", "httpMCPClient").Logger()
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required for HTTP MCP client")
	}

	// Validate URL
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid baseURL %q", baseURL)
	}

	mcpClient, err := client.NewStreamableHttpClient(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP MCP client: %w", err)
	}

	if err := mcpClient.Start(ctx); err != nil {
		_ = mcpClient.Close()
		return nil, fmt.Errorf("failed to start HTTP MCP client: %w", err)
	}

	version, err := initialize(ctx, mcpClient, protocolVersions)
	if err != nil {
		_ = mcpClient.Close()
		return nil, err
	}

	logger.Info().Str("base_url", baseURL).Str("protocol_version", version).Msg("HTTP MCP session initialized")
	return mcpClient, nil
}
