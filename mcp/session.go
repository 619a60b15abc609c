package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
)

const (
	latestProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	clientName            = "folio"
	clientVersion         = "1.0.0"
)

// protocolVersions are tried in order during the HTTP handshake.
var protocolVersions = []string{
	latestProtocolVersion,
	"2024-11-05", // Older stable version
}

// ServerSpec describes how to reach an MCP server. Exactly one of Command
// (stdio) or URL (streamable HTTP) is used; Command wins when both are set.
type ServerSpec struct {
	Name    string
	Command string
	URL     string
	Args    []string
	Env     []string
}

// ConnectOptions bounds the start-up retry loop.
type ConnectOptions struct {
	MaxRetries     uint64
	InitialBackoff time.Duration
	MaxElapsed     time.Duration
}

// DefaultConnectOptions retries a handful of times over at most a minute.
func DefaultConnectOptions() ConnectOptions {
	return ConnectOptions{
		MaxRetries:     5,
		InitialBackoff: 500 * time.Millisecond,
		MaxElapsed:     time.Minute,
	}
}

// Connect opens a session to the server described by spec, retrying with
// exponential backoff while the server is coming up. A spec with neither a
// command nor a URL fails immediately.
func Connect(ctx context.Context, logger zerolog.Logger, spec ServerSpec, opts ConnectOptions) (*client.Client, error) {
	if spec.Command == "" && spec.URL == "" {
		return nil, &ConfigurationError{Message: fmt.Sprintf("MCP server %q has neither command nor url", spec.Name)}
	}

	logger = logger.With().Str("component", "mcpConnect").Str("server", spec.Name).Logger()

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = opts.InitialBackoff
	eb.Multiplier = 2.0
	eb.MaxElapsedTime = opts.MaxElapsed
	eb.RandomizationFactor = 0.2 // 20% jitter
	eb.Reset()
	b := backoff.WithContext(backoff.WithMaxRetries(eb, opts.MaxRetries), ctx)

	attempt := 0
	var session *client.Client
	operation := func() error {
		attempt++
		var err error
		if spec.Command != "" {
			session, err = NewStdioSession(ctx, logger, spec.Command, spec.Args, spec.Env)
		} else {
			session, err = NewHTTPSession(ctx, logger, spec.URL)
		}
		if err != nil {
			logger.Warn().Int("attempt", attempt).Err(err).Msg("MCP session start failed")
			return err
		}
		return nil
	}

	if err := backoff.Retry(operation, b); err != nil {
		return nil, fmt.Errorf("failed to connect to MCP server %q after %d attempts: %w", spec.Name, attempt, err)
	}
	return session, nil
}

// initialize performs the MCP handshake, trying each protocol version in turn.
func initialize(ctx context.Context, c *client.Client, versions []string) (string, error) {
	var lastErr error
	for _, version := range versions {
		initReq := mcp.InitializeRequest{
			Params: mcp.InitializeParams{
				ProtocolVersion: version,
				Capabilities:    mcp.ClientCapabilities{},
				ClientInfo: mcp.Implementation{
					Name:    clientName,
					Version: clientVersion,
				},
			},
		}
		if _, err := c.Initialize(ctx, initReq); err != nil {
			lastErr = err
			continue
		}
		return version, nil
	}
	return "", fmt.Errorf("failed to initialize MCP client: %w", lastErr)
}
