package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
)

// Session is the protocol session the Client talks to. *client.Client from
// mcp-go satisfies it and is safe for concurrent requests.
type Session interface {
	ListTools(ctx context.Context, request mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	ListPrompts(ctx context.Context, request mcp.ListPromptsRequest) (*mcp.ListPromptsResult, error)
	ListResources(ctx context.Context, request mcp.ListResourcesRequest) (*mcp.ListResourcesResult, error)
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
	GetPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error)
	ReadResource(ctx context.Context, request mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error)
	Close() error
}

var _ Session = (*client.Client)(nil)

// CallObserver is notified after every tool call with its outcome.
type CallObserver func(tool string, elapsed time.Duration, err error)

// Client invokes tools, prompts and resources on a single MCP session.
type Client struct {
	session   Session
	observers []CallObserver
	logger    zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithCallObserver registers an observer for tool calls.
func WithCallObserver(obs CallObserver) ClientOption {
	return func(c *Client) {
		c.observers = append(c.observers, obs)
	}
}

// NewClient creates a Client over session. A nil session is allowed: every
// call then fails with a ConfigurationError.
func NewClient(session Session, logger zerolog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		session: session,
		logger:  logger.With().Str("component", "mcpClient").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connected reports whether a session is configured.
func (c *Client) Connected() bool {
	return c.session != nil
}

// Invoke calls tool with args and decodes the result with DecodeToolResult.
// A nil args sends an empty argument object.
func (c *Client) Invoke(ctx context.Context, tool string, args *Args) (any, error) {
	if c.session == nil {
		return nil, noSessionError()
	}
	if args == nil {
		args = NewArgs()
	}

	c.logger.Debug().
		Str("tool", tool).
		Strs("args", args.Keys()).
		Msg("Invoking tool")

	start := time.Now()
	result, err := c.session.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      tool,
			Arguments: args,
		},
	})
	elapsed := time.Since(start)

	if err != nil {
		c.logger.Error().
			Str("tool", tool).
			Dur("elapsed", elapsed).
			Err(err).
			Msg("Tool call failed")
		toolErr := &ToolInvocationError{Tool: tool, Message: "tool call failed", Err: err}
		c.notify(tool, elapsed, toolErr)
		return nil, toolErr
	}

	value, err := DecodeToolResult(tool, result)
	if err != nil {
		c.logger.Warn().
			Str("tool", tool).
			Err(err).
			Msg("Tool returned an error result")
	}
	c.notify(tool, elapsed, err)
	return value, err
}

// GetPrompt resolves a server prompt and returns its flattened text.
func (c *Client) GetPrompt(ctx context.Context, name string, args map[string]string) (string, error) {
	if c.session == nil {
		return "", noSessionError()
	}

	result, err := c.session.GetPrompt(ctx, mcp.GetPromptRequest{
		Params: mcp.GetPromptParams{
			Name:      name,
			Arguments: args,
		},
	})
	if err != nil {
		c.logger.Error().Str("prompt", name).Err(err).Msg("Prompt request failed")
		return "", &ToolInvocationError{Tool: name, Message: "prompt request failed", Err: err}
	}
	return ExtractPromptText(result), nil
}

// ReadResource reads a server resource and returns its flattened text.
func (c *Client) ReadResource(ctx context.Context, uri string) (string, error) {
	if c.session == nil {
		return "", noSessionError()
	}

	result, err := c.session.ReadResource(ctx, mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: uri},
	})
	if err != nil {
		c.logger.Error().Str("uri", uri).Err(err).Msg("Resource read failed")
		return "", &ToolInvocationError{Tool: uri, Message: "resource read failed", Err: err}
	}
	return ExtractResourceText(result), nil
}

// Close closes the underlying session.
func (c *Client) Close() error {
	if c.session != nil {
		return c.session.Close()
	}
	return nil
}

func (c *Client) notify(tool string, elapsed time.Duration, err error) {
	for _, obs := range c.observers {
		obs(tool, elapsed, err)
	}
}
