package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/rs/zerolog"
)

// NewStdioSession spawns command as an MCP server speaking over stdio and
// performs the initialize handshake.
func NewStdioSession(ctx context.Context, logger zerolog.Logger, command string, args, env []string) (*client.Client, error) {
	if strings.TrimSpace(command) == "" {
		return nil, fmt.Errorf("command is required for STDIO MCP client")
	}

	logger = logger.With().Str("component", "stdioMCPClient").Logger()

	// Split command into command and args if it contains spaces
	parts := strings.Fields(command)
	cmd := parts[0]
	cmdArgs := make([]string, 0, len(parts)-1+len(args))
	cmdArgs = append(cmdArgs, parts[1:]...)
	cmdArgs = append(cmdArgs, args...)

	logger.Info().Str("command", cmd).Strs("args", cmdArgs).Int("env_var_count", len(env)).Msg("Starting STDIO MCP server")

	// The stdio transport starts the subprocess on creation.
	mcpClient, err := client.NewStdioMCPClient(cmd, env, cmdArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to create stdio MCP client: %w", err)
	}

	version, err := initialize(ctx, mcpClient, []string{latestProtocolVersion})
	if err != nil {
		_ = mcpClient.Close()
		return nil, err
	}

	logger.Info().Str("command", cmd).Str("protocol_version", version).Msg("STDIO MCP session initialized")
	return mcpClient, nil
}
