package mcp

import (
	"errors"
	"fmt"
)

// ErrNoSession is reported when no MCP server session is configured.
var ErrNoSession = errors.New("no MCP session configured")

// ConfigurationError reports that the client cannot serve calls at all
// because of how it was set up. It is distinct from a failing tool.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ToolInvocationError reports a failed tool call. Err is set when the call
// never produced a result (transport failure); otherwise the server flagged
// the result as an error and Message carries its text.
type ToolInvocationError struct {
	Tool    string
	Message string
	Err     error
}

func (e *ToolInvocationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tool %s: %s: %v", e.Tool, e.Message, e.Err)
	}
	return fmt.Sprintf("tool %s: %s", e.Tool, e.Message)
}

func (e *ToolInvocationError) Unwrap() error {
	return e.Err
}

// IsTransportFailure reports whether the call failed before the server answered.
func (e *ToolInvocationError) IsTransportFailure() bool {
	return e.Err != nil
}

// IsConfigurationError checks if an error is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// IsToolInvocationError checks if an error is a ToolInvocationError.
func IsToolInvocationError(err error) bool {
	var toolErr *ToolInvocationError
	return errors.As(err, &toolErr)
}

func noSessionError() error {
	return &ConfigurationError{Message: "MCP client is not available", Err: ErrNoSession}
}
