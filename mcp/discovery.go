package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/samber/lo"
)

// ToolDefinition represents an MCP tool definition.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// PromptArgument describes one argument of a server prompt.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// PromptDefinition represents an MCP prompt definition.
type PromptDefinition struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Arguments   []PromptArgument `json:"arguments"`
}

// ResourceDefinition represents an MCP resource definition.
type ResourceDefinition struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// Health status values.
const (
	HealthUp   = "UP"
	HealthDown = "DOWN"
)

// HealthStatus summarises whether the MCP server answers discovery requests.
type HealthStatus struct {
	Status             string `json:"status"`
	Message            string `json:"message"`
	MCPClientConnected bool   `json:"mcpClientConnected"`
	ToolsCount         int    `json:"toolsCount"`
	PromptsCount       int    `json:"promptsCount"`
	ResourcesCount     int    `json:"resourcesCount"`
}

// Healthy reports whether the status is UP.
func (h HealthStatus) Healthy() bool {
	return h.Status == HealthUp
}

// ListTools returns all tools available from the MCP server.
func (c *Client) ListTools(ctx context.Context) ([]ToolDefinition, error) {
	if c.session == nil {
		return nil, noSessionError()
	}

	result, err := c.session.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	tools := lo.Map(result.Tools, func(tool mcp.Tool, _ int) ToolDefinition {
		inputSchema := make(map[string]interface{})
		inputSchema["type"] = tool.InputSchema.Type
		if tool.InputSchema.Properties != nil {
			inputSchema["properties"] = tool.InputSchema.Properties
		}
		if len(tool.InputSchema.Required) > 0 {
			inputSchema["required"] = tool.InputSchema.Required
		}

		return ToolDefinition{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: inputSchema,
		}
	})

	return tools, nil
}

// ListPrompts returns all prompts available from the MCP server.
func (c *Client) ListPrompts(ctx context.Context) ([]PromptDefinition, error) {
	if c.session == nil {
		return nil, noSessionError()
	}

	result, err := c.session.ListPrompts(ctx, mcp.ListPromptsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}

	return lo.Map(result.Prompts, func(p mcp.Prompt, _ int) PromptDefinition {
		return PromptDefinition{
			Name:        p.Name,
			Description: p.Description,
			Arguments: lo.Map(p.Arguments, func(a mcp.PromptArgument, _ int) PromptArgument {
				return PromptArgument{Name: a.Name, Description: a.Description, Required: a.Required}
			}),
		}
	}), nil
}

// ListResources returns all resources available from the MCP server.
func (c *Client) ListResources(ctx context.Context) ([]ResourceDefinition, error) {
	if c.session == nil {
		return nil, noSessionError()
	}

	result, err := c.session.ListResources(ctx, mcp.ListResourcesRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}

	return lo.Map(result.Resources, func(r mcp.Resource, _ int) ResourceDefinition {
		return ResourceDefinition{
			URI:         r.URI,
			Name:        r.Name,
			Description: r.Description,
			MimeType:    r.MIMEType,
		}
	}), nil
}

// Health lists tools, prompts and resources. All three must succeed for the
// status to be UP; the first failure turns it DOWN with zero counts.
func (c *Client) Health(ctx context.Context) HealthStatus {
	tools, err := c.ListTools(ctx)
	if err != nil {
		return downStatus(err)
	}
	prompts, err := c.ListPrompts(ctx)
	if err != nil {
		return downStatus(err)
	}
	resources, err := c.ListResources(ctx)
	if err != nil {
		return downStatus(err)
	}

	return HealthStatus{
		Status:             HealthUp,
		Message:            "MCP Client is connected and operational",
		MCPClientConnected: true,
		ToolsCount:         len(tools),
		PromptsCount:       len(prompts),
		ResourcesCount:     len(resources),
	}
}

func downStatus(err error) HealthStatus {
	return HealthStatus{
		Status:  HealthDown,
		Message: "MCP Client connection failed: " + err.Error(),
	}
}
