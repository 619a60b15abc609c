package mcp

import (
	"context"
	"errors"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
)

// fakeSession is an in-memory Session that records requests.
type fakeSession struct {
	mu sync.Mutex

	callResult   *mcp.CallToolResult
	callErr      error
	promptResult *mcp.GetPromptResult
	readResult   *mcp.ReadResourceResult
	listErr      error

	tools     []mcp.Tool
	prompts   []mcp.Prompt
	resources []mcp.Resource

	calls  []mcp.CallToolRequest
	prompt mcp.GetPromptRequest
	read   mcp.ReadResourceRequest
	closed bool
}

var errTransport = errors.New("connection reset by peer")

func (f *fakeSession) ListTools(ctx context.Context, request mcp.ListToolsRequest) (*mcp.ListToolsResult, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &mcp.ListToolsResult{Tools: f.tools}, nil
}

func (f *fakeSession) ListPrompts(ctx context.Context, request mcp.ListPromptsRequest) (*mcp.ListPromptsResult, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &mcp.ListPromptsResult{Prompts: f.prompts}, nil
}

func (f *fakeSession) ListResources(ctx context.Context, request mcp.ListResourcesRequest) (*mcp.ListResourcesResult, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &mcp.ListResourcesResult{Resources: f.resources}, nil
}

func (f *fakeSession) CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, request)
	f.mu.Unlock()
	if f.callErr != nil {
		return nil, f.callErr
	}
	return f.callResult, nil
}

func (f *fakeSession) GetPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	f.prompt = request
	if f.callErr != nil {
		return nil, f.callErr
	}
	return f.promptResult, nil
}

func (f *fakeSession) ReadResource(ctx context.Context, request mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	f.read = request
	if f.callErr != nil {
		return nil, f.callErr
	}
	return f.readResult, nil
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent(text)}}
}
