package mcp

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// defaultToolErrorMessage is used when an error result carries no text.
const defaultToolErrorMessage = "Tool call failed"

// Empty marks a successful tool result that carried no content. It is
// distinct from a present but falsy payload and encodes as JSON null.
type Empty struct{}

// MarshalJSON implements json.Marshaler.
func (Empty) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// NoData is the value returned for a successful result without content.
var NoData = Empty{}

// IsNoData reports whether v is the empty-result marker.
func IsNoData(v any) bool {
	_, ok := v.(Empty)
	return ok
}

// DecodeToolResult turns a raw tool result into a value or an error.
// Only the first text chunk is read. It is parsed as JSON (numbers kept as
// json.Number); text that is not JSON is returned unchanged.
func DecodeToolResult(tool string, result *mcp.CallToolResult) (any, error) {
	if result == nil {
		return NoData, nil
	}

	text, hasText := firstText(result.Content)

	if result.IsError {
		msg := defaultToolErrorMessage
		if hasText && strings.TrimSpace(text) != "" {
			msg = text
		}
		return nil, &ToolInvocationError{Tool: tool, Message: msg}
	}

	if len(result.Content) == 0 {
		return NoData, nil
	}
	if !hasText {
		// Content without any text chunk, e.g. only images.
		return NoData, nil
	}

	return decodePayload(text), nil
}

func decodePayload(text string) any {
	decoder := json.NewDecoder(bytes.NewReader([]byte(text)))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return text
	}
	// Trailing data after the first JSON value means the text was not a single document.
	if decoder.More() {
		return text
	}
	return value
}

// firstText returns the text of the first text-bearing content chunk.
func firstText(content []mcp.Content) (string, bool) {
	for _, c := range content {
		if text, ok := textOf(c); ok {
			return text, true
		}
	}
	return "", false
}

func textOf(c mcp.Content) (string, bool) {
	switch v := c.(type) {
	case mcp.TextContent:
		return v.Text, true
	case *mcp.TextContent:
		if v == nil {
			return "", false
		}
		return v.Text, true
	default:
		return "", false
	}
}
