package mcp

import (
	"strings"
	"unicode"

	"github.com/mark3labs/mcp-go/mcp"
)

// ExtractPromptText flattens the text messages of a prompt result into one
// string. Each text chunk is followed by a newline and trailing whitespace is
// trimmed from the result. Non-text messages are skipped.
func ExtractPromptText(result *mcp.GetPromptResult) string {
	if result == nil || len(result.Messages) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, msg := range result.Messages {
		if text, ok := textOf(msg.Content); ok {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	}
	return strings.TrimRightFunc(sb.String(), unicode.IsSpace)
}

// ExtractResourceText flattens the text contents of a resource read using
// the same rule as ExtractPromptText. Blob contents are skipped.
func ExtractResourceText(result *mcp.ReadResourceResult) string {
	if result == nil || len(result.Contents) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, c := range result.Contents {
		if text, ok := resourceTextOf(c); ok {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	}
	return strings.TrimRightFunc(sb.String(), unicode.IsSpace)
}

func resourceTextOf(c mcp.ResourceContents) (string, bool) {
	switch v := c.(type) {
	case mcp.TextResourceContents:
		return v.Text, true
	case *mcp.TextResourceContents:
		if v == nil {
			return "", false
		}
		return v.Text, true
	default:
		return "", false
	}
}
