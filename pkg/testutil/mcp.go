package testutil

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// ToolRequest builds a tool call request the way an MCP client would send it.
func ToolRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

// ResultTexts returns the text blocks of a tool result in order.
func ResultTexts(result *mcp.CallToolResult) []string {
	if result == nil {
		return nil
	}
	var texts []string
	for _, content := range result.Content {
		if text, ok := content.(mcp.TextContent); ok {
			texts = append(texts, text.Text)
		}
	}
	return texts
}

// FirstText returns the first text block of a tool result, or "".
func FirstText(result *mcp.CallToolResult) string {
	texts := ResultTexts(result)
	if len(texts) == 0 {
		return ""
	}
	return texts[0]
}
