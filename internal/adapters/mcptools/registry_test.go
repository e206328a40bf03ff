package mcptools

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestToPortsSchemaCarriesNameAndDescription(t *testing.T) {
	tool := mcp.Tool{
		Name:        "search_notes",
		Description: "search the notes database",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"query": map[string]any{"type": "string"}},
		},
	}
	out := toPortsSchema(tool)
	if out.Name != "search_notes" || out.Description != "search the notes database" {
		t.Fatalf("unexpected ports.Tool: %+v", out)
	}
	if out.Schema["type"] != "object" {
		t.Errorf("expected schema type to round-trip through JSON, got %+v", out.Schema)
	}
}

func TestConcatResultTextJoinsTextBlocks(t *testing.T) {
	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: "first "},
			mcp.TextContent{Type: "text", Text: "second"},
		},
	}
	if got := concatResultText(result); got != "first second" {
		t.Errorf("expected concatenated text, got %q", got)
	}
}

func TestConcatResultTextNilResultIsEmpty(t *testing.T) {
	if got := concatResultText(nil); got != "" {
		t.Errorf("expected empty string for a nil result, got %q", got)
	}
}

func TestConcatResultTextSkipsNonTextContent(t *testing.T) {
	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.ImageContent{Type: "image", Data: "base64data", MIMEType: "image/png"},
			mcp.TextContent{Type: "text", Text: "only this"},
		},
	}
	if got := concatResultText(result); got != "only this" {
		t.Errorf("expected image content to be skipped, got %q", got)
	}
}
