package anthropicllm

import (
	"testing"

	"github.com/mneme-ai/organism/internal/ports"
)

func TestToWireBlockText(t *testing.T) {
	block := toWireBlock(ports.ContentBlock{Type: "text", Text: "hello"})
	if block.Type != "text" || block.Text != "hello" {
		t.Fatalf("unexpected wire block: %+v", block)
	}
}

func TestToWireBlockToolUse(t *testing.T) {
	block := toWireBlock(ports.ContentBlock{
		Type:      "tool_use",
		ToolUseID: "tu_1",
		ToolName:  "execute_shell",
		ToolInput: map[string]any{"command": "ls"},
	})
	if block.Type != "tool_use" || block.ID != "tu_1" || block.Name != "execute_shell" {
		t.Fatalf("unexpected wire block: %+v", block)
	}
	if block.Input["command"] != "ls" {
		t.Errorf("expected tool input to carry through, got %+v", block.Input)
	}
}

func TestToWireBlockToolResult(t *testing.T) {
	block := toWireBlock(ports.ContentBlock{
		Type:       "tool_result",
		ToolUseID:  "tu_1",
		ToolOutput: "total 0",
		IsError:    true,
	})
	if block.Type != "tool_result" || block.ToolUseID != "tu_1" || block.Content != "total 0" || !block.IsError {
		t.Fatalf("unexpected wire block: %+v", block)
	}
}

func TestToWireMessagesPreservesRoleAndOrder(t *testing.T) {
	messages := []ports.Message{
		{Role: "user", Content: []ports.ContentBlock{{Type: "text", Text: "hi"}}},
		{Role: "assistant", Content: []ports.ContentBlock{{Type: "text", Text: "hello there"}}},
	}
	wire := toWireMessages(messages)
	if len(wire) != 2 {
		t.Fatalf("expected 2 wire messages, got %d", len(wire))
	}
	if wire[0].Role != "user" || wire[1].Role != "assistant" {
		t.Fatalf("expected roles to be preserved in order, got %+v", wire)
	}
	if wire[1].Content[0].Text != "hello there" {
		t.Errorf("expected content text to survive conversion, got %q", wire[1].Content[0].Text)
	}
}

func TestToWireToolsEmptyIsNil(t *testing.T) {
	if got := toWireTools(nil); got != nil {
		t.Errorf("expected nil for no tools, got %+v", got)
	}
}

func TestToWireToolsCarriesSchema(t *testing.T) {
	tools := []ports.Tool{{
		Name:        "execute_shell",
		Description: "runs a command",
		Schema:      map[string]any{"type": "object"},
	}}
	wire := toWireTools(tools)
	if len(wire) != 1 {
		t.Fatalf("expected 1 wire tool, got %d", len(wire))
	}
	if wire[0].Name != "execute_shell" || wire[0].Description != "runs a command" {
		t.Fatalf("unexpected wire tool: %+v", wire[0])
	}
	if wire[0].InputSchema["type"] != "object" {
		t.Errorf("expected schema to carry through, got %+v", wire[0].InputSchema)
	}
}

func TestFromWireBlocksRoundTripsToolUse(t *testing.T) {
	blocks := []wireContentBlock{
		{Type: "text", Text: "thinking..."},
		{Type: "tool_use", ID: "tu_2", Name: "execute_shell", Input: map[string]any{"command": "pwd"}},
	}
	out := fromWireBlocks(blocks)
	if len(out) != 2 {
		t.Fatalf("expected 2 content blocks, got %d", len(out))
	}
	if out[0].Type != "text" || out[0].Text != "thinking..." {
		t.Errorf("unexpected text block: %+v", out[0])
	}
	if out[1].Type != "tool_use" || out[1].ToolUseID != "tu_2" || out[1].ToolName != "execute_shell" {
		t.Errorf("unexpected tool_use block: %+v", out[1])
	}
	if out[1].ToolInput["command"] != "pwd" {
		t.Errorf("expected tool input to round-trip, got %+v", out[1].ToolInput)
	}
}

func TestNewDefaultsModelWhenEmpty(t *testing.T) {
	c := New("")
	if c.model == "" {
		t.Fatal("expected a default model when none is given")
	}
}

func TestNewPreservesExplicitModel(t *testing.T) {
	c := New("claude-opus-4-1-20250805")
	if c.model != "claude-opus-4-1-20250805" {
		t.Errorf("expected explicit model to be preserved, got %q", c.model)
	}
}
