// Package exectool adapts a ports.Executor (localexec or sshexec) into a
// single ports.ToolHandler the ReAct loop can call directly, the same way
// cmd/efficient-notion-mcp/main.go wraps a Go function behind mcp.NewTool's
// name/description/schema triple — this is that shape without the MCP
// transport in between, for the one tool organismd always has locally.
package exectool

import (
	"context"
	"fmt"

	"github.com/mneme-ai/organism/internal/ports"
)

const toolName = "execute_shell"

// Handler exposes executor as the "execute_shell" tool.
type Handler struct {
	executor ports.Executor
}

// New wraps executor as a ports.ToolHandler.
func New(executor ports.Executor) *Handler {
	return &Handler{executor: executor}
}

func (h *Handler) Name() string        { return toolName }
func (h *Handler) Description() string { return "Run a shell command and return its combined stdout/stderr." }

func (h *Handler) Schema() ports.Tool {
	return ports.Tool{
		Name:        toolName,
		Description: h.Description(),
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"command": map[string]any{"type": "string", "description": "the shell command to run"},
			},
			"required": []string{"command"},
		},
	}
}

// Execute runs the requested command through the wrapped executor. A
// non-nil error from the executor is treated as transient: the command may
// have merely timed out or the connection dropped, so the orchestrator
// retries it under its transient-error backoff policy.
func (h *Handler) Execute(ctx context.Context, input map[string]any) (ports.ToolOutcome, error) {
	command, _ := input["command"].(string)
	if command == "" {
		return ports.ToolOutcome{Content: "missing required \"command\" argument", IsError: true, ErrorKind: ports.ErrorPermanent}, nil
	}

	out, err := h.executor.Execute(ctx, command)
	if err != nil {
		return ports.ToolOutcome{Content: fmt.Sprintf("%s\n%v", out, err), IsError: true, ErrorKind: ports.ErrorTransient}, nil
	}
	return ports.ToolOutcome{Content: out}, nil
}

var _ ports.ToolHandler = (*Handler)(nil)
