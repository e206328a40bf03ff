// Package mcptools implements reasoning.ToolRegistry and ports.ToolHandler
// over mark3labs/mcp-go's client package, dispatching tool calls to one or
// more stdio MCP servers. Tool-result and error-string conventions are
// grounded on cmd/efficient-notion-mcp/main.go's server-side handlers
// (mcp.NewToolResultText/mcp.NewToolResultError shape what a server sends
// back, which this adapter unwraps on the client side); the client package
// itself has no server-side equivalent in the retrieved pack (see
// DESIGN.md).
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mneme-ai/organism/internal/logging"
	"github.com/mneme-ai/organism/internal/ports"
)

const subsystem = "mcptools"

// ServerSpec describes one stdio MCP server to launch and connect to.
type ServerSpec struct {
	Name    string
	Command string
	Args    []string
	Env     []string
}

// Registry connects to a set of stdio MCP servers at construction time and
// exposes every tool they advertise as a ports.ToolHandler.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*client.Client // tool name -> owning client
	tools   map[string]mcp.Tool
}

// New dials every server in specs and lists their tools. A server that
// fails to start or initialize is logged and skipped; the organism runs
// with whatever subset of tools came up rather than failing startup.
func New(ctx context.Context, specs []ServerSpec) (*Registry, error) {
	r := &Registry{
		clients: make(map[string]*client.Client),
		tools:   make(map[string]mcp.Tool),
	}

	for _, spec := range specs {
		c, err := client.NewStdioMCPClient(spec.Command, spec.Env, spec.Args...)
		if err != nil {
			logging.Error(subsystem, "failed to start MCP server %s: %v", spec.Name, err)
			continue
		}
		if _, err := c.Initialize(ctx, mcp.InitializeRequest{}); err != nil {
			logging.Error(subsystem, "failed to initialize MCP server %s: %v", spec.Name, err)
			c.Close()
			continue
		}

		listResp, err := c.ListTools(ctx, mcp.ListToolsRequest{})
		if err != nil {
			logging.Error(subsystem, "failed to list tools for %s: %v", spec.Name, err)
			c.Close()
			continue
		}

		for _, t := range listResp.Tools {
			if _, exists := r.tools[t.Name]; exists {
				logging.Warn(subsystem, "duplicate tool name %q from server %s ignored", t.Name, spec.Name)
				continue
			}
			r.tools[t.Name] = t
			r.clients[t.Name] = c
		}
		logging.Info(subsystem, "connected to MCP server %s (%d tools)", spec.Name, len(listResp.Tools))
	}

	return r, nil
}

// Lookup satisfies reasoning.ToolRegistry.
func (r *Registry) Lookup(name string) (ports.ToolHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return nil, false
	}
	return &handler{registry: r, tool: t}, true
}

// List satisfies reasoning.ToolRegistry.
func (r *Registry) List() []ports.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ports.Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, toPortsSchema(t))
	}
	return out
}

// Close shuts down every connected server.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[*client.Client]bool)
	for _, c := range r.clients {
		if !seen[c] {
			c.Close()
			seen[c] = true
		}
	}
}

func toPortsSchema(t mcp.Tool) ports.Tool {
	schemaJSON, err := json.Marshal(t.InputSchema)
	if err != nil {
		return ports.Tool{Name: t.Name, Description: t.Description}
	}
	var schema map[string]any
	_ = json.Unmarshal(schemaJSON, &schema)
	return ports.Tool{Name: t.Name, Description: t.Description, Schema: schema}
}

// handler adapts one MCP tool to ports.ToolHandler.
type handler struct {
	registry *Registry
	tool     mcp.Tool
}

func (h *handler) Name() string        { return h.tool.Name }
func (h *handler) Description() string { return h.tool.Description }
func (h *handler) Schema() ports.Tool  { return toPortsSchema(h.tool) }

// Execute dispatches the call to the owning MCP client and classifies the
// failure per ports.ErrorKind: a non-nil transport error is treated as
// transient (worth retrying), while a tool-level IsError result is
// permanent (the tool ran and rejected the input).
func (h *handler) Execute(ctx context.Context, input map[string]any) (ports.ToolOutcome, error) {
	h.registry.mu.RLock()
	c, ok := h.registry.clients[h.tool.Name]
	h.registry.mu.RUnlock()
	if !ok {
		return ports.ToolOutcome{IsError: true, ErrorKind: ports.ErrorPermanent, Content: "tool no longer registered"}, nil
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = h.tool.Name
	req.Params.Arguments = input

	result, err := c.CallTool(ctx, req)
	if err != nil {
		return ports.ToolOutcome{IsError: true, ErrorKind: ports.ErrorTransient, Content: err.Error()},
			fmt.Errorf("call tool %s: %w", h.tool.Name, err)
	}

	text := concatResultText(result)
	if result.IsError {
		return ports.ToolOutcome{IsError: true, ErrorKind: ports.ErrorPermanent, Content: text}, nil
	}
	return ports.ToolOutcome{Content: text}, nil
}

func concatResultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	var out string
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			out += tc.Text
		}
	}
	return out
}
