// Package anthropicllm implements ports.LlmClient against the Anthropic
// Messages API. Grounded on o9nn-echo.go/core/llm/anthropic_provider.go's
// request/response shapes and header conventions, generalized from its
// single-string-prompt form to the full content-block/tool-use wire format
// the reasoning orchestrator's ReAct loop needs.
package anthropicllm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mneme-ai/organism/internal/logging"
	"github.com/mneme-ai/organism/internal/ports"
)

const subsystem = "anthropicllm"
const defaultAPIURL = "https://api.anthropic.com/v1/messages"
const anthropicVersion = "2023-06-01"

// Client is a ports.LlmClient backed by the Anthropic Messages API.
type Client struct {
	apiKey     string
	model      string
	apiURL     string
	httpClient *http.Client
}

// New constructs a Client reading ANTHROPIC_API_KEY from the environment.
// model selects the Claude model id; an empty model falls back to a
// recent Sonnet snapshot.
func New(model string) *Client {
	if model == "" {
		model = "claude-sonnet-4-5-20250929"
	}
	return &Client{
		apiKey:     os.Getenv("ANTHROPIC_API_KEY"),
		model:      model,
		apiURL:     defaultAPIURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Available reports whether an API key was found.
func (c *Client) Available() bool {
	return c.apiKey != ""
}

type wireContentBlock struct {
	Type      string         `json:"type"`
	Text      string         `json:"text,omitempty"`
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Input     map[string]any `json:"input,omitempty"`
	ToolUseID string         `json:"tool_use_id,omitempty"`
	Content   string         `json:"content,omitempty"`
	IsError   bool           `json:"is_error,omitempty"`
}

type wireMessage struct {
	Role    string              `json:"role"`
	Content []wireContentBlock  `json:"content"`
}

type wireTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

type wireRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float32       `json:"temperature,omitempty"`
	System      string        `json:"system,omitempty"`
	Messages    []wireMessage `json:"messages"`
	Tools       []wireTool    `json:"tools,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

type wireResponse struct {
	Content    []wireContentBlock `json:"content"`
	StopReason string             `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func toWireMessages(messages []ports.Message) []wireMessage {
	out := make([]wireMessage, len(messages))
	for i, m := range messages {
		blocks := make([]wireContentBlock, len(m.Content))
		for j, b := range m.Content {
			blocks[j] = toWireBlock(b)
		}
		out[i] = wireMessage{Role: m.Role, Content: blocks}
	}
	return out
}

func toWireBlock(b ports.ContentBlock) wireContentBlock {
	switch b.Type {
	case "tool_use":
		return wireContentBlock{Type: "tool_use", ID: b.ToolUseID, Name: b.ToolName, Input: b.ToolInput}
	case "tool_result":
		return wireContentBlock{Type: "tool_result", ToolUseID: b.ToolUseID, Content: b.ToolOutput, IsError: b.IsError}
	default:
		return wireContentBlock{Type: "text", Text: b.Text}
	}
}

func toWireTools(tools []ports.Tool) []wireTool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]wireTool, len(tools))
	for i, t := range tools {
		out[i] = wireTool{Name: t.Name, Description: t.Description, InputSchema: t.Schema}
	}
	return out
}

func fromWireBlocks(blocks []wireContentBlock) []ports.ContentBlock {
	out := make([]ports.ContentBlock, len(blocks))
	for i, b := range blocks {
		out[i] = ports.ContentBlock{
			Type:      b.Type,
			Text:      b.Text,
			ToolUseID: b.ID,
			ToolName:  b.Name,
			ToolInput: b.Input,
		}
	}
	return out
}

func (c *Client) buildRequest(system string, messages []ports.Message, tools []ports.Tool, params ports.CompletionParams, stream bool) wireRequest {
	maxTokens := params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return wireRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: params.Temperature,
		System:      system,
		Messages:    toWireMessages(messages),
		Tools:       toWireTools(tools),
		Stream:      stream,
	}
}

func (c *Client) newHTTPRequest(ctx context.Context, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	return req, nil
}

// Complete issues a non-streaming Messages API call.
func (c *Client) Complete(ctx context.Context, system string, messages []ports.Message, tools []ports.Tool, params ports.CompletionParams) (ports.MessagesResponse, error) {
	if !c.Available() {
		return ports.MessagesResponse{}, fmt.Errorf("anthropic client not configured (missing ANTHROPIC_API_KEY)")
	}

	wireReq := c.buildRequest(system, messages, tools, params, false)
	body, err := json.Marshal(wireReq)
	if err != nil {
		return ports.MessagesResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := c.newHTTPRequest(ctx, body)
	if err != nil {
		return ports.MessagesResponse{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ports.MessagesResponse{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return ports.MessagesResponse{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return ports.MessagesResponse{}, fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var wireResp wireResponse
	if err := json.Unmarshal(respBody, &wireResp); err != nil {
		return ports.MessagesResponse{}, fmt.Errorf("parse response: %w", err)
	}
	if wireResp.Error != nil {
		return ports.MessagesResponse{}, fmt.Errorf("anthropic API error: %s", wireResp.Error.Message)
	}

	return ports.MessagesResponse{
		Content:    fromWireBlocks(wireResp.Content),
		StopReason: wireResp.StopReason,
	}, nil
}

// sseEvent is one parsed "event: ...\ndata: ..." frame from the Anthropic
// streaming wire format.
type sseEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type        string `json:"type"`
		Text        string `json:"text"`
		PartialJSON string `json:"partial_json"`
	} `json:"delta"`
	ContentBlock struct {
		Type string `json:"type"`
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"content_block"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// StreamComplete issues a streaming Messages API call and returns a channel
// of incremental events, closed when the stream ends.
func (c *Client) StreamComplete(ctx context.Context, system string, messages []ports.Message, tools []ports.Tool, params ports.CompletionParams) (<-chan ports.StreamEvent, error) {
	if !c.Available() {
		return nil, fmt.Errorf("anthropic client not configured (missing ANTHROPIC_API_KEY)")
	}

	wireReq := c.buildRequest(system, messages, tools, params, true)
	body, err := json.Marshal(wireReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := c.newHTTPRequest(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, string(body))
	}

	out := make(chan ports.StreamEvent, 16)
	go c.pumpStream(resp.Body, out)
	return out, nil
}

func (c *Client) pumpStream(body io.ReadCloser, out chan<- ports.StreamEvent) {
	defer close(out)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var currentToolUseID, currentToolName string

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "" {
			continue
		}

		var evt sseEvent
		if err := json.Unmarshal([]byte(payload), &evt); err != nil {
			logging.Debug(subsystem, "skipping unparseable stream frame: %v", err)
			continue
		}

		switch evt.Type {
		case "content_block_start":
			if evt.ContentBlock.Type == "tool_use" {
				currentToolUseID = evt.ContentBlock.ID
				currentToolName = evt.ContentBlock.Name
				out <- ports.StreamEvent{Kind: ports.StreamToolUseStart, ToolUseID: currentToolUseID, ToolName: currentToolName}
			}
		case "content_block_delta":
			switch evt.Delta.Type {
			case "text_delta":
				out <- ports.StreamEvent{Kind: ports.StreamTextDelta, TextDelta: evt.Delta.Text}
			case "input_json_delta":
				out <- ports.StreamEvent{Kind: ports.StreamToolInputDelta, ToolUseID: currentToolUseID, InputDelta: evt.Delta.PartialJSON}
			}
		case "message_delta":
			// stop_reason arrives here in the real API; not decoded into evt
			// above since callers only need completion, surfaced via "done".
		case "message_stop":
			out <- ports.StreamEvent{Kind: ports.StreamDone}
			return
		case "error":
			out <- ports.StreamEvent{Kind: ports.StreamError, Err: fmt.Errorf("anthropic stream error: %s", evt.Error.Message)}
			return
		}
	}
	if err := scanner.Err(); err != nil {
		out <- ports.StreamEvent{Kind: ports.StreamError, Err: fmt.Errorf("read stream: %w", err)}
	}
}
