package reasoning

import (
	"encoding/json"
	"regexp"
	"strings"
)

// parsedToolCall is a tool call recovered from plain-text LLM output, for
// back-ends that strip native tool_use blocks.
type parsedToolCall struct {
	Name  string
	Input map[string]any
}

var (
	toolTagRe      = regexp.MustCompile(`(?is)<\s*tool_call\s*>(.*?)<\s*/\s*tool_call\s*>`)
	markdownJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)```")
	bashBlockRe    = regexp.MustCompile("(?s)```(?:bash|sh|shell|zsh)\\s*\\n(.*?)```")
	standaloneTick = regexp.MustCompile("(?m)^\\s*`([^`\n]+)`\\s*$")
	multiNewlineRe = regexp.MustCompile(`\n{3,}`)
)

// parseTextToolCalls extracts tool calls from LLM text output, trying each
// format in strict priority order: <tool_call> tags, then markdown JSON
// code blocks, then backtick shell commands. The first format that yields
// any match wins; the others are not consulted.
func parseTextToolCalls(text string) []parsedToolCall {
	var results []parsedToolCall

	for _, m := range toolTagRe.FindAllStringSubmatch(text, -1) {
		if call, ok := tryParseToolJSON(strings.TrimSpace(m[1])); ok {
			results = append(results, call)
		}
	}
	if len(results) > 0 {
		return results
	}

	for _, m := range markdownJSONRe.FindAllStringSubmatch(text, -1) {
		if call, ok := tryParseToolJSON(strings.TrimSpace(m[1])); ok {
			results = append(results, call)
		}
	}
	if len(results) > 0 {
		return results
	}

	return parseBacktickCommands(text)
}

// stripToolCalls removes <tool_call> tags, shell code blocks and standalone
// backtick commands from text, for producing the user-visible remainder.
// Markdown JSON code blocks are left in place.
func stripToolCalls(text string) string {
	result := toolTagRe.ReplaceAllString(text, "")
	result = bashBlockRe.ReplaceAllString(result, "")
	result = standaloneTick.ReplaceAllString(result, "")
	result = multiNewlineRe.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

func parseBacktickCommands(text string) []parsedToolCall {
	var results []parsedToolCall

	for _, m := range bashBlockRe.FindAllStringSubmatch(text, -1) {
		cmd := strings.TrimSpace(m[1])
		if cmd != "" {
			results = append(results, parsedToolCall{Name: "shell", Input: map[string]any{"command": cmd}})
		}
	}
	if len(results) > 0 {
		return results
	}

	for _, m := range standaloneTick.FindAllStringSubmatch(text, -1) {
		cmd := strings.TrimSpace(m[1])
		if cmd != "" {
			results = append(results, parsedToolCall{Name: "shell", Input: map[string]any{"command": cmd}})
		}
	}
	return results
}

// tryParseToolJSON parses jsonStr as a tool-call object, normalising
// "tool" -> name and "arguments"/"parameters" -> input.
func tryParseToolJSON(jsonStr string) (parsedToolCall, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &obj); err != nil {
		return parsedToolCall{}, false
	}

	name, _ := obj["name"].(string)
	if name == "" {
		name, _ = obj["tool"].(string)
	}
	if name == "" {
		return parsedToolCall{}, false
	}

	input, _ := obj["input"].(map[string]any)
	if input == nil {
		input, _ = obj["arguments"].(map[string]any)
	}
	if input == nil {
		input, _ = obj["parameters"].(map[string]any)
	}
	if input == nil {
		input = map[string]any{}
	}

	return parsedToolCall{Name: name, Input: input}, true
}
