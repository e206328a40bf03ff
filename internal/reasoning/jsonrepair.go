package reasoning

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	codeBlockRe     = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?([\\s\\S]*?)\\n?\\s*```")
)

// parseLenientJSON tries, in order: direct parse, markdown code-block
// extraction, the outermost balanced {...}, then the same with trailing-
// comma and quote repair applied, finally a bare [...] array. It returns
// false (never an error) if nothing parses, so callers can fall back to an
// empty result gracefully.
func parseLenientJSON(text string, out any) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}

	if json.Unmarshal([]byte(trimmed), out) == nil {
		return true
	}

	if m := codeBlockRe.FindStringSubmatch(trimmed); m != nil {
		inner := strings.TrimSpace(m[1])
		if json.Unmarshal([]byte(inner), out) == nil {
			return true
		}
	}

	if obj := extractBalancedBraces(trimmed); obj != "" {
		if json.Unmarshal([]byte(obj), out) == nil {
			return true
		}
		if json.Unmarshal([]byte(repairJSON(obj)), out) == nil {
			return true
		}
	}

	if start, end := strings.Index(trimmed, "["), strings.LastIndex(trimmed, "]"); start >= 0 && end > start {
		arr := trimmed[start : end+1]
		if json.Unmarshal([]byte(arr), out) == nil {
			return true
		}
		if json.Unmarshal([]byte(repairJSON(arr)), out) == nil {
			return true
		}
	}

	return json.Unmarshal([]byte(repairJSON(trimmed)), out) == nil
}

// extractBalancedBraces returns the outermost balanced {...} substring,
// respecting quoted strings and backslash escapes, or "" if unbalanced.
func extractBalancedBraces(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escape := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if escape {
			escape = false
			continue
		}
		switch {
		case ch == '\\' && inString:
			escape = true
		case ch == '"':
			inString = !inString
		case ch == '{' && !inString:
			depth++
		case ch == '}' && !inString:
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// repairJSON fixes the common LLM-output JSON quirks: trailing commas
// before a closing brace/bracket, and single-quoted strings when no
// double-quoted string is present at all.
func repairJSON(text string) string {
	result := trailingCommaRe.ReplaceAllString(text, "$1")
	if !strings.Contains(result, `"`) {
		result = strings.ReplaceAll(result, "'", `"`)
	}
	return result
}
