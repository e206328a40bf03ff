package reasoning

import (
	"regexp"
	"strings"
)

var (
	roleplayAsteriskRe = regexp.MustCompile(`(?m)^\s*\*[^*\n]+\*\s*$`)
	leadingLabelRe     = regexp.MustCompile(`(?i)^\s*(assistant|ai|bot)\s*:\s*`)
	excessBlankLinesRe = regexp.MustCompile(`\n{3,}`)
	trailingSpaceRe    = regexp.MustCompile(`[ \t]+\n`)
)

// sanitizeOutput strips markdown roleplay artifacts (whole-line *actions*),
// leftover tool-call fences, and a leading "assistant:"-style label, then
// normalizes whitespace. It is idempotent: sanitizeOutput(sanitizeOutput(s))
// == sanitizeOutput(s) for any s, and it never panics.
func sanitizeOutput(text string) string {
	out := stripToolCalls(text)
	out = roleplayAsteriskRe.ReplaceAllString(out, "")
	out = leadingLabelRe.ReplaceAllString(out, "")
	out = trailingSpaceRe.ReplaceAllString(out, "\n")
	out = excessBlankLinesRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// isSilence reports whether text is the literal [SILENCE] sentinel or
// reduces to nothing once sanitized.
func isSilence(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "[SILENCE]" {
		return true
	}
	return sanitizeOutput(text) == ""
}
