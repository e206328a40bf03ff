package reasoning

import (
	"fmt"
	"strings"

	"github.com/mneme-ai/organism/internal/logging"
	"github.com/mneme-ai/organism/internal/ports"
)

// metacognitionInsight is one structured insight recovered from a
// metacognitive reflection call.
type metacognitionInsight struct {
	Domain     string  `json:"domain"`
	Content    string  `json:"content"`
	Confidence float32 `json:"confidence"`
	IsPrivate  bool    `json:"is_private"`
}

type metacognitionResponse struct {
	Insights []metacognitionInsight `json:"insights"`
}

// parseMetacognitionResponse reuses the extraction module's multi-strategy
// lenient JSON parser.
func parseMetacognitionResponse(text string) []metacognitionInsight {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	var resp metacognitionResponse
	if parseLenientJSON(trimmed, &resp) && len(resp.Insights) > 0 {
		return applyDefaultConfidence(resp.Insights)
	}

	var bare []metacognitionInsight
	if start, end := strings.Index(trimmed, "["), strings.LastIndex(trimmed, "]"); start >= 0 && end > start {
		if parseLenientJSON(trimmed[start:end+1], &bare) {
			return applyDefaultConfidence(bare)
		}
	}

	logging.Debug("reasoning", "could not parse metacognition response: %s", logging.Truncate(trimmed, 200))
	return nil
}

func applyDefaultConfidence(insights []metacognitionInsight) []metacognitionInsight {
	for i := range insights {
		if insights[i].Confidence == 0 {
			insights[i].Confidence = 0.6
		}
	}
	return insights
}

// toSelfKnowledge converts a parsed insight into the storage shape, marking
// emotion/body_feeling domains private by default unless the model already
// flagged it.
func (m metacognitionInsight) toSelfKnowledge(source string) ports.SelfKnowledge {
	private := m.IsPrivate || m.Domain == "emotion" || m.Domain == "body_feeling"
	return ports.SelfKnowledge{
		Domain:     m.Domain,
		Content:    m.Content,
		Confidence: m.Confidence,
		Source:     source,
		Private:    private,
	}
}

// formatMetacognitionSummary renders insights for episode storage.
func formatMetacognitionSummary(insights []metacognitionInsight) string {
	if len(insights) == 0 {
		return "Metacognitive reflection produced no new insight."
	}
	var b strings.Builder
	b.WriteString("Metacognitive reflection:\n")
	for i, ins := range insights {
		fmt.Fprintf(&b, "%d. [%s] %s (confidence: %.0f%%)\n", i+1, ins.Domain, ins.Content, ins.Confidence*100)
	}
	return b.String()
}
