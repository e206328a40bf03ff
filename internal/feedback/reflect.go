package feedback

import (
	"fmt"
	"strings"

	"github.com/mneme-ai/organism/internal/ports"
	"github.com/mneme-ai/organism/internal/state"
)

// reflectionDomainKeywords classifies a self-reflection's free-text content
// into one of the domain partitions store_self_knowledge expects. First
// match wins; falls back to "behavior".
var reflectionDomainKeywords = []struct {
	domain   string
	keywords []string
}{
	{"emotion", []string{"feel", "felt", "feeling", "mood", "emotion", "anxious", "calm"}},
	{"social", []string{"friend", "relationship", "trust", "people", "together", "alone"}},
	{"expression", []string{"said", "say", "word", "explain", "tone", "phrasing"}},
	{"body_feeling", []string{"tired", "energy", "rest", "body", "exhausted"}},
	{"infrastructure", []string{"tool", "memory", "system", "crash", "error", "bug"}},
}

func classifyReflectionDomain(content string) string {
	lower := strings.ToLower(content)
	for _, d := range reflectionDomainKeywords {
		for _, kw := range d.keywords {
			if strings.Contains(lower, kw) {
				return d.domain
			}
		}
	}
	return "behavior"
}

// SelfReflections filters consolidated patterns down to the ones derived
// from SignalSelfReflection feedback and turns each into a domain-tagged
// candidate ready for store_self_knowledge.
func SelfReflections(patterns []state.ConsolidatedPattern) []ports.SelfKnowledge {
	var out []ports.SelfKnowledge
	for _, p := range patterns {
		if p.Kind != state.SignalSelfReflection {
			continue
		}
		out = append(out, ports.SelfKnowledge{
			Domain:     classifyReflectionDomain(p.RepresentativeContent),
			Content:    p.RepresentativeContent,
			Confidence: p.AvgConfidence,
			Source:     "consolidation",
		})
	}
	return out
}

// FormatReflectionSummary renders a short meta-episode body summarizing a
// batch of self-reflection candidates, one per line.
func FormatReflectionSummary(entries []ports.SelfKnowledge) string {
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Tonight I reflected on a few things about myself:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "- [%s] %s\n", e.Domain, e.Content)
	}
	return b.String()
}
