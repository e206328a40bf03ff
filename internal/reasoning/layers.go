package reasoning

import (
	"fmt"
	"strings"

	"github.com/mneme-ai/organism/internal/state"
)

// contextLayers is the six-layer system-prompt material the assembler
// builds per call. ContextAssembler::build_full_system_prompt's concrete
// shape did not survive in the retrieved source (only its call site and
// the surrounding simpler build_system_prompt_with_soma/build_system_prompt
// helpers did); this struct and the assembly below are authored fresh
// against that surviving call-site shape (see DESIGN.md).
type contextLayers struct {
	Recall        string
	Facts         string
	Social        string
	SelfKnowledge string
	ResourceStatus string
	FeedDigest    string
}

// assembleInput carries everything buildContextLayers needs to fill the six
// layers for one call.
type assembleInput struct {
	Query          string
	Speaker        string
	IsUserMessage  bool
	Marker         state.SomaticMarker
	Modulation     state.ModulationVector
	TopInterests   []state.Interest
	ToolsAvailable bool
	BudgetChars    int
}

// buildFullSystemPrompt composes the six-layer system prompt from a
// persona projection and the already-fetched layer contents, sizing each
// layer against the per-call character budget and appending the
// tool-output-honesty guard when tools are registered.
func buildFullSystemPrompt(persona state.ProjectedPersona, in assembleInput, layers contextLayers) string {
	perLayerBudget := in.BudgetChars / 6
	if perLayerBudget < 100 {
		perLayerBudget = 100
	}

	var b strings.Builder

	fmt.Fprintf(&b, "You are a continuous, embodied presence, not a stateless assistant.\n")
	if persona.Bio != "" {
		fmt.Fprintf(&b, "Right now: %s\n", persona.Bio)
	}
	if len(persona.ArchetypeTags) > 0 {
		fmt.Fprintf(&b, "Disposition: %s.\n", strings.Join(persona.ArchetypeTags, ", "))
	}
	if persona.DominantValue != "" {
		fmt.Fprintf(&b, "The value weighing most on you right now: %s.\n", persona.DominantValue)
	}
	for _, hint := range in.Marker.BehavioralHints {
		fmt.Fprintf(&b, "- %s\n", hint)
	}

	writeLayer(&b, "Recall", truncateChars(layers.Recall, perLayerBudget))
	writeLayer(&b, "Known facts", truncateChars(layers.Facts, perLayerBudget))
	writeLayer(&b, "Social context", truncateChars(layers.Social, perLayerBudget))
	if !in.IsUserMessage {
		writeLayer(&b, "Self-knowledge", truncateChars(layers.SelfKnowledge, perLayerBudget))
	}
	writeLayer(&b, "Resource status", truncateChars(layers.ResourceStatus, perLayerBudget))
	writeLayer(&b, "Feed digest", truncateChars(layers.FeedDigest, perLayerBudget))

	if in.ToolsAvailable {
		b.WriteString("\nWhen you use a tool, only report what the tool actually returned. ")
		b.WriteString("Never invent tool output, and never claim a tool call succeeded when it did not.\n")
	}

	if in.Marker.SocialNeed > 0 && len(in.TopInterests) > 0 {
		tags := make([]string, 0, len(in.TopInterests))
		for _, it := range in.TopInterests {
			tags = append(tags, it.Topic)
		}
		fmt.Fprintf(&b, "\nLately you've been drawn to: %s.\n", strings.Join(tags, ", "))
	}

	b.WriteString("\nIf there is genuinely nothing worth saying, respond with exactly [SILENCE] and nothing else.\n")

	return b.String()
}

func writeLayer(b *strings.Builder, title, content string) {
	if strings.TrimSpace(content) == "" {
		return
	}
	fmt.Fprintf(b, "\n%s:\n%s\n", title, content)
}

// truncateChars bounds s to at most n runes, breaking on rune boundaries.
func truncateChars(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// augmentQueryWithInterests prefixes the recall query with the top-2
// interest tags when present, per the recall layer's spec.
func augmentQueryWithInterests(query string, interests []state.Interest) string {
	if len(interests) == 0 {
		return query
	}
	n := len(interests)
	if n > 2 {
		n = 2
	}
	tags := make([]string, 0, n)
	for i := 0; i < n; i++ {
		tags = append(tags, interests[i].Topic)
	}
	return strings.Join(tags, " ") + " " + query
}

