package reasoning

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mneme-ai/organism/internal/logging"
	"github.com/mneme-ai/organism/internal/ports"
	"github.com/mneme-ai/organism/internal/state"
)

const subsystem = "reasoning"

// Deps bundles the external collaborators Orchestrator reaches through the
// capability traits defined in internal/ports.
type Deps struct {
	Memory      ports.Memory
	Social      ports.SocialGraph
	Llm         ports.LlmClient
	Tools       ToolRegistry
	FeedDigest  func() string // cheap accessor for the cached RSS/web summary; nil disables the layer
}

// ToolRegistry is the minimal surface the ReAct loop needs from the tool
// collaborator: look a handler up by name and list every registered tool's
// JSON-Schema definition.
type ToolRegistry interface {
	Lookup(name string) (ports.ToolHandler, bool)
	List() []ports.Tool
}

// Input carries one turn's worth of material into Think.
type Input struct {
	Text          string
	Speaker       string // empty for self-initiated (non-user) calls
	IsUserMessage bool
	Marker        state.SomaticMarker
	Modulation    state.ModulationVector
	Interests     []state.Interest
}

// Result is what Think hands back to the coordinator.
type Result struct {
	Reply   string // sanitized assistant-visible text; "" means silence
	Silence bool
	Facts   int // number of facts persisted by the post-turn extraction pass
}

// Orchestrator assembles context, drives the modulated LLM call and the
// ReAct tool loop, and runs the post-turn fact-extraction and metacognition
// passes. It is stateless across calls except for a short rolling message
// history and the token-usage advisor.
type Orchestrator struct {
	deps Deps
	cfg  Config

	mu      sync.Mutex
	history []ports.Message

	budget *tokenBudgetAdvisor
}

// NewOrchestrator constructs an Orchestrator from its collaborators and
// config. Deps fields may individually be nil/zero; every call site
// degrades gracefully (an absent Memory yields an empty recall layer, an
// absent ToolRegistry disables the ReAct loop entirely).
func NewOrchestrator(deps Deps, cfg Config) *Orchestrator {
	return &Orchestrator{
		deps:   deps,
		cfg:    cfg,
		budget: newTokenBudgetAdvisor(cfg),
	}
}

// Think runs one full reasoning turn: six-layer context assembly, the
// modulated LLM call, the ReAct tool-dispatch loop, output sanitization,
// and (for user messages) the post-turn fact-extraction pass; metacognition
// runs separately through ReflectMetacognition. A panic raised inside the
// LLM call or the tool loop is recovered and returned from Think as an
// error.
func (o *Orchestrator) Think(ctx context.Context, in Input) (Result, error) {
	if !o.budget.withinBudget() {
		logging.Warn(subsystem, "token budget exceeded, declining to think this turn")
		return Result{Silence: true}, nil
	}

	system := o.assembleSystemPrompt(ctx, in)
	tools := o.toolDefinitions()

	o.mu.Lock()
	o.history = append(o.history, ports.Message{
		Role:    "user",
		Content: []ports.ContentBlock{{Type: "text", Text: in.Text}},
	})
	messages := append([]ports.Message(nil), o.history...)
	o.mu.Unlock()

	params := deriveCompletionParams(o.cfg, in.Modulation)

	reply, err := func() (reply string, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("llm call panicked: %v", r)
			}
		}()
		return o.reactLoop(ctx, system, messages, tools, params)
	}()
	if err != nil {
		return Result{}, fmt.Errorf("think: %w", err)
	}

	sanitized := sanitizeOutput(reply)

	o.mu.Lock()
	if sanitized != "" {
		o.history = append(o.history, ports.Message{
			Role:    "assistant",
			Content: []ports.ContentBlock{{Type: "text", Text: sanitized}},
		})
	}
	o.trimHistoryLocked()
	o.mu.Unlock()

	if isSilence(reply) || sanitized == "" {
		return Result{Silence: true}, nil
	}

	result := Result{Reply: sanitized}

	if in.IsUserMessage && o.deps.Llm != nil {
		facts := extractFacts(ctx, o.deps.Llm, o.cfg, in.Text, sanitized)
		if o.deps.Memory != nil {
			storeExtractedFacts(ctx, o.deps.Memory, facts)
		}
		result.Facts = len(facts)
	}

	return result, nil
}

// reactLoop drives the tool-use cycle: call the LLM, dispatch any tool
// calls (native ToolUse blocks or text-encoded fallbacks), append the
// results, and re-enter until the model stops asking for tools or the step
// limit is reached.
func (o *Orchestrator) reactLoop(ctx context.Context, system string, messages []ports.Message, tools []ports.Tool, params ports.CompletionParams) (string, error) {
	maxSteps := o.cfg.MaxToolSteps
	if maxSteps <= 0 {
		maxSteps = 1
	}

	var finalText string
	for step := 0; step < maxSteps; step++ {
		resp, err := o.deps.Llm.Complete(ctx, system, messages, tools, params)
		if err != nil {
			return "", err
		}
		o.budget.record(params.MaxTokens)

		text, toolUses := splitResponse(resp.Content)
		finalText = text

		if len(toolUses) == 0 && o.deps.Tools != nil {
			if parsed := parseTextToolCalls(text); len(parsed) > 0 {
				toolUses = toTextualToolUses(parsed)
				finalText = stripToolCalls(text)
			}
		}

		if len(toolUses) == 0 {
			return finalText, nil
		}
		if o.deps.Tools == nil {
			// No tool collaborator wired: surface the text as-is rather
			// than looping forever on a request we cannot service.
			return finalText, nil
		}

		messages = append(messages, ports.Message{Role: "assistant", Content: resp.Content})

		var results []ports.ContentBlock
		for _, tu := range toolUses {
			outcome := o.dispatchTool(ctx, tu)
			results = append(results, ports.ContentBlock{
				Type:       "tool_result",
				ToolUseID:  tu.ToolUseID,
				ToolOutput: outcome.Content,
				IsError:    outcome.IsError,
			})
		}
		messages = append(messages, ports.Message{Role: "user", Content: results})
	}

	logging.Warn(subsystem, "react loop hit step limit (%d) without terminating", maxSteps)
	return finalText, nil
}

// dispatchTool looks the named tool up and executes it, retrying
// transient failures per the configured backoff policy (the first
// execution counts as the first of MaxAttempts) and surfacing permanent
// failures immediately as an error result.
func (o *Orchestrator) dispatchTool(ctx context.Context, tu ports.ContentBlock) ports.ToolOutcome {
	handler, ok := o.deps.Tools.Lookup(tu.ToolName)
	if !ok {
		return ports.ToolOutcome{Content: fmt.Sprintf("unknown tool: %s", tu.ToolName), IsError: true, ErrorKind: ports.ErrorPermanent}
	}

	outcome, execErr := handler.Execute(ctx, tu.ToolInput)
	if execErr == nil && !outcome.IsError {
		return outcome
	}
	if outcome.ErrorKind != ports.ErrorTransient {
		if execErr != nil {
			return ports.ToolOutcome{Content: execErr.Error(), IsError: true, ErrorKind: ports.ErrorPermanent}
		}
		return outcome
	}

	first := true
	content, err := retryTransient(ctx, o.cfg.Retry, func() (string, bool, error) {
		out, err := outcome, execErr
		if !first {
			out, err = handler.Execute(ctx, tu.ToolInput)
		}
		first = false
		if err != nil {
			return "", true, err
		}
		if out.IsError && out.ErrorKind == ports.ErrorTransient {
			return out.Content, true, fmt.Errorf("transient: %s", out.Content)
		}
		return out.Content, false, nil
	})
	if err != nil {
		return ports.ToolOutcome{Content: err.Error(), IsError: true, ErrorKind: ports.ErrorTransient}
	}
	return ports.ToolOutcome{Content: content}
}

// ReflectMetacognition runs a self-directed reflection call (invoked by the
// metacognition evaluator's trigger, not by a user turn) and stores every
// parsed insight as self-knowledge.
func (o *Orchestrator) ReflectMetacognition(ctx context.Context, reason, contextSummary string) (string, error) {
	if o.deps.Llm == nil {
		return "", fmt.Errorf("no llm client configured")
	}

	system := "You are reflecting on your own recent behavior and internal state. " +
		"Respond ONLY with JSON: {\"insights\":[{\"domain\":\"behavior|emotion|social|expression|body_feeling|infrastructure\"," +
		"\"content\":\"...\",\"confidence\":0.0,\"is_private\":false}]}"
	prompt := fmt.Sprintf("Reason for reflection: %s\nRecent context: %s", reason, contextSummary)

	messages := []ports.Message{{Role: "user", Content: []ports.ContentBlock{{Type: "text", Text: prompt}}}}
	params := ports.CompletionParams{MaxTokens: o.cfg.MetacognitionMaxTokens, Temperature: o.cfg.MetacognitionTemperature}

	resp, err := o.deps.Llm.Complete(ctx, system, messages, nil, params)
	if err != nil {
		return "", err
	}
	o.budget.record(params.MaxTokens)

	text := concatText(resp.Content)
	insights := parseMetacognitionResponse(text)
	if o.deps.Memory != nil {
		for _, ins := range insights {
			if err := o.deps.Memory.StoreSelfKnowledge(ctx, ins.toSelfKnowledge("metacognition")); err != nil {
				logging.Error(subsystem, "failed to store self-knowledge: %v", err)
			}
		}
	}
	return formatMetacognitionSummary(insights), nil
}

func (o *Orchestrator) trimHistoryLocked() {
	const maxHistory = 40
	if len(o.history) > maxHistory {
		o.history = o.history[len(o.history)-maxHistory:]
	}
}

func (o *Orchestrator) toolDefinitions() []ports.Tool {
	if o.deps.Tools == nil {
		return nil
	}
	return o.deps.Tools.List()
}

// assembleSystemPrompt runs the six-layer context assembly described in
// spec §4.7.
func (o *Orchestrator) assembleSystemPrompt(ctx context.Context, in Input) string {
	budgetChars := contextBudget(o.cfg, in.Modulation)

	query := augmentQueryWithInterests(in.Text, in.Interests)

	// recall_reconstructed's emotional-lens annotation is prefixed by the
	// memory collaborator itself (it derives the lens from the same
	// moodBias/stress it receives here), not by the orchestrator.
	var recall string
	if o.deps.Memory != nil {
		r, err := o.deps.Memory.RecallReconstructed(ctx, query, in.Modulation.RecallMoodBias, in.Marker.Stress)
		if err != nil {
			logging.Debug(subsystem, "recall failed: %v", err)
		} else {
			recall = r
		}
	}

	var facts string
	if o.deps.Memory != nil {
		if f, err := o.deps.Memory.RecallFactsFormatted(ctx, query); err == nil {
			facts = f
		} else {
			logging.Debug(subsystem, "fact recall failed: %v", err)
		}
	}

	var social string
	if o.deps.Social != nil && in.Speaker != "" {
		if pc, err := o.deps.Social.GetPersonContext(ctx, in.Speaker); err == nil && pc != nil {
			social = fmt.Sprintf("%s (%d prior interactions): %s", pc.Person.Name, pc.InteractionCount, pc.RelationshipNotes)
		}
	}

	var selfKnowledge string
	if !in.IsUserMessage && o.deps.Memory != nil {
		selfKnowledge = o.selfKnowledgeLayer(ctx)
	}

	resource := resourceStatusLayer(ctx, o.deps.Memory, o.budget)

	var feed string
	if o.deps.FeedDigest != nil {
		feed = o.deps.FeedDigest()
	}

	layers := contextLayers{
		Recall:         recall,
		Facts:          facts,
		Social:          social,
		SelfKnowledge:   selfKnowledge,
		ResourceStatus:  resource,
		FeedDigest:      feed,
	}

	in2 := assembleInput{
		Query:          query,
		Speaker:        in.Speaker,
		IsUserMessage:  in.IsUserMessage,
		Marker:         in.Marker,
		Modulation:     in.Modulation,
		TopInterests:   in.Interests,
		ToolsAvailable: len(o.toolDefinitions()) > 0,
		BudgetChars:    budgetChars,
	}

	return buildFullSystemPrompt(personaFromMarker(in.Marker), in2, layers)
}

// selfKnowledgeDomains is the fixed domain taxonomy self-knowledge is
// partitioned into.
var selfKnowledgeDomains = []string{"behavior", "emotion", "social", "expression", "body_feeling", "infrastructure"}

func (o *Orchestrator) selfKnowledgeLayer(ctx context.Context) string {
	var b strings.Builder
	for _, domain := range selfKnowledgeDomains {
		entries, err := o.deps.Memory.RecallSelfKnowledgeByDomain(ctx, domain)
		if err != nil || len(entries) == 0 {
			continue
		}
		n := 3
		if n > len(entries) {
			n = len(entries)
		}
		fmt.Fprintf(&b, "%s: ", domain)
		for i := 0; i < n; i++ {
			if i > 0 {
				b.WriteString("; ")
			}
			fmt.Fprintf(&b, "%s (%.0f%%)", entries[i].Content, entries[i].Confidence*100)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// personaFromMarker builds a minimal ProjectedPersona directly from a
// marker when the caller did not (or could not) project one from live
// state — Think only receives the already-projected SomaticMarker, not the
// OrganismState itself, so only the bio is filled, from the marker's own
// short description; ArchetypeTags and DominantValue stay empty.
func personaFromMarker(m state.SomaticMarker) state.ProjectedPersona {
	return state.ProjectedPersona{
		Bio: m.ShortDescription,
	}
}

func splitResponse(blocks []ports.ContentBlock) (text string, toolUses []ports.ContentBlock) {
	var b strings.Builder
	for _, blk := range blocks {
		switch blk.Type {
		case "text":
			b.WriteString(blk.Text)
		case "tool_use":
			toolUses = append(toolUses, blk)
		}
	}
	return b.String(), toolUses
}

func toTextualToolUses(parsed []parsedToolCall) []ports.ContentBlock {
	out := make([]ports.ContentBlock, 0, len(parsed))
	for i, p := range parsed {
		out = append(out, ports.ContentBlock{
			Type:      "tool_use",
			ToolUseID: fmt.Sprintf("text-%d-%d", time.Now().UnixNano(), i),
			ToolName:  p.Name,
			ToolInput: p.Input,
		})
	}
	return out
}
