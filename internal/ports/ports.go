// Package ports defines the narrow capability traits through which the
// organism core reaches every external collaborator: memory, the social
// graph, the LLM, tools, a command executor, and perception. C1-C7 depend
// only on these interfaces; concrete adapters live under internal/store and
// internal/adapters and are wired together only in cmd/organismd.
package ports

import (
	"context"
	"time"

	"github.com/mneme-ai/organism/internal/state"
)

// Memory is the memory collaborator's capability surface.
type Memory interface {
	Recall(ctx context.Context, query string) (string, error)
	RecallWithBias(ctx context.Context, query string, moodBias float32) (string, error)
	RecallReconstructed(ctx context.Context, query string, moodBias, stress float32) (string, error)
	Memorize(ctx context.Context, ep state.Episode) error
	RecallFactsFormatted(ctx context.Context, query string) (string, error)
	StoreFact(ctx context.Context, subject, predicate, object string, confidence float32) error
	EpisodeCount(ctx context.Context) (int, error)
	RecallSelfKnowledgeByDomain(ctx context.Context, domain string) ([]SelfKnowledgeEntry, error)
	DetectRepeatedPatterns(ctx context.Context, minCount int) ([]RepeatedPattern, error)
	StoreSelfKnowledge(ctx context.Context, sk SelfKnowledge) error
}

// SelfKnowledgeEntry is a single recalled self-knowledge fact.
type SelfKnowledgeEntry struct {
	Content    string
	Confidence float32
}

// SelfKnowledge is a domain-partitioned introspective fact, as produced by
// metacognition parsing.
type SelfKnowledge struct {
	Domain     string // behavior, emotion, social, expression, body_feeling, infrastructure
	Content    string
	Confidence float32
	Source     string
	EpisodeID  string // optional; empty if not tied to one episode
	Private    bool
}

// RepeatedPattern is a detected self-knowledge repetition, used by the
// habit evaluator.
type RepeatedPattern struct {
	Pattern string
	Count   int
}

// SocialGraph is the social-graph collaborator's capability surface.
type SocialGraph interface {
	FindPerson(ctx context.Context, platform, id string) (*Person, error)
	UpsertPerson(ctx context.Context, p Person) error
	GetPersonContext(ctx context.Context, id string) (*PersonContext, error)
	RecordInteraction(ctx context.Context, from, to, context string) error
	ListRecentContacts(ctx context.Context, k int) ([]ContactInfo, error)
}

// Person is a known social-graph entity.
type Person struct {
	ID       string
	Platform string
	Name     string
}

// PersonContext carries relationship notes for context assembly.
type PersonContext struct {
	Person           Person
	InteractionCount int
	RelationshipNotes string
}

// ContactInfo is a recently-contacted person, used by the social-outreach
// evaluator.
type ContactInfo struct {
	Person   Person
	LastSeen string
}

// Message is a single content-block-bearing turn in an LLM conversation.
type Message struct {
	Role    string // "user" | "assistant"
	Content []ContentBlock
}

// ContentBlock is one of the four wire-level content-block shapes.
type ContentBlock struct {
	Type       string // "text" | "tool_use" | "tool_result"
	Text       string
	ToolUseID  string
	ToolName   string
	ToolInput  map[string]any
	ToolOutput string
	IsError    bool
}

// Tool is a JSON-Schema tool definition.
type Tool struct {
	Name        string
	Description string
	Schema      map[string]any
}

// CompletionParams parameterizes an LLM call, already modulated.
type CompletionParams struct {
	MaxTokens   int
	Temperature float32
}

// MessagesResponse is a non-streaming LLM completion result.
type MessagesResponse struct {
	Content    []ContentBlock
	StopReason string
}

// StreamEvent is one frame of a streaming LLM completion.
type StreamEvent struct {
	Kind       StreamEventKind
	TextDelta  string
	ToolUseID  string
	ToolName   string
	InputDelta string
	StopReason string
	Err        error
}

// StreamEventKind is the closed variant for StreamEvent.Kind.
type StreamEventKind int

const (
	StreamTextDelta StreamEventKind = iota
	StreamToolUseStart
	StreamToolInputDelta
	StreamDone
	StreamError
)

// LlmClient is the LLM-provider capability surface.
type LlmClient interface {
	Complete(ctx context.Context, system string, messages []Message, tools []Tool, params CompletionParams) (MessagesResponse, error)
	StreamComplete(ctx context.Context, system string, messages []Message, tools []Tool, params CompletionParams) (<-chan StreamEvent, error)
}

// ErrorKind classifies a tool-execution failure.
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	ErrorTransient
	ErrorPermanent
)

// ToolOutcome is a tool call's result.
type ToolOutcome struct {
	Content   string
	IsError   bool
	ErrorKind ErrorKind
}

// ToolHandler is one registered tool.
type ToolHandler interface {
	Name() string
	Description() string
	Schema() Tool
	Execute(ctx context.Context, input map[string]any) (ToolOutcome, error)
}

// Executor runs a shell command locally or on a remote host.
type Executor interface {
	Execute(ctx context.Context, command string) (string, error)
}

// Persistence is the optional state-persistence capability. A coordinator
// with a nil Persistence still functions fully in-memory; every call site
// treats a nil handle (or any returned error) as a logged, isolated
// failure that never alters lifecycle, per the core's failure semantics.
type Persistence interface {
	SaveOrganismState(ctx context.Context, s state.OrganismState) error
	LoadOrganismState(ctx context.Context) (state.OrganismState, bool, error)
	RecordStateSnapshot(ctx context.Context, s state.OrganismState, trigger string, prev *state.OrganismState) error
	PruneStateHistory(ctx context.Context, maxEntries int, maxAge time.Duration) error
	SaveNarrativeChapter(ctx context.Context, ch state.NarrativeChapter) error
	LoadPendingFeedback(ctx context.Context) ([]state.FeedbackSignal, error)
}

// Trigger is the closed sum type over proactive-trigger variants (spec
// §4.4). Exactly one of the named payload fields is meaningful, selected by
// Kind.
type Trigger struct {
	Kind TriggerKind

	// Scheduled
	ScheduleName string
	ScheduleExpr string
	Route        string

	// ContentRelevance
	Source string
	ID     string
	Score  float32
	Reason string

	// MemoryDecay
	Topic         string
	LastMentioned string

	// Trending
	Platform string

	// Rumination
	RuminationKind string
	Context        string

	// InnerMonologue
	Cause      string
	Seed       string
	Resolution Resolution

	// Metacognition
	ContextSummary string
}

// TriggerKind is the closed variant selecting which Trigger fields apply.
type TriggerKind int

const (
	TriggerScheduled TriggerKind = iota
	TriggerContentRelevance
	TriggerMemoryDecay
	TriggerTrending
	TriggerRumination
	TriggerInnerMonologue
	TriggerMetacognition
)

// Resolution is InnerMonologue's resolution depth.
type Resolution int

const (
	ResolutionZero Resolution = iota
	ResolutionLow
	ResolutionHigh
)

// TriggerEvaluator is one independent trigger source in the attention
// fabric. A failing evaluator must not affect the others; the gate logs and
// continues.
type TriggerEvaluator interface {
	Name() string
	Evaluate(ctx context.Context) ([]Trigger, error)
}
