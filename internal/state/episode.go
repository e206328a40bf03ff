package state

import "time"

// Episode is a stored interaction atom. It is created by the coordinator on
// interaction and owned by the memory collaborator after Memorize; the core
// only reads Strength back via recall, never mutates it (strength decay is
// the memory collaborator's encoding-layer concern).
type Episode struct {
	ID        string
	Source    string
	Author    string
	Body      string
	Timestamp time.Time
	Modality  string
	Strength  float32 // [0,1]
}

// EpisodeDigest is the narrative-weaving input: a thinned projection of an
// Episode carrying only what narrative weaving needs.
type EpisodeDigest struct {
	Timestamp        time.Time
	Author           string
	Content          string
	EmotionalValence float32 // [-1,1]
}

// TurningPoint marks an episode whose local valence deviated strongly from
// the trailing window's mean.
type TurningPoint struct {
	Timestamp time.Time
	Content   string
	Impact    float32 // signed deviation from the trailing-window average
}

// NarrativeChapter is a summary artifact woven from many episode digests.
type NarrativeChapter struct {
	ID            string
	Title         string
	Content       string
	PeriodStart   time.Time
	PeriodEnd     time.Time
	EmotionalTone float32 // mean valence over the period
	Themes        []string
	People        []string
	TurningPoints []TurningPoint
}

// CrisisEvent is a detected narrative-level crisis: a sustained mismatch
// between recent lived experience and the self-story the organism has been
// telling itself, or a run of unresolved value conflict. Feeding one into
// StepSlowCrisis may open a plasticity window.
type CrisisEvent struct {
	Description string
	Intensity   float32
	Timestamp   time.Time
}

// DreamSeed is a single memory fragment selected to seed a dream, weighted
// by recall strength so frequently-reinforced memories surface more often.
type DreamSeed struct {
	ID       string
	Author   string
	Body     string
	Strength float32 // [0,1]
}

// DreamEpisode is a generated dream narrative ready to be stored as a
// normal-strength episode.
type DreamEpisode struct {
	Narrative     string
	SourceIDs     []string
	EmotionalTone float32 // [-1,1]
}

// SignalKind is the closed sum type over feedback-signal variants.
type SignalKind int

const (
	SignalUserEmotionalFeedback SignalKind = iota
	SignalSituationInterpretation
	SignalValueJudgment
	SignalSelfReflection
	SignalPredictionError
)

func (k SignalKind) String() string {
	switch k {
	case SignalUserEmotionalFeedback:
		return "user_emotional_feedback"
	case SignalSituationInterpretation:
		return "situation_interpretation"
	case SignalValueJudgment:
		return "value_judgment"
	case SignalSelfReflection:
		return "self_reflection"
	case SignalPredictionError:
		return "prediction_error"
	default:
		return "unknown"
	}
}

// FeedbackSignal is a single piece of feedback queued for sleep-time
// consolidation. Value carries the violated/affirmed value name when Kind
// is SignalValueJudgment; it is empty otherwise.
type FeedbackSignal struct {
	ID               string
	Timestamp        time.Time
	Kind             SignalKind
	Value            string // populated only for SignalValueJudgment
	Content          string
	Confidence       float32 // [0,1]
	EmotionalContext float32 // [-1,1], valence at time of signal
	Consolidated     bool
}

// ConsolidatedPattern is the grouped-by-kind aggregate produced by temporal
// smoothing over a batch of FeedbackSignals sharing a Kind.
type ConsolidatedPattern struct {
	Kind                   SignalKind
	Value                  string // populated only when Kind is SignalValueJudgment
	Count                  int
	AvgConfidence          float32
	AvgValence             float32
	RepresentativeContent  string
	FirstSeen              time.Time
	LastSeen               time.Time
}
