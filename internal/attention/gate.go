// Package attention implements the proactive trigger fabric: independent
// evaluators competing through a priority-weighted single-focus gate.
// Grounded on the teacher's internal/focus/attention.go (priority-then-
// salience sort, single-winner selection) generalized from its five-level
// domain-specific priority enum to the spec's {External, High, Medium, Low}
// trigger classes and the closed ports.Trigger sum type.
package attention

import (
	"context"
	"math"
	"sort"
	"sync/atomic"

	"github.com/mneme-ai/organism/internal/logging"
	"github.com/mneme-ai/organism/internal/ports"
)

const subsystem = "attention"

// Priority is the four-tier competition class a Trigger is classified into.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityExternal
)

// score normalizes a Priority to [0,1] for threshold comparison, per the
// specification's documented tier values.
func (p Priority) score() float32 {
	switch p {
	case PriorityExternal:
		return 1.00
	case PriorityHigh:
		return 0.75
	case PriorityMedium:
		return 0.50
	default:
		return 0.20
	}
}

// Classify assigns a Trigger to its priority tier (spec §4.4's table).
func Classify(t ports.Trigger) Priority {
	switch t.Kind {
	case ports.TriggerScheduled, ports.TriggerContentRelevance, ports.TriggerTrending:
		return PriorityExternal
	case ports.TriggerMemoryDecay:
		return PriorityHigh
	case ports.TriggerInnerMonologue:
		if t.Resolution == ports.ResolutionHigh {
			return PriorityHigh
		}
		return PriorityLow
	case ports.TriggerMetacognition:
		return PriorityMedium
	default: // Rumination
		return PriorityLow
	}
}

// Config tunes the gate's interrupt threshold and fan-in limit.
type Config struct {
	BaseThreshold    float32 // default 0.3
	EngagementBoost  float32 // default 0.4
	MaxTriggers      int     // default 1
}

// DefaultConfig returns the specification's documented defaults.
func DefaultConfig() Config {
	return Config{BaseThreshold: 0.3, EngagementBoost: 0.4, MaxTriggers: 1}
}

// Gate wraps every registered evaluator and enforces single-focus
// attention: only the highest-priority trigger(s) above threshold survive
// each cycle. Engagement is stored as the bit pattern of a float32 in an
// atomic.Uint32 so updates are lock-free, mirroring the teacher/original's
// AtomicU64-backed EngagementHandle.
type Gate struct {
	evaluators []ports.TriggerEvaluator
	cfg        Config
	engagement atomic.Uint32
}

// New constructs a Gate over the given evaluators using DefaultConfig.
func New(evaluators []ports.TriggerEvaluator) *Gate {
	return NewWithConfig(evaluators, DefaultConfig())
}

// NewWithConfig constructs a Gate with an explicit Config.
func NewWithConfig(evaluators []ports.TriggerEvaluator, cfg Config) *Gate {
	if cfg.MaxTriggers <= 0 {
		cfg.MaxTriggers = 1
	}
	return &Gate{evaluators: evaluators, cfg: cfg}
}

// SetEngagement clamps and stores the current engagement level.
func (g *Gate) SetEngagement(level float32) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	g.engagement.Store(math.Float32bits(level))
}

// Engagement reads the current engagement level.
func (g *Gate) Engagement() float32 {
	return math.Float32frombits(g.engagement.Load())
}

// DecayEngagement multiplies engagement by factor, e.g. called once per
// coordinator tick to relax the interrupt threshold back down over time.
func (g *Gate) DecayEngagement(factor float32) {
	g.SetEngagement(g.Engagement() * factor)
}

func (g *Gate) effectiveThreshold() float32 {
	t := g.cfg.BaseThreshold + g.cfg.EngagementBoost*g.Engagement()
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return t
}

type candidate struct {
	trigger  ports.Trigger
	priority Priority
}

// Evaluate runs every registered evaluator (a failure in one is logged and
// skipped, never propagated), classifies and sorts surviving triggers by
// priority, applies the engagement-modulated threshold, and returns at most
// MaxTriggers results — single-focus enforced by construction.
func (g *Gate) Evaluate(ctx context.Context) ([]ports.Trigger, error) {
	var candidates []candidate
	for _, ev := range g.evaluators {
		triggers, err := ev.Evaluate(ctx)
		if err != nil {
			logging.Error(subsystem, "evaluator %s failed: %v", ev.Name(), err)
			continue
		}
		for _, t := range triggers {
			candidates = append(candidates, candidate{trigger: t, priority: Classify(t)})
		}
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].priority > candidates[j].priority
	})

	threshold := g.effectiveThreshold()
	var out []ports.Trigger
	for _, c := range candidates {
		if c.priority.score() < threshold {
			continue
		}
		out = append(out, c.trigger)
		if len(out) >= g.cfg.MaxTriggers {
			break
		}
	}

	if len(out) > 0 {
		logging.Info(subsystem, "%d trigger(s) passed (threshold=%.2f engagement=%.2f)", len(out), threshold, g.Engagement())
	}
	return out, nil
}

// Name identifies the gate itself as a TriggerEvaluator, so a Gate can be
// nested inside another Gate if ever needed.
func (g *Gate) Name() string { return "AttentionGate" }

var _ ports.TriggerEvaluator = (*Gate)(nil)
