package evaluators

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mneme-ai/organism/internal/ports"
	"github.com/mneme-ai/organism/internal/state"
)

// ConsciousnessConfig tunes the self-triggered consciousness gate. Grounded
// on original_source's consciousness.rs ConsciousnessConfig defaults.
type ConsciousnessConfig struct {
	LowThreshold           float32       // minimum max-delta to leave "zero resolution"
	HighIntensityThreshold float32       // peak body-feeling intensity escalating to High
	HighFeelingCount       int           // co-occurring feelings escalating to High
	EnergyFloor            float32       // below this, consciousness cannot fire
	FeelingThreshold       float32       // per-dimension significance floor
	Cooldown               time.Duration
}

// DefaultConsciousnessConfig returns the specification's documented
// defaults.
func DefaultConsciousnessConfig() ConsciousnessConfig {
	return ConsciousnessConfig{
		LowThreshold:           0.12,
		HighIntensityThreshold: 0.6,
		HighFeelingCount:       3,
		EnergyFloor:            0.25,
		FeelingThreshold:       0.10,
		Cooldown:               5 * time.Minute,
	}
}

type bodyFeeling struct {
	label     string
	intensity float32
}

// ConsciousnessGate fires Trigger.InnerMonologue by monitoring somatic
// marker deltas rather than a timer. Grounded on original_source's
// consciousness.rs: ADR-012 ("the right to call the LLM belongs to Mneme
// itself") and ADR-013 (resolution is selected by state intensity, not by
// external request).
//
// Below EnergyFloor the previous-marker snapshot is deliberately NOT
// updated (bug #63 in the original): if the depleted state were recorded
// as the new baseline, the delta computed after recovery would be
// compressed against that low baseline and consciousness would never fire.
// Preserving the pre-gate baseline lets the accumulated change surface once
// energy recovers.
type ConsciousnessGate struct {
	reader StateReader
	cfg    ConsciousnessConfig

	mu        sync.Mutex
	prev      *state.SomaticMarker
	lastFired time.Time
}

// NewConsciousnessGate constructs a gate over reader using
// DefaultConsciousnessConfig.
func NewConsciousnessGate(reader StateReader) *ConsciousnessGate {
	return NewConsciousnessGateWithConfig(reader, DefaultConsciousnessConfig())
}

// NewConsciousnessGateWithConfig constructs a gate with an explicit Config.
func NewConsciousnessGateWithConfig(reader StateReader, cfg ConsciousnessConfig) *ConsciousnessGate {
	return &ConsciousnessGate{reader: reader, cfg: cfg}
}

func stateDelta(curr, prev state.SomaticMarker) float32 {
	deltas := []float32{
		absF32(curr.Energy - prev.Energy),
		absF32(curr.Stress - prev.Stress),
		absF32(curr.SocialNeed - prev.SocialNeed),
		absF32(curr.Curiosity - prev.Curiosity),
		absF32(curr.MoodBias - prev.MoodBias),
		absF32(curr.Affect.Valence - prev.Affect.Valence),
		absF32(curr.Affect.Arousal - prev.Affect.Arousal),
	}
	var max float32
	for _, d := range deltas {
		if d > max {
			max = d
		}
	}
	return max
}

func absF32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// describeBodyFeeling reports every named dimension whose change exceeds
// threshold, annotated with the magnitude of the change.
func describeBodyFeeling(curr, prev state.SomaticMarker, threshold float32) []bodyFeeling {
	candidates := []struct {
		label string
		delta float32
	}{
		{"energy shifted", curr.Energy - prev.Energy},
		{"stress rising", curr.Stress - prev.Stress},
		{"social pull", curr.SocialNeed - prev.SocialNeed},
		{"curiosity stirring", curr.Curiosity - prev.Curiosity},
		{"mood drifting", curr.MoodBias - prev.MoodBias},
		{"feeling shifted", curr.Affect.Valence - prev.Affect.Valence},
		{"pulse quickened", curr.Affect.Arousal - prev.Affect.Arousal},
	}
	var out []bodyFeeling
	for _, c := range candidates {
		mag := absF32(c.delta)
		if mag >= threshold {
			out = append(out, bodyFeeling{label: c.label, intensity: mag})
		}
	}
	return out
}

func classifyCause(feelings []bodyFeeling, curr state.SomaticMarker) string {
	if curr.Stress > 0.7 {
		return "stress_spike"
	}
	if curr.Affect.Arousal > 0.7 && absF32(curr.Affect.Valence) > 0.5 {
		return "emotional_surge"
	}
	for _, f := range feelings {
		if f.label == "energy shifted" {
			return "body_feeling"
		}
	}
	for _, f := range feelings {
		if f.label == "curiosity stirring" {
			return "curiosity_overflow"
		}
	}
	return "state_shift"
}

func buildSeed(feelings []bodyFeeling) string {
	if len(feelings) == 0 {
		return "something shifted internally"
	}
	out := ""
	for i, f := range feelings {
		if i > 0 {
			out += "; "
		}
		out += fmt.Sprintf("%s (%.0f%%)", f.label, f.intensity*100)
	}
	return out
}

// Evaluate implements the seven-step gate described in spec §4.4.
func (g *ConsciousnessGate) Evaluate(ctx context.Context) ([]ports.Trigger, error) {
	s := g.reader.Snapshot()
	curr := s.Marker()
	now := time.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	// (i) Energy gate: short-circuit WITHOUT updating the snapshot.
	if curr.Energy < g.cfg.EnergyFloor {
		return nil, nil
	}

	// (ii) Cooldown gate.
	if !g.lastFired.IsZero() && now.Sub(g.lastFired) < g.cfg.Cooldown {
		return nil, nil
	}

	prev := g.prev
	g.prev = &curr
	if prev == nil {
		return nil, nil // first call: record baseline only
	}

	// (iii) Max absolute delta over the somatic dimensions.
	delta := stateDelta(curr, *prev)

	// (iv) Below low threshold: zero resolution, no trigger.
	if delta < g.cfg.LowThreshold {
		return nil, nil
	}

	feelings := describeBodyFeeling(curr, *prev, g.cfg.FeelingThreshold)

	// (v) Resolution selection.
	var maxIntensity float32
	for _, f := range feelings {
		if f.intensity > maxIntensity {
			maxIntensity = f.intensity
		}
	}
	resolution := ports.ResolutionLow
	if maxIntensity > g.cfg.HighIntensityThreshold || len(feelings) >= g.cfg.HighFeelingCount {
		resolution = ports.ResolutionHigh
	}

	// (vi) Cause classification.
	cause := classifyCause(feelings, curr)

	// (vii) Seed from annotated body feelings.
	seed := buildSeed(feelings)

	g.lastFired = now

	return []ports.Trigger{{
		Kind:       ports.TriggerInnerMonologue,
		Cause:      cause,
		Seed:       seed,
		Resolution: resolution,
	}}, nil
}

func (g *ConsciousnessGate) Name() string { return "ConsciousnessGate" }

var _ ports.TriggerEvaluator = (*ConsciousnessGate)(nil)
