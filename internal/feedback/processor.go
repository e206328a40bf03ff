package feedback

import "github.com/mneme-ai/organism/internal/state"

// ValueReinforcement names a value and the weight delta a consolidated
// pattern has earned it.
type ValueReinforcement struct {
	Value string
	Delta float32
}

// StateUpdates is the set of deltas a consolidation pass wants to apply to
// medium/slow state. Each field defaults to zero, meaning no change.
type StateUpdates struct {
	AttachmentAnxietyDelta float32
	OpennessDelta          float32
	CuriosityDelta         float32
	NarrativeBiasDelta     float32
	ValueReinforcements    []ValueReinforcement
}

// IsEmpty reports whether every delta is negligible and no value was
// reinforced, meaning this pass produced nothing actionable.
func (u StateUpdates) IsEmpty() bool {
	const eps = 0.001
	return absF32(u.AttachmentAnxietyDelta) < eps &&
		absF32(u.OpennessDelta) < eps &&
		absF32(u.CuriosityDelta) < eps &&
		absF32(u.NarrativeBiasDelta) < eps &&
		len(u.ValueReinforcements) == 0
}

func absF32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// ComputeStateUpdates derives medium/slow state deltas from a batch of
// ConsolidatedPatterns. The mapping from signal kind to target dimension
// mirrors the original buffered-feedback design: emotional feedback moves
// attachment anxiety, self-reflection moves openness, prediction error
// moves curiosity, situation interpretation moves narrative bias, and value
// judgments reinforce the named value.
func ComputeStateUpdates(patterns []state.ConsolidatedPattern) StateUpdates {
	var u StateUpdates
	for _, p := range patterns {
		switch p.Kind {
		case state.SignalUserEmotionalFeedback:
			if p.AvgValence > 0.3 {
				u.AttachmentAnxietyDelta -= 0.02 * p.AvgConfidence
			} else if p.AvgValence < -0.3 {
				u.AttachmentAnxietyDelta += 0.03 * p.AvgConfidence
			}
		case state.SignalValueJudgment:
			if p.Value == "" {
				continue
			}
			u.ValueReinforcements = append(u.ValueReinforcements, ValueReinforcement{
				Value: p.Value,
				Delta: 0.01 * float32(p.Count) * p.AvgConfidence,
			})
		case state.SignalSelfReflection:
			if p.AvgValence > 0 {
				u.OpennessDelta += 0.01 * p.AvgConfidence
			}
		case state.SignalPredictionError:
			u.CuriosityDelta += 0.02 * float32(p.Count) * p.AvgConfidence
		case state.SignalSituationInterpretation:
			u.NarrativeBiasDelta += p.AvgValence * 0.01 * p.AvgConfidence
		}
	}
	return u
}

// ApplyStateUpdates folds StateUpdates into OrganismState. Curiosity has no
// direct medium/slow home (it lives in fast state, recovered each tick by
// dynamics toward a baseline), so its delta is intentionally not applied
// here; it is surfaced only for callers that want to log or feed it into a
// baseline-adjustment mechanism of their own.
func ApplyStateUpdates(s *state.OrganismState, u StateUpdates) {
	s.Medium.Attachment.Anxiety = clamp01(s.Medium.Attachment.Anxiety + u.AttachmentAnxietyDelta)
	s.Medium.Openness = clamp01(s.Medium.Openness + u.OpennessDelta)
	s.Slow.NarrativeBias = clampSigned(s.Slow.NarrativeBias + u.NarrativeBiasDelta)

	for _, r := range u.ValueReinforcements {
		s.Slow.Values.ReinforceConsolidated(r.Value, r.Delta)
	}
	s.Sanitize()
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampSigned(v float32) float32 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
