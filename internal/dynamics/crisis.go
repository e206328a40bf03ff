package dynamics

import "github.com/mneme-ai/organism/internal/state"

// StepSlowCrisis runs the day-plus-scale crisis check. When crisisIntensity
// exceeds a rigidity-dependent threshold, rigidity is reduced
// multiplicatively (a plasticity window opens) and narrative_bias shifts
// toward the current mood; otherwise rigidity slowly solidifies toward 1.
// Returns whether a collapse occurred.
func (e Engine) StepSlowCrisis(s state.OrganismState, crisisIntensity float32) (state.OrganismState, bool) {
	cfg := e.Config
	threshold := cfg.CrisisThresholdBase + cfg.CrisisThresholdSlope*s.Slow.Rigidity

	collapsed := crisisIntensity > threshold
	if collapsed {
		s.Slow.Rigidity *= cfg.RigidityPlasticity
		s.Slow.NarrativeBias += (s.Medium.MoodBias - s.Slow.NarrativeBias) * 0.5
	} else {
		s.Slow.Rigidity += cfg.RigiditySolidifyRate * (1 - s.Slow.Rigidity)
	}

	s.Sanitize()
	return s, collapsed
}
