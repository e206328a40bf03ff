package dynamics

import "github.com/mneme-ai/organism/internal/state"

// ApplyMoralCost consults the state's ValueNetwork for the given violation
// set, derives a cost, and applies it: stress increases, energy decreases,
// valence decreases. This is the second of two moral-cost paths — StepFast
// already folds a flat MoralStressBase into its stress term whenever
// ViolatedValues is non-empty. Per spec §9's open question, both paths are
// preserved rather than resolved; see DESIGN.md's "Open Question decisions"
// entry for the reasoning.
func (e Engine) ApplyMoralCost(s state.OrganismState, violated []string) state.OrganismState {
	if len(violated) == 0 {
		return s
	}
	cost := s.Slow.Values.ComputeMoralCost(violated)

	s.Fast.Stress += cost
	s.Fast.Energy -= cost * 0.5
	s.Fast.Affect.Valence -= cost * 0.6

	s.Sanitize()
	return s
}
