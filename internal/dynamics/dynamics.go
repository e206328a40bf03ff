package dynamics

import (
	"github.com/mneme-ai/organism/internal/state"
)

// Engine integrates the organism's ODEs. It holds only its rate-constant
// configuration — no mutable state — so a single Engine value is safe to
// share across goroutines and across dynamics "species".
type Engine struct {
	Config Config
}

// New returns an Engine using the given configuration.
func New(cfg Config) Engine {
	return Engine{Config: cfg}
}

// Step dispatches the fast-scale and medium-scale updates on every call,
// and the slow-scale crisis check only on demand via StepSlowCrisis. Order within a
// single call is fast -> medium (slow runs only through its own entry
// point). All writes are routed through state.Sanitize before returning.
func (e Engine) Step(s state.OrganismState, in state.SensoryInput, dtSeconds float32) state.OrganismState {
	s = e.StepFast(s, in, dtSeconds)
	s = e.StepMedium(s, in, dtSeconds)
	s.Sanitize()
	return s
}

// StepFast advances the second-scale variables by one Euler step of size
// dtSeconds.
func (e Engine) StepFast(s state.OrganismState, in state.SensoryInput, dt float32) state.OrganismState {
	cfg := e.Config
	f := s.Fast

	// Energy: dE/dt = r_E*(E* - E) - activity_cost(is_social)
	activityCost := cfg.ActivityCostIdle
	if in.IsSocial {
		activityCost = cfg.ActivityCostSocial
	}
	dEnergy := cfg.EnergyRelaxRate*(cfg.EnergyTarget-f.Energy) - activityCost
	f.Energy += dEnergy * dt

	// Stress: dS/dt = -r_S*(S-S*) + sens*(neg_stim + 0.3*surprise + moral_stress)
	negStim := maxF32(-in.ContentValence, 0) * in.ContentIntensity
	moralStress := float32(0)
	if len(in.ViolatedValues) > 0 {
		moralStress = cfg.MoralStressBase
	}
	dStress := -cfg.StressDecayRate*(f.Stress-cfg.StressTarget) +
		cfg.StressSensitivity*(negStim+0.3*in.Surprise+moralStress)
	f.Stress += dStress * dt

	// Affect: relax toward stimulus-derived target, biased by mood_bias;
	// stress above its homeostatic target pulls valence down proportionally.
	targetValence := in.ContentValence*in.ContentIntensity + s.Medium.MoodBias*0.3
	targetArousal := clamp01(in.ContentIntensity*0.6 + in.Surprise*0.4)
	f.Affect.Valence += cfg.AffectRelaxRate * (targetValence - f.Affect.Valence) * dt
	f.Affect.Valence -= 0.05 * maxF32(f.Stress-cfg.StressTarget, 0) * dt
	f.Affect.Arousal += cfg.AffectRelaxRate * (targetArousal - f.Affect.Arousal) * dt

	// Curiosity: grows with positive surprise and openness, decays under stress.
	posSurprise := maxF32(in.Surprise, 0)
	dCuriosity := cfg.CuriosityGrowthRate*posSurprise*(0.5+s.Medium.Openness) - cfg.CuriosityDecayRate*f.Stress
	f.Curiosity += dCuriosity * dt

	// Boredom rises when nothing novel happens and falls with surprise.
	if in.Surprise < 0.1 {
		f.Boredom += 0.01 * dt
	} else {
		f.Boredom -= 0.05 * in.Surprise * dt
	}

	// Social need: multiplicative decay while social, else grows toward target.
	if in.IsSocial {
		f.SocialNeed *= (1 - cfg.SocialNeedDecayRate*dt)
	} else {
		f.SocialNeed += cfg.SocialNeedGrowthRate * (cfg.SocialNeedTarget - f.SocialNeed) * dt
	}

	s.Fast = f
	s.Sanitize()
	return s
}

// StepMedium advances the hour-scale variables. dtSeconds is typically much
// larger than in StepFast calls (the coordinator drives this at ~60s
// simulated intervals during ticks).
func (e Engine) StepMedium(s state.OrganismState, in state.SensoryInput, dt float32) state.OrganismState {
	cfg := e.Config
	m := s.Medium

	tau := float32(cfg.MoodTimeConstant.Seconds())
	if tau <= 0 {
		tau = 1
	}
	m.MoodBias += (s.Fast.Affect.Valence - m.MoodBias) * (dt / tau)

	m.Openness += cfg.OpennessRelaxRate * (0.5*s.Fast.Curiosity - m.Openness) * dt

	if s.Fast.SocialNeed > 0.5 {
		m.Hunger += cfg.HungerGrowthRate * (s.Fast.SocialNeed - 0.5) * dt
	}

	if in.IsSocial {
		nudge := cfg.AttachmentNudgeRate * in.ResponseDelayFactor
		if in.ContentValence < 0 {
			m.Attachment.Anxiety += nudge * (1 - in.ContentValence) * 0.5
		} else {
			m.Attachment.Anxiety -= nudge * in.ContentValence * 0.3
			m.Attachment.Avoidance -= nudge * in.ContentValence * 0.2
		}
		if in.ResponseDelayFactor > 0.5 {
			m.Attachment.Avoidance += nudge * 0.4
		}
	}

	s.Medium = m
	s.Sanitize()
	return s
}

func maxF32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
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
