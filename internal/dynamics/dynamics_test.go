package dynamics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/mneme-ai/organism/internal/state"
)

func inRange(v, lo, hi float32) bool { return v >= lo && v <= hi && !math.IsNaN(float64(v)) }

func TestStepKeepsFieldsInRange(t *testing.T) {
	e := New(DefaultConfig())
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		s := state.NewDefault()
		s.Fast.Energy = rng.Float32()
		s.Fast.Stress = rng.Float32()
		in := state.SensoryInput{
			ContentValence:      rng.Float32()*2 - 1,
			ContentIntensity:    rng.Float32(),
			Surprise:            rng.Float32(),
			IsSocial:            rng.Intn(2) == 0,
			ResponseDelayFactor: rng.Float32(),
		}
		s = e.Step(s, in, rng.Float32()*5)

		if !inRange(s.Fast.Energy, 0, 1) {
			t.Fatalf("energy out of range: %v", s.Fast.Energy)
		}
		if !inRange(s.Fast.Stress, 0, 1) {
			t.Fatalf("stress out of range: %v", s.Fast.Stress)
		}
		if !inRange(s.Fast.Affect.Valence, -1, 1) {
			t.Fatalf("valence out of range: %v", s.Fast.Affect.Valence)
		}
		if !inRange(s.Fast.Affect.Arousal, 0, 1) {
			t.Fatalf("arousal out of range: %v", s.Fast.Affect.Arousal)
		}
		if !inRange(s.Medium.MoodBias, -1, 1) {
			t.Fatalf("mood_bias out of range: %v", s.Medium.MoodBias)
		}
	}
}

func TestSocialStepDecreasesSocialNeed(t *testing.T) {
	e := New(DefaultConfig())
	s := state.NewDefault()
	s.Fast.SocialNeed = 0.8
	in := state.SensoryInput{IsSocial: true, ContentValence: 0.2, ContentIntensity: 0.3}
	after := e.StepFast(s, in, 1.0)
	if after.Fast.SocialNeed >= s.Fast.SocialNeed {
		t.Fatalf("expected social_need to strictly decrease: before=%v after=%v", s.Fast.SocialNeed, after.Fast.SocialNeed)
	}
}

func TestNegativeStimulusDoesNotDecreaseStress(t *testing.T) {
	e := New(DefaultConfig())
	s := state.NewDefault()
	before := s.Fast.Stress
	in := state.SensoryInput{ContentValence: -0.8, ContentIntensity: 0.9}
	after := e.StepFast(s, in, 1.0)
	if after.Fast.Stress < before {
		t.Fatalf("expected stress not to decrease: before=%v after=%v", before, after.Fast.Stress)
	}
}

func Test72HourSilence(t *testing.T) {
	e := New(DefaultConfig())
	s := state.OrganismState{
		Fast:   state.FastState{Energy: 0.2, Stress: 0.9, SocialNeed: 0.1, Interests: state.NewCuriosityVector()},
		Medium: state.MediumState{MoodBias: -0.6},
		Slow:   state.SlowState{Rigidity: 0.4, Values: state.NewValueNetwork()},
	}
	idle := state.SensoryInput{}
	const dt = 10.0
	const totalSeconds = 72 * 3600
	steps := int(totalSeconds / dt)
	for i := 0; i < steps; i++ {
		s = e.Step(s, idle, dt)
	}

	if math.Abs(float64(s.Fast.Energy)-0.7) >= 0.1 {
		t.Errorf("energy did not settle near 0.7: got %v", s.Fast.Energy)
	}
	if math.Abs(float64(s.Fast.Stress)-0.2) >= 0.1 {
		t.Errorf("stress did not settle near 0.2: got %v", s.Fast.Stress)
	}
	if math.Abs(float64(s.Medium.MoodBias)) >= 0.15 {
		t.Errorf("mood_bias did not settle near 0: got %v", s.Medium.MoodBias)
	}
}

func TestTraumaImprinting(t *testing.T) {
	e := New(DefaultConfig())
	s := state.NewDefault()
	trauma := state.SensoryInput{
		ContentValence:   -0.95,
		ContentIntensity: 0.95,
		Surprise:         0.9,
		IsSocial:         true,
		ViolatedValues:   []string{"honesty"},
	}
	for i := 0; i < 600; i++ { // 10 minutes at dt=1s
		s = e.Step(s, trauma, 1.0)
	}
	if s.Fast.Stress <= 0.5 {
		t.Fatalf("expected stress > 0.5 after trauma, got %v", s.Fast.Stress)
	}
	if s.Medium.MoodBias >= -0.01 {
		t.Fatalf("expected mood_bias < -0.01 after trauma, got %v", s.Medium.MoodBias)
	}

	stressAfterTrauma := s.Fast.Stress
	moodAfterTrauma := s.Medium.MoodBias
	idle := state.SensoryInput{}
	for i := 0; i < 360; i++ { // 1h at dt=10s
		s = e.Step(s, idle, 10.0)
	}
	if s.Fast.Stress >= stressAfterTrauma {
		t.Fatalf("expected stress to strictly decrease during recovery: before=%v after=%v", stressAfterTrauma, s.Fast.Stress)
	}
	if s.Medium.MoodBias <= moodAfterTrauma {
		t.Fatalf("expected mood_bias to partially recover upward: before=%v after=%v", moodAfterTrauma, s.Medium.MoodBias)
	}
	if s.Medium.MoodBias >= -0.01 {
		t.Fatalf("expected mood_bias recovery to remain only partial, got %v", s.Medium.MoodBias)
	}
}

func TestSpeciesDifferentiation(t *testing.T) {
	base := DefaultConfig()
	shortLived := New(base.WithSpecies(ShortLived))
	longLived := New(base.WithSpecies(LongLived))

	run := func(e Engine) state.OrganismState {
		s := state.NewDefault()
		stress := state.SensoryInput{ContentValence: -0.6, ContentIntensity: 0.6}
		for i := 0; i < 300; i++ { // 5 min at dt=1s
			s = e.Step(s, stress, 1.0)
		}
		idle := state.SensoryInput{}
		for i := 0; i < 360; i++ { // 1h at dt=10s
			s = e.Step(s, idle, 10.0)
		}
		return s
	}

	shortResult := run(shortLived)
	longResult := run(longLived)

	if shortResult.Fast.Energy <= longResult.Fast.Energy {
		t.Fatalf("expected short-lived species to end with higher energy: short=%v long=%v",
			shortResult.Fast.Energy, longResult.Fast.Energy)
	}
	if shortResult.Fast.Stress >= longResult.Fast.Stress {
		t.Fatalf("expected short-lived species to end with lower stress: short=%v long=%v",
			shortResult.Fast.Stress, longResult.Fast.Stress)
	}
}

func TestCrisisCollapse(t *testing.T) {
	e := New(DefaultConfig())
	s := state.NewDefault()
	s.Slow.Rigidity = 0.1
	s.Medium.MoodBias = -0.5
	s.Slow.NarrativeBias = 0.5

	before := s.Slow.Rigidity
	after, collapsed := e.StepSlowCrisis(s, 0.95)
	if !collapsed {
		t.Fatalf("expected collapse=true for intensity 0.95 against rigidity 0.1")
	}
	if after.Slow.Rigidity >= before {
		t.Fatalf("expected rigidity to strictly decrease on collapse: before=%v after=%v", before, after.Slow.Rigidity)
	}
	if math.Abs(float64(after.Slow.NarrativeBias-s.Medium.MoodBias)) >= math.Abs(float64(s.Slow.NarrativeBias-s.Medium.MoodBias)) {
		t.Fatalf("expected narrative_bias to move toward current mood")
	}
}

func TestApplyMoralCostIncreasesStressDecreasesEnergy(t *testing.T) {
	e := New(DefaultConfig())
	s := state.NewDefault()
	beforeStress, beforeEnergy := s.Fast.Stress, s.Fast.Energy
	after := e.ApplyMoralCost(s, []string{"honesty"})
	if after.Fast.Stress <= beforeStress {
		t.Fatalf("expected stress to increase after moral cost")
	}
	if after.Fast.Energy >= beforeEnergy {
		t.Fatalf("expected energy to decrease after moral cost")
	}
	if !inRange(after.Fast.Stress, 0, 1) || !inRange(after.Fast.Energy, 0, 1) {
		t.Fatalf("fields escaped range after moral cost: stress=%v energy=%v", after.Fast.Stress, after.Fast.Energy)
	}
}
