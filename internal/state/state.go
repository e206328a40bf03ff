// Package state defines the organism's affective-cognitive state: the
// single source of truth shared by the dynamics engine, the limbic loop,
// the attention evaluators, and the feedback/consolidation pipeline.
//
// All bounded fields are 32-bit floats clamped to their declared range.
// Nothing here performs I/O or blocks; state only clamps and projects.
package state

import "time"

// OrganismState is the single source of truth for the organism's internal
// condition. The limbic loop (internal/limbic) exclusively owns the live
// instance; every other component holds a read-only view or a copy.
type OrganismState struct {
	Fast        FastState
	Medium      MediumState
	Slow        SlowState
	LastUpdated time.Time
}

// FastState holds the second-scale variables: energy, stress, social need,
// curiosity, boredom, affect, and the curiosity vector.
type FastState struct {
	Energy     float32 // [0,1]
	Stress     float32 // [0,1]
	SocialNeed float32 // [0,1]
	Curiosity  float32 // [0,1]
	Boredom    float32 // [0,1]
	Affect     Affect
	Interests  CuriosityVector
}

// MediumState holds the hour-scale variables: mood bias, openness, hunger,
// and the attachment state.
type MediumState struct {
	MoodBias   float32 // [-1,1]
	Openness   float32 // [0,1]
	Hunger     float32 // [0,1]
	Attachment AttachmentState
}

// SlowState holds the day-plus-scale variables: rigidity, narrative bias,
// and the value network.
type SlowState struct {
	Rigidity      float32 // [0,1]
	NarrativeBias float32 // [-1,1]
	Values        ValueNetwork
}

// SensoryInput is the per-stimulus input consumed by the dynamics engine.
type SensoryInput struct {
	ContentValence     float32 // [-1,1]
	ContentIntensity    float32 // [0,1]
	Surprise             float32 // [0,1]
	IsSocial             bool
	ResponseDelayFactor  float32 // [0,1], grows with idle time
	ViolatedValues       []string
}

// NewDefault returns a homeostatic starting state: mid energy, low stress,
// neutral affect, secure-leaning attachment, moderate rigidity.
func NewDefault() OrganismState {
	return OrganismState{
		Fast: FastState{
			Energy:     0.7,
			Stress:     0.2,
			SocialNeed: 0.3,
			Curiosity:  0.4,
			Boredom:    0.2,
			Affect:     Affect{Valence: 0.1, Arousal: 0.3},
			Interests:  NewCuriosityVector(),
		},
		Medium: MediumState{
			MoodBias:   0.0,
			Openness:   0.5,
			Hunger:     0.1,
			Attachment: AttachmentState{Anxiety: 0.3, Avoidance: 0.3},
		},
		Slow: SlowState{
			Rigidity:      0.4,
			NarrativeBias: 0.0,
			Values:        NewValueNetwork(),
		},
		LastUpdated: time.Now(),
	}
}

// clampF32 bounds v to [lo,hi], replacing non-finite values with fallback.
func clampF32(v, lo, hi, fallback float32) float32 {
	if isNonFinite(v) {
		v = fallback
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func isNonFinite(v float32) bool {
	// NaN never equals itself; +/-Inf survive the float32 range check below.
	if v != v {
		return true
	}
	return v > 3.4e38 || v < -3.4e38
}

// Sanitize clamps every bounded field into its declared range and replaces
// any non-finite value with a homeostatic fallback. It never panics and is
// safe to call on a state produced by arbitrary (including corrupted)
// input — it is the core's only defense against NaN/Inf propagation.
func (s *OrganismState) Sanitize() {
	s.Fast.Energy = clampF32(s.Fast.Energy, 0, 1, 0.7)
	s.Fast.Stress = clampF32(s.Fast.Stress, 0, 1, 0.2)
	s.Fast.SocialNeed = clampF32(s.Fast.SocialNeed, 0, 1, 0.3)
	s.Fast.Curiosity = clampF32(s.Fast.Curiosity, 0, 1, 0.4)
	s.Fast.Boredom = clampF32(s.Fast.Boredom, 0, 1, 0.2)
	s.Fast.Affect.Valence = clampF32(s.Fast.Affect.Valence, -1, 1, 0)
	s.Fast.Affect.Arousal = clampF32(s.Fast.Affect.Arousal, 0, 1, 0.3)
	s.Fast.Interests.sanitize()

	s.Medium.MoodBias = clampF32(s.Medium.MoodBias, -1, 1, 0)
	s.Medium.Openness = clampF32(s.Medium.Openness, 0, 1, 0.5)
	s.Medium.Hunger = clampF32(s.Medium.Hunger, 0, 1, 0.1)
	s.Medium.Attachment.Anxiety = clampF32(s.Medium.Attachment.Anxiety, 0, 1, 0.3)
	s.Medium.Attachment.Avoidance = clampF32(s.Medium.Attachment.Avoidance, 0, 1, 0.3)

	s.Slow.Rigidity = clampF32(s.Slow.Rigidity, 0, 1, 0.4)
	s.Slow.NarrativeBias = clampF32(s.Slow.NarrativeBias, -1, 1, 0)
	s.Slow.Values.sanitize()

	if s.LastUpdated.IsZero() {
		s.LastUpdated = time.Now()
	}
}

// Touch advances LastUpdated to max(now, LastUpdated), enforcing the
// monotonic-timestamp invariant even if the caller supplies an earlier
// "now" (e.g. in tests driving simulated time forward).
func (s *OrganismState) Touch(now time.Time) {
	if now.After(s.LastUpdated) {
		s.LastUpdated = now
	}
}

// Clone returns a deep copy safe for handing to a reader that must not
// observe subsequent mutation.
func (s OrganismState) Clone() OrganismState {
	c := s
	c.Fast.Interests = s.Fast.Interests.clone()
	c.Slow.Values = s.Slow.Values.clone()
	return c
}
