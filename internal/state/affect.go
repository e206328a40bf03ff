package state

import "math"

// Affect is the 2-D emotional state (valence, arousal) from the circumplex
// model. Valence ranges [-1,1]; arousal ranges [0,1].
type Affect struct {
	Valence float32
	Arousal float32
}

// Named presets, grounded on the circumplex quadrants.
var (
	AffectJoy      = Affect{Valence: 0.8, Arousal: 0.6}
	AffectAnxiety  = Affect{Valence: -0.5, Arousal: 0.8}
	AffectSerenity = Affect{Valence: 0.5, Arousal: 0.15}
	AffectAnger    = Affect{Valence: -0.7, Arousal: 0.75}
	AffectSadness  = Affect{Valence: -0.6, Arousal: 0.2}
	AffectNeutral  = Affect{Valence: 0, Arousal: 0.3}
)

// AffectFromPolar builds an Affect from an angle (radians, 0 = rightmost
// "joy" axis, counter-clockwise) and an intensity in [0,1] scaling the
// resulting vector's magnitude.
func AffectFromPolar(angle float64, intensity float32) Affect {
	if intensity < 0 {
		intensity = 0
	}
	if intensity > 1 {
		intensity = 1
	}
	return Affect{
		Valence: clampF32(float32(math.Cos(angle))*intensity, -1, 1, 0),
		Arousal: clampF32((float32(math.Sin(angle))*intensity+1)/2, 0, 1, 0.3),
	}
}

// Lerp linearly interpolates between a and b by t in [0,1].
func (a Affect) Lerp(b Affect, t float32) Affect {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return Affect{
		Valence: a.Valence + (b.Valence-a.Valence)*t,
		Arousal: a.Arousal + (b.Arousal-a.Arousal)*t,
	}
}

// DiscreteLabel classifies the affect into one of six quadrant-based labels,
// or "neutral" when the vector's magnitude falls below an intensity floor.
func (a Affect) DiscreteLabel() string {
	const intensityFloor = 0.15
	magnitude := math.Hypot(float64(a.Valence), float64(a.Arousal-0.3))
	if magnitude < intensityFloor {
		return "neutral"
	}
	switch {
	case a.Valence >= 0 && a.Arousal >= 0.5:
		return "excited"
	case a.Valence >= 0 && a.Arousal < 0.5:
		return "content"
	case a.Valence < 0 && a.Arousal >= 0.65:
		return "distressed"
	case a.Valence < 0 && a.Arousal >= 0.35:
		return "tense"
	case a.Valence < 0:
		return "sad"
	default:
		return "flat"
	}
}

// Describe returns a short natural-language descriptor, used only for
// legacy TTS/expressive routing — never for structural decisions.
func (a Affect) Describe() string {
	switch a.DiscreteLabel() {
	case "excited":
		return "feeling bright and energized"
	case "content":
		return "feeling settled and at ease"
	case "distressed":
		return "feeling shaken and on edge"
	case "tense":
		return "feeling tight and wary"
	case "sad":
		return "feeling low and heavy"
	case "flat":
		return "feeling muted and still"
	default:
		return "feeling even-keeled"
	}
}
