package evaluators

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mneme-ai/organism/internal/ports"
)

// RuminationConfig tunes the boredom/social-need/curiosity thresholds and
// per-kind cooldown for the Rumination evaluator. Grounded on
// original_source's rumination.rs RuminationConfig defaults.
type RuminationConfig struct {
	BoredomThreshold    float32
	SocialNeedThreshold float32
	CuriosityThreshold  float32
	Cooldown            time.Duration
}

// DefaultRuminationConfig returns the specification's documented defaults.
func DefaultRuminationConfig() RuminationConfig {
	return RuminationConfig{
		BoredomThreshold:    0.6,
		SocialNeedThreshold: 0.75,
		CuriosityThreshold:  0.8,
		Cooldown:            10 * time.Minute,
	}
}

// Rumination fires low-priority self-initiated triggers when boredom,
// social need, or curiosity cross their thresholds: mind_wandering,
// social_longing, curiosity_spike. Each kind has its own cooldown.
type Rumination struct {
	reader StateReader
	cfg    RuminationConfig

	mu        sync.Mutex
	lastFired map[string]time.Time
}

// NewRumination constructs a Rumination evaluator over reader using
// DefaultRuminationConfig.
func NewRumination(reader StateReader) *Rumination {
	return NewRuminationWithConfig(reader, DefaultRuminationConfig())
}

// NewRuminationWithConfig constructs a Rumination evaluator with an
// explicit Config.
func NewRuminationWithConfig(reader StateReader, cfg RuminationConfig) *Rumination {
	return &Rumination{reader: reader, cfg: cfg, lastFired: make(map[string]time.Time)}
}

func (r *Rumination) cooldownElapsed(kind string, now time.Time) bool {
	last, ok := r.lastFired[kind]
	return !ok || now.Sub(last) >= r.cfg.Cooldown
}

// Evaluate inspects the current fast-scale state and emits zero, one, or
// several Rumination triggers — all three conditions can fire in the same
// cycle; the attention gate decides which one wins.
func (r *Rumination) Evaluate(ctx context.Context) ([]ports.Trigger, error) {
	s := r.reader.Snapshot()
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	var out []ports.Trigger

	if s.Fast.Boredom > r.cfg.BoredomThreshold && r.cooldownElapsed("mind_wandering", now) {
		out = append(out, ports.Trigger{
			Kind:           ports.TriggerRumination,
			RuminationKind: "mind_wandering",
			Context: fmt.Sprintf(
				"boredom has built up to %.0f%%; mind starts to wander. Try recalling an interesting memory or surfacing a new topic to share.",
				s.Fast.Boredom*100,
			),
		})
		r.lastFired["mind_wandering"] = now
	}

	if s.Fast.SocialNeed > r.cfg.SocialNeedThreshold && r.cooldownElapsed("social_longing", now) {
		out = append(out, ports.Trigger{
			Kind:           ports.TriggerRumination,
			RuminationKind: "social_longing",
			Context: fmt.Sprintf(
				"social need has reached %.0f%%; wants to talk. Initiate a light, low-stakes topic.",
				s.Fast.SocialNeed*100,
			),
		})
		r.lastFired["social_longing"] = now
	}

	if s.Fast.Curiosity > r.cfg.CuriosityThreshold && r.cooldownElapsed("curiosity_spike", now) {
		out = append(out, ports.Trigger{
			Kind:           ports.TriggerRumination,
			RuminationKind: "curiosity_spike",
			Context: fmt.Sprintf(
				"curiosity has reached %.0f%%; wants to explore something new. Raise a question or topic of genuine interest.",
				s.Fast.Curiosity*100,
			),
		})
		r.lastFired["curiosity_spike"] = now
	}

	return out, nil
}

func (r *Rumination) Name() string { return "RuminationEvaluator" }

var _ ports.TriggerEvaluator = (*Rumination)(nil)
