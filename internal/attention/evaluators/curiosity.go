package evaluators

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/mneme-ai/organism/internal/ports"
)

// CuriosityConfig tunes the curiosity-exploration evaluator. Grounded on
// original_source's curiosity.rs defaults.
type CuriosityConfig struct {
	CuriosityThreshold float32       // default 0.65
	InterestThreshold  float32       // default 0.4
	Cooldown           time.Duration // default 30min
}

// DefaultCuriosityConfig returns the specification's documented defaults.
func DefaultCuriosityConfig() CuriosityConfig {
	return CuriosityConfig{CuriosityThreshold: 0.65, InterestThreshold: 0.4, Cooldown: 30 * time.Minute}
}

// Curiosity fires when the scalar curiosity drive is high AND the top
// CuriosityVector interest is intense enough to act on, routing the topic
// into the rumination context for autonomous exploration.
type Curiosity struct {
	reader StateReader
	cfg    CuriosityConfig

	lastFiredUnixNano atomic.Int64
}

// NewCuriosity constructs a Curiosity evaluator using
// DefaultCuriosityConfig.
func NewCuriosity(reader StateReader) *Curiosity {
	return NewCuriosityWithConfig(reader, DefaultCuriosityConfig())
}

// NewCuriosityWithConfig constructs a Curiosity evaluator with an explicit
// Config.
func NewCuriosityWithConfig(reader StateReader, cfg CuriosityConfig) *Curiosity {
	return &Curiosity{reader: reader, cfg: cfg}
}

func (c *Curiosity) Evaluate(ctx context.Context) ([]ports.Trigger, error) {
	s := c.reader.Snapshot()
	if s.Fast.Curiosity < c.cfg.CuriosityThreshold {
		return nil, nil
	}

	top := s.Fast.Interests.TopK(1)
	if len(top) == 0 || top[0].Intensity < c.cfg.InterestThreshold {
		return nil, nil
	}
	topic, intensity := top[0].Topic, top[0].Intensity

	now := time.Now()
	last := c.lastFiredUnixNano.Load()
	if last != 0 && now.Sub(time.Unix(0, last)) < c.cfg.Cooldown {
		return nil, nil
	}
	c.lastFiredUnixNano.Store(now.UnixNano())

	return []ports.Trigger{{
		Kind:           ports.TriggerRumination,
		RuminationKind: "curiosity_exploration",
		Context: fmt.Sprintf(
			"curiosity is strong (%.0f%%), especially about \"%s\" (interest %.0f%%). Search or explore this topic with a tool, then share the finding.",
			s.Fast.Curiosity*100, topic, intensity*100,
		),
		Topic: topic,
	}}, nil
}

func (c *Curiosity) Name() string { return "CuriosityEvaluator" }

var _ ports.TriggerEvaluator = (*Curiosity)(nil)
