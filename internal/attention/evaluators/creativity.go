package evaluators

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/mneme-ai/organism/internal/ports"
)

// CreativityConfig tunes the creativity evaluator. Grounded on
// original_source's creativity.rs defaults (a 3h cooldown; boredom and
// curiosity thresholds match the Rumination evaluator's own thresholds in
// the original, since both read from a shared BehaviorThresholds struct).
type CreativityConfig struct {
	BoredomThreshold   float32
	CuriosityThreshold float32
	EnergyFloor        float32
	Cooldown           time.Duration
}

// DefaultCreativityConfig returns the specification's documented defaults.
func DefaultCreativityConfig() CreativityConfig {
	return CreativityConfig{
		BoredomThreshold:   0.6,
		CuriosityThreshold: 0.6,
		EnergyFloor:        0.3,
		Cooldown:           3 * time.Hour,
	}
}

// Creativity fires when both boredom and curiosity exceed their thresholds
// and energy is above a floor, channeling restlessness into a concrete
// make/explore/experiment prompt around the top curiosity interest.
type Creativity struct {
	reader StateReader
	cfg    CreativityConfig

	lastFiredUnixNano atomic.Int64
}

// NewCreativity constructs a Creativity evaluator using
// DefaultCreativityConfig.
func NewCreativity(reader StateReader) *Creativity {
	return NewCreativityWithConfig(reader, DefaultCreativityConfig())
}

// NewCreativityWithConfig constructs a Creativity evaluator with an
// explicit Config.
func NewCreativityWithConfig(reader StateReader, cfg CreativityConfig) *Creativity {
	return &Creativity{reader: reader, cfg: cfg}
}

func (c *Creativity) Evaluate(ctx context.Context) ([]ports.Trigger, error) {
	s := c.reader.Snapshot()
	if s.Fast.Boredom < c.cfg.BoredomThreshold {
		return nil, nil
	}
	if s.Fast.Curiosity < c.cfg.CuriosityThreshold {
		return nil, nil
	}
	if s.Fast.Energy < c.cfg.EnergyFloor {
		return nil, nil
	}

	topic := "something"
	if top := s.Fast.Interests.TopK(1); len(top) > 0 {
		topic = top[0].Topic
	}

	now := time.Now()
	last := c.lastFiredUnixNano.Load()
	if last != 0 && now.Sub(time.Unix(0, last)) < c.cfg.Cooldown {
		return nil, nil
	}
	c.lastFiredUnixNano.Store(now.UnixNano())

	return []ports.Trigger{{
		Kind:           ports.TriggerRumination,
		RuminationKind: "creativity",
		Context: fmt.Sprintf(
			"bored (%.0f%%) and curious (%.0f%%); wants to make something. Recently interested in \"%s\". Use a tool to write, explore an idea, or try a small experiment.",
			s.Fast.Boredom*100, s.Fast.Curiosity*100, topic,
		),
	}}, nil
}

func (c *Creativity) Name() string { return "CreativityEvaluator" }

var _ ports.TriggerEvaluator = (*Creativity)(nil)
