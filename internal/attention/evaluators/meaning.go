package evaluators

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/mneme-ai/organism/internal/ports"
)

// MeaningConfig tunes the meaning-seeking evaluator. Grounded on
// original_source's meaning.rs defaults (energy floor and a 6h cooldown;
// the stress ceiling is fixed at 0.4 in the original and kept as such).
type MeaningConfig struct {
	EnergyMin   float32
	StressMax   float32
	Cooldown    time.Duration
}

// DefaultMeaningConfig returns the specification's documented defaults.
func DefaultMeaningConfig() MeaningConfig {
	return MeaningConfig{EnergyMin: 0.6, StressMax: 0.4, Cooldown: 6 * time.Hour}
}

// Meaning fires an existential-reflection Rumination trigger when energy is
// high, stress is low, and the cooldown has elapsed.
type Meaning struct {
	reader StateReader
	cfg    MeaningConfig

	lastFiredUnixNano atomic.Int64
}

// NewMeaning constructs a Meaning evaluator using DefaultMeaningConfig.
func NewMeaning(reader StateReader) *Meaning {
	return NewMeaningWithConfig(reader, DefaultMeaningConfig())
}

// NewMeaningWithConfig constructs a Meaning evaluator with an explicit
// Config.
func NewMeaningWithConfig(reader StateReader, cfg MeaningConfig) *Meaning {
	return &Meaning{reader: reader, cfg: cfg}
}

func (m *Meaning) Evaluate(ctx context.Context) ([]ports.Trigger, error) {
	s := m.reader.Snapshot()
	if s.Fast.Energy < m.cfg.EnergyMin {
		return nil, nil
	}
	if s.Fast.Stress > m.cfg.StressMax {
		return nil, nil
	}

	now := time.Now()
	last := m.lastFiredUnixNano.Load()
	if last != 0 && now.Sub(time.Unix(0, last)) < m.cfg.Cooldown {
		return nil, nil
	}
	m.lastFiredUnixNano.Store(now.UnixNano())

	return []ports.Trigger{{
		Kind:           ports.TriggerRumination,
		RuminationKind: "meaning_seeking",
		Context: fmt.Sprintf(
			"calm and unhurried (stress=%.0f%%, energy=%.0f%%); a good moment for existential reflection. "+
				"Look back over recent experiences and what they mean: growth, relationships, understanding of the world, or anything that feels meaningful.",
			s.Fast.Stress*100, s.Fast.Energy*100,
		),
	}}, nil
}

func (m *Meaning) Name() string { return "MeaningEvaluator" }

var _ ports.TriggerEvaluator = (*Meaning)(nil)
