package evaluators

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mneme-ai/organism/internal/ports"
)

// InteractionCounter is the narrow read-only view of the coordinator's
// interaction counter (coordinator-private per spec §3's ownership
// summary; exposed to evaluators only through this accessor).
type InteractionCounter interface {
	InteractionCount() uint64
}

// MetacognitionConfig tunes the periodic self-reflection gate. Grounded on
// original_source's metacognition.rs MetacognitionConfig defaults.
type MetacognitionConfig struct {
	Cooldown        time.Duration // default 3h
	EnergyFloor     float32       // default 0.35
	MinInteractions uint64        // default 10
}

// DefaultMetacognitionConfig returns the specification's documented
// defaults.
func DefaultMetacognitionConfig() MetacognitionConfig {
	return MetacognitionConfig{Cooldown: 3 * time.Hour, EnergyFloor: 0.35, MinInteractions: 10}
}

// Metacognition fires at most every Cooldown, gated on an energy floor and
// a minimum number of new interactions accumulated since the last fire.
type Metacognition struct {
	reader  StateReader
	counter InteractionCounter
	cfg     MetacognitionConfig

	mu               sync.Mutex
	lastFired        time.Time
	countAtLastFire  uint64
}

// NewMetacognition constructs a Metacognition evaluator using
// DefaultMetacognitionConfig.
func NewMetacognition(reader StateReader, counter InteractionCounter) *Metacognition {
	return NewMetacognitionWithConfig(reader, counter, DefaultMetacognitionConfig())
}

// NewMetacognitionWithConfig constructs a Metacognition evaluator with an
// explicit Config.
func NewMetacognitionWithConfig(reader StateReader, counter InteractionCounter, cfg MetacognitionConfig) *Metacognition {
	return &Metacognition{reader: reader, counter: counter, cfg: cfg}
}

func (m *Metacognition) Evaluate(ctx context.Context) ([]ports.Trigger, error) {
	s := m.reader.Snapshot()
	now := time.Now()

	if s.Fast.Energy < m.cfg.EnergyFloor {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.lastFired.IsZero() && now.Sub(m.lastFired) < m.cfg.Cooldown {
		return nil, nil
	}

	current := m.counter.InteractionCount()
	delta := current - m.countAtLastFire
	if current < m.countAtLastFire {
		delta = current // counter reset; treat as fresh
	}
	if delta < m.cfg.MinInteractions {
		return nil, nil
	}

	summary := fmt.Sprintf(
		"energy=%.2f, stress=%.2f, mood_bias=%.2f, interactions_since_last=%d",
		s.Fast.Energy, s.Fast.Stress, s.Medium.MoodBias, delta,
	)

	m.lastFired = now
	m.countAtLastFire = current

	return []ports.Trigger{{
		Kind:           ports.TriggerMetacognition,
		ContextSummary: summary,
	}}, nil
}

func (m *Metacognition) Name() string { return "MetacognitionEvaluator" }

var _ ports.TriggerEvaluator = (*Metacognition)(nil)
