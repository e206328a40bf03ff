package evaluators

import (
	"context"
	"fmt"

	"github.com/mneme-ai/organism/internal/logging"
	"github.com/mneme-ai/organism/internal/ports"
)

const habitsSubsystem = "attention.habits"

// HabitConfig tunes the habit-detection evaluator. Grounded on
// original_source's habits.rs HabitConfig defaults.
type HabitConfig struct {
	MinCount    int // default 3
	MaxPatterns int // default 3
}

// DefaultHabitConfig returns the specification's documented defaults.
func DefaultHabitConfig() HabitConfig {
	return HabitConfig{MinCount: 3, MaxPatterns: 3}
}

// Habit queries the memory collaborator for repeated self-knowledge
// patterns and emits at most MaxPatterns Rumination{kind:"habit_detected"}
// triggers. Grounded on the teacher's internal/motivation/tasks.go
// JSON-backed IdeaStore pattern, redirected here to
// Memory.DetectRepeatedPatterns.
type Habit struct {
	memory ports.Memory
	cfg    HabitConfig
}

// NewHabit constructs a Habit evaluator using DefaultHabitConfig.
func NewHabit(memory ports.Memory) *Habit {
	return NewHabitWithConfig(memory, DefaultHabitConfig())
}

// NewHabitWithConfig constructs a Habit evaluator with an explicit Config.
func NewHabitWithConfig(memory ports.Memory, cfg HabitConfig) *Habit {
	return &Habit{memory: memory, cfg: cfg}
}

func (h *Habit) Evaluate(ctx context.Context) ([]ports.Trigger, error) {
	patterns, err := h.memory.DetectRepeatedPatterns(ctx, h.cfg.MinCount)
	if err != nil {
		return nil, err
	}

	var out []ports.Trigger
	for _, p := range patterns {
		if len(out) >= h.cfg.MaxPatterns {
			break
		}
		out = append(out, ports.Trigger{
			Kind:           ports.TriggerRumination,
			RuminationKind: "habit_detected",
			Context: fmt.Sprintf(
				"a recurring behavioral pattern (%d times): %s. Has this become a habit? Worth reflecting on.",
				p.Count, p.Pattern,
			),
		})
	}

	if len(out) > 0 {
		logging.Info(habitsSubsystem, "found %d repeated pattern(s)", len(out))
	}
	return out, nil
}

func (h *Habit) Name() string { return "HabitEvaluator" }

var _ ports.TriggerEvaluator = (*Habit)(nil)
