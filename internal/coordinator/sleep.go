package coordinator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mneme-ai/organism/internal/feedback"
	"github.com/mneme-ai/organism/internal/logging"
	"github.com/mneme-ai/organism/internal/ports"
	"github.com/mneme-ai/organism/internal/state"
)

// TriggerSleep runs one full sleep-consolidation cycle: it transitions to
// Sleeping, consolidates buffered feedback and recent episodes, applies the
// resulting state updates, handles any detected narrative crisis, persists
// the new chapter and any self-reflections, trims the episode buffer, saves
// state, and returns to Awake. Every persistence step is best-effort: a
// failure is logged and does not prevent the cycle from completing or the
// lifecycle from returning to Awake.
func (c *Coordinator) TriggerSleep(ctx context.Context) (feedback.Result, error) {
	c.setLifecycleState(state.Sleeping)

	c.mu.Lock()
	episodes := append([]state.EpisodeDigest(nil), c.episodes...)
	c.mu.Unlock()

	current := c.limbic.Snapshot()
	now := time.Now()
	result := c.consolidator.Consolidate(now, episodes, current)

	if result.Performed && !result.Updates.IsEmpty() {
		updated := current
		feedback.ApplyStateUpdates(&updated, result.Updates)
		c.limbic.SetState(updated)
		logging.Info(subsystem, "applied state updates from sleep consolidation")
	}

	if result.Crisis != nil {
		s := c.limbic.Snapshot()
		updated, collapsed := feedback.HandleCrisis(c.engine, s, *result.Crisis)
		c.limbic.SetState(updated)
		if collapsed {
			logging.Warn(subsystem, "narrative collapse occurred during sleep")
		}
	}

	if result.NewChapter != nil && c.persistence != nil {
		if err := c.persistence.SaveNarrativeChapter(ctx, *result.NewChapter); err != nil {
			logging.Error(subsystem, "failed to save narrative chapter: %v", err)
		}
	}

	if len(result.SelfReflections) > 0 {
		c.storeSelfReflections(ctx, result.SelfReflections)
	}

	c.mu.Lock()
	if keep := len(c.episodes) - 100; keep > 0 {
		c.episodes = append([]state.EpisodeDigest(nil), c.episodes[keep:]...)
	}
	c.mu.Unlock()

	c.saveStateWithTrigger(ctx, "consolidation")
	c.setLifecycleState(state.Awake)

	return result, nil
}

func (c *Coordinator) storeSelfReflections(ctx context.Context, reflections []ports.SelfKnowledge) {
	if c.memory == nil {
		return
	}
	for _, r := range reflections {
		if err := c.memory.StoreSelfKnowledge(ctx, r); err != nil {
			logging.Warn(subsystem, "failed to store self-reflection: %v", err)
		}
	}
	logging.Info(subsystem, "stored %d self-reflection entries", len(reflections))

	summary := feedback.FormatReflectionSummary(reflections)
	if summary == "" {
		return
	}
	ep := state.Episode{
		ID:        uuid.NewString(),
		Source:    "self:reflection",
		Author:    "self",
		Body:      summary,
		Timestamp: time.Now(),
		Modality:  "text",
		Strength:  0.8,
	}
	if err := c.memory.Memorize(ctx, ep); err != nil {
		logging.Warn(subsystem, "failed to store reflection meta-episode: %v", err)
	}
}
