package coordinator

import (
	"context"
	"time"

	"github.com/mneme-ai/organism/internal/state"
)

// Tick performs one slice of time-sliced maintenance. The host is expected
// to drive this on cfg.StateUpdateInterval (or an approximation of it); the
// coordinator does not start its own ticker.
func (c *Coordinator) Tick(ctx context.Context) error {
	c.mu.Lock()
	c.tickCount++
	tick := c.tickCount
	c.mu.Unlock()

	switch c.LifecycleState() {
	case state.Awake:
		s := c.limbic.Snapshot()
		s = c.engine.StepMedium(s, state.SensoryInput{}, 60)
		c.limbic.SetState(s)

		if int(tick)%c.cfg.SaveStateEveryNTicks == 0 {
			c.saveStateWithTrigger(ctx, "tick")
		}
		if int(tick)%c.cfg.PruneHistoryEveryNTicks == 0 && c.persistence != nil {
			if err := c.persistence.PruneStateHistory(ctx, c.cfg.PruneMaxEntries, c.cfg.PruneMaxAge); err != nil {
				// pruning is routine housekeeping; a failure just means the
				// history table grows until the next successful attempt.
				_ = err
			}
		}

	case state.Drowsy:
		if c.shouldSleep(time.Now()) {
			if _, err := c.TriggerSleep(ctx); err != nil {
				return err
			}
		}

	case state.Sleeping, state.ShuttingDown, state.Degraded:
		// no-op: consolidation in progress, or past the point of doing
		// further maintenance work.
	}

	return nil
}
