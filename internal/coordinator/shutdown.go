package coordinator

import (
	"context"

	"github.com/mneme-ai/organism/internal/logging"
	"github.com/mneme-ai/organism/internal/state"
)

// Shutdown requests a graceful stop: it marks the lifecycle ShuttingDown,
// runs one last consolidation pass if feedback is still pending, and saves
// a final state snapshot.
func (c *Coordinator) Shutdown(ctx context.Context) {
	c.setLifecycleState(state.ShuttingDown)

	if c.buffer.PendingCount() > 0 {
		logging.Info(subsystem, "performing final consolidation before shutdown (%d pending signals)", c.buffer.PendingCount())
		if _, err := c.TriggerSleep(ctx); err != nil {
			logging.Error(subsystem, "final consolidation failed: %v", err)
		}
	}

	c.saveStateWithTrigger(ctx, "shutdown")
	logging.Info(subsystem, "organism state saved before shutdown")
}
