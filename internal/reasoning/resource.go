package reasoning

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/mneme-ai/organism/internal/logging"
	"github.com/mneme-ai/organism/internal/ports"
)

// resourceStatusLayer formats the fifth context layer: host uptime,
// stored episode count, and token usage against the configured daily and
// monthly limits.
func resourceStatusLayer(ctx context.Context, mem ports.Memory, advisor *tokenBudgetAdvisor) string {
	uptime := "unknown"
	if secs, err := host.Uptime(); err != nil {
		logging.Debug("reasoning", "host uptime unavailable: %v", err)
	} else {
		uptime = time.Duration(secs * uint64(time.Second)).String()
	}

	episodeCount := 0
	if mem != nil {
		if n, err := mem.EpisodeCount(ctx); err != nil {
			logging.Debug("reasoning", "episode count unavailable: %v", err)
		} else {
			episodeCount = n
		}
	}

	daily, monthly := advisor.usage()
	return fmt.Sprintf(
		"uptime %s, %d episodes stored, token usage today %d/%d, this month %d/%d",
		uptime, episodeCount, daily, advisor.cfg.DailyTokenLimit, monthly, advisor.cfg.MonthlyTokenLimit,
	)
}
