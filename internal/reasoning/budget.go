package reasoning

import (
	"fmt"
	"sync"
	"time"
)

// tokenBudgetAdvisor tracks rolling daily and monthly token usage against
// configured limits. Generalized from the teacher's ThinkingBudget, which
// tracks only a single daily output-token ceiling.
type tokenBudgetAdvisor struct {
	cfg Config

	mu        sync.Mutex
	dayStart  time.Time
	dayUsed   int
	monthKey  string
	monthUsed int
}

func newTokenBudgetAdvisor(cfg Config) *tokenBudgetAdvisor {
	now := time.Now()
	return &tokenBudgetAdvisor{
		cfg:      cfg,
		dayStart: startOfDay(now),
		monthKey: monthKeyOf(now),
	}
}

// record adds tokens to the day/month totals, rolling them over when the
// calendar day or month has changed.
func (a *tokenBudgetAdvisor) record(tokens int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := time.Now()
	if startOfDay(now).After(a.dayStart) {
		a.dayStart = startOfDay(now)
		a.dayUsed = 0
	}
	if key := monthKeyOf(now); key != a.monthKey {
		a.monthKey = key
		a.monthUsed = 0
	}
	a.dayUsed += tokens
	a.monthUsed += tokens
}

// usage returns the current day and month totals.
func (a *tokenBudgetAdvisor) usage() (daily, monthly int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dayUsed, a.monthUsed
}

// withinBudget reports whether another call is allowed under the configured
// daily and monthly limits.
func (a *tokenBudgetAdvisor) withinBudget() bool {
	daily, monthly := a.usage()
	if a.cfg.DailyTokenLimit > 0 && daily >= a.cfg.DailyTokenLimit {
		return false
	}
	if a.cfg.MonthlyTokenLimit > 0 && monthly >= a.cfg.MonthlyTokenLimit {
		return false
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func monthKeyOf(t time.Time) string {
	y, m, _ := t.Date()
	return fmt.Sprintf("%d-%02d", y, int(m))
}
