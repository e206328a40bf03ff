package feedback

import (
	"sync"
	"time"

	"github.com/mneme-ai/organism/internal/dynamics"
	"github.com/mneme-ai/organism/internal/logging"
	"github.com/mneme-ai/organism/internal/ports"
	"github.com/mneme-ai/organism/internal/state"
)

// SleepConfig gates when consolidation is allowed to run.
type SleepConfig struct {
	SleepStartHour          int // inclusive, 0-23
	SleepEndHour            int // exclusive, 0-23
	MinIntervalBetweenRuns  time.Duration
	AllowManualTrigger      bool // allow Consolidate outside the sleep window
	MinEpisodesForChapter   int
}

// DefaultSleepConfig mirrors the original's 2-6am window with a 20 hour
// minimum gap between runs.
func DefaultSleepConfig() SleepConfig {
	return SleepConfig{
		SleepStartHour:         2,
		SleepEndHour:           6,
		MinIntervalBetweenRuns: 20 * time.Hour,
		AllowManualTrigger:     true,
		MinEpisodesForChapter:  10,
	}
}

// Result reports what a single Consolidate call did.
type Result struct {
	Performed       bool
	Updates         StateUpdates
	Patterns        []state.ConsolidatedPattern
	SelfReflections []ports.SelfKnowledge
	NewChapter      *state.NarrativeChapter
	Crisis          *state.CrisisEvent
	SkipReason      string
}

// Consolidator runs sleep-time consolidation: it drains the feedback
// buffer into state updates, weaves a narrative chapter when enough
// episodes have accumulated, and watches for narrative crises. It is
// phased the way the teacher's batch consolidation loop is phased —
// gather, then group/aggregate, then summarize — generalized here from
// episode/entity clustering to feedback-signal-kind clustering and
// episode-digest theming.
type Consolidator struct {
	cfg       SleepConfig
	buffer    *Buffer
	narrative *Narrative

	mu      sync.Mutex
	lastRun time.Time
}

// NewConsolidator constructs a Consolidator over an existing Buffer, using
// DefaultSleepConfig.
func NewConsolidator(buffer *Buffer) *Consolidator {
	return NewConsolidatorWithConfig(buffer, DefaultSleepConfig())
}

// NewConsolidatorWithConfig constructs a Consolidator with an explicit
// SleepConfig.
func NewConsolidatorWithConfig(buffer *Buffer, cfg SleepConfig) *Consolidator {
	return &Consolidator{cfg: cfg, buffer: buffer, narrative: NewNarrative()}
}

// IsSleepTime reports whether the current wall-clock hour falls inside the
// configured sleep window.
func (c *Consolidator) IsSleepTime(now time.Time) bool {
	h := now.Hour()
	if c.cfg.SleepStartHour <= c.cfg.SleepEndHour {
		return h >= c.cfg.SleepStartHour && h < c.cfg.SleepEndHour
	}
	// window wraps past midnight, e.g. 22 -> 6
	return h >= c.cfg.SleepStartHour || h < c.cfg.SleepEndHour
}

// IsDue reports whether enough time has passed since the last run.
func (c *Consolidator) IsDue(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastRun.IsZero() {
		return true
	}
	return now.Sub(c.lastRun) >= c.cfg.MinIntervalBetweenRuns
}

// Consolidate performs one consolidation pass: gather pending feedback and
// recent episodes, group/aggregate into patterns and derive state deltas,
// weave a narrative chapter if enough episodes accumulated, and check for
// a narrative crisis. Callers are expected to apply Result.Updates and, if
// Result.Crisis is set, run it through dynamics.Engine.StepSlowCrisis.
func (c *Consolidator) Consolidate(now time.Time, episodes []state.EpisodeDigest, current state.OrganismState) Result {
	if !c.IsSleepTime(now) && !c.cfg.AllowManualTrigger {
		return Result{SkipReason: "not sleep time"}
	}
	if !c.IsDue(now) {
		return Result{SkipReason: "too soon since last consolidation"}
	}

	logging.Info(subsystem, "starting sleep consolidation")

	// Phase 1: gather + aggregate buffered feedback.
	patterns := c.buffer.Consolidate()
	updates := ComputeStateUpdates(patterns)
	reflections := SelfReflections(patterns)
	logging.Debug(subsystem, "feedback consolidation produced %d patterns, %d self-reflections", len(patterns), len(reflections))

	// Phase 2: weave a narrative chapter if enough episodes accumulated.
	var chapter *state.NarrativeChapter
	if len(episodes) >= c.cfg.MinEpisodesForChapter {
		if ch, ok := c.narrative.WeaveChapter(episodes); ok {
			chapter = &ch
		}
	}

	// Phase 3: detect narrative crisis.
	var crisis *state.CrisisEvent
	if ce, ok := c.narrative.DetectCrisis(episodes, current.Slow.NarrativeBias); ok {
		crisis = &ce
	}

	c.mu.Lock()
	c.lastRun = now
	c.mu.Unlock()

	logging.Info(subsystem, "sleep consolidation complete: updates_empty=%v chapter=%v crisis=%v",
		updates.IsEmpty(), chapter != nil, crisis != nil)

	return Result{
		Performed:       true,
		Updates:         updates,
		Patterns:        patterns,
		SelfReflections: reflections,
		NewChapter:      chapter,
		Crisis:          crisis,
	}
}

// HandleCrisis folds a detected CrisisEvent through the slow-scale crisis
// check, returning the updated state and whether a collapse (plasticity
// window) occurred.
func HandleCrisis(engine dynamics.Engine, s state.OrganismState, crisis state.CrisisEvent) (state.OrganismState, bool) {
	logging.Warn(subsystem, "handling narrative crisis: %s", crisis.Description)
	return engine.StepSlowCrisis(s, crisis.Intensity)
}
