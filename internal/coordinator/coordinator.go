// Package coordinator is the organism's central nervous system: it wires
// the limbic loop (System 1), the feedback buffer and sleep consolidator,
// the value-judgment system, and lifecycle bookkeeping into the handful of
// operations everything else in the process calls through.
package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/mneme-ai/organism/internal/dynamics"
	"github.com/mneme-ai/organism/internal/feedback"
	"github.com/mneme-ai/organism/internal/limbic"
	"github.com/mneme-ai/organism/internal/logging"
	"github.com/mneme-ai/organism/internal/ports"
	"github.com/mneme-ai/organism/internal/state"
	"github.com/mneme-ai/organism/internal/watch"
)

const subsystem = "coordinator"

// InteractionResult is what process_interaction hands back to the caller.
type InteractionResult struct {
	Marker    state.SomaticMarker
	Snapshot  state.OrganismState
	Lifecycle state.LifecycleState
	Sleeping  bool // true if the call short-circuited because lifecycle was Sleeping
}

// ActionEvaluation is evaluate_action's result.
type ActionEvaluation struct {
	MoralValence  float32
	HasConflict   bool
	Explanation   string
	ShouldProceed bool
}

// Coordinator owns the organism's lifecycle and is the single entry point
// every external surface (chat gateway, CLI, reasoning orchestrator) calls
// into. Construct with New or NewWithPersistence; both are safe for
// concurrent use once constructed.
type Coordinator struct {
	cfg    Config
	engine dynamics.Engine
	limbic *limbic.Loop

	buffer       *feedback.Buffer
	consolidator *feedback.Consolidator
	judge        ValueJudge

	lifecycle *watch.Cell[state.LifecycleState]

	mu               sync.Mutex
	interactionCount int
	episodes         []state.EpisodeDigest
	prevSnapshot     *state.OrganismState
	tickCount        uint32

	persistence ports.Persistence
	memory      ports.Memory
}

// New constructs a Coordinator with no persistence; everything lives
// in-memory for the process lifetime.
func New(engine dynamics.Engine, loop *limbic.Loop, cfg Config) *Coordinator {
	buffer := feedback.NewBuffer()
	return &Coordinator{
		cfg:          cfg,
		engine:       engine,
		limbic:       loop,
		buffer:       buffer,
		consolidator: feedback.NewConsolidatorWithConfig(buffer, cfg.Sleep),
		judge:        NewRuleBasedJudge(),
		lifecycle:    watch.NewCell(state.Awake),
	}
}

// NewWithPersistence constructs a Coordinator and wires optional persistence
// and memory handles. Either may be nil; a nil handle degrades every
// persistence-touching operation to a logged no-op per the core's failure
// semantics, it never blocks startup.
func NewWithPersistence(engine dynamics.Engine, loop *limbic.Loop, cfg Config, persistence ports.Persistence, memory ports.Memory) (*Coordinator, error) {
	c := New(engine, loop, cfg)
	c.persistence = persistence
	c.memory = memory

	if persistence == nil {
		return c, nil
	}

	ctx := context.Background()
	if saved, ok, err := persistence.LoadOrganismState(ctx); err != nil {
		logging.Error(subsystem, "failed to load persisted organism state: %v", err)
	} else if ok {
		logging.Info(subsystem, "loaded persisted organism state")
		loop.SetState(saved)
	} else {
		logging.Info(subsystem, "no persisted state found, using defaults")
	}

	if signals, err := persistence.LoadPendingFeedback(ctx); err != nil {
		logging.Error(subsystem, "failed to load pending feedback: %v", err)
	} else if len(signals) > 0 {
		logging.Info(subsystem, "loaded %d pending feedback signals", len(signals))
		for _, sig := range signals {
			c.buffer.AddSignal(sig.Kind, sig.Value, sig.Content, sig.Confidence, sig.EmotionalContext)
		}
	}

	return c, nil
}

// SubscribeLifecycle returns the current lifecycle state and a channel
// closed the next time it changes.
func (c *Coordinator) SubscribeLifecycle() (state.LifecycleState, <-chan struct{}) {
	return c.lifecycle.Subscribe()
}

// LifecycleState returns the current lifecycle state.
func (c *Coordinator) LifecycleState() state.LifecycleState {
	return c.lifecycle.Get()
}

// InteractionCount satisfies evaluators.InteractionCounter, giving the
// metacognition evaluator a read-only view of the running interaction
// total without exposing the coordinator's internal bookkeeping.
func (c *Coordinator) InteractionCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return uint64(c.interactionCount)
}

// ProcessInteraction is the main entry point for an incoming message: it
// pushes a stimulus through the limbic loop, records a narrative episode,
// and evaluates whether it's time to start drifting toward sleep. The
// limbic loop already performs the full dynamics step (fast + medium +
// moral cost) per stimulus internally (see internal/limbic.Loop), so this
// does not re-derive step_fast against a second state copy.
func (c *Coordinator) ProcessInteraction(ctx context.Context, author, content string, responseDelay float32) (InteractionResult, error) {
	if c.LifecycleState() == state.Sleeping {
		return InteractionResult{Lifecycle: state.Sleeping, Sleeping: true}, nil
	}

	valence, intensity := analyzeSentiment(content)
	marker, err := c.limbic.ProcessStimulusSync(ctx, content, valence, intensity, true, nil)
	if err != nil {
		return InteractionResult{}, err
	}

	c.mu.Lock()
	c.episodes = append(c.episodes, state.EpisodeDigest{
		Timestamp:        time.Now(),
		Author:           author,
		Content:          content,
		EmotionalValence: marker.Affect.Valence,
	})
	if len(c.episodes) > c.cfg.MaxEpisodeBuffer {
		overflow := len(c.episodes) - c.cfg.EpisodeBufferTrimTo
		c.episodes = append([]state.EpisodeDigest(nil), c.episodes[overflow:]...)
	}
	c.interactionCount++
	c.mu.Unlock()

	_ = responseDelay // folded into the limbic loop's own idle-delay tracking, not this call

	c.saveStateWithTrigger(ctx, "interaction")
	c.checkLifecycleTransition(time.Now())

	return InteractionResult{
		Marker:    marker,
		Snapshot:  c.limbic.Snapshot(),
		Lifecycle: c.LifecycleState(),
	}, nil
}

// EvaluateAction queries the value judge on a proposed action, applies any
// resulting moral cost to live state, and reports whether the action should
// proceed.
func (c *Coordinator) EvaluateAction(ctx context.Context, description, proposedAction string) (ActionEvaluation, error) {
	snap := c.limbic.Snapshot()

	situation := Situation{
		Description:      description,
		ProposedAction:   proposedAction,
		EmotionalValence: snap.Fast.Affect.Valence,
	}
	judgment := c.judge.Evaluate(situation, snap.Slow.Values)

	if len(judgment.ViolatedValues) > 0 {
		violated := make([]string, len(judgment.ViolatedValues))
		for i, v := range judgment.ViolatedValues {
			violated[i] = v.ValueName
		}
		if _, err := c.limbic.ProcessStimulusSync(ctx, description, 0, 0, false, violated); err != nil {
			return ActionEvaluation{}, err
		}
	}

	return ActionEvaluation{
		MoralValence:  judgment.MoralValence,
		HasConflict:   judgment.HasConflict,
		Explanation:   judgment.Explanation,
		ShouldProceed: judgment.MoralValence > -0.3,
	}, nil
}

// RecordFeedback enqueues an interpretation signal for the next sleep-time
// consolidation pass. It never blocks on persistence.
func (c *Coordinator) RecordFeedback(kind state.SignalKind, value, content string, confidence, emotionalContext float32) {
	c.buffer.AddSignal(kind, value, content, confidence, emotionalContext)
}

func (c *Coordinator) saveStateWithTrigger(ctx context.Context, trigger string) {
	if c.persistence == nil {
		return
	}
	snap := c.limbic.Snapshot()
	if err := c.persistence.SaveOrganismState(ctx, snap); err != nil {
		logging.Error(subsystem, "failed to save organism state: %v", err)
		return
	}

	c.mu.Lock()
	prev := c.prevSnapshot
	c.mu.Unlock()

	if err := c.persistence.RecordStateSnapshot(ctx, snap, trigger, prev); err != nil {
		logging.Error(subsystem, "failed to record state history: %v", err)
	}

	c.mu.Lock()
	c.prevSnapshot = &snap
	c.mu.Unlock()
}

func (c *Coordinator) setLifecycleState(next state.LifecycleState) {
	if c.lifecycle.Get() == next {
		return
	}
	logging.Info(subsystem, "lifecycle transition: %s -> %s", c.lifecycle.Get(), next)
	c.lifecycle.Publish(next)
}

func (c *Coordinator) checkLifecycleTransition(now time.Time) {
	if !c.cfg.AutoSleep {
		return
	}
	c.mu.Lock()
	count := c.interactionCount
	c.mu.Unlock()

	inWindow := c.consolidator.IsSleepTime(now)
	if inWindow && count >= c.cfg.MinInteractionsBeforeSleep && c.LifecycleState() == state.Awake {
		c.setLifecycleState(state.Drowsy)
	}
}

func (c *Coordinator) shouldSleep(now time.Time) bool {
	return c.consolidator.IsSleepTime(now) && c.consolidator.IsDue(now)
}
