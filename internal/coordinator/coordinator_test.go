package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/mneme-ai/organism/internal/dynamics"
	"github.com/mneme-ai/organism/internal/feedback"
	"github.com/mneme-ai/organism/internal/limbic"
	"github.com/mneme-ai/organism/internal/ports"
	"github.com/mneme-ai/organism/internal/state"
)

// fakePersistence is a minimal in-memory ports.Persistence for tests.
type fakePersistence struct {
	saved       state.OrganismState
	saveCalls   int
	history     []string
	chapters    int
	pruneCalls  int
	pending     []state.FeedbackSignal
}

func (f *fakePersistence) SaveOrganismState(ctx context.Context, s state.OrganismState) error {
	f.saved = s
	f.saveCalls++
	return nil
}

func (f *fakePersistence) LoadOrganismState(ctx context.Context) (state.OrganismState, bool, error) {
	return state.OrganismState{}, false, nil
}

func (f *fakePersistence) RecordStateSnapshot(ctx context.Context, s state.OrganismState, trigger string, prev *state.OrganismState) error {
	f.history = append(f.history, trigger)
	return nil
}

func (f *fakePersistence) PruneStateHistory(ctx context.Context, maxEntries int, maxAge time.Duration) error {
	f.pruneCalls++
	return nil
}

func (f *fakePersistence) SaveNarrativeChapter(ctx context.Context, ch state.NarrativeChapter) error {
	f.chapters++
	return nil
}

func (f *fakePersistence) LoadPendingFeedback(ctx context.Context) ([]state.FeedbackSignal, error) {
	return f.pending, nil
}

var _ ports.Persistence = (*fakePersistence)(nil)

// fakeMemory is a minimal ports.Memory stub recording only what the
// coordinator calls.
type fakeMemory struct {
	memorized     []state.Episode
	selfKnowledge []ports.SelfKnowledge
}

func (m *fakeMemory) Recall(ctx context.Context, query string) (string, error) { return "", nil }
func (m *fakeMemory) RecallWithBias(ctx context.Context, query string, moodBias float32) (string, error) {
	return "", nil
}
func (m *fakeMemory) RecallReconstructed(ctx context.Context, query string, moodBias, stress float32) (string, error) {
	return "", nil
}
func (m *fakeMemory) Memorize(ctx context.Context, ep state.Episode) error {
	m.memorized = append(m.memorized, ep)
	return nil
}
func (m *fakeMemory) RecallFactsFormatted(ctx context.Context, query string) (string, error) {
	return "", nil
}
func (m *fakeMemory) StoreFact(ctx context.Context, subject, predicate, object string, confidence float32) error {
	return nil
}
func (m *fakeMemory) EpisodeCount(ctx context.Context) (int, error) { return 0, nil }
func (m *fakeMemory) RecallSelfKnowledgeByDomain(ctx context.Context, domain string) ([]ports.SelfKnowledgeEntry, error) {
	return nil, nil
}
func (m *fakeMemory) DetectRepeatedPatterns(ctx context.Context, minCount int) ([]ports.RepeatedPattern, error) {
	return nil, nil
}
func (m *fakeMemory) StoreSelfKnowledge(ctx context.Context, sk ports.SelfKnowledge) error {
	m.selfKnowledge = append(m.selfKnowledge, sk)
	return nil
}

var _ ports.Memory = (*fakeMemory)(nil)

func newTestCoordinator(t *testing.T) (*Coordinator, context.Context, func()) {
	t.Helper()
	loop := limbic.New(dynamics.New(dynamics.DefaultConfig()), limbic.DefaultConfig(), state.NewDefault())
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)

	cfg := DefaultConfig()
	c := New(dynamics.New(dynamics.DefaultConfig()), loop, cfg)
	return c, ctx, cancel
}

func TestProcessInteractionShortCircuitsWhileSleeping(t *testing.T) {
	c, ctx, cancel := newTestCoordinator(t)
	defer cancel()
	c.setLifecycleState(state.Sleeping)

	result, err := c.ProcessInteraction(ctx, "alice", "hello", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Sleeping {
		t.Fatal("expected a sleeping short-circuit")
	}
}

func TestProcessInteractionRecordsEpisodeAndMarker(t *testing.T) {
	c, ctx, cancel := newTestCoordinator(t)
	defer cancel()

	result, err := c.ProcessInteraction(ctx, "alice", "I'm so happy today!", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Lifecycle != state.Awake {
		t.Fatalf("expected Awake lifecycle, got %v", result.Lifecycle)
	}

	c.mu.Lock()
	n := len(c.episodes)
	count := c.interactionCount
	c.mu.Unlock()
	if n != 1 {
		t.Fatalf("expected one recorded episode, got %d", n)
	}
	if count != 1 {
		t.Fatalf("expected interaction count 1, got %d", count)
	}
}

func TestProcessInteractionTrimsEpisodeBufferOnOverflow(t *testing.T) {
	c, ctx, cancel := newTestCoordinator(t)
	defer cancel()
	c.cfg.MaxEpisodeBuffer = 5
	c.cfg.EpisodeBufferTrimTo = 2

	for i := 0; i < 6; i++ {
		if _, err := c.ProcessInteraction(ctx, "alice", "hi", 0); err != nil {
			t.Fatalf("ProcessInteraction: %v", err)
		}
	}

	c.mu.Lock()
	n := len(c.episodes)
	c.mu.Unlock()
	if n > 5 {
		t.Fatalf("expected episode buffer trimmed to <=5, got %d", n)
	}
}

func TestEvaluateActionFlagsViolationAndAppliesMoralCost(t *testing.T) {
	c, ctx, cancel := newTestCoordinator(t)
	defer cancel()

	before := c.limbic.Snapshot().Fast.Stress

	eval, err := c.EvaluateAction(ctx, "a friend asked for help", "lie to them about what happened")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !eval.ShouldProceed && eval.MoralValence > -0.3 {
		t.Fatalf("should_proceed inconsistent with moral valence: %+v", eval)
	}
	if eval.MoralValence >= 0 {
		t.Fatalf("expected negative moral valence for a lie, got %f", eval.MoralValence)
	}

	time.Sleep(50 * time.Millisecond) // EvaluateAction already waited for the dynamics step (ProcessStimulusSync)
	after := c.limbic.Snapshot().Fast.Stress
	if after < before {
		t.Fatalf("expected moral cost to raise stress: before=%f after=%f", before, after)
	}
}

func TestEvaluateActionAllowsAlignedAction(t *testing.T) {
	c, ctx, cancel := newTestCoordinator(t)
	defer cancel()

	eval, err := c.EvaluateAction(ctx, "a friend is struggling", "comfort and reassure them")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !eval.ShouldProceed {
		t.Fatalf("expected a supportive action to proceed: %+v", eval)
	}
}

func TestRecordFeedbackBuffersSignal(t *testing.T) {
	c, _, cancel := newTestCoordinator(t)
	defer cancel()

	c.RecordFeedback(state.SignalUserEmotionalFeedback, "", "that made me happy", 0.8, 0.6)
	if c.buffer.PendingCount() != 1 {
		t.Fatalf("expected 1 pending signal, got %d", c.buffer.PendingCount())
	}
}

func TestTriggerSleepReturnsToAwake(t *testing.T) {
	c, ctx, cancel := newTestCoordinator(t)
	defer cancel()
	c.cfg.Sleep.AllowManualTrigger = true

	if _, err := c.TriggerSleep(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.LifecycleState() != state.Awake {
		t.Fatalf("expected lifecycle back to Awake after sleep, got %v", c.LifecycleState())
	}
}

func TestTriggerSleepPersistsChapterAndState(t *testing.T) {
	c, ctx, cancel := newTestCoordinator(t)
	defer cancel()
	persistence := &fakePersistence{}
	c.persistence = persistence
	c.cfg.Sleep.MinEpisodesForChapter = 3

	for i := 0; i < 12; i++ {
		if _, err := c.ProcessInteraction(ctx, "alice", "a pleasant ordinary chat", 0); err != nil {
			t.Fatalf("ProcessInteraction: %v", err)
		}
	}

	if _, err := c.TriggerSleep(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if persistence.saveCalls == 0 {
		t.Fatal("expected organism state to be saved during sleep")
	}
}

func TestTickStepsMediumStateWhileAwake(t *testing.T) {
	c, ctx, cancel := newTestCoordinator(t)
	defer cancel()
	before := c.limbic.Snapshot().Medium

	if err := c.Tick(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.LifecycleState() != state.Awake {
		t.Fatalf("expected Tick to leave lifecycle Awake, got %v", c.LifecycleState())
	}
	after := c.limbic.Snapshot().Medium
	if after.MoodBias == before.MoodBias && after.Openness == before.Openness {
		t.Fatalf("expected Tick to step medium state: before=%+v after=%+v", before, after)
	}
}

func TestTickTriggersSleepWhenDrowsyAndDue(t *testing.T) {
	c, ctx, cancel := newTestCoordinator(t)
	defer cancel()
	c.setLifecycleState(state.Drowsy)
	c.cfg.Sleep.AllowManualTrigger = true
	c.cfg.Sleep.SleepStartHour = 0
	c.cfg.Sleep.SleepEndHour = 24
	// The consolidator keeps its own copy of the sleep config from New.
	c.consolidator = feedback.NewConsolidatorWithConfig(c.buffer, c.cfg.Sleep)

	if err := c.Tick(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.LifecycleState() != state.Awake {
		t.Fatalf("expected Tick to run sleep and return to Awake, got %v", c.LifecycleState())
	}
}

func TestNewWithPersistenceLoadsPendingFeedback(t *testing.T) {
	loop := limbic.New(dynamics.New(dynamics.DefaultConfig()), limbic.DefaultConfig(), state.NewDefault())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	persistence := &fakePersistence{pending: []state.FeedbackSignal{
		{Kind: state.SignalUserEmotionalFeedback, Content: "missed you", Confidence: 0.7, EmotionalContext: 0.4},
	}}
	c, err := NewWithPersistence(dynamics.New(dynamics.DefaultConfig()), loop, DefaultConfig(), persistence, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.buffer.PendingCount() != 1 {
		t.Fatalf("expected 1 pending signal loaded, got %d", c.buffer.PendingCount())
	}
}

func TestTriggerSleepStoresSelfReflections(t *testing.T) {
	c, ctx, cancel := newTestCoordinator(t)
	defer cancel()
	mem := &fakeMemory{}
	c.memory = mem
	c.cfg.Sleep.AllowManualTrigger = true

	for i := 0; i < 3; i++ {
		c.RecordFeedback(state.SignalSelfReflection, "", "I tend to get quiet when stressed", 0.8, -0.2)
	}

	if _, err := c.TriggerSleep(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mem.selfKnowledge) == 0 {
		t.Fatal("expected at least one self-knowledge entry stored")
	}
	if len(mem.memorized) == 0 {
		t.Fatal("expected a reflection meta-episode to be memorized")
	}
}

func TestShutdownSavesFinalState(t *testing.T) {
	c, ctx, cancel := newTestCoordinator(t)
	defer cancel()
	persistence := &fakePersistence{}
	c.persistence = persistence

	c.RecordFeedback(state.SignalUserEmotionalFeedback, "", "glad we talked", 0.9, 0.5)
	c.cfg.Sleep.AllowManualTrigger = true

	c.Shutdown(ctx)
	if persistence.saveCalls == 0 {
		t.Fatal("expected a final state save on shutdown")
	}
}
