package evaluators

import (
	"context"
	"testing"
	"time"

	"github.com/mneme-ai/organism/internal/ports"
	"github.com/mneme-ai/organism/internal/state"
)

type fakeReader struct {
	s state.OrganismState
}

func (f *fakeReader) Snapshot() state.OrganismState { return f.s }

func newFakeReader() *fakeReader {
	s := state.NewDefault()
	return &fakeReader{s: s}
}

func TestConsciousnessFirstCallRecordsBaseline(t *testing.T) {
	r := newFakeReader()
	g := NewConsciousnessGate(r)
	out, err := g.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("first call must not fire, got %+v", out)
	}
}

func TestConsciousnessEnergyGateBlocksAndPreservesBaseline(t *testing.T) {
	r := newFakeReader()
	cfg := DefaultConsciousnessConfig()
	cfg.Cooldown = 0
	g := NewConsciousnessGateWithConfig(r, cfg)

	// Baseline at normal energy/stress.
	r.s.Fast.Energy = 0.7
	r.s.Fast.Stress = 0.2
	if _, err := g.Evaluate(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Drop energy below floor while stress spikes: gate blocks.
	r.s.Fast.Energy = 0.1
	r.s.Fast.Stress = 0.8
	out, err := g.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("expected energy gate to block, got %+v", out)
	}

	// Recover energy: the accumulated stress delta (0.2 -> 0.8) must still
	// be visible because the depleted snapshot was never recorded.
	r.s.Fast.Energy = 0.7
	out, err = g.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("expected trigger to fire after energy recovery (regression guard), got %+v", out)
	}
}

func TestConsciousnessCooldownBlocksRapidFire(t *testing.T) {
	r := newFakeReader()
	g := NewConsciousnessGate(r) // default 5 minute cooldown

	if _, err := g.Evaluate(context.Background()); err != nil {
		t.Fatal(err)
	}
	r.s.Fast.Stress = 0.6
	first, err := g.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 1 {
		t.Fatalf("expected first delta to fire, got %+v", first)
	}
	r.s.Fast.Stress = 0.9
	second, err := g.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 0 {
		t.Fatalf("expected cooldown to block second fire, got %+v", second)
	}
}

func TestRuminationCooldownPreventsDuplicate(t *testing.T) {
	r := newFakeReader()
	r.s.Fast.Boredom = 0.8
	e := NewRumination(r)

	first, err := e.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 1 {
		t.Fatalf("expected mind_wandering trigger, got %+v", first)
	}
	second, err := e.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 0 {
		t.Fatalf("expected cooldown to suppress second fire, got %+v", second)
	}
}

func TestRuminationMultipleSimultaneous(t *testing.T) {
	r := newFakeReader()
	r.s.Fast.Boredom = 0.8
	r.s.Fast.SocialNeed = 0.9
	r.s.Fast.Curiosity = 0.9
	e := NewRumination(r)
	out, err := e.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Fatalf("expected all three rumination kinds to fire, got %d: %+v", len(out), out)
	}
}

type fakeMemory struct {
	ports.Memory
	patterns []ports.RepeatedPattern
}

func (f *fakeMemory) DetectRepeatedPatterns(ctx context.Context, minCount int) ([]ports.RepeatedPattern, error) {
	var out []ports.RepeatedPattern
	for _, p := range f.patterns {
		if p.Count >= minCount {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestHabitDetectorRespectsMinCount(t *testing.T) {
	mem := &fakeMemory{patterns: []ports.RepeatedPattern{{Pattern: "occasional", Count: 2}}}
	h := NewHabit(mem) // default min_count = 3
	out, err := h.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no trigger below min_count, got %+v", out)
	}
}

func TestHabitDetectorCapsAtMaxPatterns(t *testing.T) {
	mem := &fakeMemory{patterns: []ports.RepeatedPattern{
		{Pattern: "p1", Count: 10}, {Pattern: "p2", Count: 8}, {Pattern: "p3", Count: 6}, {Pattern: "p4", Count: 4},
	}}
	h := NewHabitWithConfig(mem, HabitConfig{MinCount: 3, MaxPatterns: 2})
	out, err := h.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("expected cap at max_patterns, got %d", len(out))
	}
}

func TestMetacognitionGatesOnInteractionsAndEnergy(t *testing.T) {
	r := newFakeReader()
	r.s.Fast.Energy = 0.1 // below floor
	counter := &fakeCounter{n: 20}
	m := NewMetacognition(r, counter)
	out, err := m.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("expected energy gate to block, got %+v", out)
	}

	r.s.Fast.Energy = 0.8
	out, err = m.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("expected metacognition to fire with enough interactions, got %+v", out)
	}
}

type fakeCounter struct{ n uint64 }

func (f *fakeCounter) InteractionCount() uint64 { return f.n }

func TestScheduledDeduplicatesWithinHour(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/schedule.yaml"
	s := NewScheduled(path) // no file: falls back to defaults
	now := time.Now()
	entry := s.entries[0]
	entry.Hour, entry.Minute = now.Hour(), now.Minute()
	s.entries = []ScheduleEntry{entry}

	out, err := s.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("expected first fire, got %+v", out)
	}
	out2, err := s.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(out2) != 0 {
		t.Fatalf("expected dedup within the hour, got %+v", out2)
	}
}
