package feedback

import (
	"testing"

	"github.com/mneme-ai/organism/internal/state"
)

func TestUncertaintyDiscounting(t *testing.T) {
	b := NewBuffer()

	b.AddSignal(state.SignalSelfReflection, "", "I think I was wrong", 0.3, 0.0)
	if got := b.PendingCount(); got != 0 {
		t.Fatalf("low-confidence signal should be discounted, pending=%d", got)
	}

	b.AddSignal(state.SignalSelfReflection, "", "I am certain I was wrong", 0.8, 0.0)
	if got := b.PendingCount(); got != 1 {
		t.Fatalf("high-confidence signal should be kept, pending=%d", got)
	}
}

func TestTemporalSmoothing(t *testing.T) {
	b := NewBuffer()

	for i := 0; i < 2; i++ {
		b.AddSignal(state.SignalUserEmotionalFeedback, "", "user seemed happy", 0.8, 0.5)
	}
	if patterns := b.Consolidate(); len(patterns) != 0 {
		t.Fatalf("expected no pattern below threshold, got %+v", patterns)
	}

	for i := 0; i < 3; i++ {
		b.AddSignal(state.SignalUserEmotionalFeedback, "", "user seemed happy again", 0.9, 0.6)
	}
	patterns := b.Consolidate()
	if len(patterns) != 1 || patterns[0].Count != 3 {
		t.Fatalf("expected one pattern with count 3, got %+v", patterns)
	}
}

func TestValueJudgmentsGroupByValue(t *testing.T) {
	b := NewBuffer()
	for i := 0; i < 3; i++ {
		b.AddSignal(state.SignalValueJudgment, "honesty", "told the truth", 0.9, 0.2)
	}
	for i := 0; i < 3; i++ {
		b.AddSignal(state.SignalValueJudgment, "loyalty", "stuck around", 0.9, 0.2)
	}

	patterns := b.Consolidate()
	if len(patterns) != 2 {
		t.Fatalf("expected two distinct value patterns, got %d: %+v", len(patterns), patterns)
	}
	seen := map[string]bool{}
	for _, p := range patterns {
		seen[p.Value] = true
	}
	if !seen["honesty"] || !seen["loyalty"] {
		t.Fatalf("expected both honesty and loyalty patterns, got %+v", patterns)
	}
}

func TestConsolidateMarksAllPendingEvenBelowThreshold(t *testing.T) {
	b := NewBuffer()
	b.AddSignal(state.SignalPredictionError, "", "surprise", 0.9, 0.0)
	b.Consolidate()
	if got := b.PendingCount(); got != 0 {
		t.Fatalf("expected all pending signals marked consolidated regardless of outcome, pending=%d", got)
	}
}

func TestClearPendingKeepsConsolidated(t *testing.T) {
	b := NewBuffer()
	for i := 0; i < 3; i++ {
		b.AddSignal(state.SignalSelfReflection, "", "reflecting", 0.9, 0.1)
	}
	b.Consolidate()
	b.AddSignal(state.SignalSelfReflection, "", "new pending", 0.9, 0.1)
	b.ClearPending()
	if got := b.PendingCount(); got != 0 {
		t.Fatalf("expected pending cleared, got %d", got)
	}
	if got := len(b.RecentSignals(10)); got != 3 {
		t.Fatalf("expected consolidated signals retained, got %d", got)
	}
}

func TestStateUpdatesComputation(t *testing.T) {
	patterns := []state.ConsolidatedPattern{
		{Kind: state.SignalUserEmotionalFeedback, Count: 5, AvgConfidence: 0.8, AvgValence: 0.6},
	}
	updates := ComputeStateUpdates(patterns)
	if updates.AttachmentAnxietyDelta >= 0 {
		t.Fatalf("positive feedback should reduce attachment anxiety, got %f", updates.AttachmentAnxietyDelta)
	}
}

func TestApplyStateUpdates(t *testing.T) {
	s := state.NewDefault()
	initialAnxiety := s.Medium.Attachment.Anxiety

	updates := StateUpdates{
		AttachmentAnxietyDelta: -0.1,
		OpennessDelta:          0.05,
		NarrativeBiasDelta:     0.02,
		ValueReinforcements:    []ValueReinforcement{{Value: "honesty", Delta: 0.05}},
	}
	ApplyStateUpdates(&s, updates)

	if s.Medium.Attachment.Anxiety >= initialAnxiety {
		t.Fatalf("expected anxiety to decrease, got %f (was %f)", s.Medium.Attachment.Anxiety, initialAnxiety)
	}
	if got := s.Slow.Values.Get("honesty").Weight; got <= 0.6 {
		t.Fatalf("expected honesty weight reinforced above default 0.6, got %f", got)
	}
}
