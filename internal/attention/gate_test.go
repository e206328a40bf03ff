package attention

import (
	"context"
	"testing"

	"github.com/mneme-ai/organism/internal/ports"
)

type mockEvaluator struct {
	label    string
	triggers []ports.Trigger
	err      error
}

func (m mockEvaluator) Evaluate(ctx context.Context) ([]ports.Trigger, error) {
	return m.triggers, m.err
}
func (m mockEvaluator) Name() string { return m.label }

func scheduledTrigger() ports.Trigger {
	return ports.Trigger{Kind: ports.TriggerScheduled, ScheduleName: "morning"}
}

func ruminationTrigger() ports.Trigger {
	return ports.Trigger{Kind: ports.TriggerRumination, RuminationKind: "mind_wandering"}
}

func metacognitionTrigger() ports.Trigger {
	return ports.Trigger{Kind: ports.TriggerMetacognition, ContextSummary: "steady"}
}

func highMonologueTrigger() ports.Trigger {
	return ports.Trigger{Kind: ports.TriggerInnerMonologue, Resolution: ports.ResolutionHigh}
}

func TestPriorityCompetitionExternalWins(t *testing.T) {
	g := New([]ports.TriggerEvaluator{
		mockEvaluator{label: "rumination", triggers: []ports.Trigger{ruminationTrigger()}},
		mockEvaluator{label: "scheduled", triggers: []ports.Trigger{scheduledTrigger()}},
	})
	out, err := g.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].Kind != ports.TriggerScheduled {
		t.Fatalf("expected single Scheduled trigger, got %+v", out)
	}
}

func TestHighEngagementSuppressesLowPriority(t *testing.T) {
	g := New([]ports.TriggerEvaluator{
		mockEvaluator{label: "rumination", triggers: []ports.Trigger{ruminationTrigger()}},
	})
	g.SetEngagement(1.0)
	out, err := g.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("expected low-priority trigger suppressed at engagement=1.0, got %+v", out)
	}
}

func TestExternalSurvivesHighEngagement(t *testing.T) {
	g := New([]ports.TriggerEvaluator{
		mockEvaluator{label: "scheduled", triggers: []ports.Trigger{scheduledTrigger()}},
	})
	g.SetEngagement(1.0)
	out, err := g.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("expected External trigger to survive engagement=1.0, got %+v", out)
	}
}

func TestHighMonologueBeatsMetacognition(t *testing.T) {
	g := New([]ports.TriggerEvaluator{
		mockEvaluator{label: "metacognition", triggers: []ports.Trigger{metacognitionTrigger()}},
		mockEvaluator{label: "monologue", triggers: []ports.Trigger{highMonologueTrigger()}},
	})
	out, err := g.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].Kind != ports.TriggerInnerMonologue {
		t.Fatalf("expected InnerMonologue{High} to win, got %+v", out)
	}
}

func TestFailingEvaluatorIsIsolated(t *testing.T) {
	g := New([]ports.TriggerEvaluator{
		mockEvaluator{label: "broken", err: context.DeadlineExceeded},
		mockEvaluator{label: "scheduled", triggers: []ports.Trigger{scheduledTrigger()}},
	})
	out, err := g.Evaluate(context.Background())
	if err != nil {
		t.Fatalf("gate itself must not propagate an evaluator error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected the healthy evaluator's trigger to still pass, got %+v", out)
	}
}

func TestEmptyEvaluators(t *testing.T) {
	g := New(nil)
	out, err := g.Evaluate(context.Background())
	if err != nil || len(out) != 0 {
		t.Fatalf("expected no triggers, got %+v err=%v", out, err)
	}
}
