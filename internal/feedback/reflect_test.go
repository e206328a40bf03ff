package feedback

import (
	"strings"
	"testing"

	"github.com/mneme-ai/organism/internal/state"
)

func TestSelfReflectionsFiltersByKind(t *testing.T) {
	patterns := []state.ConsolidatedPattern{
		{Kind: state.SignalSelfReflection, RepresentativeContent: "I get quiet when tired", AvgConfidence: 0.8},
		{Kind: state.SignalPredictionError, RepresentativeContent: "unrelated", AvgConfidence: 0.9},
	}
	out := SelfReflections(patterns)
	if len(out) != 1 {
		t.Fatalf("expected 1 self-reflection, got %d", len(out))
	}
	if out[0].Domain != "body_feeling" {
		t.Fatalf("expected body_feeling domain, got %q", out[0].Domain)
	}
}

func TestClassifyReflectionDomainFallsBackToBehavior(t *testing.T) {
	if got := classifyReflectionDomain("nothing domain-specific here"); got != "behavior" {
		t.Fatalf("expected fallback domain behavior, got %q", got)
	}
}

func TestFormatReflectionSummaryEmptyForNoEntries(t *testing.T) {
	summary := FormatReflectionSummary(nil)
	if summary != "" {
		t.Fatalf("expected empty summary for no entries, got %q", summary)
	}
}

func TestFormatReflectionSummaryNonEmpty(t *testing.T) {
	out := SelfReflections([]state.ConsolidatedPattern{
		{Kind: state.SignalSelfReflection, RepresentativeContent: "I trust people slowly", AvgConfidence: 0.7},
	})
	summary := FormatReflectionSummary(out)
	if !strings.Contains(summary, "I trust people slowly") {
		t.Fatalf("expected summary to contain the reflection content, got %q", summary)
	}
}
