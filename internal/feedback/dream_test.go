package feedback

import (
	"strings"
	"testing"

	"github.com/mneme-ai/organism/internal/state"
)

func seed(id, body string, strength float32) state.DreamSeed {
	return state.DreamSeed{ID: id, Author: "user", Body: body, Strength: strength}
}

func TestDreamFromPositiveSeeds(t *testing.T) {
	seeds := []state.DreamSeed{
		seed("a", "shared a great meal with a friend", 0.7),
		seed("b", "walked through the park and saw blossoms", 0.6),
	}
	dream, ok := GenerateDream(seeds, 0.5)
	if !ok {
		t.Fatal("expected a dream")
	}
	if !strings.Contains(dream.Narrative, "warm") {
		t.Fatalf("expected warm template, got %q", dream.Narrative)
	}
	if len(dream.SourceIDs) != 2 || dream.SourceIDs[0] != "a" || dream.SourceIDs[1] != "b" {
		t.Fatalf("unexpected source ids: %+v", dream.SourceIDs)
	}
	if dream.EmotionalTone <= 0 {
		t.Fatalf("expected positive tone, got %f", dream.EmotionalTone)
	}
}

func TestDreamFromNegativeSeeds(t *testing.T) {
	seeds := []state.DreamSeed{
		seed("a", "got criticized and it stung", 0.5),
		seed("b", "got caught in the rain without an umbrella", 0.4),
	}
	dream, ok := GenerateDream(seeds, -0.5)
	if !ok {
		t.Fatal("expected a dream")
	}
	if !strings.Contains(dream.Narrative, "uneasy") {
		t.Fatalf("expected uneasy template, got %q", dream.Narrative)
	}
	if dream.EmotionalTone >= 0 {
		t.Fatalf("expected negative tone, got %f", dream.EmotionalTone)
	}
}

func TestDreamInsufficientSeeds(t *testing.T) {
	if _, ok := GenerateDream([]state.DreamSeed{seed("a", "only one memory", 0.5)}, 0.0); ok {
		t.Fatal("expected no dream with fewer than two seeds")
	}
	if _, ok := GenerateDream(nil, 0.0); ok {
		t.Fatal("expected no dream with zero seeds")
	}
}

func TestDreamChaoticWithThreeSeeds(t *testing.T) {
	seeds := []state.DreamSeed{
		seed("a", "sitting in class", 0.5),
		seed("b", "buying groceries", 0.5),
		seed("c", "playing with a cat", 0.5),
	}
	dream, ok := GenerateDream(seeds, 0.0)
	if !ok {
		t.Fatal("expected a dream")
	}
	if !strings.Contains(dream.Narrative, "fragmented") {
		t.Fatalf("expected chaotic template, got %q", dream.Narrative)
	}
	if len(dream.SourceIDs) != 3 {
		t.Fatalf("expected 3 source ids, got %d", len(dream.SourceIDs))
	}
}

func TestDreamMoodBiasInfluence(t *testing.T) {
	seeds := []state.DreamSeed{
		seed("a", "an ordinary day", 0.5),
		seed("b", "had lunch", 0.5),
	}
	pos, _ := GenerateDream(seeds, 0.6)
	neg, _ := GenerateDream(seeds, -0.6)
	if pos.EmotionalTone <= neg.EmotionalTone {
		t.Fatalf("expected positive mood dream to score higher tone: pos=%f neg=%f", pos.EmotionalTone, neg.EmotionalTone)
	}
}

func TestExtractFragmentShort(t *testing.T) {
	if got := extractFragment("short text"); got != "short text" {
		t.Fatalf("unexpected fragment: %q", got)
	}
}

func TestExtractFragmentLong(t *testing.T) {
	long := strings.Repeat("a long piece of text, ", 10)
	frag := extractFragment(long)
	if len([]rune(frag)) > 81 {
		t.Fatalf("expected truncation, got %d runes", len([]rune(frag)))
	}
}

func TestSelectDreamSeedsOrdersByStrength(t *testing.T) {
	episodes := []state.Episode{
		{ID: "weak", Strength: 0.2},
		{ID: "strong", Strength: 0.9},
		{ID: "mid", Strength: 0.5},
	}
	seeds := SelectDreamSeeds(episodes, 2)
	if len(seeds) != 2 || seeds[0].ID != "strong" || seeds[1].ID != "mid" {
		t.Fatalf("expected strongest-first selection, got %+v", seeds)
	}
}
