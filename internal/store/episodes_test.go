package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mneme-ai/organism/internal/ports"
	"github.com/mneme-ai/organism/internal/state"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "organism.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMemorizeAndRecall(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Memorize(ctx, state.Episode{
		Author:    "alice",
		Body:      "we talked about hiking in the mountains this weekend",
		Timestamp: time.Now(),
	}); err != nil {
		t.Fatalf("Memorize: %v", err)
	}
	if err := db.Memorize(ctx, state.Episode{
		Author:    "bob",
		Body:      "the quarterly budget report is due on friday",
		Timestamp: time.Now(),
	}); err != nil {
		t.Fatalf("Memorize: %v", err)
	}

	count, err := db.EpisodeCount(ctx)
	if err != nil {
		t.Fatalf("EpisodeCount: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 episodes, got %d", count)
	}

	recalled, err := db.Recall(ctx, "hiking mountains")
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if recalled == "" {
		t.Fatal("expected non-empty recall for a matching query")
	}
}

func TestStoreFactAndRecallFactsFormatted(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.StoreFact(ctx, "alice", "likes", "hiking", 0.9); err != nil {
		t.Fatalf("StoreFact: %v", err)
	}
	if err := db.StoreFact(ctx, "bob", "works_at", "acme corp", 0.8); err != nil {
		t.Fatalf("StoreFact: %v", err)
	}

	formatted, err := db.RecallFactsFormatted(ctx, "alice hiking")
	if err != nil {
		t.Fatalf("RecallFactsFormatted: %v", err)
	}
	if formatted == "" {
		t.Fatal("expected a formatted fact match for alice/hiking")
	}
}

func TestStoreAndRecallSelfKnowledge(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.StoreSelfKnowledge(ctx, ports.SelfKnowledge{
		Domain:     "behavior",
		Content:    "tends to ask clarifying questions before committing to a plan",
		Confidence: 0.7,
		Source:     "metacognition",
	}); err != nil {
		t.Fatalf("StoreSelfKnowledge: %v", err)
	}

	entries, err := db.RecallSelfKnowledgeByDomain(ctx, "behavior")
	if err != nil {
		t.Fatalf("RecallSelfKnowledgeByDomain: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 self-knowledge entry, got %d", len(entries))
	}
	if entries[0].Confidence != 0.7 {
		t.Errorf("expected confidence 0.7, got %f", entries[0].Confidence)
	}
}

func TestDetectRepeatedPatterns(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := db.StoreSelfKnowledge(ctx, ports.SelfKnowledge{
			Domain:  "social",
			Content: "prefers async communication over calls",
			Source:  "metacognition",
		}); err != nil {
			t.Fatalf("StoreSelfKnowledge: %v", err)
		}
	}

	patterns, err := db.DetectRepeatedPatterns(ctx, 3)
	if err != nil {
		t.Fatalf("DetectRepeatedPatterns: %v", err)
	}
	if len(patterns) != 1 {
		t.Fatalf("expected 1 repeated pattern, got %d", len(patterns))
	}
	if patterns[0].Count < 3 {
		t.Errorf("expected count >= 3, got %d", patterns[0].Count)
	}
}
