package store

import (
	"context"
	"testing"
	"time"

	"github.com/mneme-ai/organism/internal/state"
)

func TestSaveAndLoadOrganismState(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, ok, err := db.LoadOrganismState(ctx); err != nil {
		t.Fatalf("LoadOrganismState: %v", err)
	} else if ok {
		t.Fatal("expected no saved state on a fresh database")
	}

	s := state.NewDefault()
	s.Fast.Energy = 0.42
	if err := db.SaveOrganismState(ctx, s); err != nil {
		t.Fatalf("SaveOrganismState: %v", err)
	}

	loaded, ok, err := db.LoadOrganismState(ctx)
	if err != nil {
		t.Fatalf("LoadOrganismState: %v", err)
	}
	if !ok {
		t.Fatal("expected a saved state to be found")
	}
	if loaded.Fast.Energy != 0.42 {
		t.Errorf("expected energy 0.42, got %f", loaded.Fast.Energy)
	}

	// Saving again replaces the singleton row rather than accumulating rows.
	s.Fast.Energy = 0.9
	if err := db.SaveOrganismState(ctx, s); err != nil {
		t.Fatalf("SaveOrganismState (second): %v", err)
	}
	loaded, _, err = db.LoadOrganismState(ctx)
	if err != nil {
		t.Fatalf("LoadOrganismState: %v", err)
	}
	if loaded.Fast.Energy != 0.9 {
		t.Errorf("expected updated energy 0.9, got %f", loaded.Fast.Energy)
	}
}

func TestRecordAndPruneStateHistory(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	prev := state.NewDefault()
	next := prev
	next.Fast.Energy += 0.1

	for i := 0; i < 5; i++ {
		if err := db.RecordStateSnapshot(ctx, next, "interaction", &prev); err != nil {
			t.Fatalf("RecordStateSnapshot: %v", err)
		}
	}

	if err := db.PruneStateHistory(ctx, 2, 24*time.Hour); err != nil {
		t.Fatalf("PruneStateHistory: %v", err)
	}

	var count int
	if err := db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM organism_state_history`).Scan(&count); err != nil {
		t.Fatalf("count history rows: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 history rows after pruning to maxEntries=2, got %d", count)
	}
}

func TestSaveNarrativeChapter(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	now := time.Now()
	ch := state.NarrativeChapter{
		Title:         "a quiet week",
		Content:       "mostly focused conversations about work",
		PeriodStart:   now.Add(-7 * 24 * time.Hour),
		PeriodEnd:     now,
		EmotionalTone: 0.2,
		Themes:        []string{"work", "focus"},
		People:        []string{"alice"},
	}
	if err := db.SaveNarrativeChapter(ctx, ch); err != nil {
		t.Fatalf("SaveNarrativeChapter: %v", err)
	}

	var count int
	if err := db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM narrative_chapters`).Scan(&count); err != nil {
		t.Fatalf("count narrative chapters: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 saved chapter, got %d", count)
	}
}

func TestFeedbackLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	sig := state.FeedbackSignal{
		Timestamp:        time.Now(),
		Kind:             state.SignalUserEmotionalFeedback,
		Content:          "seemed pleased with the suggestion",
		Confidence:       0.8,
		EmotionalContext: 0.5,
	}
	if err := db.RecordFeedback(ctx, sig); err != nil {
		t.Fatalf("RecordFeedback: %v", err)
	}

	pending, err := db.LoadPendingFeedback(ctx)
	if err != nil {
		t.Fatalf("LoadPendingFeedback: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending feedback signal, got %d", len(pending))
	}

	if err := db.MarkFeedbackConsolidated(ctx, []string{pending[0].ID}); err != nil {
		t.Fatalf("MarkFeedbackConsolidated: %v", err)
	}

	pending, err = db.LoadPendingFeedback(ctx)
	if err != nil {
		t.Fatalf("LoadPendingFeedback (after consolidation): %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected 0 pending feedback signals after consolidation, got %d", len(pending))
	}
}
