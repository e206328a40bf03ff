package store

import (
	"context"
	"testing"

	"github.com/mneme-ai/organism/internal/ports"
)

func TestUpsertPersonIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	p := ports.Person{ID: "12345", Platform: "discord", Name: "Alice"}
	if err := db.UpsertPerson(ctx, p); err != nil {
		t.Fatalf("UpsertPerson: %v", err)
	}
	// Re-upsert with an updated name; should update in place, not duplicate.
	p.Name = "Alice Smith"
	if err := db.UpsertPerson(ctx, p); err != nil {
		t.Fatalf("UpsertPerson (second): %v", err)
	}

	found, err := db.FindPerson(ctx, "discord", "12345")
	if err != nil {
		t.Fatalf("FindPerson: %v", err)
	}
	if found == nil {
		t.Fatal("expected to find the upserted person")
	}
	if found.Name != "Alice Smith" {
		t.Errorf("expected updated name, got %q", found.Name)
	}

	contacts, err := db.ListRecentContacts(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecentContacts: %v", err)
	}
	if len(contacts) != 1 {
		t.Fatalf("expected exactly 1 contact after two upserts of the same person, got %d", len(contacts))
	}
}

func TestFindPersonMissingReturnsNil(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	found, err := db.FindPerson(ctx, "discord", "does-not-exist")
	if err != nil {
		t.Fatalf("FindPerson: %v", err)
	}
	if found != nil {
		t.Fatalf("expected nil for an unknown person, got %+v", found)
	}
}

func TestRecordInteractionAndGetPersonContext(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	p := ports.Person{ID: "999", Platform: "discord", Name: "Bob"}
	if err := db.UpsertPerson(ctx, p); err != nil {
		t.Fatalf("UpsertPerson: %v", err)
	}

	id := "discord:999"
	if err := db.RecordInteraction(ctx, "organism", id, "asked about the weekend plans"); err != nil {
		t.Fatalf("RecordInteraction: %v", err)
	}

	pc, err := db.GetPersonContext(ctx, id)
	if err != nil {
		t.Fatalf("GetPersonContext: %v", err)
	}
	if pc == nil {
		t.Fatal("expected a person context")
	}
	if pc.InteractionCount != 1 {
		t.Errorf("expected interaction count 1, got %d", pc.InteractionCount)
	}
}
