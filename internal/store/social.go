package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mneme-ai/organism/internal/ports"
)

// personID derives the people table's primary key deterministically from a
// platform and its platform-scoped id, so UpsertPerson is idempotent without
// a read-before-write.
func personID(platform, platformID string) string {
	return platform + ":" + platformID
}

// FindPerson looks up a person by platform and platform-scoped id, returning
// nil if no match exists.
func (d *DB) FindPerson(ctx context.Context, platform, id string) (*ports.Person, error) {
	var p ports.Person
	err := d.db.QueryRowContext(ctx,
		`SELECT id, platform, name FROM people WHERE platform = ? AND platform_id = ?`,
		platform, id).Scan(&p.ID, &p.Platform, &p.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertPerson inserts or updates a person record, keyed by (platform,
// platform_id). p.ID is the platform-scoped identifier a sense adapter
// assigns (e.g. a Discord user ID).
func (d *DB) UpsertPerson(ctx context.Context, p ports.Person) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO people (id, platform, platform_id, name, last_seen) VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(platform, platform_id) DO UPDATE SET name = excluded.name, last_seen = CURRENT_TIMESTAMP`,
		personID(p.Platform, p.ID), p.Platform, p.ID, p.Name)
	return err
}

// GetPersonContext returns relationship notes and interaction count for the
// row whose primary key is id (the composite personID FindPerson returns as
// Person.ID), or nil if the person is not known.
func (d *DB) GetPersonContext(ctx context.Context, id string) (*ports.PersonContext, error) {
	var pc ports.PersonContext
	var notes sql.NullString
	err := d.db.QueryRowContext(ctx,
		`SELECT id, platform, name, interaction_count, relationship_notes FROM people WHERE id = ?`,
		id).Scan(&pc.Person.ID, &pc.Person.Platform, &pc.Person.Name, &pc.InteractionCount, &notes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	pc.RelationshipNotes = notes.String
	return &pc, nil
}

// RecordInteraction bumps the interaction count and relationship notes for
// the person identified by to (the composite personID), appending a
// from/context note to the trail later social evaluators read.
func (d *DB) RecordInteraction(ctx context.Context, from, to, interactionContext string) error {
	note := fmt.Sprintf("%s: %s", from, interactionContext)
	_, err := d.db.ExecContext(ctx,
		`UPDATE people SET interaction_count = interaction_count + 1,
		 relationship_notes = CASE WHEN relationship_notes IS NULL OR relationship_notes = ''
		     THEN ? ELSE relationship_notes || char(10) || ? END,
		 last_seen = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		note, note, to)
	return err
}

// ListRecentContacts returns the k most recently seen people, used by the
// social-outreach evaluator to judge who has gone quiet.
func (d *DB) ListRecentContacts(ctx context.Context, k int) ([]ports.ContactInfo, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, platform, name, last_seen FROM people ORDER BY last_seen DESC LIMIT ?`, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ports.ContactInfo
	for rows.Next() {
		var ci ports.ContactInfo
		var lastSeen time.Time
		if err := rows.Scan(&ci.Person.ID, &ci.Person.Platform, &ci.Person.Name, &lastSeen); err != nil {
			return nil, err
		}
		ci.LastSeen = lastSeen.Format(time.RFC3339)
		out = append(out, ci)
	}
	return out, rows.Err()
}
