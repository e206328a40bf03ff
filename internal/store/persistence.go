package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mneme-ai/organism/internal/logging"
	"github.com/mneme-ai/organism/internal/state"
)

// SaveOrganismState upserts the singleton current-state row, replacing
// whatever snapshot was there before.
func (d *DB) SaveOrganismState(ctx context.Context, s state.OrganismState) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal organism state: %w", err)
	}
	_, err = d.db.ExecContext(ctx,
		`INSERT INTO organism_state (id, payload, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`,
		string(payload))
	return err
}

// LoadOrganismState returns the last saved snapshot, or ok=false if none has
// ever been saved (a fresh coordinator should fall back to state.NewDefault).
func (d *DB) LoadOrganismState(ctx context.Context) (state.OrganismState, bool, error) {
	var payload string
	err := d.db.QueryRowContext(ctx, `SELECT payload FROM organism_state WHERE id = 1`).Scan(&payload)
	if err == sql.ErrNoRows {
		return state.OrganismState{}, false, nil
	}
	if err != nil {
		return state.OrganismState{}, false, err
	}
	var s state.OrganismState
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		return state.OrganismState{}, false, fmt.Errorf("unmarshal organism state: %w", err)
	}
	return s, true, nil
}

// RecordStateSnapshot appends a state-history row recording what triggered
// the transition and a short human-readable diff against prev, when given.
func (d *DB) RecordStateSnapshot(ctx context.Context, s state.OrganismState, trigger string, prev *state.OrganismState) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal organism state: %w", err)
	}
	diff := ""
	if prev != nil {
		diff = summarizeDiff(*prev, s)
	}
	_, err = d.db.ExecContext(ctx,
		`INSERT INTO organism_state_history (trigger, payload, diff_summary) VALUES (?, ?, ?)`,
		trigger, string(payload), diff)
	return err
}

// summarizeDiff renders the fields that moved most between two snapshots,
// used only for human-legible history browsing.
func summarizeDiff(prev, next state.OrganismState) string {
	var parts []string
	note := func(name string, before, after float32) {
		if diff := after - before; diff > 0.02 || diff < -0.02 {
			parts = append(parts, fmt.Sprintf("%s %+.2f", name, diff))
		}
	}
	note("energy", prev.Fast.Energy, next.Fast.Energy)
	note("stress", prev.Fast.Stress, next.Fast.Stress)
	note("mood_bias", prev.Medium.MoodBias, next.Medium.MoodBias)
	note("rigidity", prev.Slow.Rigidity, next.Slow.Rigidity)
	if len(parts) == 0 {
		return "negligible change"
	}
	return strings.Join(parts, ", ")
}

// PruneStateHistory deletes history rows beyond maxEntries (newest kept) or
// older than maxAge, whichever is more aggressive.
func (d *DB) PruneStateHistory(ctx context.Context, maxEntries int, maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)
	if _, err := d.db.ExecContext(ctx,
		`DELETE FROM organism_state_history WHERE recorded_at < ?`, cutoff); err != nil {
		return err
	}
	_, err := d.db.ExecContext(ctx,
		`DELETE FROM organism_state_history WHERE id NOT IN (
			SELECT id FROM organism_state_history ORDER BY recorded_at DESC LIMIT ?
		)`, maxEntries)
	return err
}

// SaveNarrativeChapter persists a woven narrative chapter produced by sleep
// consolidation.
func (d *DB) SaveNarrativeChapter(ctx context.Context, ch state.NarrativeChapter) error {
	if ch.ID == "" {
		ch.ID = uuid.NewString()
	}
	themes, err := json.Marshal(ch.Themes)
	if err != nil {
		return err
	}
	people, err := json.Marshal(ch.People)
	if err != nil {
		return err
	}
	turningPoints, err := json.Marshal(ch.TurningPoints)
	if err != nil {
		return err
	}
	_, err = d.db.ExecContext(ctx,
		`INSERT INTO narrative_chapters (id, title, content, period_start, period_end, emotional_tone, themes, people, turning_points)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ch.ID, ch.Title, ch.Content, ch.PeriodStart, ch.PeriodEnd, ch.EmotionalTone, string(themes), string(people), string(turningPoints))
	if err != nil {
		logging.Error(subsystem, "save narrative chapter failed: %v", err)
	}
	return err
}

// LoadPendingFeedback returns every feedback signal not yet folded into a
// consolidated pattern, oldest first, for the next sleep cycle to consume.
func (d *DB) LoadPendingFeedback(ctx context.Context) ([]state.FeedbackSignal, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, recorded_at, kind, value, content, confidence, emotional_context
		 FROM feedback_signals WHERE consolidated = 0 ORDER BY recorded_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []state.FeedbackSignal
	for rows.Next() {
		var sig state.FeedbackSignal
		var kind string
		var value sql.NullString
		if err := rows.Scan(&sig.ID, &sig.Timestamp, &kind, &value, &sig.Content, &sig.Confidence, &sig.EmotionalContext); err != nil {
			return nil, err
		}
		sig.Kind = parseSignalKind(kind)
		sig.Value = value.String
		out = append(out, sig)
	}
	return out, rows.Err()
}

func parseSignalKind(s string) state.SignalKind {
	switch s {
	case "user_emotional_feedback":
		return state.SignalUserEmotionalFeedback
	case "situation_interpretation":
		return state.SignalSituationInterpretation
	case "value_judgment":
		return state.SignalValueJudgment
	case "self_reflection":
		return state.SignalSelfReflection
	case "prediction_error":
		return state.SignalPredictionError
	default:
		return state.SignalUserEmotionalFeedback
	}
}

// RecordFeedback inserts one feedback signal for later consolidation. Not
// part of ports.Persistence; called directly by the coordinator's
// feedback-ingest path, which holds a concrete *DB rather than the
// interface when wired by cmd/organismd.
func (d *DB) RecordFeedback(ctx context.Context, sig state.FeedbackSignal) error {
	if sig.ID == "" {
		sig.ID = uuid.NewString()
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO feedback_signals (id, kind, value, content, confidence, emotional_context, consolidated, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		sig.ID, sig.Kind.String(), sig.Value, sig.Content, sig.Confidence, sig.EmotionalContext, sig.Timestamp)
	return err
}

// MarkFeedbackConsolidated flags the given feedback signal IDs as folded
// into a consolidated pattern.
func (d *DB) MarkFeedbackConsolidated(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if _, err := d.db.ExecContext(ctx,
			`UPDATE feedback_signals SET consolidated = 1 WHERE id = ?`, id); err != nil {
			return err
		}
	}
	return nil
}
