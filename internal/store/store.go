// Package store is the SQLite-backed memory and social-graph collaborator:
// the adapter implementation of ports.Memory, ports.SocialGraph, and
// ports.Persistence that the core's capability traits only assume exist
// (spec §6's persistence schema). It is wired in only by cmd/organismd;
// C1-C7 depend on the ports interfaces, never on this package directly.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mneme-ai/organism/internal/logging"
)

const subsystem = "store"

// DB wraps the organism's SQLite-backed persistence: episodes, facts,
// self-knowledge, the social graph, and organism-state snapshots.
// Grounded on internal/graph/db.go's database/sql + WAL-mode open pattern,
// generalized from the teacher's entity/trace graph to the ports-shaped
// schema spec §6 names.
type DB struct {
	db   *sql.DB
	path string

	mu sync.RWMutex // guards the in-process entity cache-free read paths below
}

// Open opens or creates the SQLite database at dbPath (directories are
// created as needed), enables WAL mode and foreign keys, and runs the
// schema migration.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	d := &DB{db: sqlDB, path: dbPath}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logging.Info(subsystem, "opened %s", dbPath)
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS episodes (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	author TEXT,
	body TEXT NOT NULL,
	modality TEXT DEFAULT 'text',
	strength REAL DEFAULT 1.0,
	timestamp_event DATETIME NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_episodes_timestamp ON episodes(timestamp_event);
CREATE INDEX IF NOT EXISTS idx_episodes_strength ON episodes(strength);

CREATE TABLE IF NOT EXISTS facts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	subject TEXT NOT NULL,
	predicate TEXT NOT NULL,
	object TEXT NOT NULL,
	confidence REAL NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_facts_subject ON facts(subject);

CREATE TABLE IF NOT EXISTS self_knowledge (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	domain TEXT NOT NULL,
	content TEXT NOT NULL,
	confidence REAL NOT NULL,
	source TEXT,
	episode_id TEXT,
	private INTEGER DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_self_knowledge_domain ON self_knowledge(domain);

CREATE TABLE IF NOT EXISTS behavior_rules (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	condition TEXT NOT NULL,
	action TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS goals (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	description TEXT NOT NULL,
	status TEXT DEFAULT 'open',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS token_usage (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	day TEXT NOT NULL,
	tokens INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_token_usage_day ON token_usage(day);

CREATE TABLE IF NOT EXISTS modulation_samples (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	max_tokens_factor REAL,
	temperature_delta REAL,
	context_budget_factor REAL,
	recall_mood_bias REAL,
	silence_inclination REAL,
	typing_speed_factor REAL,
	recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS learned_curves (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	payload TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS learned_thresholds (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	value REAL NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS organism_state (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	payload TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS organism_state_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	trigger TEXT NOT NULL,
	payload TEXT NOT NULL,
	diff_summary TEXT,
	recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_state_history_recorded ON organism_state_history(recorded_at);

CREATE TABLE IF NOT EXISTS feedback_signals (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	value TEXT,
	content TEXT NOT NULL,
	confidence REAL NOT NULL,
	emotional_context REAL NOT NULL,
	consolidated INTEGER DEFAULT 0,
	recorded_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_feedback_consolidated ON feedback_signals(consolidated);

CREATE TABLE IF NOT EXISTS narrative_chapters (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	period_start DATETIME NOT NULL,
	period_end DATETIME NOT NULL,
	emotional_tone REAL,
	themes TEXT,
	people TEXT,
	turning_points TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS people (
	id TEXT PRIMARY KEY,
	platform TEXT NOT NULL,
	platform_id TEXT NOT NULL,
	name TEXT,
	relationship_notes TEXT,
	interaction_count INTEGER DEFAULT 0,
	last_seen DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(platform, platform_id)
);
CREATE INDEX IF NOT EXISTS idx_people_last_seen ON people(last_seen);

INSERT OR IGNORE INTO schema_version (version) VALUES (1);
`

func (d *DB) migrate() error {
	_, err := d.db.Exec(schema)
	return err
}
