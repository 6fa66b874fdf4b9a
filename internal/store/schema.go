package store

import (
	"database/sql"
	"fmt"
)

// Table names.
const (
	tableCharacters   = "characters"
	tableSkills       = "skill_progress"
	tableLedger       = "reward_ledger"
	tableGameSessions = "game_sessions"
	tableGemEvents    = "gem_events"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS characters (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		level INTEGER NOT NULL DEFAULT 1,
		total_experience INTEGER NOT NULL DEFAULT 0,
		total_earned INTEGER NOT NULL DEFAULT 0,
		available INTEGER NOT NULL DEFAULT 0,
		redeemed INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS skill_progress (
		character_id TEXT NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
		skill_id TEXT NOT NULL,
		skill_level INTEGER NOT NULL DEFAULT 1,
		skill_experience INTEGER NOT NULL DEFAULT 0,
		play_count INTEGER NOT NULL DEFAULT 0,
		total_play_minutes REAL NOT NULL DEFAULT 0,
		streak INTEGER NOT NULL DEFAULT 0,
		best_accuracy REAL,
		best_wpm REAL,
		best_score REAL,
		last_played_at INTEGER,
		PRIMARY KEY (character_id, skill_id)
	)`,
	`CREATE TABLE IF NOT EXISTS reward_ledger (
		sequence INTEGER PRIMARY KEY,
		character_id TEXT NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
		skill_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		amount INTEGER NOT NULL CHECK (amount >= 0),
		granted_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS reward_ledger_window
		ON reward_ledger (character_id, skill_id, granted_at)`,
	`CREATE TABLE IF NOT EXISTS game_sessions (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL UNIQUE,
		character_id TEXT NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
		skill_id TEXT NOT NULL,
		stage_id TEXT NOT NULL DEFAULT '',
		elapsed_seconds REAL NOT NULL,
		accuracy REAL NOT NULL,
		wpm REAL,
		score REAL,
		experience_gained INTEGER NOT NULL,
		nominal_currency INTEGER NOT NULL,
		currency_granted INTEGER NOT NULL,
		reason TEXT NOT NULL,
		played_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS gem_events (
		sequence INTEGER PRIMARY KEY,
		character_id TEXT NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
		gem_type TEXT NOT NULL,
		rarity TEXT NOT NULL,
		skill_id TEXT,
		skill_name TEXT,
		session_id TEXT NOT NULL,
		reason TEXT NOT NULL,
		awarded_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS gem_events_character ON gem_events (character_id)`,
}

// migrate creates any missing tables and indexes.
func migrate(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
