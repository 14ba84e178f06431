package journal

import (
	"database/sql"
	"errors"
	"fmt"
)

// InitSqliteSchema creates the commit journal tables in a SQLite database.
func InitSqliteSchema(db *sql.DB) error {
	return initSchema(db, []string{
		`
	CREATE TABLE IF NOT EXISTS commit_journal (
		commit_id TEXT PRIMARY KEY,
		draft_id TEXT NOT NULL,
		route_id INTEGER NOT NULL DEFAULT 0,
		route_name TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS commit_journal_landmarks (
		commit_id TEXT NOT NULL REFERENCES commit_journal(commit_id),
		sequence_id INTEGER NOT NULL,
		landmark_id INTEGER NOT NULL,
		route_landmark_id INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (commit_id, sequence_id)
	);
	`,
		`
	CREATE INDEX IF NOT EXISTS idx_commit_journal_status_created
	ON commit_journal(status, created_at);
	`,
	})
}

// InitPostgresSchema creates the commit journal tables in Postgres.
func InitPostgresSchema(db *sql.DB) error {
	return initSchema(db, []string{
		`
	CREATE TABLE IF NOT EXISTS commit_journal (
		commit_id TEXT PRIMARY KEY,
		draft_id TEXT NOT NULL,
		route_id BIGINT NOT NULL DEFAULT 0,
		route_name TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS commit_journal_landmarks (
		commit_id TEXT NOT NULL REFERENCES commit_journal(commit_id) ON DELETE CASCADE,
		sequence_id INTEGER NOT NULL,
		landmark_id BIGINT NOT NULL,
		route_landmark_id BIGINT NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (commit_id, sequence_id)
	);
	`,
		`
	CREATE INDEX IF NOT EXISTS idx_commit_journal_status_created
	ON commit_journal(status, created_at);
	`,
	})
}

func initSchema(db *sql.DB, statements []string) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
