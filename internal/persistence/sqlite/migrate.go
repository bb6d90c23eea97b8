package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations run in order exactly once each. Append only; never edit an
// applied entry.
var migrations = []string{
	`CREATE TABLE users (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		email       TEXT NOT NULL UNIQUE,
		role        TEXT NOT NULL CHECK (role IN ('ORGANIZER', 'EVENT_MANAGER', 'FACULTY')),
		institution TEXT NOT NULL DEFAULT '',
		designation TEXT NOT NULL DEFAULT '',
		department  TEXT NOT NULL DEFAULT '',
		phone       TEXT NOT NULL DEFAULT '',
		event_id    TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE TABLE credentials (
		user_id       TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		password_hash TEXT NOT NULL,
		disabled      INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE auth_sessions (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token      TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		revoked_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE rooms (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE events (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date   TEXT NOT NULL,
		location   TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL DEFAULT 'Planned',
		created_by TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE sessions (
		id              TEXT PRIMARY KEY,
		title           TEXT NOT NULL,
		place           TEXT NOT NULL,
		room_id         TEXT NOT NULL,
		description     TEXT NOT NULL DEFAULT '',
		start_time      TEXT NOT NULL,
		end_time        TEXT NOT NULL,
		status          TEXT NOT NULL DEFAULT 'Draft',
		invite_status   TEXT NOT NULL DEFAULT 'Pending',
		travel_status   TEXT NOT NULL DEFAULT 'Pending',
		reject_reason   TEXT,
		suggested_topic TEXT,
		suggested_start TEXT,
		suggested_end   TEXT,
		reject_query    TEXT,
		event_id        TEXT NOT NULL DEFAULT '',
		faculty_id      TEXT NOT NULL,
		faculty_email   TEXT NOT NULL,
		poster_path     TEXT NOT NULL DEFAULT '',
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL,
		CHECK (end_time > start_time)
	)`,
	`CREATE INDEX idx_sessions_faculty ON sessions(faculty_id, start_time)`,
	`CREATE INDEX idx_sessions_room ON sessions(room_id, start_time)`,
	`CREATE TABLE cv_uploads (
		id                TEXT PRIMARY KEY,
		faculty_id        TEXT NOT NULL,
		file_path         TEXT NOT NULL,
		file_type         TEXT NOT NULL DEFAULT '',
		file_size         INTEGER NOT NULL DEFAULT 0,
		original_filename TEXT NOT NULL DEFAULT '',
		uploaded_at       TEXT NOT NULL,
		approved          INTEGER NOT NULL DEFAULT 0,
		session_id        TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX idx_cv_uploads_faculty ON cv_uploads(faculty_id, uploaded_at)`,
	`CREATE TABLE presentations (
		id          TEXT PRIMARY KEY,
		session_id  TEXT NOT NULL DEFAULT '',
		faculty_id  TEXT NOT NULL,
		file_path   TEXT NOT NULL,
		title       TEXT NOT NULL DEFAULT '',
		file_size   INTEGER NOT NULL DEFAULT 0,
		uploaded_at TEXT NOT NULL
	)`,
	`CREATE INDEX idx_presentations_session ON presentations(session_id)`,
	`CREATE INDEX idx_presentations_faculty ON presentations(faculty_id, uploaded_at)`,
	`CREATE TABLE feedback (
		id           TEXT PRIMARY KEY,
		submitted_by TEXT NOT NULL DEFAULT '',
		subject      TEXT NOT NULL,
		message      TEXT NOT NULL,
		type         TEXT NOT NULL DEFAULT 'general'
			CHECK (type IN ('general', 'bug', 'feature', 'complaint', 'compliment')),
		rating       INTEGER NOT NULL DEFAULT 0 CHECK (rating BETWEEN 0 AND 5),
		email        TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL
	)`,
	`CREATE TABLE accommodation_requests (
		id               TEXT PRIMARY KEY,
		event_id         TEXT NOT NULL DEFAULT '',
		submitted_by     TEXT NOT NULL DEFAULT '',
		type             TEXT NOT NULL DEFAULT 'accessibility'
			CHECK (type IN ('accessibility', 'medical', 'religious', 'language', 'technical', 'other')),
		priority         TEXT NOT NULL DEFAULT 'normal'
			CHECK (priority IN ('low', 'normal', 'high', 'urgent')),
		title            TEXT NOT NULL,
		description      TEXT NOT NULL,
		contact_method   TEXT NOT NULL DEFAULT 'email'
			CHECK (contact_method IN ('email', 'phone', 'text')),
		contact_info     TEXT NOT NULL,
		special_requests TEXT NOT NULL DEFAULT '',
		urgent_details   TEXT NOT NULL DEFAULT '',
		created_at       TEXT NOT NULL
	)`,
	`CREATE INDEX idx_accommodation_priority ON accommodation_requests(priority, created_at)`,
}

// Migrate brings the schema up to date, tracking progress in a version table.
func Migrate(ctx context.Context, pool *ConnectionPool) error {
	if _, err := pool.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var current int
	err := pool.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		version := i + 1
		statement := migrations[i]
		err := pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.Exec(statement); err != nil {
				return fmt.Errorf("migration %d failed: %w", version, err)
			}
			if _, err := tx.Exec(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, datetime('now'))`, version); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
