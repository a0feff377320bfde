// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Dialect selects driver and DDL flavor
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

type migration struct {
	version int
	name    string
	ddl     string
}

// Migrations run in order. Never edit an applied one; append a new version.
var migrations = []migration{
	{1, "users", `
CREATE TABLE IF NOT EXISTS users (
    id {{serial}},
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('admin', 'user'))
);
`},
	{2, "poll", `
CREATE TABLE IF NOT EXISTS choices (
    id {{serial}},
    label TEXT NOT NULL UNIQUE,
    pick_count BIGINT NOT NULL DEFAULT 0 CHECK (pick_count >= 0)
);

CREATE TABLE IF NOT EXISTS vote_log (
    id {{serial}},
    choice_label TEXT NOT NULL,
    cast_at TIMESTAMP NOT NULL
);
`},
	{3, "events", `
CREATE TABLE IF NOT EXISTS events (
    id {{serial}},
    name TEXT NOT NULL,
    date TEXT NOT NULL,
    location TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL DEFAULT '',
    custom_field_schema {{json}} NOT NULL
);

CREATE TABLE IF NOT EXISTS event_participants (
    id {{serial}},
    event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    status TEXT NOT NULL,
    custom_field_values {{json}} NOT NULL,
    UNIQUE (event_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_event_participants_user_id ON event_participants(user_id);
`},
	{4, "revoked_sessions", `
CREATE TABLE IF NOT EXISTS revoked_sessions (
    session_id TEXT PRIMARY KEY,
    expires_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_revoked_sessions_expires_at ON revoked_sessions(expires_at);
`},
}

func (d Dialect) render(ddl string) string {
	var r *strings.Replacer
	switch d {
	case SQLite:
		r = strings.NewReplacer(
			"{{serial}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
			"{{json}}", "TEXT",
		)
	default:
		r = strings.NewReplacer(
			"{{serial}}", "BIGSERIAL PRIMARY KEY",
			"{{json}}", "JSONB",
		)
	}
	return r.Replace(ddl)
}

// Migrate applies all pending migrations, each in its own transaction.
// Safe to call multiple times - applied versions are recorded in schema_migrations.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		if err := apply(ctx, db, dialect, m); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
		}
	}
	return nil
}

func apply(ctx context.Context, db *sql.DB, dialect Dialect, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var applied bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)
	`, m.version).Scan(&applied)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}

	if _, err := tx.ExecContext(ctx, dialect.render(m.ddl)); err != nil {
		return err
	}

	// ON CONFLICT guards two processes migrating at once
	_, err = tx.ExecContext(ctx, `
		INSERT INTO schema_migrations (version, name, applied_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (version) DO NOTHING
	`, m.version, m.name, time.Now().UTC())
	if err != nil {
		return err
	}

	return tx.Commit()
}
