// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles connections, schema migrations and seed data.

# Connecting

Open picks the driver from the dialect (lib/pq for postgres, modernc.org/sqlite
for sqlite) and pings before returning:

	conn, err := db.Open(ctx, db.Postgres, cfg.DatabaseURL)

# Migrations

Migrate applies numbered migrations in order, each in its own transaction, and
records them in schema_migrations:

	if err := db.Migrate(ctx, conn, db.Postgres); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times. The same DDL is rendered for both dialects;
only the serial primary key and JSON column types differ.

# Tables

  - users: username (unique), bcrypt hash, role (admin|user)
  - choices: poll options with a denormalized pick_count
  - vote_log: append-only audit trail of votes
  - events: admin-managed events with a JSON custom field schema
  - event_participants: one row per (event_id, user_id), JSON field values
  - revoked_sessions: session ids invalidated by logout
  - schema_migrations: applied migration versions

# Relationships

	events 1──* event_participants *──1 users

Participation rows cascade when their event or user is deleted.

# Seeding

Seed inserts the default choices and users with ON CONFLICT DO NOTHING, so
rerunning startup against an initialized store changes nothing.
*/
package db
