// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the pollhub API server.

pollhub backs a small members site: a single-question poll ("which web
language do you prefer?") with a live tally and vote log, and an event
registry where members sign up and answer per-event custom fields.

# Starting the Server

	DATABASE_URL=postgres://... SESSION_SECRET=... go run .

Or against an embedded SQLite file:

	go run . -t sqlite -d pollhub.db -session-secret dev

# Configuration

Required settings:

  - DATABASE_URL (-d): Postgres URL or SQLite file path
  - SESSION_SECRET (-session-secret): HMAC key for session tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): postgres or sqlite (default: postgres)
  - SESSION_TTL (-session-ttl): session lifetime (default: 1h)
  - SEED_ADMIN_PASSWORD, SEED_USER_PASSWORD: create the default accounts
  - CORS_ORIGINS, SECURE_COOKIES

# Startup

The server opens the database, applies pending migrations, seeds the poll
choices (and the default accounts when their passwords are set), then serves
until SIGINT or SIGTERM.

# Architecture

  - users: credential store
  - session: session lifecycle and role checks
  - poll: tallies and vote log
  - events: event registry and participation ledger
  - handlers, router, middleware: HTTP presentation
  - models: shared types and the error taxonomy
  - auth: bcrypt and JWT primitives
  - db: connection, migrations, seed
  - metrics: Prometheus counters
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
