// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

An optional .env file is loaded first; variables already set in the
environment are never overwritten by it.

# CLI Flags

	-p               Server port
	-d               Database URL
	-t               Database type (postgres or sqlite)
	-session-secret  Session signing secret
	-session-ttl     Session lifetime (Go duration)

# Environment Variables

	PORT                 → -p (default 3318)
	DATABASE_URL         → -d (required)
	DATABASE_TYPE        → -t (default postgres)
	SESSION_SECRET       → -session-secret (required)
	SESSION_TTL          → -session-ttl (default 1h)
	SEED_ADMIN_PASSWORD  password for the seeded "admin" account
	SEED_USER_PASSWORD   password for the seeded "user" account
	CORS_ORIGINS         comma separated allowed origins (default *)
	SECURE_COOKIES       mark the session cookie Secure (default false)

CLI flags take precedence over environment variables. Seed users whose
password is empty are not created.
*/
package cliparse
