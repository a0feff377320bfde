// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/pollhub/auth"
	"github.com/danielhkuo/pollhub/models"
)

// DefaultChoices are the poll options created on first startup
var DefaultChoices = []string{"HTML", "CSS", "JavaScript"}

type SeedUser struct {
	Username string
	Password string
	Role     models.Role
}

type SeedData struct {
	Choices []string
	Users   []SeedUser
}

// Seed inserts default rows. Existing rows are left alone, so reruns never duplicate.
func Seed(ctx context.Context, db *sql.DB, data SeedData) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, label := range data.Choices {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO choices (label, pick_count)
			VALUES ($1, 0)
			ON CONFLICT (label) DO NOTHING
		`, label)
		if err != nil {
			return fmt.Errorf("failed to seed choice %q: %w", label, err)
		}
	}

	for _, u := range data.Users {
		if u.Password == "" {
			slog.Warn("seed user skipped, no password configured", "username", u.Username)
			continue
		}

		var exists bool
		err := tx.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)
		`, u.Username).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check seed user %q: %w", u.Username, err)
		}
		if exists {
			continue
		}

		hash, err := auth.HashPassword(u.Password)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO users (username, password_hash, role)
			VALUES ($1, $2, $3)
			ON CONFLICT (username) DO NOTHING
		`, u.Username, hash, string(u.Role))
		if err != nil {
			return fmt.Errorf("failed to seed user %q: %w", u.Username, err)
		}
		slog.Info("seed user created", "username", u.Username, "role", u.Role)
	}

	return tx.Commit()
}
