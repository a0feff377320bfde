// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package poll keeps the single-question poll: per-choice tallies and the
// append-only vote log. A choice's pick_count always equals the number of its
// log rows since the last reset, so every write touches both in one transaction.
package poll

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/danielhkuo/pollhub/metrics"
	"github.com/danielhkuo/pollhub/models"
)

type Engine struct {
	db  *sql.DB
	now func() time.Time
}

func NewEngine(db *sql.DB) *Engine {
	return &Engine{db: db, now: time.Now}
}

// WithClock replaces the time source used to stamp log entries
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// ListChoices returns all choices ordered by id
func (e *Engine) ListChoices(ctx context.Context) ([]models.Choice, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT id, label, pick_count FROM choices ORDER BY id
	`)
	if err != nil {
		return nil, models.Storage("poll.list_choices", err)
	}
	defer rows.Close()

	choices := []models.Choice{}
	for rows.Next() {
		var c models.Choice
		if err := rows.Scan(&c.ID, &c.Label, &c.PickCount); err != nil {
			return nil, models.Storage("poll.list_choices", err)
		}
		choices = append(choices, c)
	}
	if err := rows.Err(); err != nil {
		return nil, models.Storage("poll.list_choices", err)
	}
	return choices, nil
}

// CastVote records one vote for label and returns the refreshed tallies.
// An unknown label is a ValidationError and changes nothing.
func (e *Engine) CastVote(ctx context.Context, label string) ([]models.Choice, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, models.Storage("poll.cast_vote", err)
	}
	defer tx.Rollback()

	// The increment doubles as the existence check
	res, err := tx.ExecContext(ctx, `
		UPDATE choices SET pick_count = pick_count + 1 WHERE label = $1
	`, label)
	if err != nil {
		return nil, models.Storage("poll.cast_vote", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, models.Storage("poll.cast_vote", err)
	}
	if n == 0 {
		return nil, &models.ValidationError{Field: "choice", Message: "unknown choice " + label}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO vote_log (choice_label, cast_at) VALUES ($1, $2)
	`, label, e.now().UTC())
	if err != nil {
		return nil, models.Storage("poll.cast_vote", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, models.Storage("poll.cast_vote", err)
	}

	metrics.VotesCast.WithLabelValues(label).Inc()
	slog.Info("vote cast", "choice", label)

	return e.ListChoices(ctx)
}

// RecentLog returns up to limit log entries, newest first.
// limit is clamped to [1, models.RecentLogCap].
func (e *Engine) RecentLog(ctx context.Context, limit int) ([]models.VoteLogEntry, error) {
	if limit <= 0 || limit > models.RecentLogCap {
		limit = models.RecentLogCap
	}

	rows, err := e.db.QueryContext(ctx, `
		SELECT id, choice_label, cast_at FROM vote_log ORDER BY id DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, models.Storage("poll.recent_log", err)
	}
	defer rows.Close()

	entries := []models.VoteLogEntry{}
	for rows.Next() {
		var v models.VoteLogEntry
		if err := rows.Scan(&v.ID, &v.ChoiceLabel, &v.CastAt); err != nil {
			return nil, models.Storage("poll.recent_log", err)
		}
		entries = append(entries, v)
	}
	if err := rows.Err(); err != nil {
		return nil, models.Storage("poll.recent_log", err)
	}
	return entries, nil
}

// State bundles the tallies with the recent log
func (e *Engine) State(ctx context.Context) (models.PollState, error) {
	choices, err := e.ListChoices(ctx)
	if err != nil {
		return models.PollState{}, err
	}
	log, err := e.RecentLog(ctx, models.RecentLogCap)
	if err != nil {
		return models.PollState{}, err
	}
	return models.PollState{Choices: choices, Log: log}, nil
}

// ResetAll truncates the vote log and zeroes every tally in one transaction.
// Idempotent.
func (e *Engine) ResetAll(ctx context.Context) (models.PollState, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return models.PollState{}, models.Storage("poll.reset", err)
	}
	defer tx.Rollback()

	// Zero the tallies first: the row locks make concurrent votes either
	// finish before the log is cleared or start after this commits
	if _, err := tx.ExecContext(ctx, `UPDATE choices SET pick_count = 0`); err != nil {
		return models.PollState{}, models.Storage("poll.reset", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM vote_log`); err != nil {
		return models.PollState{}, models.Storage("poll.reset", err)
	}
	if err := tx.Commit(); err != nil {
		return models.PollState{}, models.Storage("poll.reset", err)
	}

	metrics.PollResets.Inc()
	slog.Info("poll reset")

	return e.State(ctx)
}
