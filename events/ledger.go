// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/danielhkuo/pollhub/models"
)

// Ledger stores one participation per (event, user)
type Ledger struct {
	db *sql.DB
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

// Upsert registers userID for eventID or updates the existing registration.
// Field values are checked against the event's schema before anything is
// written. The UNIQUE (event_id, user_id) constraint settles concurrent
// submissions: the statement itself falls back to an update on conflict, so
// a pair never gets two rows. created reports whether this call inserted.
func (l *Ledger) Upsert(ctx context.Context, eventID, userID int64, req models.ParticipateRequest) (id int64, created bool, err error) {
	if err := models.Validate(req); err != nil {
		return 0, false, err
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, models.Storage("participation.upsert", err)
	}
	defer tx.Rollback()

	// Row lock on the event; a concurrent schema change waits for this write
	lock, err := tx.ExecContext(ctx, `UPDATE events SET id = id WHERE id = $1`, eventID)
	if err != nil {
		return 0, false, models.Storage("participation.upsert", err)
	}
	if locked, err := lock.RowsAffected(); err != nil {
		return 0, false, models.Storage("participation.upsert", err)
	} else if locked == 0 {
		return 0, false, models.ErrNotFound
	}

	ev, err := getEvent(ctx, tx, eventID)
	if err != nil {
		return 0, false, err
	}

	fields, err := ev.Schema.Conform(req.Fields)
	if err != nil {
		return 0, false, err
	}

	var existing int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM event_participants WHERE event_id = $1 AND user_id = $2
	`, eventID, userID).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		created = true
	case err != nil:
		return 0, false, models.Storage("participation.upsert", err)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO event_participants (event_id, user_id, status, custom_field_values)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, user_id) DO UPDATE
		SET status = excluded.status,
		    custom_field_values = excluded.custom_field_values
		RETURNING id
	`, eventID, userID, req.Status, fields).Scan(&id)
	if err != nil {
		return 0, false, models.Storage("participation.upsert", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, false, models.Storage("participation.upsert", err)
	}

	slog.Info("participation saved", "event_id", eventID, "user_id", userID, "status", req.Status, "created", created)
	return id, created, nil
}

const participationColumns = `
	p.id, p.event_id, p.user_id, p.status, p.custom_field_values,
	e.id, e.name, e.date, e.location, e.type, e.custom_field_schema`

// ListForUser returns userID's registrations joined with their events
func (l *Ledger) ListForUser(ctx context.Context, userID int64) ([]models.ParticipationWithEvent, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT `+participationColumns+`
		FROM event_participants p
		JOIN events e ON e.id = p.event_id
		WHERE p.user_id = $1
		ORDER BY e.date, e.id
	`, userID)
	if err != nil {
		return nil, models.Storage("participation.list_for_user", err)
	}
	defer rows.Close()

	list := []models.ParticipationWithEvent{}
	for rows.Next() {
		var pe models.ParticipationWithEvent
		p, ev := &pe.Participation, &pe.Event
		err := rows.Scan(&p.ID, &p.EventID, &p.UserID, &p.Status, &p.Fields,
			&ev.ID, &ev.Name, &ev.Date, &ev.Location, &ev.Type, &ev.Schema)
		if err != nil {
			return nil, models.Storage("participation.list_for_user", err)
		}
		list = append(list, pe)
	}
	if err := rows.Err(); err != nil {
		return nil, models.Storage("participation.list_for_user", err)
	}
	return list, nil
}

// ListAll returns every registration joined with its event and user
func (l *Ledger) ListAll(ctx context.Context) ([]models.ParticipationDetails, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT `+participationColumns+`, u.username, u.role
		FROM event_participants p
		JOIN events e ON e.id = p.event_id
		JOIN users u ON u.id = p.user_id
		ORDER BY e.date, e.id, u.username
	`)
	if err != nil {
		return nil, models.Storage("participation.list_all", err)
	}
	defer rows.Close()

	list := []models.ParticipationDetails{}
	for rows.Next() {
		var d models.ParticipationDetails
		var role string
		p, ev := &d.Participation, &d.Event
		err := rows.Scan(&p.ID, &p.EventID, &p.UserID, &p.Status, &p.Fields,
			&ev.ID, &ev.Name, &ev.Date, &ev.Location, &ev.Type, &ev.Schema,
			&d.Username, &role)
		if err != nil {
			return nil, models.Storage("participation.list_all", err)
		}
		d.UserRole = models.Role(role)
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, models.Storage("participation.list_all", err)
	}
	return list, nil
}
