// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/danielhkuo/pollhub/models"
)

// Registry stores events and their custom field schemas
type Registry struct {
	db *sql.DB
}

func NewRegistry(db *sql.DB) *Registry {
	return &Registry{db: db}
}

// AddEvent validates and stores an event, returning its id
func (r *Registry) AddEvent(ctx context.Context, req models.CreateEventRequest) (int64, error) {
	if err := models.Validate(req); err != nil {
		return 0, err
	}
	if err := req.Schema.Check(); err != nil {
		return 0, err
	}
	schema := req.Schema
	if schema == nil {
		schema = models.FieldSchema{}
	}

	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO events (name, date, location, type, custom_field_schema)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, req.Name, req.Date, req.Location, req.Type, schema).Scan(&id)
	if err != nil {
		return 0, models.Storage("events.add", err)
	}

	slog.Info("event created", "event_id", id, "name", req.Name, "fields", len(schema))
	return id, nil
}

// UpdateEvent applies the non-nil fields of patch. It returns the number of
// rows changed; 0 means the event does not exist or the patch was empty.
// A new schema must still admit every existing participation's values,
// otherwise nothing is written.
func (r *Registry) UpdateEvent(ctx context.Context, id int64, patch models.UpdateEventRequest) (int64, error) {
	if err := models.Validate(patch); err != nil {
		return 0, err
	}
	if patch.Empty() {
		return 0, nil
	}

	var sets []string
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Date != nil {
		add("date", *patch.Date)
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.Type != nil {
		add("type", *patch.Type)
	}
	if patch.Schema != nil {
		if err := patch.Schema.Check(); err != nil {
			return 0, err
		}
		add("custom_field_schema", *patch.Schema)
	}
	args = append(args, id)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, models.Storage("events.update", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE events SET "+strings.Join(sets, ", ")+" WHERE id = $"+strconv.Itoa(len(args)),
		args...)
	if err != nil {
		return 0, models.Storage("events.update", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, models.Storage("events.update", err)
	}

	if n > 0 && patch.Schema != nil {
		if err := reconform(ctx, tx, id, *patch.Schema); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, models.Storage("events.update", err)
	}

	if n > 0 {
		slog.Info("event updated", "event_id", id)
	}
	return n, nil
}

// reconform checks every participation of the event against schema and
// rewrites the normalized values. Any participation that does not fit
// rejects the whole update.
func reconform(ctx context.Context, tx *sql.Tx, eventID int64, schema models.FieldSchema) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, custom_field_values FROM event_participants WHERE event_id = $1 ORDER BY id
	`, eventID)
	if err != nil {
		return models.Storage("events.update", err)
	}

	type conformed struct {
		id     int64
		values models.FieldValues
	}
	var updates []conformed
	for rows.Next() {
		var pid int64
		var values models.FieldValues
		if err := rows.Scan(&pid, &values); err != nil {
			rows.Close()
			return models.Storage("events.update", err)
		}
		out, err := schema.Conform(values)
		if err != nil {
			rows.Close()
			return &models.ValidationError{
				Field:   "custom_field_schema",
				Message: fmt.Sprintf("participation %d no longer fits: %v", pid, err),
			}
		}
		updates = append(updates, conformed{pid, out})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return models.Storage("events.update", err)
	}
	rows.Close()

	for _, u := range updates {
		if _, err := tx.ExecContext(ctx,
			`UPDATE event_participants SET custom_field_values = $1 WHERE id = $2`,
			u.values, u.id); err != nil {
			return models.Storage("events.update", err)
		}
	}
	return nil
}

// DeleteEvent removes the event's participations and then the event, in one
// transaction. It returns 0 if the event did not exist.
func (r *Registry) DeleteEvent(ctx context.Context, id int64) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, models.Storage("events.delete", err)
	}
	defer tx.Rollback()

	pres, err := tx.ExecContext(ctx, `DELETE FROM event_participants WHERE event_id = $1`, id)
	if err != nil {
		return 0, models.Storage("events.delete", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return 0, models.Storage("events.delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, models.Storage("events.delete", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, models.Storage("events.delete", err)
	}

	if n > 0 {
		removed, _ := pres.RowsAffected()
		slog.Info("event deleted", "event_id", id, "participations_removed", removed)
	}
	return n, nil
}

// ListEvents returns all events ordered by date, then id
func (r *Registry) ListEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, date, location, type, custom_field_schema
		FROM events
		ORDER BY date, id
	`)
	if err != nil {
		return nil, models.Storage("events.list", err)
	}
	defer rows.Close()

	list := []models.Event{}
	for rows.Next() {
		var ev models.Event
		if err := rows.Scan(&ev.ID, &ev.Name, &ev.Date, &ev.Location, &ev.Type, &ev.Schema); err != nil {
			return nil, models.Storage("events.list", err)
		}
		list = append(list, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, models.Storage("events.list", err)
	}
	return list, nil
}

// GetEvent returns one event or models.ErrNotFound
func (r *Registry) GetEvent(ctx context.Context, id int64) (models.Event, error) {
	return getEvent(ctx, r.db, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getEvent(ctx context.Context, q queryRower, id int64) (models.Event, error) {
	var ev models.Event
	err := q.QueryRowContext(ctx, `
		SELECT id, name, date, location, type, custom_field_schema
		FROM events WHERE id = $1
	`, id).Scan(&ev.ID, &ev.Name, &ev.Date, &ev.Location, &ev.Type, &ev.Schema)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, models.ErrNotFound
	}
	if err != nil {
		return models.Event{}, models.Storage("events.get", err)
	}
	return ev, nil
}
