// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package events holds the event registry and the participation ledger.

# Registry

Events carry an ordered custom field schema. The registry persists it as JSON
and echoes it back; it never interprets field semantics:

	reg := events.NewRegistry(db)
	id, err := reg.AddEvent(ctx, models.CreateEventRequest{
		Name:   "Go meetup",
		Date:   "2025-06-01",
		Schema: models.FieldSchema{{Name: "dietary", Type: models.FieldString}},
	})

UpdateEvent and DeleteEvent return an affected count. Zero means the event
does not exist; handlers turn that into 404 rather than an error.

DeleteEvent removes participations before the event inside one transaction,
and the foreign key cascades as a backstop.

# Ledger

One registration per (event, user):

	ledger := events.NewLedger(db)
	id, created, err := ledger.Upsert(ctx, eventID, userID, models.ParticipateRequest{
		Status: "going",
		Fields: models.FieldValues{"dietary": models.StringValue("vegan")},
	})

Field values are conformed to the event schema first: unknown keys and type
mismatches are ValidationErrors, decimal strings are accepted for integer
fields. The write is a single INSERT ... ON CONFLICT DO UPDATE, so concurrent
submissions for the same pair never produce two rows.
*/
package events
