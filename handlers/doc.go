// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the pollhub API.

# Handler Types

Each handler wraps one core component and does nothing but decode the
request, call it, and encode the result:

  - AuthHandler: login, logout, current identity (session.Guard)
  - PollHandler: tallies, votes, log, reset (poll.Engine)
  - EventHandler: event CRUD (events.Registry)
  - ParticipationHandler: registrations (events.Ledger)

	pollHandler := handlers.NewPollHandler(db)

Role checks happen before a handler runs (see middleware.RequireRole).
Handlers that act on behalf of the caller read it with
middleware.IdentityFrom.

# Responses

Every response is the core result encoded as JSON. Errors go through
middleware.WriteError. Update and delete answer 404 when the affected count
is zero.

# Participation

	PUT /events/{id}/participation → Participate (201 created, 200 updated)

The caller always registers themselves.
*/
package handlers
