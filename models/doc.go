// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON, each validated with Validate:

  - LoginRequest: username, password
  - CastVoteRequest: choice
  - CreateEventRequest: name, date, location, type, custom_fields
  - UpdateEventRequest: optional versions of the above
  - ParticipateRequest: status, fields

# Response Types

  - LoginResponse: token, expires_at, user
  - CastVoteResponse: choices
  - CreateEventResponse: event_id
  - AffectedResponse: affected
  - ParticipateResponse: participation_id, created
  - ErrorResponse: error, message

# Custom Fields

An event declares a FieldSchema, an ordered list of {name, type} with type
"string" or "integer". Participation answers are FieldValues, a map of
name to FieldValue. FieldValue is a tagged union that only accepts JSON
strings and integers:

	v := models.StringValue("vegan")
	n, ok := models.IntegerValue(3).Int()

FieldSchema.Conform checks submitted values against the schema.

# Errors

	ErrAuth             bad credentials, cause never disclosed
	ErrUnauthenticated  no valid session
	ErrForbidden        wrong role
	ErrNotFound         referenced row does not exist
	*ValidationError    malformed input, nothing written
	*StorageError       datastore failure, wraps the cause
*/
package models
