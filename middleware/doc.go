// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status,
duration_ms). Every request carries an X-Request-ID; one is generated when
the client does not send it.

# Session Gate

RequireRole resolves the session token (Authorization: Bearer, then the
session cookie) and checks the caller's role:

	admins := middleware.RequireRole(guard, models.RoleAdmin)
	mux.HandleFunc("POST /poll/reset", middleware.WithLogging(admins(h.Reset)))

Anonymous callers get 401, wrong roles 403. Handlers behind the gate read the
caller with IdentityFrom(r.Context()).

# Errors

WriteError maps the models error taxonomy onto status codes:

	ValidationError    → 400
	ErrAuth            → 401
	ErrUnauthenticated → 401
	ErrForbidden       → 403
	ErrNotFound        → 404
	StorageError       → 500 (logged and counted, generic body)

# CORS

	server := http.Server{
		Handler: middleware.CORS(cfg.CORSOrigins)(mux),
	}

Built on rs/cors with credentials enabled so the session cookie travels.
*/
package middleware
