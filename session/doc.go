// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session issues, resolves and revokes login sessions, and gates
operations by role.

# Lifecycle

	guard := session.NewGuard(db, users.NewStore(db), cfg.SessionSecret, cfg.SessionTTL)
	s, err := guard.Authenticate(ctx, "alice", "s3cret")   // models.ErrAuth on any mismatch
	id, ok, err := guard.Resolve(ctx, s.Token)             // ok=false means anonymous
	err = guard.Destroy(ctx, s.Token)                      // later Resolve calls return ok=false

A session expires at issue time plus the configured TTL. Activity does not
extend it.

# Authorization

	err := session.RequireRole(&id, models.RoleAdmin)

returns models.ErrUnauthenticated for a nil identity and models.ErrForbidden
when the role is not in the allow list. An empty allow list admits nobody.
*/
package session
