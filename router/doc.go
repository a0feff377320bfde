// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the pollhub API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Exempt

Only the patterns in Exempt are served without a session:

	GET  /         - Banner
	GET  /health   - Liveness
	POST /login    - Start a session
	POST /logout   - End the current session

# Gated

Every other route comes from Routes and names its roles:

	GET    /me                           admin, user
	GET    /poll                         admin, user
	POST   /poll/votes                   admin, user
	GET    /poll/log                     admin, user
	POST   /poll/reset                   admin
	GET    /events                       admin, user
	POST   /events                       admin
	PATCH  /events/{id}                  admin
	DELETE /events/{id}                  admin
	PUT    /events/{id}/participation    admin, user
	GET    /participations/me            admin, user
	GET    /participations               admin
	GET    /metrics                      admin

Anonymous callers get 401 and callers with the wrong role get 403, before
any handler runs.
*/
package router
