// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/pollhub/cliparse"
	"github.com/danielhkuo/pollhub/handlers"
	"github.com/danielhkuo/pollhub/middleware"
	"github.com/danielhkuo/pollhub/models"
	"github.com/danielhkuo/pollhub/session"
	"github.com/danielhkuo/pollhub/users"
)

// Route is one gated endpoint and the roles allowed to call it
type Route struct {
	Pattern string
	Roles   []models.Role
	Handler http.HandlerFunc
}

var (
	anyone    = []models.Role{models.RoleAdmin, models.RoleUser}
	adminOnly = []models.Role{models.RoleAdmin}
)

// Exempt lists the only patterns served without a session check
var Exempt = []string{
	"GET /{$}",
	"GET /health",
	"POST /login",
	"POST /logout",
}

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	guard := session.NewGuard(db, users.NewStore(db), cfg.SessionSecret, cfg.SessionTTL)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(guard, cfg)
	pollHandler := handlers.NewPollHandler(db)
	eventHandler := handlers.NewEventHandler(db)
	participationHandler := handlers.NewParticipationHandler(db)

	exempt := map[string]http.HandlerFunc{
		"GET /{$}": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("pollhub API v1"))
		},
		"GET /health": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		},
		"POST /login":  middleware.WithLogging(authHandler.Login),
		"POST /logout": middleware.WithLogging(authHandler.Logout),
	}
	for _, pattern := range Exempt {
		mux.HandleFunc(pattern, exempt[pattern])
	}

	for _, rt := range Routes(authHandler, pollHandler, eventHandler, participationHandler) {
		gate := middleware.RequireRole(guard, rt.Roles...)
		mux.HandleFunc(rt.Pattern, middleware.WithLogging(gate(rt.Handler)))
	}

	return mux
}

// Routes returns every gated endpoint. Each one names its roles; nothing
// outside Exempt is reachable anonymously.
func Routes(
	authHandler *handlers.AuthHandler,
	pollHandler *handlers.PollHandler,
	eventHandler *handlers.EventHandler,
	participationHandler *handlers.ParticipationHandler,
) []Route {
	return []Route{
		{"GET /me", anyone, authHandler.Me},

		// Poll
		{"GET /poll", anyone, pollHandler.GetPoll},
		{"POST /poll/votes", anyone, pollHandler.CastVote},
		{"GET /poll/log", anyone, pollHandler.GetLog},
		{"POST /poll/reset", adminOnly, pollHandler.Reset},

		// Events
		{"GET /events", anyone, eventHandler.ListEvents},
		{"POST /events", adminOnly, eventHandler.CreateEvent},
		{"PATCH /events/{id}", adminOnly, eventHandler.UpdateEvent},
		{"DELETE /events/{id}", adminOnly, eventHandler.DeleteEvent},

		// Participation
		{"PUT /events/{id}/participation", anyone, participationHandler.Participate},
		{"GET /participations/me", anyone, participationHandler.ListMine},
		{"GET /participations", adminOnly, participationHandler.ListAll},

		// Vote counters carry live tallies
		{"GET /metrics", adminOnly, promhttp.Handler().ServeHTTP},
	}
}
