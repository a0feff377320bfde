// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/danielhkuo/pollhub/middleware"
	"github.com/danielhkuo/pollhub/models"
	"github.com/danielhkuo/pollhub/poll"
)

type PollHandler struct {
	engine *poll.Engine
}

func NewPollHandler(db *sql.DB) *PollHandler {
	return &PollHandler{engine: poll.NewEngine(db)}
}

// GetPoll handles GET /poll
// Returns every choice with its tally and the recent vote log.
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	state, err := h.engine.State(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, state)
}

// GetLog handles GET /poll/log?limit=N
func (h *PollHandler) GetLog(w http.ResponseWriter, r *http.Request) {
	limit := models.RecentLogCap
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			middleware.WriteError(w, &models.ValidationError{Field: "limit", Message: "must be an integer"})
			return
		}
		limit = n
	}

	entries, err := h.engine.RecentLog(r.Context(), limit)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, entries)
}

// Reset handles POST /poll/reset (admin)
func (h *PollHandler) Reset(w http.ResponseWriter, r *http.Request) {
	state, err := h.engine.ResetAll(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, state)
}
