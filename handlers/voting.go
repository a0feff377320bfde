// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/pollhub/middleware"
	"github.com/danielhkuo/pollhub/models"
)

// CastVote handles POST /poll/votes
// Any logged-in user may vote any number of times.
func (h *PollHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := models.Validate(req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	choices, err := h.engine.CastVote(r.Context(), req.Choice)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CastVoteResponse{Choices: choices})
}
