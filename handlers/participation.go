// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/pollhub/events"
	"github.com/danielhkuo/pollhub/middleware"
	"github.com/danielhkuo/pollhub/models"
)

type ParticipationHandler struct {
	ledger *events.Ledger
}

func NewParticipationHandler(db *sql.DB) *ParticipationHandler {
	return &ParticipationHandler{ledger: events.NewLedger(db)}
}

// Participate handles PUT /events/{id}/participation
// The caller registers themselves; there is no way to register someone else.
func (h *ParticipationHandler) Participate(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		middleware.WriteError(w, models.ErrUnauthenticated)
		return
	}

	eventID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req models.ParticipateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	id, created, err := h.ledger.Upsert(r.Context(), eventID, caller.UserID, req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	middleware.JSONResponse(w, status, models.ParticipateResponse{ParticipationID: id, Created: created})
}

// ListMine handles GET /participations/me
func (h *ParticipationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		middleware.WriteError(w, models.ErrUnauthenticated)
		return
	}

	list, err := h.ledger.ListForUser(r.Context(), caller.UserID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, list)
}

// ListAll handles GET /participations (admin)
func (h *ParticipationHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.ledger.ListAll(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, list)
}
