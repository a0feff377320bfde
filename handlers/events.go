// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/danielhkuo/pollhub/events"
	"github.com/danielhkuo/pollhub/middleware"
	"github.com/danielhkuo/pollhub/models"
)

type EventHandler struct {
	registry *events.Registry
}

func NewEventHandler(db *sql.DB) *EventHandler {
	return &EventHandler{registry: events.NewRegistry(db)}
}

// ListEvents handles GET /events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	list, err := h.registry.ListEvents(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, list)
}

// CreateEvent handles POST /events (admin)
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	id, err := h.registry.AddEvent(r.Context(), req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreateEventResponse{EventID: id})
}

// UpdateEvent handles PATCH /events/{id} (admin)
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var patch models.UpdateEventRequest
	if err := middleware.ParseJSONBody(r, &patch); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	// An empty patch would report 0 affected and read as a missing event
	if patch.Empty() {
		middleware.WriteError(w, &models.ValidationError{Message: "no fields to update"})
		return
	}

	n, err := h.registry.UpdateEvent(r.Context(), id, patch)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Event not found")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.AffectedResponse{Affected: n})
}

// DeleteEvent handles DELETE /events/{id} (admin)
// Participations for the event are removed with it.
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	n, err := h.registry.DeleteEvent(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Event not found")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.AffectedResponse{Affected: n})
}

// pathID parses the {id} path segment, writing a 400 on failure
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.WriteError(w, &models.ValidationError{Field: "id", Message: "must be a positive integer"})
		return 0, false
	}
	return id, true
}
