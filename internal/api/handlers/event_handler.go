package handlers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/irodav/taskdeck-be/internal/apperror"
	"github.com/irodav/taskdeck-be/internal/services"
)

// EventHandler serves the caller's recent activity feed.
type EventHandler struct {
	service services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider) *EventHandler {
	return &EventHandler{service: service}
}

// GetRecent returns the most recent audit events for the caller.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 1 {
			respondError(w, apperror.NewValidationError("Invalid limit.", nil))
			return
		}
		limit = value
	}

	events, err := h.service.GetRecentEventsForUser(owner, limit)
	if err != nil {
		log.Error().Err(err).Str("user_id", owner).Msg("Failed to fetch events")
		respondError(w, apperror.NewDatabaseError("failed to fetch events", err))
		return
	}
	respondJSON(w, http.StatusOK, events)
}
