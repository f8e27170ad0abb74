package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/irodav/taskdeck-be/internal/apperror"
	"github.com/irodav/taskdeck-be/internal/auth"
	"github.com/irodav/taskdeck-be/internal/models"
	"github.com/irodav/taskdeck-be/internal/services"
)

// TaskHandler handles HTTP requests for task management. All routes behind
// it require a verified owner identity in the request context.
type TaskHandler struct {
	service services.TaskServiceProvider
	// emptyAsNotFound makes List answer 404 instead of an empty array when
	// nothing matches; a deployment configuration choice.
	emptyAsNotFound bool
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service services.TaskServiceProvider, emptyAsNotFound bool) *TaskHandler {
	return &TaskHandler{service: service, emptyAsNotFound: emptyAsNotFound}
}

// ownerID extracts the authenticated user's id placed by the auth middleware.
func ownerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		respondError(w, apperror.NewInternalError("Could not retrieve user from token", nil))
		return "", false
	}
	return claims.UserID, true
}

// List returns the caller's tasks, optionally filtered by state.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var state *models.TaskState
	if raw := r.URL.Query().Get("state"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, apperror.NewValidationError("Invalid TaskState.", nil))
			return
		}
		s := models.TaskState(value)
		state = &s
	}

	tasks, err := h.service.List(owner, state)
	if err != nil {
		respondError(w, err)
		return
	}

	if len(tasks) == 0 && h.emptyAsNotFound {
		respondError(w, apperror.NewNotFoundError("No tasks found.", nil))
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

// Get returns a single task owned by the caller.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	task, err := h.service.Get(owner, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// Create validates the payload and creates a new task for the caller.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req models.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperror.NewBadRequestError("Invalid request body", err))
		return
	}

	task, err := h.service.Create(owner, req)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Location", "/tasks/"+task.ID)
	respondJSON(w, http.StatusCreated, task)
}

// Replace overwrites all user-mutable fields of the caller's task.
func (h *TaskHandler) Replace(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req models.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperror.NewBadRequestError("Invalid request body", err))
		return
	}

	task, err := h.service.Replace(owner, chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// Patch applies a sparse update. Rejected fields come back as warnings on a
// successful response rather than failing the request.
func (h *TaskHandler) Patch(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		respondError(w, apperror.NewBadRequestError("Invalid request body", err))
		return
	}

	task, warnings, err := h.service.Patch(owner, chi.URLParam(r, "id"), fields)
	if err != nil {
		respondError(w, err)
		return
	}

	if len(warnings) > 0 {
		respondJSON(w, http.StatusOK, map[string]any{"task": task, "warnings": warnings})
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// Delete removes the caller's task permanently.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(owner, chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
