package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/irodav/taskdeck-be/internal/apperror"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// respondError translates a service error to its HTTP status and JSON body.
// Persistence and internal failures surface as a generic 500 without detail
// leakage.
func respondError(w http.ResponseWriter, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("Internal server error", err)
	}

	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
		respondJSON(w, status, apperror.ErrorResponse{Message: "Internal server error"})
		return
	}
	respondJSON(w, status, appErr.ToResponse())
}
