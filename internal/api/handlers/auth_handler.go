package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/irodav/taskdeck-be/internal/apperror"
	"github.com/irodav/taskdeck-be/internal/auth"
	"github.com/irodav/taskdeck-be/internal/models"
	"github.com/irodav/taskdeck-be/internal/services"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	service  services.UserServiceProvider
	tokens   *auth.Manager
	validate *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.UserServiceProvider, tokens *auth.Manager) *AuthHandler {
	return &AuthHandler{
		service:  service,
		tokens:   tokens,
		validate: validator.New(),
	}
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload models.RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, apperror.NewBadRequestError("Invalid request body", err))
		return
	}

	if reasons := h.validatePayload(payload); len(reasons) > 0 {
		respondError(w, apperror.NewValidationError("Invalid registration request.", reasons))
		return
	}

	user, err := h.service.Register(payload.Username, payload.Password)
	if err != nil {
		if !apperror.IsConflict(err) {
			log.Error().Err(err).Str("username", payload.Username).Msg("Failed to register user")
		}
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "User registered successfully",
		"userId":  user.ID,
	})
}

// Login handles user authentication and token issuance.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload models.LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, apperror.NewBadRequestError("Invalid request body", err))
		return
	}

	if reasons := h.validatePayload(payload); len(reasons) > 0 {
		respondError(w, apperror.NewValidationError("Invalid login request.", reasons))
		return
	}

	user, err := h.service.Authenticate(payload.Username, payload.Password)
	if err != nil {
		if apperror.IsAuthError(err) {
			log.Warn().Str("username", payload.Username).Msg("Failed authentication attempt")
		}
		respondError(w, err)
		return
	}

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate token")
		respondError(w, apperror.NewInternalError("Failed to generate token", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// validatePayload runs struct-tag validation and converts every violation to
// a client-facing reason, not just the first one.
func (h *AuthHandler) validatePayload(payload any) []string {
	err := h.validate.Struct(payload)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{"Invalid request."}
	}

	var reasons []string
	for _, verr := range verrs {
		switch {
		case verr.Field() == "Username" && verr.Tag() == "required":
			reasons = append(reasons, "Missing 'username' property.")
		case verr.Field() == "Username" && verr.Tag() == "min":
			reasons = append(reasons, "Username must be at least 8 characters long.")
		case verr.Field() == "Username" && verr.Tag() == "max":
			reasons = append(reasons, "Username must be at most 16 characters long.")
		case verr.Field() == "Password" && verr.Tag() == "required":
			reasons = append(reasons, "Missing 'password' property.")
		case verr.Field() == "Password" && verr.Tag() == "min":
			reasons = append(reasons, "Password must be at least 8 characters long.")
		default:
			reasons = append(reasons, "Invalid '"+verr.Field()+"' property.")
		}
	}
	return reasons
}
