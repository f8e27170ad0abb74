package services

import (
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/irodav/taskdeck-be/internal/apperror"
	"github.com/irodav/taskdeck-be/internal/models"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(username, password string) (models.User, error)
	Authenticate(username, password string) (models.User, error)
	GetUserByID(id string) (models.User, error)
}

// UserService provides business logic for account management.
type UserService struct {
	db       *sql.DB
	eventSvc EventServiceProvider
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, eventSvc EventServiceProvider) *UserService {
	return &UserService{db: db, eventSvc: eventSvc}
}

// Register creates a new user with a bcrypt-hashed password. The username
// must be unique across all users.
func (s *UserService) Register(username, password string) (models.User, error) {
	var exists int
	err := s.db.QueryRow("SELECT COUNT(1) FROM users WHERE username = ?", username).Scan(&exists)
	if err != nil {
		return models.User{}, apperror.NewDatabaseError("failed to check username", err)
	}
	if exists > 0 {
		return models.User{}, apperror.NewConflictError("Username already taken.", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, apperror.NewInternalError("failed to hash password", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hashedPassword),
	}

	_, err = s.db.Exec("INSERT INTO users(id, username, password_hash) VALUES(?, ?, ?)",
		user.ID, user.Username, user.PasswordHash)
	if err != nil {
		// The uniqueness pre-check races with concurrent registrations;
		// the constraint is the authority.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return models.User{}, apperror.NewConflictError("Username already taken.", err)
		}
		return models.User{}, apperror.NewDatabaseError("failed to create user", err)
	}

	s.eventSvc.CreateEvent("auth.register", "info", "User '"+username+"' registered", &user.ID)

	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies a user's credentials. Unknown usernames and wrong
// passwords fail identically so existence is never revealed.
func (s *UserService) Authenticate(username, password string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, username, password_hash, created_at FROM users WHERE username = ?", username)
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, apperror.NewAuthError("Invalid credentials", nil)
		}
		return models.User{}, apperror.NewDatabaseError("failed to get user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, apperror.NewAuthError("Invalid credentials", nil)
	}

	s.eventSvc.CreateEvent("auth.login", "info", "User '"+username+"' logged in", &user.ID)

	user.PasswordHash = ""
	return user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, username, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Username, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, apperror.NewNotFoundError("user not found", err)
		}
		return models.User{}, apperror.NewDatabaseError("failed to get user", err)
	}
	return user, nil
}
