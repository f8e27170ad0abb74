package services

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/irodav/taskdeck-be/internal/models"
)

// EventServiceProvider defines the interface for audit event services.
type EventServiceProvider interface {
	CreateEvent(eventType, level, message string, userID *string)
	GetRecentEventsForUser(userID string, limit int) ([]models.Event, error)
}

// EventService records audit events for account and task activity.
type EventService struct {
	db *sql.DB
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db}
}

// CreateEvent logs a new event to the database. Audit writes are best-effort
// and never fail the operation that produced them.
func (s *EventService) CreateEvent(eventType, level, message string, userID *string) {
	event := models.Event{
		ID:      uuid.New().String(),
		Type:    eventType,
		Level:   level,
		Message: message,
		UserID:  userID,
	}

	_, err := s.db.Exec("INSERT INTO events (id, type, level, message, user_id) VALUES (?, ?, ?, ?, ?)",
		event.ID, event.Type, event.Level, event.Message, event.UserID)
	if err != nil {
		log.Warn().Err(err).Str("type", eventType).Msg("Failed to record audit event")
	}
}

// GetRecentEventsForUser retrieves the most recent events for one user.
func (s *EventService) GetRecentEventsForUser(userID string, limit int) ([]models.Event, error) {
	rows, err := s.db.Query(
		"SELECT id, type, level, message, user_id, created_at FROM events WHERE user_id = ? ORDER BY created_at DESC LIMIT ?",
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.UserID, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
