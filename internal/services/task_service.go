package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/irodav/taskdeck-be/internal/apperror"
	"github.com/irodav/taskdeck-be/internal/models"
)

// TaskServiceProvider defines the interface for task services. Every
// operation is scoped to the authenticated owner.
type TaskServiceProvider interface {
	List(ownerID string, state *models.TaskState) ([]models.Task, error)
	Get(ownerID, id string) (models.Task, error)
	Create(ownerID string, req models.TaskRequest) (models.Task, error)
	Replace(ownerID, id string, req models.TaskRequest) (models.Task, error)
	Patch(ownerID, id string, fields map[string]json.RawMessage) (models.Task, []string, error)
	Delete(ownerID, id string) error
}

// TaskService provides business logic for task management.
type TaskService struct {
	db       *sql.DB
	eventSvc EventServiceProvider
}

// NewTaskService creates a new TaskService.
func NewTaskService(db *sql.DB, eventSvc EventServiceProvider) *TaskService {
	return &TaskService{db: db, eventSvc: eventSvc}
}

const taskColumns = "id, user_id, name, description, state, created_at, due_date"

func scanTask(row interface{ Scan(dest ...any) error }) (models.Task, error) {
	var task models.Task
	var state string
	err := row.Scan(&task.ID, &task.UserID, &task.Name, &task.Description, &state, &task.CreatedAt, &task.DueDate)
	if err != nil {
		return models.Task{}, err
	}
	task.State, err = models.ParseTaskState(state)
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func taskNotFound(id string) *apperror.AppError {
	return apperror.NewNotFoundError(fmt.Sprintf("Task (Id: %s) not found.", id), nil)
}

// List returns the tasks owned by ownerID, optionally narrowed to one state.
// An empty result is a valid outcome, not an error.
func (s *TaskService) List(ownerID string, state *models.TaskState) ([]models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE user_id = ?"
	args := []any{ownerID}
	if state != nil {
		if !state.IsValid() {
			return nil, apperror.NewValidationError("Invalid TaskState.", nil)
		}
		query += " AND state = ?"
		args = append(args, state.String())
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list tasks", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to scan task", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list tasks", err)
	}
	return tasks, nil
}

// Get retrieves a single task. The lookup itself is scoped to the owner, so a
// task belonging to someone else is indistinguishable from one that does not
// exist.
func (s *TaskService) Get(ownerID, id string) (models.Task, error) {
	row := s.db.QueryRow("SELECT "+taskColumns+" FROM tasks WHERE id = ? AND user_id = ?", id, ownerID)
	task, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Task{}, taskNotFound(id)
		}
		return models.Task{}, apperror.NewDatabaseError("failed to get task", err)
	}
	return task, nil
}

// Create validates the request and persists a new task for ownerID.
func (s *TaskService) Create(ownerID string, req models.TaskRequest) (models.Task, error) {
	if reasons := req.Validate(); len(reasons) > 0 {
		return models.Task{}, apperror.NewValidationError("Invalid TaskItem object.", reasons)
	}

	task := models.Task{
		ID:          uuid.New().String(),
		UserID:      ownerID,
		Name:        req.Name,
		Description: req.Description,
		State:       req.State,
		CreatedAt:   time.Now().UTC(),
		DueDate:     req.DueDate,
	}

	_, err := s.db.Exec(
		"INSERT INTO tasks(id, user_id, name, description, state, created_at, due_date) VALUES(?, ?, ?, ?, ?, ?, ?)",
		task.ID, task.UserID, task.Name, task.Description, task.State.String(), task.CreatedAt, task.DueDate)
	if err != nil {
		return models.Task{}, apperror.NewDatabaseError("failed to create task", err)
	}

	s.eventSvc.CreateEvent("task.create", "info", "Task '"+task.Name+"' created", &ownerID)
	return task, nil
}

// Replace overwrites every user-mutable field of an existing task. The id and
// the original creation stamp are preserved.
func (s *TaskService) Replace(ownerID, id string, req models.TaskRequest) (models.Task, error) {
	if reasons := req.Validate(); len(reasons) > 0 {
		return models.Task{}, apperror.NewValidationError("Invalid TaskItem object.", reasons)
	}

	existing, err := s.getByID(id)
	if err != nil {
		return models.Task{}, err
	}
	if existing.UserID != ownerID {
		return models.Task{}, apperror.NewAuthError("Not the task owner", nil)
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.State = req.State
	existing.DueDate = req.DueDate

	if err := s.update(existing); err != nil {
		return models.Task{}, err
	}

	s.eventSvc.CreateEvent("task.replace", "info", "Task '"+existing.Name+"' replaced", &ownerID)
	return existing, nil
}

// Patch applies the fields present in the sparse payload. Fields that are
// present but unusable are skipped and reported as warnings; the result is
// still a success.
func (s *TaskService) Patch(ownerID, id string, fields map[string]json.RawMessage) (models.Task, []string, error) {
	task, err := s.getByID(id)
	if err != nil {
		return models.Task{}, nil, err
	}
	if task.UserID != ownerID {
		return models.Task{}, nil, apperror.NewAuthError("Not the task owner", nil)
	}

	var warnings []string

	if raw, ok := fields["name"]; ok {
		var name *string
		if json.Unmarshal(raw, &name) == nil && name != nil && *name != "" {
			task.Name = *name
		} else {
			warnings = append(warnings, "'Name' was not patched (null or empty).")
		}
	}

	if raw, ok := fields["description"]; ok {
		var description *string
		if json.Unmarshal(raw, &description) == nil && description != nil {
			task.Description = *description
		}
	}

	if raw, ok := fields["state"]; ok {
		var state *models.TaskState
		if json.Unmarshal(raw, &state) == nil && state != nil && state.IsValid() {
			task.State = *state
		} else {
			warnings = append(warnings, "'State' was not patched (invalid TaskState value).")
		}
	}

	if raw, ok := fields["dueDate"]; ok {
		if due, ok := parsePatchDate(raw); ok {
			task.DueDate = due
		} else {
			warnings = append(warnings, "'DueDate' was not patched (invalid DateTime value).")
		}
	}

	if err := s.update(task); err != nil {
		return models.Task{}, nil, err
	}

	s.eventSvc.CreateEvent("task.patch", "info", "Task '"+task.Name+"' patched", &ownerID)
	return task, warnings, nil
}

// Delete removes a task permanently. Tasks have no dependents, so there is
// nothing to cascade.
func (s *TaskService) Delete(ownerID, id string) error {
	task, err := s.getByID(id)
	if err != nil {
		return err
	}
	if task.UserID != ownerID {
		return apperror.NewAuthError("Not the task owner", nil)
	}

	if _, err := s.db.Exec("DELETE FROM tasks WHERE id = ?", id); err != nil {
		return apperror.NewDatabaseError("failed to delete task", err)
	}

	s.eventSvc.CreateEvent("task.delete", "info", "Task '"+task.Name+"' deleted", &ownerID)
	return nil
}

// ListOverdue returns tasks whose due date passed before cutoff and that are
// still not completed. Used by the background sweeper.
func (s *TaskService) ListOverdue(cutoff time.Time) ([]models.Task, error) {
	rows, err := s.db.Query(
		"SELECT "+taskColumns+" FROM tasks WHERE due_date < ? AND state != ?",
		cutoff, models.StateCompleted.String())
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list overdue tasks", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to scan task", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *TaskService) getByID(id string) (models.Task, error) {
	row := s.db.QueryRow("SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	task, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Task{}, taskNotFound(id)
		}
		return models.Task{}, apperror.NewDatabaseError("failed to get task", err)
	}
	return task, nil
}

// update writes the user-mutable fields back. created_at and user_id are
// never touched after creation.
func (s *TaskService) update(task models.Task) error {
	_, err := s.db.Exec(
		"UPDATE tasks SET name = ?, description = ?, state = ?, due_date = ? WHERE id = ?",
		task.Name, task.Description, task.State.String(), task.DueDate, task.ID)
	if err != nil {
		return apperror.NewDatabaseError("failed to update task", err)
	}
	return nil
}

// parsePatchDate accepts an RFC 3339 timestamp or a bare date and normalizes
// it to midnight UTC of that day.
func parsePatchDate(raw json.RawMessage) (time.Time, bool) {
	var s *string
	if json.Unmarshal(raw, &s) != nil || s == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		t, err = time.Parse("2006-01-02", *s)
		if err != nil {
			return time.Time{}, false
		}
	}
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}
