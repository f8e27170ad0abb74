package models

import (
	"fmt"
	"time"
)

// TaskState enumerates the lifecycle states of a task. It travels as an
// integer on the wire but is persisted under its symbolic name so the schema
// survives states being added out of numeric order.
type TaskState int

const (
	StateNotStarted TaskState = iota
	StateInProgress
	StateCompleted
	StateOnHold
)

// IsValid reports whether the state is one of the defined values.
func (s TaskState) IsValid() bool {
	return s >= StateNotStarted && s <= StateOnHold
}

// String returns the symbolic name used for persistence.
func (s TaskState) String() string {
	switch s {
	case StateNotStarted:
		return "NotStarted"
	case StateInProgress:
		return "InProgress"
	case StateCompleted:
		return "Completed"
	case StateOnHold:
		return "OnHold"
	}
	return fmt.Sprintf("TaskState(%d)", int(s))
}

// ParseTaskState maps a stored symbolic name back to its TaskState.
func ParseTaskState(name string) (TaskState, error) {
	switch name {
	case "NotStarted":
		return StateNotStarted, nil
	case "InProgress":
		return StateInProgress, nil
	case "Completed":
		return StateCompleted, nil
	case "OnHold":
		return StateOnHold, nil
	}
	return 0, fmt.Errorf("unknown task state %q", name)
}

// Task represents a single task record owned by exactly one user.
type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	State       TaskState `json:"state"`
	CreatedAt   time.Time `json:"createdAt"`
	DueDate     time.Time `json:"dueDate"`
}

// TaskRequest carries the user-mutable fields for create and full replace.
type TaskRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	State       TaskState `json:"state"`
	DueDate     time.Time `json:"dueDate"`
}

// Validate collects every violated rule rather than stopping at the first,
// so clients can fix their payload in one round trip.
func (r TaskRequest) Validate() []string {
	var reasons []string
	if r.Name == "" {
		reasons = append(reasons, "'Name' parameter is Null or Empty.")
	}
	if !r.State.IsValid() {
		reasons = append(reasons, "'State' parameter is not valid.")
	}
	return reasons
}
