package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStateRoundTrip(t *testing.T) {
	states := []TaskState{StateNotStarted, StateInProgress, StateCompleted, StateOnHold}
	names := []string{"NotStarted", "InProgress", "Completed", "OnHold"}

	for i, state := range states {
		assert.True(t, state.IsValid())
		assert.Equal(t, names[i], state.String())

		parsed, err := ParseTaskState(state.String())
		require.NoError(t, err)
		assert.Equal(t, state, parsed)
	}
}

func TestTaskStateInvalid(t *testing.T) {
	assert.False(t, TaskState(-1).IsValid())
	assert.False(t, TaskState(4).IsValid())

	_, err := ParseTaskState("Cancelled")
	assert.Error(t, err)
}

func TestTaskStateMarshalsAsInt(t *testing.T) {
	raw, err := json.Marshal(Task{State: StateOnHold})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"state":3`)
}

func TestTaskRequestValidate(t *testing.T) {
	tests := []struct {
		name string
		req  TaskRequest
		want []string
	}{
		{
			name: "valid",
			req:  TaskRequest{Name: "ok", State: StateInProgress},
			want: nil,
		},
		{
			name: "empty name",
			req:  TaskRequest{Name: "", State: StateInProgress},
			want: []string{"'Name' parameter is Null or Empty."},
		},
		{
			name: "invalid state",
			req:  TaskRequest{Name: "ok", State: TaskState(9)},
			want: []string{"'State' parameter is not valid."},
		},
		{
			name: "every violation reported",
			req:  TaskRequest{Name: "", State: TaskState(9)},
			want: []string{
				"'Name' parameter is Null or Empty.",
				"'State' parameter is not valid.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.Validate())
		})
	}
}
