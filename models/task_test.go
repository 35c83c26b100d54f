package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskUnmarshalLegacyFields(t *testing.T) {
	in := `{
		"id": "t1",
		"title": "Pay rent",
		"start_date": "2024-03-02",
		"start_time": "09:00",
		"end_time": "09:30",
		"status": "partially-complete",
		"category": "Finance",
		"pendingReason": "waiting on landlord"
	}`

	var task Task
	require.NoError(t, json.Unmarshal([]byte(in), &task))

	assert.Equal(t, "2024-03-02", task.Date)
	assert.Equal(t, "09:00", task.StartTime)
	assert.Equal(t, "09:30", task.EndTime)
	assert.Equal(t, "waiting on landlord", task.PendingItems)
	assert.Equal(t, StatusPartial, task.Status)
}

func TestTaskUnmarshalPrefersCanonicalFields(t *testing.T) {
	in := `{"id":"t1","title":"x","date":"2024-03-05","due_date":"2024-01-01",
		"pendingItems":"new","pendingReason":"old"}`

	var task Task
	require.NoError(t, json.Unmarshal([]byte(in), &task))

	assert.Equal(t, "2024-03-05", task.Date)
	assert.Equal(t, "new", task.PendingItems)
}

func TestTaskMarshalDropsLegacyAndOwner(t *testing.T) {
	task := Task{ID: "t1", UserID: "u1", Title: "x", Date: "2024-03-05", Status: StatusTodo, Category: CategoryWork}
	b, err := json.Marshal(task)
	require.NoError(t, err)

	s := string(b)
	assert.NotContains(t, s, "pendingReason")
	assert.NotContains(t, s, "u1")
	assert.NotContains(t, s, "createdAt")
}

func TestTaskValidate(t *testing.T) {
	valid := Task{Title: "Run", Date: "2024-03-05", Status: StatusTodo, Category: CategoryHealth, StartTime: "07:00"}
	require.NoError(t, valid.Validate())

	cases := map[string]func(*Task){
		"blank title":  func(t *Task) { t.Title = "  " },
		"bad date":     func(t *Task) { t.Date = "05/03/2024" },
		"bad status":   func(t *Task) { t.Status = "blocked" },
		"bad category": func(t *Task) { t.Category = "Chores" },
		"bad time":     func(t *Task) { t.EndTime = "7pm" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			task := valid
			mutate(&task)
			assert.ErrorIs(t, task.Validate(), ErrInvalidTask)
		})
	}
}

func TestCalendarDateStripsTime(t *testing.T) {
	assert.Equal(t, "2024-03-05", CalendarDate("2024-03-05T10:11:12Z"))
	assert.Equal(t, "2024-03-05", CalendarDate("2024-03-05"))

	d, err := ParseDate("2024-03-05T23:59:00")
	require.NoError(t, err)
	assert.Equal(t, 5, d.Day())
}

func TestTaskPatch(t *testing.T) {
	var patch TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"status":"done","due_date":"2024-04-01","pendingReason":"none"}`), &patch))

	changes := patch.Changes()
	require.Len(t, changes, 3)
	assert.Equal(t, FieldChange{Field: "date", Value: "2024-04-01"}, changes[0])
	assert.Equal(t, FieldChange{Field: "status", Value: "done"}, changes[1])
	assert.Equal(t, FieldChange{Field: "pending_items", Value: "none"}, changes[2])

	task := Task{Title: "x", Date: "2024-03-01", Status: StatusTodo}
	require.NoError(t, patch.Validate(task))
	patch.Apply(&task)
	assert.Equal(t, StatusDone, task.Status)
	assert.Equal(t, "2024-04-01", task.Date)
	assert.Equal(t, "x", task.Title)
}

func TestTaskPatchEmpty(t *testing.T) {
	var patch TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"unknown":1}`), &patch))
	assert.True(t, patch.Empty())
	assert.ErrorIs(t, patch.Validate(Task{}), ErrInvalidTask)
}

func TestNewTaskIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewTaskID()
		require.False(t, seen[id])
		seen[id] = true
	}
}
