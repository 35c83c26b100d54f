package views

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Rajangupta9/taskflow/models"
)

func sample() []models.Task {
	return []models.Task{
		{ID: "1", Title: "Report, final", Date: "2024-03-15", Status: models.StatusDone, Category: models.CategoryWork},
		{ID: "2", Title: "Gym", Date: "2024-03-14", Status: models.StatusPartial, Category: models.CategoryHealth, PendingItems: "legs"},
		{ID: "3", Title: "Read", Date: "2024-03-15", Status: models.StatusTodo, Category: models.CategoryLearning},
		{ID: "4", Title: "Budget", Date: "2024-03-01", Status: models.StatusInProgress, Category: models.CategoryFinance},
	}
}

func ids(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestBoard(t *testing.T) {
	tasks := append(sample(), models.Task{ID: "x", Status: "archived"})
	cols := Board(tasks)
	require.Len(t, cols, 4)

	assert.Equal(t, models.StatusTodo, cols[0].Status)
	assert.Equal(t, []string{"3"}, ids(cols[0].Tasks))
	assert.Equal(t, []string{"4"}, ids(cols[1].Tasks))
	assert.Equal(t, []string{"2"}, ids(cols[2].Tasks))
	assert.Equal(t, []string{"1"}, ids(cols[3].Tasks))

	empty := Board(nil)
	for _, c := range empty {
		assert.NotNil(t, c.Tasks)
		assert.Empty(t, c.Tasks)
	}
}

func TestMatrix(t *testing.T) {
	groups := Matrix(sample())
	require.Len(t, groups, 3)
	assert.Equal(t, "2024-03-01", groups[0].Date)
	assert.Equal(t, "2024-03-14", groups[1].Date)
	assert.Equal(t, "2024-03-15", groups[2].Date)
	assert.Equal(t, []string{"1", "3"}, ids(groups[2].Tasks))
}

func TestListIsStable(t *testing.T) {
	in := sample()
	out := List(in)
	assert.Equal(t, []string{"4", "2", "1", "3"}, ids(out))
	assert.Equal(t, "1", in[0].ID, "input untouched")
}

func TestMonth(t *testing.T) {
	cal := Month(sample(), 2024, time.March)

	// March 1st 2024 is a Friday.
	assert.Equal(t, 5, cal.Leading)
	require.Len(t, cal.Days, 31)
	assert.Equal(t, "2024-03-01", cal.Days[0].Date)
	assert.Equal(t, "2024-03-31", cal.Days[30].Date)

	assert.Equal(t, models.DayNone, cal.Days[0].Color)
	assert.Equal(t, models.DayPartial, cal.Days[13].Color)
	assert.Equal(t, models.DayInProgress, cal.Days[14].Color)
	assert.Equal(t, models.DayEmpty, cal.Days[1].Color)
	assert.Len(t, cal.Days[14].Tasks, 2)

	feb := Month(nil, 2024, time.February)
	assert.Len(t, feb.Days, 29)
	assert.Equal(t, 4, feb.Leading)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "ID,Title,Date,Start Time,End Time,Category,Status,Pending Notes", lines[0])
	assert.Equal(t, "4,Budget,2024-03-01,,,Finance,in-progress,", lines[1])
	assert.Equal(t, "2,Gym,2024-03-14,,,Health,partially-complete,legs", lines[2])
	assert.Equal(t, `1,"Report, final",2024-03-15,,,Work,done,`, lines[3])
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, sample()))

	var doc struct {
		Tasks []map[string]string `yaml:"tasks"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Tasks, 4)
	assert.Equal(t, "4", doc.Tasks[0]["id"])
	assert.Equal(t, "legs", doc.Tasks[1]["pending_items"])
	_, hasStart := doc.Tasks[0]["start_time"]
	assert.False(t, hasStart)
}
