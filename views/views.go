// Package views projects a flat task list into the shapes the terminal
// screens render: kanban columns, per-date groups, a sorted list and a month
// calendar.
package views

import (
	"sort"
	"time"

	"github.com/Rajangupta9/taskflow/models"
)

type Column struct {
	Status models.Status
	Tasks  []models.Task
}

// Board buckets tasks into one column per status, in board order. Tasks
// with an unknown status are left out.
func Board(tasks []models.Task) []Column {
	cols := make([]Column, len(models.Statuses))
	at := make(map[models.Status]int, len(models.Statuses))
	for i, s := range models.Statuses {
		cols[i] = Column{Status: s, Tasks: []models.Task{}}
		at[s] = i
	}
	for _, t := range tasks {
		if i, ok := at[t.Status]; ok {
			cols[i].Tasks = append(cols[i].Tasks, t)
		}
	}
	return cols
}

type DateGroup struct {
	Date  string
	Tasks []models.Task
}

// Matrix groups tasks by calendar date, dates ascending.
func Matrix(tasks []models.Task) []DateGroup {
	byDate := make(map[string][]models.Task)
	for _, t := range tasks {
		d := models.CalendarDate(t.Date)
		byDate[d] = append(byDate[d], t)
	}
	groups := make([]DateGroup, 0, len(byDate))
	for d, ts := range byDate {
		groups = append(groups, DateGroup{Date: d, Tasks: ts})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Date < groups[j].Date })
	return groups
}

// List is a copy of tasks sorted by date; equal dates keep their order.
func List(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		return models.CalendarDate(out[i].Date) < models.CalendarDate(out[j].Date)
	})
	return out
}

type CalendarDay struct {
	Day   int
	Date  string
	Tasks []models.Task
	Color models.DayColor
}

type CalendarMonth struct {
	Year  int
	Month time.Month
	// Leading is the number of blank cells before the 1st in a
	// Sunday-first week.
	Leading int
	Days    []CalendarDay
}

func Month(tasks []models.Task, year int, month time.Month) CalendarMonth {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	n := first.AddDate(0, 1, -1).Day()

	byDate := make(map[string][]models.Task)
	for _, t := range tasks {
		d := models.CalendarDate(t.Date)
		byDate[d] = append(byDate[d], t)
	}

	cal := CalendarMonth{
		Year:    year,
		Month:   month,
		Leading: int(first.Weekday()),
		Days:    make([]CalendarDay, 0, n),
	}
	for day := 1; day <= n; day++ {
		date := models.FormatDate(first.AddDate(0, 0, day-1))
		dayTasks := byDate[date]
		cal.Days = append(cal.Days, CalendarDay{
			Day:   day,
			Date:  date,
			Tasks: dayTasks,
			Color: models.DayCompletionColor(dayTasks),
		})
	}
	return cal
}
