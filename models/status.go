package models

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusPartial    Status = "partially-complete"
	StatusDone       Status = "done"
)

// Statuses is the board column order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusPartial, StatusDone}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// ToggleStatus is the one-click completion switch: done goes back to todo,
// everything else is marked done.
func ToggleStatus(current Status) Status {
	if current == StatusDone {
		return StatusTodo
	}
	return StatusDone
}

type Category string

const (
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
	CategoryHealth   Category = "Health"
	CategoryLearning Category = "Learning"
	CategoryFinance  Category = "Finance"
)

var Categories = []Category{CategoryWork, CategoryPersonal, CategoryHealth, CategoryLearning, CategoryFinance}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// DayColor is the calendar cell shading for one day.
type DayColor string

const (
	DayEmpty      DayColor = "empty"
	DayAllDone    DayColor = "all-done"
	DayPartial    DayColor = "partial"
	DayInProgress DayColor = "in-progress"
	DayNone       DayColor = "none"
)

// DayCompletionColor classifies the tasks of a single day. Checks run in a
// fixed order: all done, then any partially-complete task, then at least
// half done.
func DayCompletionColor(dayTasks []Task) DayColor {
	if len(dayTasks) == 0 {
		return DayEmpty
	}
	var done, partial int
	for _, t := range dayTasks {
		switch t.Status {
		case StatusDone:
			done++
		case StatusPartial:
			partial++
		}
	}
	switch {
	case done == len(dayTasks):
		return DayAllDone
	case partial > 0:
		return DayPartial
	case 2*done >= len(dayTasks):
		return DayInProgress
	}
	return DayNone
}
