package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var ErrInvalidTask = errors.New("invalid task")

type Task struct {
	ID              string    `bson:"id" json:"id"`
	UserID          string    `bson:"user_id" json:"-"` // owner, taken from the bearer token
	Title           string    `bson:"title" json:"title"`
	Description     string    `bson:"description,omitempty" json:"description,omitempty"`
	Date            string    `bson:"date" json:"date"`
	StartTime       string    `bson:"start_time,omitempty" json:"startTime,omitempty"`
	EndTime         string    `bson:"end_time,omitempty" json:"endTime,omitempty"`
	ActualStartTime string    `bson:"actual_start_time,omitempty" json:"actualStartTime,omitempty"`
	ActualEndTime   string    `bson:"actual_end_time,omitempty" json:"actualEndTime,omitempty"`
	Status          Status    `bson:"status" json:"status"`
	Category        Category  `bson:"category" json:"category"`
	PendingItems    string    `bson:"pending_items,omitempty" json:"pendingItems,omitempty"`
	CompletedItems  string    `bson:"completed_items,omitempty" json:"completedItems,omitempty"`
	CreatedAt       time.Time `bson:"created_at" json:"createdAt,omitzero"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updatedAt,omitzero"`
}

// legacyFields are the keys older clients and the first server revision sent.
// They are folded into the canonical fields on decode and never written back.
type legacyFields struct {
	PendingReason *string `json:"pendingReason"`
	StartDate     string  `json:"start_date"`
	DueDate       string  `json:"due_date"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
}

func (l legacyFields) date() string {
	if l.StartDate != "" {
		return l.StartDate
	}
	return l.DueDate
}

func (t *Task) UnmarshalJSON(b []byte) error {
	type plain Task
	var wire struct {
		plain
		legacyFields
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	*t = Task(wire.plain)
	if t.Date == "" {
		t.Date = wire.date()
	}
	if t.StartTime == "" {
		t.StartTime = wire.legacyFields.StartTime
	}
	if t.EndTime == "" {
		t.EndTime = wire.legacyFields.EndTime
	}
	if t.PendingItems == "" && wire.PendingReason != nil {
		t.PendingItems = *wire.PendingReason
	}
	return nil
}

// NewTaskID returns a random identifier callers can assign without asking the server.
func NewTaskID() string {
	return uuid.NewString()
}

// ParseDate parses a YYYY-MM-DD calendar date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, CalendarDate(s), time.UTC)
}

// CalendarDate strips any time-of-day suffix from a stored date value.
func CalendarDate(s string) string {
	if len(s) > len(DateLayout) {
		return s[:len(DateLayout)]
	}
	return s
}

// FormatDate renders the calendar date of t in t's own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func validClock(s string) bool {
	if _, err := time.Parse(TimeLayout, s); err == nil {
		return true
	}
	_, err := time.Parse("15:04:05", s)
	return err == nil
}

func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if _, err := ParseDate(t.Date); err != nil {
		return fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidTask, t.Date)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTask, t.Status)
	}
	if t.Category != "" && !t.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidTask, t.Category)
	}
	for name, v := range map[string]string{
		"startTime":       t.StartTime,
		"endTime":         t.EndTime,
		"actualStartTime": t.ActualStartTime,
		"actualEndTime":   t.ActualEndTime,
	} {
		if v != "" && !validClock(v) {
			return fmt.Errorf("%w: %s %q must be HH:mm", ErrInvalidTask, name, v)
		}
	}
	return nil
}

// TaskPatch is a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Title           *string   `json:"title,omitempty"`
	Description     *string   `json:"description,omitempty"`
	Date            *string   `json:"date,omitempty"`
	StartTime       *string   `json:"startTime,omitempty"`
	EndTime         *string   `json:"endTime,omitempty"`
	ActualStartTime *string   `json:"actualStartTime,omitempty"`
	ActualEndTime   *string   `json:"actualEndTime,omitempty"`
	Status          *Status   `json:"status,omitempty"`
	Category        *Category `json:"category,omitempty"`
	PendingItems    *string   `json:"pendingItems,omitempty"`
	CompletedItems  *string   `json:"completedItems,omitempty"`
}

func (p *TaskPatch) UnmarshalJSON(b []byte) error {
	type plain TaskPatch
	var wire struct {
		plain
		PendingReason *string `json:"pendingReason"`
		StartDate     *string `json:"start_date"`
		DueDate       *string `json:"due_date"`
		StartTime     *string `json:"start_time"`
		EndTime       *string `json:"end_time"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	*p = TaskPatch(wire.plain)
	if p.Date == nil {
		p.Date = firstSet(wire.StartDate, wire.DueDate)
	}
	if p.StartTime == nil {
		p.StartTime = wire.StartTime
	}
	if p.EndTime == nil {
		p.EndTime = wire.EndTime
	}
	if p.PendingItems == nil {
		p.PendingItems = wire.PendingReason
	}
	return nil
}

func firstSet(vals ...*string) *string {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// FieldChange is one column/document field touched by a patch.
type FieldChange struct {
	Field string
	Value string
}

// Changes lists the set fields using their storage names, in a fixed order.
func (p TaskPatch) Changes() []FieldChange {
	var out []FieldChange
	add := func(field string, v *string) {
		if v != nil {
			out = append(out, FieldChange{Field: field, Value: *v})
		}
	}
	add("title", p.Title)
	add("description", p.Description)
	add("date", p.Date)
	add("start_time", p.StartTime)
	add("end_time", p.EndTime)
	add("actual_start_time", p.ActualStartTime)
	add("actual_end_time", p.ActualEndTime)
	if p.Status != nil {
		out = append(out, FieldChange{Field: "status", Value: string(*p.Status)})
	}
	if p.Category != nil {
		out = append(out, FieldChange{Field: "category", Value: string(*p.Category)})
	}
	add("pending_items", p.PendingItems)
	add("completed_items", p.CompletedItems)
	return out
}

func (p TaskPatch) Empty() bool {
	return len(p.Changes()) == 0
}

// Apply copies every set field onto t.
func (p TaskPatch) Apply(t *Task) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&t.Title, p.Title)
	set(&t.Description, p.Description)
	set(&t.Date, p.Date)
	set(&t.StartTime, p.StartTime)
	set(&t.EndTime, p.EndTime)
	set(&t.ActualStartTime, p.ActualStartTime)
	set(&t.ActualEndTime, p.ActualEndTime)
	set(&t.PendingItems, p.PendingItems)
	set(&t.CompletedItems, p.CompletedItems)
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
}

// Validate checks the patched result without touching the original.
func (p TaskPatch) Validate(current Task) error {
	if p.Empty() {
		return fmt.Errorf("%w: no fields to update", ErrInvalidTask)
	}
	p.Apply(&current)
	return current.Validate()
}
