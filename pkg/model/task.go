package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the only accepted deadline format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// Priority ranks a task. Values outside High..Low are kept as-is.
type Priority int

const (
	High   Priority = 1
	Medium Priority = 2
	Low    Priority = 3
)

func (p Priority) String() string {
	switch p {
	case High:
		return "High"
	case Medium:
		return "Medium"
	case Low:
		return "Low"
	}
	return "Unknown"
}

// Headers are the column titles matching Task.Row.
var Headers = []string{"Title", "Description", "Category", "Priority", "Deadline", "Assigned To", "Completed"}

// Task is a single tracked item. Title acts as the lookup key.
type Task struct {
	Title        string
	Description  string
	Category     string
	Priority     Priority
	Deadline     time.Time // midnight local time of the due date
	AssignedUser string
	Completed    bool
}

// DateFormatError is returned when a deadline is not a valid YYYY-MM-DD date.
type DateFormatError struct {
	Value string
	Err   error
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("invalid deadline %q: expected YYYY-MM-DD", e.Value)
}

func (e *DateFormatError) Unwrap() error { return e.Err }

// FieldError reports a field value that cannot be stored in a record line.
type FieldError struct {
	Field string
	Value string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s must not contain %q or line breaks: %q", e.Field, Delimiter, e.Value)
}

// NewTask builds an incomplete task, parsing deadline strictly.
func NewTask(title, description, category string, priority Priority, deadline, assignedUser string) (Task, error) {
	fields := []struct{ name, value string }{
		{"title", title},
		{"description", description},
		{"category", category},
		{"assigned user", assignedUser},
	}
	for _, f := range fields {
		if strings.ContainsAny(f.value, Delimiter+"\r\n") {
			return Task{}, &FieldError{Field: f.name, Value: f.value}
		}
	}

	due, err := ParseDate(deadline)
	if err != nil {
		return Task{}, err
	}

	return Task{
		Title:        title,
		Description:  description,
		Category:     category,
		Priority:     priority,
		Deadline:     due,
		AssignedUser: assignedUser,
	}, nil
}

// ParseDate parses a YYYY-MM-DD string as midnight in the local zone.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, &DateFormatError{Value: s, Err: err}
	}
	return t, nil
}

// MarkCompleted flags the task as done. Calling it again is a no-op.
func (t *Task) MarkCompleted() {
	t.Completed = true
}

// DeadlineString formats the deadline as YYYY-MM-DD.
func (t Task) DeadlineString() string {
	return t.Deadline.Format(DateLayout)
}

// Row returns the display cells in Headers order.
func (t Task) Row() []string {
	completed := "No"
	if t.Completed {
		completed = "Yes"
	}
	return []string{
		t.Title,
		t.Description,
		t.Category,
		t.Priority.String(),
		t.DeadlineString(),
		t.AssignedUser,
		completed,
	}
}
