package taskwarrior

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harrisonrobin/taskbook/pkg/model"
)

const (
	PENDING   = "pending"
	COMPLETED = "completed"
	WAITING   = "waiting"
	DELETED   = "deleted"
)

// ErrNoDue marks taskwarrior tasks that cannot be imported without a due date.
var ErrNoDue = errors.New("task has no due date")

type CustomTime struct {
	time.Time
}

const taskwarriorTimeLayout = "20060102T150405Z" // YYYYMMDDTHHMMSSZ, always UTC

// UnmarshalJSON implements the json.Unmarshaler interface for CustomTime.
func (ct *CustomTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "0" {
		ct.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(taskwarriorTimeLayout, s)
	if err != nil {
		return fmt.Errorf("failed to parse Taskwarrior time string '%s': %w", s, err)
	}
	ct.Time = t
	return nil
}

// MarshalJSON implements the json.Marshaler interface for CustomTime.
func (ct CustomTime) MarshalJSON() ([]byte, error) {
	if ct.Time.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + ct.Time.Format(taskwarriorTimeLayout) + `"`), nil
}

type Annotation struct {
	Description string      `json:"description"`
	Entry       *CustomTime `json:"entry"`
}

// Task is the subset of a `task export` record taskbook understands.
type Task struct {
	UUID        string       `json:"uuid"`
	Description string       `json:"description"`
	Due         *CustomTime  `json:"due,omitempty"`
	Status      string       `json:"status"`
	Project     string       `json:"project,omitempty"`
	Priority    string       `json:"priority,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

func priorityFrom(p string) model.Priority {
	switch strings.ToUpper(p) {
	case "H":
		return model.High
	case "M":
		return model.Medium
	}
	return model.Low
}

// ToModel converts a taskwarrior task. The description becomes the title,
// the project the category and annotations the description. Due times are
// reduced to their local calendar date.
func (t Task) ToModel() (model.Task, error) {
	if t.Due == nil || t.Due.IsZero() {
		return model.Task{}, fmt.Errorf("%w: %s", ErrNoDue, t.UUID)
	}

	notes := make([]string, 0, len(t.Annotations))
	for _, a := range t.Annotations {
		notes = append(notes, a.Description)
	}

	task, err := model.NewTask(
		t.Description,
		strings.Join(notes, "; "),
		t.Project,
		priorityFrom(t.Priority),
		t.Due.Local().Format(model.DateLayout),
		"",
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("task %s: %w", t.UUID, err)
	}
	if t.Status == COMPLETED {
		task.MarkCompleted()
	}
	return task, nil
}
