package taskwarrior

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/taskbook/pkg/model"
)

const exportStream = `{
	"uuid": "f45a05b3-c12e-42e5-9c9c-333333333333",
	"description": "Buy milk",
	"status": "pending",
	"due": "20300101T120000Z",
	"project": "Groceries",
	"priority": "H",
	"tags": ["buy", "food"],
	"annotations": [
		{"entry": "20300101T120500Z", "description": "Don't forget almond milk"}
	]
}
{"uuid": "a1", "description": "Old chore", "status": "completed", "due": "20300102T120000Z"}
{"uuid": "a2", "description": "Someday", "status": "pending"}
{"uuid": "a3", "description": "Gone", "status": "deleted", "due": "20300102T120000Z"}
`

func TestParseTasks(t *testing.T) {
	tasks, err := NewClient().ParseTasks(strings.NewReader(exportStream))
	if err != nil {
		t.Fatalf("ParseTasks failed: %v", err)
	}
	if len(tasks) != 4 {
		t.Fatalf("Expected 4 tasks, got %d", len(tasks))
	}

	task := tasks[0]
	if task.Project != "Groceries" {
		t.Errorf("Expected Project 'Groceries', got '%s'", task.Project)
	}
	if len(task.Annotations) != 1 {
		t.Errorf("Expected 1 annotation, got %d", len(task.Annotations))
	}
	expectedDue, _ := time.Parse(time.RFC3339, "2030-01-01T12:00:00Z")
	if !task.Due.Time.Equal(expectedDue) {
		t.Errorf("Expected Due %v, got %v", expectedDue, task.Due.Time)
	}
}

func TestParseTasksRejectsGarbage(t *testing.T) {
	if _, err := NewClient().ParseTasks(strings.NewReader(`{"uuid": `)); err == nil {
		t.Error("Expected error for truncated JSON")
	}
}

func TestConvert(t *testing.T) {
	tw, err := NewClient().ParseTasks(strings.NewReader(exportStream))
	if err != nil {
		t.Fatalf("ParseTasks failed: %v", err)
	}

	tasks, skipped := Convert(tw)
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 converted tasks, got %d", len(tasks))
	}
	if len(skipped) != 1 || !errors.Is(skipped[0], ErrNoDue) {
		t.Fatalf("Expected one ErrNoDue skip, got %v", skipped)
	}

	milk := tasks[0]
	if milk.Title != "Buy milk" || milk.Category != "Groceries" || milk.Priority != model.High {
		t.Errorf("Unexpected conversion: %+v", milk)
	}
	if milk.Description != "Don't forget almond milk" {
		t.Errorf("Expected annotation as description, got '%s'", milk.Description)
	}
	wantDate := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC).Local().Format(model.DateLayout)
	if milk.DeadlineString() != wantDate {
		t.Errorf("Expected deadline %s, got %s", wantDate, milk.DeadlineString())
	}

	if !tasks[1].Completed || tasks[1].Priority != model.Low {
		t.Errorf("Expected completed low-priority task, got %+v", tasks[1])
	}
}
