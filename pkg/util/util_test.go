package util

import (
	"strings"
	"testing"

	"github.com/harrisonrobin/taskbook/pkg/model"
	"google.golang.org/api/calendar/v3"
)

func testTask(t *testing.T) model.Task {
	task, err := model.NewTask("Pay rent", "transfer before noon", "Bills", model.High, "2030-12-31", "alice")
	if err != nil {
		t.Fatalf("NewTask failed: %v", err)
	}
	return task
}

func TestReminderEvent(t *testing.T) {
	event := ReminderEvent(testTask(t), "5")

	if event.Summary != "! Pay rent" {
		t.Errorf("Expected summary '! Pay rent', got '%s'", event.Summary)
	}
	if event.ColorId != "5" {
		t.Errorf("Expected color 5, got %s", event.ColorId)
	}
	if event.Start.Date != "2030-12-31" || event.End.Date != "2031-01-01" {
		t.Errorf("Expected all-day event 2030-12-31..2031-01-01, got %s..%s", event.Start.Date, event.End.Date)
	}
	if event.ExtendedProperties == nil || event.ExtendedProperties.Private[TitleProperty] != "pay rent" {
		t.Fatalf("Expected private property %s=pay rent, got %+v", TitleProperty, event.ExtendedProperties)
	}
	for _, want := range []string{"transfer before noon", "Category: Bills", "Priority: High", "Assigned to: alice"} {
		if !strings.Contains(event.Description, want) {
			t.Errorf("Expected description to contain %q, got: %s", want, event.Description)
		}
	}
}

func TestEventNeedsUpdate(t *testing.T) {
	task := testTask(t)
	existing := ReminderEvent(task, "5")

	if patch := EventNeedsUpdate(existing, ReminderEvent(task, "5")); patch != nil {
		t.Errorf("Expected no patch for identical events, got %+v", patch)
	}

	moved := task
	moved.Deadline = moved.Deadline.AddDate(0, 0, 2)
	patch := EventNeedsUpdate(existing, ReminderEvent(moved, "7"))
	if patch == nil {
		t.Fatal("Expected a patch for a moved, recolored event")
	}
	if patch.ColorId != "7" {
		t.Errorf("Expected color patch 7, got %s", patch.ColorId)
	}
	if patch.Start == nil || patch.Start.Date != "2031-01-02" {
		t.Errorf("Expected start patch 2031-01-02, got %+v", patch.Start)
	}
	if patch.Summary != "" {
		t.Errorf("Expected summary untouched, got %s", patch.Summary)
	}
}

func TestEventNeedsUpdateHandlesTimedEvents(t *testing.T) {
	existing := &calendar.Event{
		Start: &calendar.EventDateTime{DateTime: "2030-12-31T09:00:00Z"},
		End:   &calendar.EventDateTime{DateTime: "2030-12-31T09:30:00Z"},
	}
	target := ReminderEvent(testTask(t), "")
	target.Summary, target.Description = "", ""

	patch := EventNeedsUpdate(existing, target)
	if patch == nil || patch.Start == nil || patch.Start.Date != "2030-12-31" {
		t.Fatalf("Expected timed event to be converted to all-day, got %+v", patch)
	}
}
