package util

import (
	"fmt"
	"strings"

	"github.com/harrisonrobin/taskbook/pkg/model"
	"google.golang.org/api/calendar/v3"
)

// TitleProperty is the private extended property linking an event to a task.
const TitleProperty = "taskbook_title"

// TitleKey is the value stored under TitleProperty for a task title.
func TitleKey(title string) string {
	return strings.ToLower(title)
}

// ReminderEvent converts a due-soon task into an all-day calendar event on
// its deadline date.
func ReminderEvent(task model.Task, colorID string) *calendar.Event {
	var desc strings.Builder
	if task.Description != "" {
		desc.WriteString(task.Description)
		desc.WriteString("\n\n")
	}
	if task.Category != "" {
		fmt.Fprintf(&desc, "Category: %s\n", task.Category)
	}
	fmt.Fprintf(&desc, "Priority: %s\n", task.Priority)
	if task.AssignedUser != "" {
		fmt.Fprintf(&desc, "Assigned to: %s\n", task.AssignedUser)
	}

	return &calendar.Event{
		Summary:     "! " + task.Title,
		Description: desc.String(),
		ColorId:     colorID,
		Start:       &calendar.EventDateTime{Date: task.DeadlineString()},
		End:         &calendar.EventDateTime{Date: task.Deadline.AddDate(0, 0, 1).Format(model.DateLayout)},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				TitleProperty: TitleKey(task.Title),
			},
		},
	}
}

// EventNeedsUpdate returns a patch holding the fields of target that differ
// from existing, or nil when they already agree.
func EventNeedsUpdate(existing, target *calendar.Event) *calendar.Event {
	patch := &calendar.Event{}
	needsUpdate := false

	if existing.Summary != target.Summary {
		patch.Summary = target.Summary
		needsUpdate = true
	}
	if existing.Description != target.Description {
		patch.Description = target.Description
		needsUpdate = true
	}
	if existing.ColorId != target.ColorId {
		patch.ColorId = target.ColorId
		needsUpdate = true
	}
	if eventDate(existing.Start) != eventDate(target.Start) || eventDate(existing.End) != eventDate(target.End) {
		patch.Start = target.Start
		patch.End = target.End
		needsUpdate = true
	}

	if needsUpdate {
		return patch
	}
	return nil
}

func eventDate(dt *calendar.EventDateTime) string {
	if dt == nil {
		return ""
	}
	if dt.Date != "" {
		return dt.Date
	}
	return dt.DateTime
}
