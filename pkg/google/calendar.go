package google

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/harrisonrobin/taskbook/pkg/colors"
	"github.com/harrisonrobin/taskbook/pkg/index"
	"github.com/harrisonrobin/taskbook/pkg/model"
	"github.com/harrisonrobin/taskbook/pkg/util"
	"google.golang.org/api/calendar/v3"
)

// CalendarClient pushes due-soon tasks to a Google Calendar as all-day
// events. It satisfies reminder.Notifier.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
	index      *index.EventIndex
	colors     *colors.ColorCache
}

func NewCalendarClient(srv *calendar.Service, calendarID string, idx *index.EventIndex, cc *colors.ColorCache) *CalendarClient {
	return &CalendarClient{srv: srv, calendarID: calendarID, index: idx, colors: cc}
}

// Notify upserts one event per task. Failures for individual tasks are
// collected and returned together after every task has been tried.
func (c *CalendarClient) Notify(ctx context.Context, due []model.Task) error {
	var errs []error
	for _, task := range due {
		if _, err := c.SyncReminder(ctx, task); err != nil {
			errs = append(errs, fmt.Errorf("sync reminder for %q: %w", task.Title, err))
		}
	}

	if c.index != nil {
		if err := c.index.Save(); err != nil {
			log.Printf("Warning: failed to save event index: %v", err)
		}
	}
	if c.colors != nil {
		if err := c.colors.Save(); err != nil {
			log.Printf("Warning: failed to save color cache: %v", err)
		}
	}
	return errors.Join(errs...)
}

// SyncReminder creates the reminder event for task or patches the existing one.
func (c *CalendarClient) SyncReminder(ctx context.Context, task model.Task) (*calendar.Event, error) {
	colorID := colors.NoCategory
	if c.colors != nil {
		colorID = c.colors.ColorID(task.Category)
	}
	target := util.ReminderEvent(task, colorID)

	existing, err := c.findEvent(ctx, task.Title)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		patch := util.EventNeedsUpdate(existing, target)
		if patch == nil {
			c.remember(task.Title, existing.Id)
			return existing, nil
		}
		updated, err := c.PatchEvent(ctx, existing.Id, patch)
		if err != nil {
			return nil, err
		}
		c.remember(task.Title, updated.Id)
		return updated, nil
	}

	created, err := c.srv.Events.Insert(c.calendarID, target).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to create event: %w", err)
	}
	c.remember(task.Title, created.Id)
	return created, nil
}

func (c *CalendarClient) remember(title, eventID string) {
	if c.index != nil {
		c.index.Set(title, eventID)
	}
}

// findEvent checks the local index first and falls back to an API search.
func (c *CalendarClient) findEvent(ctx context.Context, title string) (*calendar.Event, error) {
	if c.index != nil {
		if eventID := c.index.Get(title); eventID != "" {
			event, err := c.srv.Events.Get(c.calendarID, eventID).Context(ctx).Do()
			if err == nil && event.Status != "cancelled" {
				return event, nil
			}
			c.index.Remove(title)
		}
	}

	event, err := c.GetEventByTitle(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("error searching for event: %w", err)
	}
	return event, nil
}

// GetEventByTitle searches for the event tagged with the task title.
func (c *CalendarClient) GetEventByTitle(ctx context.Context, title string) (*calendar.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", util.TitleProperty, util.TitleKey(title))).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}

func (c *CalendarClient) PatchEvent(ctx context.Context, eventID string, patch *calendar.Event) (*calendar.Event, error) {
	return c.srv.Events.Patch(c.calendarID, eventID, patch).Context(ctx).Do()
}

// DeleteReminder removes the reminder event for a task, if one is known.
func (c *CalendarClient) DeleteReminder(ctx context.Context, title string) error {
	event, err := c.findEvent(ctx, title)
	if err != nil {
		return err
	}
	if event == nil {
		return nil
	}
	if err := c.srv.Events.Delete(c.calendarID, event.Id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to delete event: %w", err)
	}
	if c.index != nil {
		c.index.Remove(title)
		if err := c.index.Save(); err != nil {
			log.Printf("Warning: failed to save event index: %v", err)
		}
	}
	return nil
}
