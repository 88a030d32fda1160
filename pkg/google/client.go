package google

import (
	"context"
	"fmt"

	"github.com/harrisonrobin/taskbook/pkg/auth"
	"github.com/harrisonrobin/taskbook/pkg/colors"
	"github.com/harrisonrobin/taskbook/pkg/index"
	"google.golang.org/api/calendar/v3"
)

// NewClient authenticates and resolves calendarName to its ID.
func NewClient(ctx context.Context, calendarName string, idx *index.EventIndex, cc *colors.ColorCache) (*CalendarClient, error) {
	srv, err := auth.GetCalendarService(ctx)
	if err != nil {
		return nil, err
	}

	calendarID, err := FindCalendarID(ctx, srv, calendarName)
	if err != nil {
		return nil, err
	}
	return NewCalendarClient(srv, calendarID, idx, cc), nil
}

// FindCalendarID returns the ID of the calendar whose summary is name.
func FindCalendarID(ctx context.Context, srv *calendar.Service, name string) (string, error) {
	calendarList, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to retrieve calendar list: %w", err)
	}
	for _, item := range calendarList.Items {
		if item.Summary == name {
			return item.Id, nil
		}
	}
	return "", fmt.Errorf("calendar '%s' not found", name)
}
