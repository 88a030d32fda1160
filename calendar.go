package main

import (
	"context"
	"fmt"
	"log"

	"github.com/harrisonrobin/taskbook/pkg/auth"
	"github.com/harrisonrobin/taskbook/pkg/config"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with Google Calendar for reminder sync",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := auth.Reset(); err != nil {
			fatal("%v. Please delete it manually", err)
		}
		if _, err := auth.GetCalendarService(cmd.Context()); err != nil {
			fatal("Authentication failed: %v", err)
		}
		log.Printf("Authentication successful! Token saved to %s", auth.TokenFile)
	},
}

var setCalendarCmd = &cobra.Command{
	Use:   "set-calendar <name>",
	Short: "Set the default Google Calendar and enable reminder sync",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path, err := config.GetConfigPath()
		if err != nil {
			fatal("could not find path to configuration file: %v", err)
		}
		saved, err := config.LoadFile(path)
		if err != nil {
			fatal("Error loading config: %v", err)
		}
		saved.Calendar = args[0]
		saved.CalendarSync = true
		if err := config.Save(saved); err != nil {
			fatal("Error saving config: %v", err)
		}
		fmt.Printf("Default calendar set to: %s\n", args[0])
	},
}

func calendarSyncEnabled() bool {
	return syncCalendar || cfg.CalendarSync
}

type reminderRemover interface {
	DeleteReminder(ctx context.Context, title string) error
}

var newReminderRemover = func(ctx context.Context) (reminderRemover, error) {
	client, err := newCalendarNotifier(ctx)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// removeCalendarReminder deletes the reminder event of a completed or deleted
// task when calendar sync is on. Failures are logged, not fatal.
func removeCalendarReminder(ctx context.Context, title string) {
	if !calendarSyncEnabled() {
		return
	}
	client, err := newReminderRemover(ctx)
	if err != nil {
		log.Printf("Warning: could not remove calendar reminder: %v", err)
		return
	}
	if err := client.DeleteReminder(ctx, title); err != nil {
		log.Printf("Warning: could not remove calendar reminder for %q: %v", title, err)
	}
}
