package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/harrisonrobin/taskbook/pkg/colors"
	"github.com/harrisonrobin/taskbook/pkg/config"
	"github.com/harrisonrobin/taskbook/pkg/google"
	"github.com/harrisonrobin/taskbook/pkg/index"
	"github.com/harrisonrobin/taskbook/pkg/model"
	"github.com/harrisonrobin/taskbook/pkg/store"
	"github.com/spf13/cobra"
)

var (
	dbPath       string
	calendarName string
	cfg          *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "taskbook",
	Short: "Personal task tracker with deadline reminders",
	Long: `taskbook records tasks with a category, priority, deadline and assignee,
keeps them in a plain-text file and reminds you of deadlines within 24 hours.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			log.Printf("Warning: could not load config, using defaults: %v", err)
			loaded = config.Default()
		}
		if dbPath != "" {
			loaded.Database = dbPath
		}
		if calendarName != "" {
			loaded.Calendar = calendarName
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Task file (overrides config and TASKBOOK_DATABASE)")
	rootCmd.PersistentFlags().StringVar(&calendarName, "calendar", "", "Google Calendar name for reminder sync (overrides config)")

	rootCmd.AddCommand(addCmd, listCmd, completeCmd, deleteCmd, remindersCmd, watchCmd)
	rootCmd.AddCommand(importCmd, exportCmd)
	rootCmd.AddCommand(authCmd, setCalendarCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// openStore opens the configured task file. With sync set, due-soon tasks are
// also pushed to Google Calendar.
func openStore(ctx context.Context, sync bool) (*store.Store, error) {
	opts := []store.Option{store.WithScanInterval(cfg.Interval())}
	if sync {
		notifier, err := newCalendarNotifier(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, store.WithNotifier(notifier))
	}

	s, err := store.Open(cfg.Database, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	return s, nil
}

func newCalendarNotifier(ctx context.Context) (*google.CalendarClient, error) {
	idx, err := index.NewEventIndex()
	if err != nil {
		log.Printf("Warning: failed to initialize event index: %v", err)
	}
	cc, err := colors.NewColorCache()
	if err != nil {
		log.Printf("Warning: failed to initialize color cache: %v", err)
	}
	client, err := google.NewClient(ctx, cfg.Calendar, idx, cc)
	if err != nil {
		return nil, fmt.Errorf("error creating Google Calendar client: %w", err)
	}
	return client, nil
}

// printReminders shows the current reminder snapshot, if any.
func printReminders(s *store.Store) {
	reminders := s.Reminders()
	if len(reminders) == 0 {
		return
	}
	fmt.Println("--- To-Do ---")
	fmt.Println(strings.Join(reminders, "\n"))
	fmt.Println()
}

func printTable(rows [][]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(model.Headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

func fatal(format string, args ...any) {
	log.Fatalf(format, args...)
}
