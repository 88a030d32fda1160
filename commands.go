package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/harrisonrobin/taskbook/pkg/model"
	"github.com/harrisonrobin/taskbook/pkg/store"
	"github.com/spf13/cobra"
)

var (
	addDescription string
	addCategory    string
	addPriority    int
	addDeadline    string
	addAssignee    string

	listCategory string
	listPriority int

	syncCalendar bool
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a new task",
	Args:  cobra.ExactArgs(1),
	Run:   addTask,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, optionally filtered by category or priority",
	Args:  cobra.NoArgs,
	Run:   listTasks,
}

var completeCmd = &cobra.Command{
	Use:   "complete <title>",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	Run:   completeTask,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <title>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	Run:   deleteTask,
}

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Show tasks due within the next 24 hours",
	Args:  cobra.NoArgs,
	Run:   showReminders,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep scanning for due-soon tasks until interrupted",
	Args:  cobra.NoArgs,
	Run:   watchReminders,
}

func init() {
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "Task description")
	addCmd.Flags().StringVarP(&addCategory, "category", "c", "", "Category label")
	addCmd.Flags().IntVarP(&addPriority, "priority", "p", int(model.Medium), "Priority (1-High, 2-Medium, 3-Low)")
	addCmd.Flags().StringVarP(&addDeadline, "deadline", "D", "", "Deadline (yyyy-mm-dd, required)")
	addCmd.Flags().StringVarP(&addAssignee, "assign", "a", "", "Assigned user")
	if err := addCmd.MarkFlagRequired("deadline"); err != nil {
		panic(fmt.Sprintf("Failed to mark deadline flag as required: %v", err))
	}

	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Only tasks in this category")
	listCmd.Flags().IntVarP(&listPriority, "priority", "p", 0, "Only tasks with this priority (1-3)")

	remindersCmd.Flags().BoolVar(&syncCalendar, "sync", false, "Also push due-soon tasks to Google Calendar")
	watchCmd.Flags().BoolVar(&syncCalendar, "sync", false, "Also push due-soon tasks to Google Calendar")
	completeCmd.Flags().BoolVar(&syncCalendar, "sync", false, "Also remove the task's Google Calendar reminder")
	deleteCmd.Flags().BoolVar(&syncCalendar, "sync", false, "Also remove the task's Google Calendar reminder")
}

// withStore opens the store, shows the current reminders and runs fn. The
// store is closed before an error from fn ends the process.
func withStore(ctx context.Context, sync bool, fn func(*store.Store) error) {
	if err := runWithStore(ctx, sync, fn); err != nil {
		fatal("%v", err)
	}
}

func runWithStore(ctx context.Context, sync bool, fn func(*store.Store) error) error {
	s, err := openStore(ctx, sync)
	if err != nil {
		return err
	}
	defer s.Close()

	s.Rescan(ctx)
	printReminders(s)
	return fn(s)
}

func addTask(cmd *cobra.Command, args []string) {
	task, err := model.NewTask(args[0], addDescription, addCategory, model.Priority(addPriority), addDeadline, addAssignee)
	var dateErr *model.DateFormatError
	if errors.As(err, &dateErr) {
		fatal("Invalid date format %q. Please use yyyy-mm-dd.", dateErr.Value)
	} else if err != nil {
		fatal("%v", err)
	}

	withStore(cmd.Context(), false, func(s *store.Store) error {
		if err := s.Add(task); err != nil {
			return fmt.Errorf("Failed to save task: %w", err)
		}
		fmt.Printf("✓ Task added: %s\n", task.Title)
		return nil
	})
}

func listTasks(cmd *cobra.Command, args []string) {
	withStore(cmd.Context(), false, func(s *store.Store) error {
		var rows [][]string
		switch {
		case listCategory != "":
			rows = s.ListByCategory(listCategory)
			if len(rows) == 0 {
				fmt.Printf("No tasks found in category: %s\n", listCategory)
				return nil
			}
			fmt.Printf("Tasks in category: %s\n", listCategory)
		case cmd.Flags().Changed("priority"):
			p := model.Priority(listPriority)
			rows = s.ListByPriority(p)
			if len(rows) == 0 {
				fmt.Printf("No tasks found with priority: %d\n", listPriority)
				return nil
			}
			fmt.Printf("Tasks with priority: %s\n", p)
		default:
			rows = s.List()
			if len(rows) == 0 {
				fmt.Println("No tasks available.")
				return nil
			}
		}
		printTable(rows)
		return nil
	})
}

func completeTask(cmd *cobra.Command, args []string) {
	withStore(cmd.Context(), false, func(s *store.Store) error {
		err := s.MarkCompleted(args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("Task not found: %s", args[0])
		} else if err != nil {
			return fmt.Errorf("Failed to complete task: %w", err)
		}
		fmt.Printf("✓ Task marked as completed: %s\n", args[0])
		removeCalendarReminder(cmd.Context(), args[0])
		return nil
	})
}

func deleteTask(cmd *cobra.Command, args []string) {
	withStore(cmd.Context(), false, func(s *store.Store) error {
		err := s.Delete(args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("Task not found: %s", args[0])
		} else if err != nil {
			return fmt.Errorf("Failed to delete task: %w", err)
		}
		fmt.Printf("✓ Task deleted: %s\n", args[0])
		removeCalendarReminder(cmd.Context(), args[0])
		return nil
	})
}

func showReminders(cmd *cobra.Command, args []string) {
	withStore(cmd.Context(), calendarSyncEnabled(), func(s *store.Store) error {
		if len(s.Reminders()) == 0 {
			fmt.Println("No deadlines within the next 24 hours.")
		}
		return nil
	})
}

// watchReminders leaves the background scanner running and reprints the
// snapshot each interval, like the top of an interactive screen.
func watchReminders(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := openStore(ctx, calendarSyncEnabled())
	if err != nil {
		fatal("%v", err)
	}
	defer s.Close()

	ticker := time.NewTicker(cfg.Interval())
	defer ticker.Stop()

	s.Rescan(ctx)
	for {
		fmt.Printf("[%s]\n", time.Now().Format("2006-01-02 15:04"))
		if len(s.Reminders()) == 0 {
			fmt.Println("No deadlines within the next 24 hours.")
		} else {
			printReminders(s)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
