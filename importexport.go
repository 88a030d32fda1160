package main

import (
	"fmt"
	"log"
	"os"

	"github.com/harrisonrobin/taskbook/pkg/model"
	"github.com/harrisonrobin/taskbook/pkg/orgmode"
	"github.com/harrisonrobin/taskbook/pkg/store"
	"github.com/harrisonrobin/taskbook/pkg/taskwarrior"
	"github.com/spf13/cobra"
)

var (
	exportCategory string
	fromStdin      bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import tasks from other tools",
}

var importOrgCmd = &cobra.Command{
	Use:   "org <file>...",
	Short: "Import TODO headings with a DEADLINE from Org files",
	Args:  cobra.MinimumNArgs(1),
	Run:   importOrg,
}

var importTaskwarriorCmd = &cobra.Command{
	Use:   "taskwarrior [filter]...",
	Short: "Import tasks with a due date from taskwarrior",
	Long: `Runs "task <filter> export" and imports every task that has a due date.
With --stdin the JSON export is read from standard input instead.`,
	Run: importTaskwarrior,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all tasks to stdout as Org headings",
	Args:  cobra.NoArgs,
	Run:   exportOrg,
}

func init() {
	importTaskwarriorCmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read taskwarrior JSON from stdin")
	importCmd.AddCommand(importOrgCmd, importTaskwarriorCmd)
	exportCmd.Flags().StringVarP(&exportCategory, "category", "c", "", "Only export this category")
}

func addAll(s *store.Store, tasks []model.Task) error {
	for _, t := range tasks {
		if err := s.Add(t); err != nil {
			return fmt.Errorf("Failed to save task %q: %w", t.Title, err)
		}
	}
	fmt.Printf("✓ Imported %d task(s)\n", len(tasks))
	return nil
}

func importOrg(cmd *cobra.Command, args []string) {
	tasks, err := orgmode.ParseFiles(args)
	if err != nil {
		fatal("Error parsing Org files: %v", err)
	}
	withStore(cmd.Context(), false, func(s *store.Store) error {
		return addAll(s, tasks)
	})
}

func importTaskwarrior(cmd *cobra.Command, args []string) {
	client := taskwarrior.NewClient()

	var twTasks []taskwarrior.Task
	var err error
	if fromStdin {
		twTasks, err = client.ParseTasks(os.Stdin)
	} else {
		twTasks, err = client.GetTasks(cmd.Context(), args)
	}
	if err != nil {
		fatal("Error reading taskwarrior tasks: %v", err)
	}

	tasks, skipped := taskwarrior.Convert(twTasks)
	for _, err := range skipped {
		log.Printf("Skipping: %v", err)
	}
	withStore(cmd.Context(), false, func(s *store.Store) error {
		return addAll(s, tasks)
	})
}

func exportOrg(cmd *cobra.Command, args []string) {
	s, err := openStore(cmd.Context(), false)
	if err != nil {
		fatal("%v", err)
	}
	tasks := s.Tasks()
	s.Close()

	if exportCategory != "" {
		tasks = orgmode.FilterTasks(tasks, exportCategory)
	}
	if err := orgmode.Write(os.Stdout, tasks); err != nil {
		fatal("Error writing Org output: %v", err)
	}
}
