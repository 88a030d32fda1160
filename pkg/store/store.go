package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrisonrobin/taskbook/pkg/model"
	"github.com/harrisonrobin/taskbook/pkg/reminder"
)

// ErrNotFound is returned when no task has the requested title.
var ErrNotFound = errors.New("task not found")

// maxRecordSize caps one line of the task file.
const maxRecordSize = math.MaxInt32

type Option func(*options)

type options struct {
	scanner []reminder.Option
}

// WithScanInterval sets the pause between reminder scans.
func WithScanInterval(d time.Duration) Option {
	return func(o *options) { o.scanner = append(o.scanner, reminder.WithInterval(d)) }
}

// WithClock overrides the scanner's notion of now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.scanner = append(o.scanner, reminder.WithClock(now)) }
}

// WithNotifier forwards every cycle's due tasks to n.
func WithNotifier(n reminder.Notifier) Option {
	return func(o *options) { o.scanner = append(o.scanner, reminder.WithNotifier(n)) }
}

// Store keeps tasks in insertion order and mirrors them to a text file,
// one record per line. Every mutation rewrites the whole file.
type Store struct {
	Path string

	mu      sync.RWMutex
	tasks   []model.Task
	scanner *reminder.Scanner
}

// Open loads the backing file (a missing file yields an empty store) and
// starts the reminder scanner. A single malformed line fails the whole load.
func Open(path string, opts ...Option) (*Store, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store{Path: path}
	if _, err := os.Stat(path); err == nil {
		if err := s.load(); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat task file %s: %w", path, err)
	}

	s.scanner = reminder.New(s, o.scanner...)
	s.scanner.Start(context.Background())
	return s, nil
}

func (s *Store) load() error {
	f, err := os.Open(s.Path)
	if err != nil {
		return fmt.Errorf("failed to open task file: %w", err)
	}
	defer f.Close()

	var tasks []model.Task
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		task, err := model.UnmarshalRecord(strings.TrimRight(scanner.Text(), "\r"))
		if err != nil {
			return fmt.Errorf("%s line %d: %w", s.Path, lineNo, err)
		}
		tasks = append(tasks, task)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read task file: %w", err)
	}

	s.tasks = tasks
	return nil
}

// save rewrites the backing file from memory. Callers hold the write lock.
func (s *Store) save() error {
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create task directory: %w", err)
		}
	}

	f, err := os.Create(s.Path)
	if err != nil {
		return fmt.Errorf("failed to open task file for writing: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, t := range s.tasks {
		if _, err := w.WriteString(t.MarshalRecord() + "\n"); err != nil {
			return fmt.Errorf("failed to write task file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write task file: %w", err)
	}
	return f.Close()
}

// Add appends task and persists the collection.
func (s *Store) Add(task model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = append(s.tasks, task)
	return s.save()
}

// Tasks returns a copy of the collection in insertion order.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Task(nil), s.tasks...)
}

// List returns display rows for every task.
func (s *Store) List() [][]string {
	return s.rows(func(model.Task) bool { return true })
}

// ListByCategory matches the category case-insensitively.
func (s *Store) ListByCategory(category string) [][]string {
	return s.rows(func(t model.Task) bool { return strings.EqualFold(t.Category, category) })
}

// ListByPriority returns display rows for tasks with exactly priority p.
func (s *Store) ListByPriority(p model.Priority) [][]string {
	return s.rows(func(t model.Task) bool { return t.Priority == p })
}

func (s *Store) rows(keep func(model.Task) bool) [][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows [][]string
	for _, t := range s.tasks {
		if keep(t) {
			rows = append(rows, t.Row())
		}
	}
	return rows
}

// indexOf returns the first task whose title matches case-insensitively.
func (s *Store) indexOf(title string) int {
	for i, t := range s.tasks {
		if strings.EqualFold(t.Title, title) {
			return i
		}
	}
	return -1
}

// MarkCompleted completes the first task titled title and persists.
func (s *Store) MarkCompleted(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(title)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, title)
	}
	s.tasks[i].MarkCompleted()
	return s.save()
}

// Delete removes the first task titled title and persists.
func (s *Store) Delete(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(title)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, title)
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return s.save()
}

// Reminders returns the latest due-soon messages.
func (s *Store) Reminders() []string {
	return s.scanner.Snapshot()
}

// Rescan runs a reminder cycle immediately, outside the periodic schedule.
func (s *Store) Rescan(ctx context.Context) {
	s.scanner.Scan(ctx)
}

// Close stops the reminder scanner, letting an in-flight scan finish.
func (s *Store) Close() error {
	s.scanner.Stop()
	return nil
}
