package reminder

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/harrisonrobin/taskbook/pkg/model"
)

const (
	// DefaultInterval is the pause between two scan cycles.
	DefaultInterval = 60 * time.Second

	// Window is how far ahead of now a deadline counts as due soon.
	Window = 24 * time.Hour
)

// Source supplies the tasks to scan. Implementations must return a copy.
type Source interface {
	Tasks() []model.Task
}

// Notifier receives the due-soon tasks found by each cycle.
type Notifier interface {
	Notify(ctx context.Context, due []model.Task) error
}

// DueSoon returns the incomplete tasks whose deadline lies strictly between
// now and now+Window, in input order.
func DueSoon(tasks []model.Task, now time.Time) []model.Task {
	limit := now.Add(Window)
	var due []model.Task
	for _, t := range tasks {
		if !t.Completed && t.Deadline.After(now) && t.Deadline.Before(limit) {
			due = append(due, t)
		}
	}
	return due
}

// Message formats the reminder line shown for a due-soon task.
func Message(t model.Task) string {
	return fmt.Sprintf("Task '%s' has a deadline within 24 hours!", t.Title)
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithInterval sets the pause between cycles. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(s *Scanner) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) {
		if now != nil {
			s.now = now
		}
	}
}

// WithNotifier passes each cycle's due tasks to n after the snapshot is published.
func WithNotifier(n Notifier) Option {
	return func(s *Scanner) { s.notifier = n }
}

// Scanner periodically rebuilds the reminder snapshot from a Source.
type Scanner struct {
	source   Source
	interval time.Duration
	now      func() time.Time
	notifier Notifier

	// scanMu orders whole cycles so publishes and notifications never overlap.
	scanMu   sync.Mutex
	snapshot atomic.Pointer[[]string]

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// New returns a stopped scanner over src with an empty snapshot.
func New(src Source, opts ...Option) *Scanner {
	s := &Scanner{
		source:   src,
		interval: DefaultInterval,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	empty := []string{}
	s.snapshot.Store(&empty)
	return s
}

// Scan runs a single cycle: rebuild the snapshot from scratch, publish it,
// then pass the due tasks to the notifier. It never returns an error; a
// failure to read the source skips the cycle and keeps the old snapshot.
// Concurrent calls run one after another.
func (s *Scanner) Scan(ctx context.Context) {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	now := s.now()

	tasks, ok := s.readSource()
	if !ok {
		return
	}

	due := DueSoon(tasks, now)
	messages := make([]string, 0, len(due))
	for _, t := range due {
		messages = append(messages, Message(t))
	}
	s.snapshot.Store(&messages)

	if s.notifier == nil || len(due) == 0 {
		return
	}
	if err := s.notifier.Notify(ctx, due); err != nil {
		log.Printf("Warning: reminder notification failed: %v", err)
	}
}

func (s *Scanner) readSource() (tasks []model.Task, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Warning: skipping reminder scan: %v", r)
			ok = false
		}
	}()
	return s.source.Tasks(), true
}

// Snapshot returns a copy of the most recently published reminders.
func (s *Scanner) Snapshot() []string {
	current := *s.snapshot.Load()
	out := make([]string, len(current))
	copy(out, current)
	return out
}

// Start launches the background loop. The first scan happens immediately.
// Calling Start more than once has no effect.
func (s *Scanner) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		go s.run(ctx)
	})
}

func (s *Scanner) run(ctx context.Context) {
	defer close(s.done)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		// select picks randomly among ready cases; stop wins over a due timer.
		select {
		case <-s.stop:
			return
		default:
		}

		s.Scan(ctx)
		timer.Reset(s.interval)
	}
}

// Stop signals the loop to exit and waits for it. A scan already in progress
// runs to completion first. Safe to call repeatedly, or without Start.
func (s *Scanner) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})

	started := true
	s.startOnce.Do(func() {
		started = false
		close(s.done)
	})
	if started {
		<-s.done
	}
}
