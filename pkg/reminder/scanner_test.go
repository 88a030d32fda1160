package reminder

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harrisonrobin/taskbook/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	mu    sync.Mutex
	tasks []model.Task
	reads atomic.Int32
}

func (s *staticSource) Tasks() []model.Task {
	s.reads.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Task(nil), s.tasks...)
}

func (s *staticSource) set(tasks ...model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = tasks
}

type panicSource struct{}

func (panicSource) Tasks() []model.Task { panic("collection unavailable") }

type recordingNotifier struct {
	mu    sync.Mutex
	calls [][]model.Task
	err   error
}

func (n *recordingNotifier) Notify(_ context.Context, due []model.Task) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, due)
	return n.err
}

func task(title string, deadline time.Time, completed bool) model.Task {
	return model.Task{Title: title, Priority: model.Medium, Deadline: deadline, Completed: completed}
}

func TestDueSoonBoundaries(t *testing.T) {
	deadline := time.Date(2030, 6, 15, 0, 0, 0, 0, time.Local)
	due := task("due", deadline, false)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"23h59m ahead", deadline.Add(-23*time.Hour - 59*time.Minute), true},
		{"one hour ahead", deadline.Add(-time.Hour), true},
		{"exactly 24h ahead", deadline.Add(-24 * time.Hour), false},
		{"more than 24h ahead", deadline.Add(-25 * time.Hour), false},
		{"exactly now", deadline, false},
		{"already passed", deadline.Add(time.Minute), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DueSoon([]model.Task{due}, tt.now)
			assert.Equal(t, tt.want, len(got) == 1)
		})
	}
}

func TestDueSoonSkipsCompleted(t *testing.T) {
	deadline := time.Date(2030, 6, 15, 0, 0, 0, 0, time.Local)
	now := deadline.Add(-time.Hour)

	got := DueSoon([]model.Task{
		task("done", deadline, true),
		task("open", deadline, false),
		task("later", deadline.Add(48*time.Hour), false),
	}, now)

	require.Len(t, got, 1)
	assert.Equal(t, "open", got[0].Title)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Task 'Pay rent' has a deadline within 24 hours!", Message(model.Task{Title: "Pay rent"}))
}

func TestScanReplacesSnapshot(t *testing.T) {
	deadline := time.Date(2030, 6, 15, 0, 0, 0, 0, time.Local)
	src := &staticSource{}
	src.set(task("a", deadline, false), task("b", deadline, false))

	s := New(src, WithClock(func() time.Time { return deadline.Add(-2 * time.Hour) }))
	assert.Empty(t, s.Snapshot())

	s.Scan(context.Background())
	assert.Equal(t, []string{
		"Task 'a' has a deadline within 24 hours!",
		"Task 'b' has a deadline within 24 hours!",
	}, s.Snapshot())

	src.set(task("b", deadline, true))
	s.Scan(context.Background())
	assert.Empty(t, s.Snapshot())
}

func TestSnapshotIsACopy(t *testing.T) {
	deadline := time.Date(2030, 6, 15, 0, 0, 0, 0, time.Local)
	src := &staticSource{}
	src.set(task("a", deadline, false))
	s := New(src, WithClock(func() time.Time { return deadline.Add(-time.Hour) }))
	s.Scan(context.Background())

	snap := s.Snapshot()
	snap[0] = "mutated"
	assert.Equal(t, "Task 'a' has a deadline within 24 hours!", s.Snapshot()[0])
}

func TestScanSkipsCycleWhenSourceFails(t *testing.T) {
	s := New(panicSource{})
	assert.NotPanics(t, func() { s.Scan(context.Background()) })
	assert.Empty(t, s.Snapshot())
}

func TestScanNotifiesDueTasks(t *testing.T) {
	deadline := time.Date(2030, 6, 15, 0, 0, 0, 0, time.Local)
	src := &staticSource{}
	src.set(task("a", deadline, false), task("b", deadline.Add(72*time.Hour), false))
	n := &recordingNotifier{err: errors.New("calendar offline")}

	s := New(src, WithNotifier(n), WithClock(func() time.Time { return deadline.Add(-time.Hour) }))
	s.Scan(context.Background())

	require.Len(t, n.calls, 1)
	require.Len(t, n.calls[0], 1)
	assert.Equal(t, "a", n.calls[0][0].Title)
	// Notifier failure does not affect the published snapshot.
	assert.Len(t, s.Snapshot(), 1)

	src.set()
	s.Scan(context.Background())
	assert.Len(t, n.calls, 1, "no notification when nothing is due")
}

func TestStartAndStop(t *testing.T) {
	deadline := time.Now().Add(time.Hour)
	src := &staticSource{}
	src.set(task("soon", deadline, false))

	s := New(src, WithInterval(5*time.Millisecond))
	s.Start(context.Background())

	assert.Eventually(t, func() bool { return src.reads.Load() >= 3 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"Task 'soon' has a deadline within 24 hours!"}, s.Snapshot())

	s.Stop()
	after := src.reads.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, src.reads.Load(), "no scans after Stop returns")

	// Repeated Stop is harmless.
	s.Stop()
}

func TestStopWithoutStart(t *testing.T) {
	s := New(&staticSource{})
	done := make(chan struct{})
	go func() {
		s.Stop()
		s.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a scanner that was never started")
	}
}

func TestContextCancelEndsLoop(t *testing.T) {
	src := &staticSource{}
	ctx, cancel := context.WithCancel(context.Background())
	s := New(src, WithInterval(time.Hour))
	s.Start(ctx)

	assert.Eventually(t, func() bool { return src.reads.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	s.Stop()
}

// overlapNotifier records the largest number of Notify calls seen at once.
type overlapNotifier struct {
	active  atomic.Int32
	maxSeen atomic.Int32
	calls   atomic.Int32
}

func (n *overlapNotifier) Notify(context.Context, []model.Task) error {
	cur := n.active.Add(1)
	defer n.active.Add(-1)
	for {
		seen := n.maxSeen.Load()
		if cur <= seen || n.maxSeen.CompareAndSwap(seen, cur) {
			break
		}
	}
	n.calls.Add(1)
	time.Sleep(2 * time.Millisecond)
	return nil
}

func TestConcurrentScansRunOneAtATime(t *testing.T) {
	deadline := time.Date(2030, 6, 15, 0, 0, 0, 0, time.Local)
	now := deadline.Add(-time.Hour)
	src := &staticSource{}
	src.set(task("soon", deadline, false))
	n := &overlapNotifier{}
	s := New(src, WithClock(func() time.Time { return now }), WithNotifier(n))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Scan(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(8), n.calls.Load())
	assert.Equal(t, int32(1), n.maxSeen.Load())
}
