package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rosoporto/weather-bot/internal/domain"
)

type recordRunner struct {
	mu    sync.Mutex
	calls []int64
	hook  func(chatID int64)
}

func (r *recordRunner) DeliverScheduled(_ context.Context, chatID int64) {
	r.mu.Lock()
	r.calls = append(r.calls, chatID)
	hook := r.hook
	r.mu.Unlock()
	if hook != nil {
		hook(chatID)
	}
}

func (r *recordRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func at(h, m int) time.Time {
	return time.Date(2025, time.May, 5, h, m, 0, 0, time.UTC)
}

func newTestScheduler(runner Runner, now time.Time) *Scheduler {
	return New(zap.NewNop(), runner,
		WithLocation(time.UTC),
		WithClock(func() time.Time { return now }),
	)
}

func TestReschedule_OnlyLatestJobFires(t *testing.T) {
	rr := &recordRunner{}
	s := newTestScheduler(rr, at(7, 0))
	ctx := context.Background()

	first := s.Schedule(42, domain.Clock{Hour: 8, Minute: 0})
	second := s.Schedule(42, domain.Clock{Hour: 8, Minute: 30})
	if first.ID == second.ID {
		t.Fatalf("rescheduling must issue a new job handle")
	}
	if s.Len() != 1 {
		t.Fatalf("want exactly one job, got %d", s.Len())
	}

	if n := s.RunPending(ctx, at(8, 0)); n != 0 {
		t.Fatalf("cancelled 08:00 job fired (%d runs)", n)
	}
	if n := s.RunPending(ctx, at(8, 30)); n != 1 {
		t.Fatalf("want one run at 08:30, got %d", n)
	}
	if rr.count() != 1 || rr.calls[0] != 42 {
		t.Fatalf("unexpected runner calls: %v", rr.calls)
	}
}

func TestRunPending_AdvancesToNextDay(t *testing.T) {
	rr := &recordRunner{}
	s := newTestScheduler(rr, at(7, 0))
	ctx := context.Background()

	s.Schedule(1, domain.Clock{Hour: 8, Minute: 30})
	s.RunPending(ctx, at(8, 30).Add(400*time.Millisecond))
	if n := s.RunPending(ctx, at(8, 31)); n != 0 {
		t.Fatalf("job fired twice on the same day")
	}

	job, ok := s.Job(1)
	if !ok {
		t.Fatalf("job must survive firing")
	}
	want := time.Date(2025, time.May, 6, 8, 30, 0, 0, time.UTC)
	if !job.NextRun.Equal(want) {
		t.Fatalf("want next run %v, got %v", want, job.NextRun)
	}
	if n := s.RunPending(ctx, want); n != 1 {
		t.Fatalf("want a run on the next day, got %d", n)
	}
}

func TestSchedule_PastTimeStartsTomorrow(t *testing.T) {
	s := newTestScheduler(&recordRunner{}, at(9, 0))
	job := s.Schedule(1, domain.Clock{Hour: 8, Minute: 30})
	want := time.Date(2025, time.May, 6, 8, 30, 0, 0, time.UTC)
	if !job.NextRun.Equal(want) {
		t.Fatalf("want %v, got %v", want, job.NextRun)
	}
}

func TestCancelJob(t *testing.T) {
	rr := &recordRunner{}
	s := newTestScheduler(rr, at(7, 0))
	old := s.Schedule(1, domain.Clock{Hour: 8, Minute: 0})
	cur := s.Schedule(1, domain.Clock{Hour: 9, Minute: 0})

	if s.CancelJob(1, old.ID) {
		t.Fatalf("stale id must not cancel the current job")
	}
	if _, ok := s.Job(1); !ok {
		t.Fatalf("current job was removed")
	}
	if !s.CancelJob(1, cur.ID) {
		t.Fatalf("expected cancel to report an existing job")
	}
	if s.CancelJob(1, cur.ID) {
		t.Fatalf("second cancel must report false")
	}
	if n := s.RunPending(context.Background(), at(9, 0)); n != 0 || rr.count() != 0 {
		t.Fatalf("cancelled job fired")
	}
}

func TestRunPending_SkipsJobCancelledByEarlierCallback(t *testing.T) {
	rr := &recordRunner{}
	s := newTestScheduler(rr, at(7, 0))
	j1 := s.Schedule(1, domain.Clock{Hour: 8, Minute: 0})
	j2 := s.Schedule(2, domain.Clock{Hour: 8, Minute: 0})
	rr.hook = func(int64) {
		// Whichever chat runs first removes both jobs.
		s.CancelJob(1, j1.ID)
		s.CancelJob(2, j2.ID)
	}

	if n := s.RunPending(context.Background(), at(8, 0)); n != 1 {
		t.Fatalf("want exactly one run, got %d", n)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	rr := &recordRunner{}
	now := at(8, 0)
	s := New(zap.NewNop(), rr,
		WithLocation(time.UTC),
		WithInterval(5*time.Millisecond),
		WithClock(func() time.Time { return now }),
	)
	// Schedule while the clock reads 07:59 so the job is due at 08:00.
	s.now = func() time.Time { return at(7, 59) }
	s.Schedule(5, domain.Clock{Hour: 8, Minute: 0})
	s.now = func() time.Time { return now }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for rr.count() == 0 {
		select {
		case <-deadline:
			t.Fatalf("job never fired from the loop")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
	if rr.count() != 1 {
		t.Fatalf("want a single firing, got %d", rr.count())
	}
}
