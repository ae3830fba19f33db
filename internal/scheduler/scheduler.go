package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rosoporto/weather-bot/internal/domain"
	"github.com/rosoporto/weather-bot/internal/metrics"
)

// Runner is what a job invokes when it is due.
// delivery.Service implements it.
type Runner interface {
	DeliverScheduled(ctx context.Context, chatID int64)
}

// Job is a daily callback bound to one chat.
type Job struct {
	ID      string
	ChatID  int64
	At      domain.Clock
	NextRun time.Time
}

// Scheduler keeps at most one daily job per chat and runs due jobs from a
// single polling loop.
type Scheduler struct {
	log      *zap.Logger
	runner   Runner
	interval time.Duration
	loc      *time.Location
	now      func() time.Time

	mu   sync.RWMutex
	jobs map[int64]*Job
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithInterval sets the polling period (default 1s).
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLocation sets the zone job times are interpreted in (default time.Local).
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// New creates a new Scheduler.
func New(log *zap.Logger, runner Runner, opts ...Option) *Scheduler {
	s := &Scheduler{
		log:      log,
		runner:   runner,
		interval: time.Second,
		loc:      time.Local,
		now:      time.Now,
		jobs:     make(map[int64]*Job),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Schedule installs a daily job for chatID at the given clock, cancelling the
// chat's previous job first. The returned Job is a copy.
func (s *Scheduler) Schedule(chatID int64, at domain.Clock) Job {
	now := s.now().In(s.loc)
	job := &Job{
		ID:      uuid.NewString(),
		ChatID:  chatID,
		At:      at,
		NextRun: domain.NextDaily(now, at),
	}

	s.mu.Lock()
	prev, replaced := s.jobs[chatID]
	s.jobs[chatID] = job
	n := len(s.jobs)
	s.mu.Unlock()

	metrics.SetScheduledJobs(n)
	fields := []zap.Field{
		zap.Int64("chatID", chatID),
		zap.String("job", job.ID),
		zap.String("at", at.String()),
		zap.Time("next", job.NextRun),
	}
	if replaced {
		fields = append(fields, zap.String("cancelled", prev.ID))
	}
	s.log.Info("job scheduled", fields...)
	return *job
}

// CancelJob removes the chat's job if it is still the job with the given ID.
// It reports whether a job was removed; a stale ID leaves a newer job alone.
func (s *Scheduler) CancelJob(chatID int64, id string) bool {
	s.mu.Lock()
	job, ok := s.jobs[chatID]
	ok = ok && job.ID == id
	if ok {
		delete(s.jobs, chatID)
	}
	n := len(s.jobs)
	s.mu.Unlock()

	if ok {
		metrics.SetScheduledJobs(n)
		s.log.Info("job cancelled", zap.Int64("chatID", chatID), zap.String("job", id))
	}
	return ok
}

// Job returns a copy of the chat's current job.
func (s *Scheduler) Job(chatID int64) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[chatID]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Len reports the number of registered jobs.
func (s *Scheduler) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Run starts the loop until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("scheduler started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.RunPending(ctx, s.now())
		}
	}
}

// RunPending runs every job due at now, synchronously, and advances each to
// its next daily occurrence. It returns the number of jobs run.
func (s *Scheduler) RunPending(ctx context.Context, now time.Time) int {
	now = now.In(s.loc)

	s.mu.Lock()
	var due []Job
	for _, job := range s.jobs {
		if job.NextRun.After(now) {
			continue
		}
		due = append(due, *job)
		job.NextRun = domain.NextDaily(now, job.At)
	}
	s.mu.Unlock()

	ran := 0
	for _, job := range due {
		// The chat may have been rescheduled or reset by a callback that ran
		// before this one.
		if cur, ok := s.Job(job.ChatID); !ok || cur.ID != job.ID {
			continue
		}
		s.log.Debug("job due", zap.Int64("chatID", job.ChatID), zap.String("job", job.ID))
		s.runner.DeliverScheduled(ctx, job.ChatID)
		ran++
	}
	return ran
}
