package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// JobFunc is one run of a periodic job. The context is cancelled when
// the job is replaced or the scheduler stops.
type JobFunc func(ctx context.Context) error

// Scheduler runs named jobs on fixed intervals, each in its own goroutine.
type Scheduler struct {
	jobs   map[string]*job
	mu     sync.Mutex
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	logger zerolog.Logger
}

type job struct {
	name   string
	run    JobFunc
	ticker *time.Ticker
	cancel context.CancelFunc
}

func (j *job) stop() {
	j.ticker.Stop()
	j.cancel()
}

func NewScheduler(logger zerolog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make(map[string]*job),
		ctx:    ctx,
		cancel: cancel,
		logger: logger.With().Str("component", "scheduler").Logger(),
	}
}

// AddJob starts running fn every interval, beginning immediately. A job
// already registered under name is replaced. Non-positive intervals are
// ignored.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn JobFunc) {
	if interval <= 0 {
		s.logger.Info().Str("job", name).Msg("job disabled")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return
	}

	if existing, ok := s.jobs[name]; ok {
		existing.stop()
	}

	jobCtx, jobCancel := context.WithCancel(s.ctx)

	j := &job{
		name:   name,
		run:    fn,
		ticker: time.NewTicker(interval),
		cancel: jobCancel,
	}

	s.jobs[name] = j

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.execute(jobCtx, j)
		s.runJob(jobCtx, j)
	}()

	s.logger.Info().
		Str("job", name).
		Dur("interval", interval).
		Msg("added job")
}

// Stop cancels every job and waits for running executions to return.
func (s *Scheduler) Stop() {
	s.logger.Info().Msg("stopping scheduler")
	s.cancel()

	s.mu.Lock()
	for _, j := range s.jobs {
		j.stop()
	}
	s.jobs = make(map[string]*job)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info().Msg("scheduler stopped")
}

func (s *Scheduler) runJob(ctx context.Context, j *job) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-j.ticker.C:
			s.execute(ctx, j)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, j *job) {
	if ctx.Err() != nil {
		return
	}

	start := time.Now()

	if err := j.run(ctx); err != nil {
		s.logger.Error().Err(err).Str("job", j.name).Msg("job failed")
		return
	}

	s.logger.Debug().
		Str("job", j.name).
		Dur("took", time.Since(start)).
		Msg("job finished")
}
