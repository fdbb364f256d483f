// Package task runs named periodic jobs on a small worker pool.
//
// Each job is enqueued once when the queue starts and then on every tick of
// its interval. A job that is already waiting in the queue is not enqueued a
// second time: ticks coalesce instead of piling up behind a slow run. A run
// that fails is simply run again on the next tick, jobs must therefore be
// safe to run more than once.
package task

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Func is the unit of work of a job.
type Func func(ctx context.Context) error

type job struct {
	name     string
	interval time.Duration
	fn       Func

	pending atomic.Bool // waiting in the queue, not yet picked by a worker
	running sync.Mutex  // held during a run, a job never runs concurrently with itself
	runs    atomic.Int64
}

type Queue struct {
	clock   clockwork.Clock
	workers int
	jobs    []*job
	work    chan *job
}

// New creates an empty queue, use clockwork.NewRealClock() outside of tests.
func New(clock clockwork.Clock, workers int) *Queue {
	if workers < 1 {
		workers = 1
	}

	return &Queue{
		clock:   clock,
		workers: workers,
	}
}

// Every registers fn to be run every interval, it must be called before Run.
func (q *Queue) Every(name string, interval time.Duration, fn Func) {
	if interval <= 0 {
		panic(fmt.Sprintf("task %s: invalid interval %s", name, interval))
	}

	q.jobs = append(q.jobs, &job{
		name:     name,
		interval: interval,
		fn:       fn,
	})
}

// Runs returns how many times the named job ran, failed runs included.
func (q *Queue) Runs(name string) int64 {
	for _, j := range q.jobs {
		if j.name == name {
			return j.runs.Load()
		}
	}

	return 0
}

// Run blocks until ctx is done, running the registered jobs.
func (q *Queue) Run(ctx context.Context) error {
	if len(q.jobs) == 0 {
		return fmt.Errorf("no task registered")
	}

	q.work = make(chan *job, len(q.jobs))
	log.Info().Int("jobs", len(q.jobs)).Int("workers", q.workers).Msg("starting task queue")

	var wg sync.WaitGroup
	for i := 0; i < q.workers; i++ {
		wg.Add(1)
		go q.worker(ctx, &wg)
	}

	for _, j := range q.jobs {
		q.enqueue(j)

		wg.Add(1)
		go q.tick(ctx, &wg, j)
	}

	<-ctx.Done()
	wg.Wait()
	log.Info().Msg("task queue stopped")

	return nil
}

func (q *Queue) tick(ctx context.Context, wg *sync.WaitGroup, j *job) {
	defer wg.Done()

	ticker := q.clock.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			q.enqueue(j)
		}
	}
}

// enqueue returns false if the job was already pending.
func (q *Queue) enqueue(j *job) bool {
	if !j.pending.CompareAndSwap(false, true) {
		log.Debug().Str("task", j.name).Msg("task already pending, tick coalesced")
		return false
	}

	select {
	case q.work <- j:
		return true
	default: // unreachable as long as the buffer holds one slot per job
		j.pending.Store(false)
		log.Warn().Str("task", j.name).Msg("task queue full, tick dropped")
		return false
	}
}

func (q *Queue) worker(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case j := <-q.work:
			j.pending.Store(false)
			q.execute(ctx, j)
		}
	}
}

func (q *Queue) execute(ctx context.Context, j *job) {
	j.running.Lock()
	defer j.running.Unlock()

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("task", j.name).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("task panicked")
		}
	}()

	start := q.clock.Now()
	j.runs.Add(1)
	if err := j.fn(ctx); err != nil {
		log.Error().Err(err).Str("task", j.name).Msg("task failed, will retry on next tick")
		return
	}

	log.Debug().Str("task", j.name).Dur("took", q.clock.Since(start)).Msg("task done")
}
