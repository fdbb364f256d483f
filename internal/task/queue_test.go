package task // nolint:testpackage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

const waitFor = 2 * time.Second

func expectRun(t *testing.T, ch <-chan int, what string) int {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(waitFor):
		t.Fatalf("timed out waiting for %s", what)
		return 0
	}
}

// startQueue runs q in the background, the returned channel is closed once
// Run returned.
func startQueue(t *testing.T, q *Queue) (context.CancelFunc, <-chan struct{}) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		if err := q.Run(ctx); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case <-stopped:
		case <-time.After(waitFor):
			t.Error("queue did not stop")
		}
	})

	return cancel, stopped
}

func TestQueueRunsAtStartAndOnEveryTick(t *testing.T) {
	clock := clockwork.NewFakeClock()
	q := New(clock, 1)

	ran := make(chan int, 10)
	var count int
	q.Every("sweep", 30*time.Second, func(context.Context) error {
		count++
		ran <- count
		return nil
	})

	startQueue(t, q)

	if n := expectRun(t, ran, "initial run"); n != 1 {
		t.Fatalf("expected first run, got run #%d", n)
	}

	for i := 2; i <= 4; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), waitFor)
		if err := clock.BlockUntilContext(ctx, 1); err != nil {
			cancel()
			t.Fatal(err)
		}
		cancel()

		clock.Advance(30 * time.Second)
		if n := expectRun(t, ran, "tick"); n != i {
			t.Fatalf("expected run #%d, got #%d", i, n)
		}
	}
}

func TestQueueRetriesFailedRunOnNextTick(t *testing.T) {
	clock := clockwork.NewFakeClock()
	q := New(clock, 2)

	ran := make(chan int, 10)
	var count int
	q.Every("flaky", time.Minute, func(context.Context) error {
		count++
		ran <- count
		if count == 1 {
			return errors.New("store unavailable")
		}
		return nil
	})

	startQueue(t, q)
	expectRun(t, ran, "failing run")

	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatal(err)
	}

	clock.Advance(time.Minute)
	if n := expectRun(t, ran, "retry"); n != 2 {
		t.Fatalf("expected the retry to be run #2, got #%d", n)
	}
}

func TestQueueSurvivesPanics(t *testing.T) {
	clock := clockwork.NewFakeClock()
	q := New(clock, 1)

	ran := make(chan int, 10)
	var count int
	q.Every("panicky", time.Minute, func(context.Context) error {
		count++
		ran <- count
		panic("boom")
	})

	startQueue(t, q)
	expectRun(t, ran, "panicking run")

	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatal(err)
	}

	clock.Advance(time.Minute)
	expectRun(t, ran, "run after panic")
}

func TestQueueCoalescesPendingJob(t *testing.T) {
	q := New(clockwork.NewFakeClock(), 1)
	q.Every("sweep", time.Minute, func(context.Context) error { return nil })
	q.work = make(chan *job, len(q.jobs))

	j := q.jobs[0]
	if !q.enqueue(j) {
		t.Fatal("expected first enqueue to succeed")
	}
	if q.enqueue(j) {
		t.Fatal("expected second enqueue to be coalesced")
	}
	if len(q.work) != 1 {
		t.Fatalf("expected one queued job, got %d", len(q.work))
	}

	// Once picked by a worker the job can be queued again.
	<-q.work
	j.pending.Store(false)
	if !q.enqueue(j) {
		t.Fatal("expected enqueue after dequeue to succeed")
	}
}

func TestQueueStopsOnCancel(t *testing.T) {
	q := New(clockwork.NewFakeClock(), 3)
	q.Every("noop", time.Second, func(context.Context) error { return nil })

	cancel, stopped := startQueue(t, q)
	cancel()

	select {
	case <-stopped:
	case <-time.After(waitFor):
		t.Fatal("queue did not stop after cancel")
	}
}

func TestQueueWithoutJobs(t *testing.T) {
	q := New(clockwork.NewFakeClock(), 1)
	if err := q.Run(context.Background()); err == nil {
		t.Fatal("expected an error when running an empty queue")
	}
}
