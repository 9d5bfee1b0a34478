package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type countingTask struct {
	Task
	mu       sync.Mutex
	runs     int
	failures int
	done     chan struct{}
}

func newCountingTask(failures int) *countingTask {
	return &countingTask{
		Task:     NewTask(TaskTypeIngest),
		failures: failures,
		done:     make(chan struct{}),
	}
}

func (t *countingTask) Execute(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.runs++
	if t.runs <= t.failures {
		return errors.New("transient failure")
	}

	select {
	case <-t.done:
	default:
		close(t.done)
	}
	return nil
}

func (t *countingTask) runCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runs
}

func newTestScheduler(workers int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		workerCount: workers,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 10),
	}
}

func startWorkers(s *Scheduler) {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

func TestScheduler_ExecutesEnqueuedTask(t *testing.T) {
	s := newTestScheduler(1)
	startWorkers(s)
	defer s.Stop()

	task := newCountingTask(0)
	if err := s.EnqueueTask(task); err != nil {
		t.Fatalf("Failed to enqueue task: %v", err)
	}

	select {
	case <-task.done:
	case <-time.After(2 * time.Second):
		t.Fatal("Task was not executed")
	}

	if task.runCount() != 1 {
		t.Errorf("Expected 1 run, got %d", task.runCount())
	}
}

func TestScheduler_RetriesFailedTask(t *testing.T) {
	s := newTestScheduler(1)
	startWorkers(s)
	defer s.Stop()

	task := newCountingTask(2)
	if err := s.EnqueueTask(task); err != nil {
		t.Fatalf("Failed to enqueue task: %v", err)
	}

	select {
	case <-task.done:
	case <-time.After(10 * time.Second):
		t.Fatal("Task did not succeed after retries")
	}

	if task.runCount() != 3 {
		t.Errorf("Expected 3 runs (2 failures + 1 success), got %d", task.runCount())
	}
}

func TestScheduler_EnqueueFailsWhenQueueFull(t *testing.T) {
	s := newTestScheduler(0)
	s.taskQueue = make(chan TaskInterface, 1)
	defer s.cancel()

	if err := s.EnqueueTask(newCountingTask(0)); err != nil {
		t.Fatalf("Expected first enqueue to succeed: %v", err)
	}
	if err := s.EnqueueTask(newCountingTask(0)); err == nil {
		t.Error("Expected enqueue to fail with a full queue and no workers")
	}
}
