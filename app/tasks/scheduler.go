package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jasonlinpng/ai-radar/app/cfg"
	"github.com/jasonlinpng/ai-radar/app/database"
	"github.com/jasonlinpng/ai-radar/app/digest"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler runs a worker pool over a task queue and enqueues the periodic
// ingest, digest and cleanup jobs when they come due.
type Scheduler struct {
	itemRepo database.ItemRepository
	runner   *IngestRunner
	mailer   *digest.Mailer

	recipient     string
	baseURL       string
	retentionDays int

	ingestInterval  time.Duration
	digestInterval  time.Duration
	cleanupInterval time.Duration
	workerCount     int

	nextIngest  time.Time
	nextDigest  time.Time
	nextCleanup time.Time

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface
}

func NewScheduler(itemRepo database.ItemRepository, runner *IngestRunner,
	mailer *digest.Mailer) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	appCfg := cfg.Get()

	return &Scheduler{
		itemRepo:        itemRepo,
		runner:          runner,
		mailer:          mailer,
		recipient:       appCfg.DigestRecipient,
		baseURL:         appCfg.BaseUrl,
		retentionDays:   appCfg.RetentionDays,
		ingestInterval:  time.Duration(appCfg.IngestInterval) * time.Minute,
		digestInterval:  time.Duration(appCfg.DigestInterval) * time.Minute,
		cleanupInterval: time.Duration(appCfg.CleanupInterval) * time.Minute,
		workerCount:     appCfg.WorkerCount,
		ctx:             ctx,
		cancel:          cancel,
		taskQueue:       make(chan TaskInterface, 50),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueDueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// enqueueStartupTasks kicks off an immediate ingestion pass and schedules
// the periodic jobs relative to startup.
func (s *Scheduler) enqueueStartupTasks() {
	now := time.Now().UTC()
	s.nextIngest = now.Add(s.ingestInterval)
	s.nextDigest = now.Add(s.digestInterval)
	s.nextCleanup = now.Add(s.cleanupInterval)

	if err := s.EnqueueTask(NewIngestTask(s.runner)); err != nil {
		slog.Warn("Failed to enqueue startup ingest task", "error", err)
	}
}

func (s *Scheduler) enqueueDueTasks() {
	now := time.Now().UTC()

	if !now.Before(s.nextIngest) {
		s.nextIngest = now.Add(s.ingestInterval)
		if err := s.EnqueueTask(NewIngestTask(s.runner)); err != nil {
			slog.Warn("Failed to enqueue ingest task", "error", err)
		}
	}

	if !now.Before(s.nextDigest) {
		s.nextDigest = now.Add(s.digestInterval)
		if err := s.EnqueueTask(NewDigestTask(s.itemRepo, s.mailer, s.recipient, s.baseURL)); err != nil {
			slog.Warn("Failed to enqueue digest task", "error", err)
		}
	}

	if !now.Before(s.nextCleanup) {
		s.nextCleanup = now.Add(s.cleanupInterval)
		if err := s.EnqueueTask(NewCleanupTask(s.itemRepo, s.retentionDays)); err != nil {
			slog.Warn("Failed to enqueue cleanup task", "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 15*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
