package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jasonlinpng/ai-radar/app/radar"
	"github.com/jasonlinpng/ai-radar/app/watchlist"
)

// ErrIngestInProgress signals that an overlapping run was skipped.
var ErrIngestInProgress = errors.New("ingestion run already in progress")

// IngestRunner serializes ingestion runs: a manual trigger overlapping a
// scheduled run is skipped rather than run concurrently. One instance is
// shared by the scheduler and the HTTP API.
type IngestRunner struct {
	ingestor      *radar.Ingestor
	watchlistPath string
	mu            sync.Mutex
}

func NewIngestRunner(ingestor *radar.Ingestor, watchlistPath string) *IngestRunner {
	return &IngestRunner{
		ingestor:      ingestor,
		watchlistPath: watchlistPath,
	}
}

func (r *IngestRunner) Run(ctx context.Context) (*radar.Report, error) {
	if !r.mu.TryLock() {
		return nil, ErrIngestInProgress
	}
	defer r.mu.Unlock()

	entries, err := watchlist.Load(r.watchlistPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}

	report := r.ingestor.Run(ctx, entries)
	return &report, nil
}

type IngestTask struct {
	Task
	runner *IngestRunner
}

func NewIngestTask(runner *IngestRunner) *IngestTask {
	return &IngestTask{
		Task:   NewTask(TaskTypeIngest),
		runner: runner,
	}
}

func (t *IngestTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	report, err := t.runner.Run(ctx)
	if errors.Is(err, ErrIngestInProgress) {
		slog.Info("Skipping ingestion task, run already in progress", "id", t.ID)
		return nil
	}
	if err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", "Ingest",
		"duration", t.GetDuration(),
		"inserted", report.Inserted,
		"fetched", report.Fetched,
		"errors", len(report.Errors))

	return nil
}
