package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jasonlinpng/ai-radar/app/database"
)

type CleanupTask struct {
	Task
	itemRepo      database.ItemRepository
	retentionDays int
}

func NewCleanupTask(itemRepo database.ItemRepository, retentionDays int) *CleanupTask {
	return &CleanupTask{
		Task:          NewTask(TaskTypeCleanup),
		itemRepo:      itemRepo,
		retentionDays: retentionDays,
	}
}

func (t *CleanupTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	deleted, err := t.itemRepo.CleanupOldItems(t.retentionDays, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to clean up old items: %w", err)
	}

	slog.Info("Task completed",
		"type", "Cleanup",
		"duration", t.GetDuration(),
		"deleted", deleted,
		"retention_days", t.retentionDays)

	return nil
}
