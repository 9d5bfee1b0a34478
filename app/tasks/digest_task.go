package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jasonlinpng/ai-radar/app/database"
	"github.com/jasonlinpng/ai-radar/app/digest"
	"github.com/jasonlinpng/ai-radar/app/radar"
)

type DigestTask struct {
	Task
	itemRepo  database.ItemRepository
	mailer    *digest.Mailer
	recipient string
	baseURL   string
}

func NewDigestTask(itemRepo database.ItemRepository, mailer *digest.Mailer,
	recipient, baseURL string) *DigestTask {
	return &DigestTask{
		Task:      NewTask(TaskTypeDigest),
		itemRepo:  itemRepo,
		mailer:    mailer,
		recipient: recipient,
		baseURL:   baseURL,
	}
}

func (t *DigestTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.mailer.Enabled() {
		slog.Debug("Digest skipped, SMTP not configured")
		return nil
	}

	since := radar.FormatTimestamp(time.Now().UTC().Add(-24 * time.Hour))
	items, err := t.itemRepo.GetRecentTopItems(since, digest.DefaultItemLimit)
	if err != nil {
		return fmt.Errorf("failed to fetch digest items: %w", err)
	}

	if len(items) == 0 {
		slog.Info("Digest skipped, no items in the last 24 hours")
		return nil
	}

	textBody := digest.RenderText(items, t.baseURL)
	htmlBody := digest.RenderHTML(items, t.baseURL)

	if err := t.mailer.Send(t.recipient, "AI Signal Radar Morning Digest", textBody, htmlBody); err != nil {
		return fmt.Errorf("failed to send digest: %w", err)
	}

	slog.Info("Task completed",
		"type", "Digest",
		"duration", t.GetDuration(),
		"items", len(items),
		"recipient", t.recipient)

	return nil
}
