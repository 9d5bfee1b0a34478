package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jasonlinpng/ai-radar/app/cfg"
	"github.com/jasonlinpng/ai-radar/app/database"
	"github.com/jasonlinpng/ai-radar/app/digest"
	"github.com/jasonlinpng/ai-radar/app/radar"
	"github.com/jasonlinpng/ai-radar/app/tasks"
)

const defaultListLimit = 50
const maxListLimit = 200

func NewHandler(itemRepo database.ItemRepository, scheduler tasks.TaskSchedulerInterface,
	runner *tasks.IngestRunner, mailer *digest.Mailer) *Handler {
	appCfg := cfg.Get()

	return &Handler{
		itemRepo:      itemRepo,
		scheduler:     scheduler,
		runner:        runner,
		mailer:        mailer,
		recipient:     appCfg.DigestRecipient,
		baseURL:       appCfg.BaseUrl,
		dataDir:       appCfg.DataDir,
		retentionDays: appCfg.RetentionDays,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": radar.FormatTimestamp(time.Now().UTC()),
		"version":   cfg.GetVersion(),
	}

	if itemCount, err := h.itemRepo.GetItemCount(); err == nil {
		health["items"] = itemCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	total, err := h.itemRepo.GetItemCount()
	if err != nil {
		slog.Error("Database error", "operation", "get_item_count", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	bySource, err := h.itemRepo.GetSourceStats()
	if err != nil {
		slog.Error("Database error", "operation", "get_source_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":          total,
		"by_source":      bySource,
		"retention_days": h.retentionDays,
	})
}

func (h *Handler) GetItems(c *gin.Context) {
	filter := database.ItemFilter{
		SourceType: c.Query("source"),
		StartDate:  c.Query("start_date"),
		EndDate:    c.Query("end_date"),
		Tag:        c.Query("tag"),
		Search:     c.Query("q"),
		Limit:      defaultListLimit,
	}

	if raw := c.Query("min_score"); raw != "" {
		minScore, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid min_score parameter"})
			return
		}
		filter.MinScore = minScore
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		if limit > maxListLimit {
			limit = maxListLimit
		}
		filter.Limit = limit
	}

	items, err := h.itemRepo.ListItems(filter)
	if err != nil {
		slog.Error("Database error", "operation", "list_items", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	views := make([]map[string]interface{}, 0, len(items))
	for i := range items {
		views = append(views, itemView(&items[i], true))
	}

	c.JSON(http.StatusOK, gin.H{
		"items": views,
		"total": len(views),
	})
}

func (h *Handler) GetItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	item, err := h.itemRepo.GetItem(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_item", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}

	c.JSON(http.StatusOK, itemView(item, false))
}

// APITriggerIngest runs an ingestion pass synchronously and returns its
// report. An overlapping run answers 409 instead of queueing up behind it.
func (h *Handler) APITriggerIngest(c *gin.Context) {
	report, err := h.runner.Run(c.Request.Context())
	if errors.Is(err, tasks.ErrIngestInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": "Ingestion run already in progress"})
		return
	}
	if err != nil {
		slog.Error("Ingestion run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Ingestion run failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"report":  report,
	})
}

func (h *Handler) APITriggerDigest(c *gin.Context) {
	task := tasks.NewDigestTask(h.itemRepo, h.mailer, h.recipient, h.baseURL)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing digest task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue digest task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"task": gin.H{
			"id":   task.ID,
			"type": task.Type,
		},
	})
}

func (h *Handler) APITriggerCleanup(c *gin.Context) {
	task := tasks.NewCleanupTask(h.itemRepo, h.retentionDays)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing cleanup task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue cleanup task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"task": gin.H{
			"id":   task.ID,
			"type": task.Type,
		},
	})
}

// APIWriteReport renders a markdown report of the last 24 hours and writes
// it under the data directory.
func (h *Handler) APIWriteReport(c *gin.Context) {
	now := time.Now().UTC()
	since := radar.FormatTimestamp(now.Add(-24 * time.Hour))

	items, err := h.itemRepo.GetItemsIngestedSince(since)
	if err != nil {
		slog.Error("Database error", "operation", "get_items_ingested_since", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	path, err := digest.WriteReport(h.dataDir, items, now)
	if err != nil {
		slog.Error("Error writing report", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to write report",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"path":    path,
		"items":   len(items),
	})
}

// itemView maps a stored item to its JSON shape. List responses omit the
// full content to keep payloads small.
func itemView(item *database.Item, compact bool) map[string]interface{} {
	view := map[string]interface{}{
		"id":          item.ID,
		"source_type": item.SourceType,
		"title":       item.Title,
		"url":         item.URL,
		"author":      item.Author,
		"published":   item.PublishedAt,
		"ingested":    item.IngestedAt,
		"excerpt":     item.Excerpt,
		"score":       item.Score,
		"tags":        item.Tags,
	}

	if !compact {
		view["content"] = item.Content
		view["summary"] = item.Summary
		view["analysis"] = item.Analysis
		view["metadata"] = item.Metadata
	}

	return view
}
