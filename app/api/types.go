package api

import (
	"github.com/jasonlinpng/ai-radar/app/database"
	"github.com/jasonlinpng/ai-radar/app/digest"
	"github.com/jasonlinpng/ai-radar/app/tasks"
)

type Handler struct {
	itemRepo      database.ItemRepository
	scheduler     tasks.TaskSchedulerInterface
	runner        *tasks.IngestRunner
	mailer        *digest.Mailer
	recipient     string
	baseURL       string
	dataDir       string
	retentionDays int
}
