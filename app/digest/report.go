package digest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jasonlinpng/ai-radar/app/database"
)

// WriteReport renders a markdown report into <dataDir>/reports and returns
// the written path.
func WriteReport(dataDir string, items []database.Item, now time.Time) (string, error) {
	reportsDir := filepath.Join(dataDir, "reports")
	if err := os.MkdirAll(reportsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	path := filepath.Join(reportsDir, fmt.Sprintf("report_%s.md", now.UTC().Format("20060102150405")))
	if err := os.WriteFile(path, []byte(RenderReport(items, now)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}
