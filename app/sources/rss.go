package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

const rssMaxItemsPerFeed = 10

// RSSClient fetches entries from watched RSS/Atom feeds.
type RSSClient struct {
	parser *gofeed.Parser
}

func NewRSSClient(userAgent string) *RSSClient {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: 20 * time.Second}
	parser.UserAgent = userAgent

	return &RSSClient{parser: parser}
}

func (c *RSSClient) Fetch(ctx context.Context, feeds []string) ([]Candidate, error) {
	var items []Candidate
	var errs []error

	for _, feedURL := range feeds {
		feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			slog.Warn("Failed to parse feed", "feed", feedURL, "error", err)
			errs = append(errs, fmt.Errorf("feed %s: %w", feedURL, err))
			continue
		}

		entries := feed.Items
		if len(entries) > rssMaxItemsPerFeed {
			entries = entries[:rssMaxItemsPerFeed]
		}

		for _, entry := range entries {
			var author string
			if entry.Author != nil {
				author = entry.Author.Name
			}

			items = append(items, Candidate{
				SourceType:  SourceRSS,
				Title:       entry.Title,
				URL:         entry.Link,
				Author:      author,
				PublishedAt: entry.Published,
				Excerpt:     entry.Description,
				Content:     entry.Content,
				DedupeSeed:  "rss-" + entry.Link,
				Metadata:    map[string]string{"feed": feedURL},
			})
		}
	}

	return items, errors.Join(errs...)
}
