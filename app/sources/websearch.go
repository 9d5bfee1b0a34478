package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const cseAPIBase = "https://www.googleapis.com/customsearch/v1"

// WebSearchClient fetches recent web results for watchlist-derived queries
// via Google Custom Search.
type WebSearchClient struct {
	apiKey     string
	cx         string
	userAgent  string
	apiBase    string
	httpClient *http.Client
}

func NewWebSearchClient(apiKey, cx, userAgent string) *WebSearchClient {
	return &WebSearchClient{
		apiKey:     apiKey,
		cx:         cx,
		userAgent:  userAgent,
		apiBase:    cseAPIBase,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

type cseResponse struct {
	Items []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		Snippet     string `json:"snippet"`
		DisplayLink string `json:"displayLink"`
		Pagemap     struct {
			Metatags []map[string]string `json:"metatags"`
		} `json:"pagemap"`
	} `json:"items"`
}

func (c *WebSearchClient) Fetch(ctx context.Context, queries []string) ([]Candidate, error) {
	if c.apiKey == "" || c.cx == "" {
		return nil, nil
	}

	var items []Candidate
	var errs []error

	for _, query := range queries {
		params := url.Values{}
		params.Set("key", c.apiKey)
		params.Set("cx", c.cx)
		params.Set("q", query)
		params.Set("num", "5")

		req, err := http.NewRequestWithContext(ctx, "GET", c.apiBase+"?"+params.Encode(), nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("query %q: %w", query, err))
			continue
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			slog.Warn("Web search request failed", "query", query, "error", err)
			errs = append(errs, fmt.Errorf("query %q: %w", query, err))
			continue
		}

		var decoded cseResponse
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			slog.Warn("Web search returned error status", "query", query, "status", resp.Status)
			errs = append(errs, fmt.Errorf("query %q: HTTP error: %d %s", query, resp.StatusCode, resp.Status))
			continue
		}
		err = json.NewDecoder(resp.Body).Decode(&decoded)
		resp.Body.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("query %q: failed to decode response: %w", query, err))
			continue
		}

		for _, entry := range decoded.Items {
			if entry.Link == "" {
				continue
			}

			var publishedAt string
			if len(entry.Pagemap.Metatags) > 0 {
				publishedAt = entry.Pagemap.Metatags[0]["article:published_time"]
			}

			items = append(items, Candidate{
				SourceType:  SourceWeb,
				Title:       entry.Title,
				URL:         entry.Link,
				Author:      entry.DisplayLink,
				PublishedAt: publishedAt,
				Excerpt:     entry.Snippet,
				DedupeSeed:  "web-" + entry.Link,
				Metadata:    map[string]string{"query": query},
			})
		}
	}

	return items, errors.Join(errs...)
}
