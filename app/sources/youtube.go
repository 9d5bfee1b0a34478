package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const youtubeAPIBase = "https://www.googleapis.com/youtube/v3"

// YouTubeClient fetches recent uploads from watched channels via the
// YouTube Data API.
type YouTubeClient struct {
	apiKey     string
	userAgent  string
	apiBase    string
	httpClient *http.Client
}

func NewYouTubeClient(apiKey, userAgent string) *YouTubeClient {
	return &YouTubeClient{
		apiKey:     apiKey,
		userAgent:  userAgent,
		apiBase:    youtubeAPIBase,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			Kind    string `json:"kind"`
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelID    string `json:"channelId"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

func (c *YouTubeClient) Fetch(ctx context.Context, channels []string) ([]Candidate, error) {
	if c.apiKey == "" {
		return nil, nil
	}

	var items []Candidate
	var errs []error

	for _, channelURL := range channels {
		channelID, err := c.resolveChannelID(ctx, channelURL)
		if err != nil {
			slog.Warn("Failed to resolve channel", "channel", channelURL, "error", err)
			errs = append(errs, fmt.Errorf("channel %s: %w", channelURL, err))
			continue
		}
		if channelID == "" {
			continue
		}

		params := url.Values{}
		params.Set("key", c.apiKey)
		params.Set("channelId", channelID)
		params.Set("part", "snippet")
		params.Set("order", "date")
		params.Set("maxResults", "10")

		var resp youtubeSearchResponse
		if err := c.getJSON(ctx, c.apiBase+"/search?"+params.Encode(), &resp); err != nil {
			slog.Warn("Failed to fetch channel uploads", "channel", channelURL, "error", err)
			errs = append(errs, fmt.Errorf("channel %s: %w", channelURL, err))
			continue
		}

		for _, entry := range resp.Items {
			if entry.ID.Kind != "youtube#video" {
				continue
			}
			items = append(items, Candidate{
				SourceType:  SourceYouTube,
				Title:       entry.Snippet.Title,
				URL:         "https://www.youtube.com/watch?v=" + entry.ID.VideoID,
				Author:      entry.Snippet.ChannelTitle,
				PublishedAt: entry.Snippet.PublishedAt,
				Excerpt:     entry.Snippet.Description,
				Content:     entry.Snippet.Description,
				DedupeSeed:  "yt-" + entry.ID.VideoID,
				Metadata:    map[string]string{"channel": channelURL},
			})
		}
	}

	return items, errors.Join(errs...)
}

// resolveChannelID accepts either a /channel/<id> URL or an @handle URL.
func (c *YouTubeClient) resolveChannelID(ctx context.Context, channelURL string) (string, error) {
	if strings.Contains(channelURL, "/channel/") {
		rest := channelURL[strings.Index(channelURL, "/channel/")+len("/channel/"):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			rest = rest[:i]
		}
		return rest, nil
	}

	if strings.Contains(channelURL, "@") {
		handle := strings.Trim(channelURL[strings.LastIndex(channelURL, "@")+1:], "/")

		params := url.Values{}
		params.Set("key", c.apiKey)
		params.Set("q", handle)
		params.Set("type", "channel")
		params.Set("part", "snippet")
		params.Set("maxResults", "1")

		var resp youtubeSearchResponse
		if err := c.getJSON(ctx, c.apiBase+"/search?"+params.Encode(), &resp); err != nil {
			return "", err
		}
		if len(resp.Items) == 0 {
			return "", nil
		}
		return resp.Items[0].Snippet.ChannelID, nil
	}

	return "", nil
}

func (c *YouTubeClient) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
