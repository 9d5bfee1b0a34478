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

const xAPIBase = "https://api.twitter.com/2"

// XClient fetches recent posts for watched handles via the X API v2.
type XClient struct {
	bearerToken string
	userAgent   string
	apiBase     string
	httpClient  *http.Client
}

func NewXClient(bearerToken, userAgent string) *XClient {
	return &XClient{
		bearerToken: bearerToken,
		userAgent:   userAgent,
		apiBase:     xAPIBase,
		httpClient:  &http.Client{Timeout: 20 * time.Second},
	}
}

type xUserResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type xTweet struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

type xTweetsResponse struct {
	Data []xTweet `json:"data"`
}

func (c *XClient) Fetch(ctx context.Context, handles []string) ([]Candidate, error) {
	if c.bearerToken == "" {
		return nil, nil
	}

	var items []Candidate
	var errs []error

	for _, handle := range handles {
		userID, err := c.lookupUserID(ctx, handle)
		if err != nil {
			slog.Warn("Failed to resolve X handle", "handle", handle, "error", err)
			errs = append(errs, fmt.Errorf("handle %s: %w", handle, err))
			continue
		}
		if userID == "" {
			continue
		}

		tweets, err := c.fetchTweets(ctx, userID)
		if err != nil {
			slog.Warn("Failed to fetch posts", "handle", handle, "error", err)
			errs = append(errs, fmt.Errorf("handle %s: %w", handle, err))
			continue
		}

		for _, tweet := range tweets {
			items = append(items, Candidate{
				SourceType:  SourceX,
				Title:       truncateRunes(tweet.Text, 120),
				URL:         fmt.Sprintf("https://x.com/%s/status/%s", handle, tweet.ID),
				Author:      handle,
				PublishedAt: tweet.CreatedAt,
				Excerpt:     tweet.Text,
				Content:     tweet.Text,
				DedupeSeed:  "x-" + tweet.ID,
				Metadata:    map[string]string{"handle": handle},
			})
		}
	}

	return items, errors.Join(errs...)
}

func (c *XClient) lookupUserID(ctx context.Context, handle string) (string, error) {
	var resp xUserResponse
	endpoint := fmt.Sprintf("%s/users/by/username/%s", c.apiBase, url.PathEscape(handle))
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return "", err
	}
	return resp.Data.ID, nil
}

func (c *XClient) fetchTweets(ctx context.Context, userID string) ([]xTweet, error) {
	params := url.Values{}
	params.Set("tweet.fields", "created_at,author_id")
	params.Set("max_results", "20")

	var resp xTweetsResponse
	endpoint := fmt.Sprintf("%s/users/%s/tweets?%s", c.apiBase, url.PathEscape(userID), params.Encode())
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *XClient) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)
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

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
