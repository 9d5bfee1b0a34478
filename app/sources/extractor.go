package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "codeberg.org/readeck/go-readability"
	"github.com/PuerkitoBio/goquery"
)

const extractorWordLimit = 400

// Extractor fetches a page and reduces it to a short plain-text excerpt.
// Used as best-effort backfill for web and feed items that arrive without one.
type Extractor struct {
	userAgent  string
	httpClient *http.Client
}

func NewExtractor(userAgent string) *Extractor {
	return &Extractor{
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

func (e *Extractor) Run(ctx context.Context, pageURL string) (string, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, 2<<20), parsedURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	if article.Content == "" {
		return "", fmt.Errorf("no content extracted from page")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return "", fmt.Errorf("failed to parse extracted content: %w", err)
	}

	words := strings.Fields(doc.Text())
	if len(words) == 0 {
		return "", fmt.Errorf("extracted content is empty")
	}
	if len(words) > extractorWordLimit {
		words = words[:extractorWordLimit]
	}

	return strings.Join(words, " "), nil
}
