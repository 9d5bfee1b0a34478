package sources

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Source type labels stored with every item.
const (
	SourceX       = "x"
	SourceYouTube = "youtube"
	SourceWeb     = "web"
	SourceRSS     = "rss"
)

// Candidate is a raw record produced by one of the source clients. It lives
// only within a single ingestion pass; the pipeline normalizes, filters and
// scores it before anything is persisted.
type Candidate struct {
	SourceType  string
	Title       string
	URL         string
	Author      string
	PublishedAt string // free-form timestamp as emitted by the source
	Excerpt     string
	Content     string
	DedupeSeed  string // source-specific natural key, e.g. "x-<tweet id>"
	Metadata    map[string]string
}

// Fetcher is implemented by every source client. Clients return an empty
// result, not an error, when their credentials are absent.
type Fetcher interface {
	Fetch(ctx context.Context, queries []string) ([]Candidate, error)
}

// Fingerprint derives the dedupe hash from a candidate's natural key.
func Fingerprint(seed string) string {
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])
}
