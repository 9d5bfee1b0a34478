package radar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jasonlinpng/ai-radar/app/database"
	"github.com/jasonlinpng/ai-radar/app/llm"
	"github.com/jasonlinpng/ai-radar/app/sources"
	"github.com/jasonlinpng/ai-radar/app/watchlist"
)

// ItemWriter is the slice of the store the orchestrator needs.
type ItemWriter interface {
	InsertItem(item database.Item) (int64, error)
}

// ExcerptExtractor backfills a missing excerpt from the item's page.
type ExcerptExtractor interface {
	Run(ctx context.Context, pageURL string) (string, error)
}

// Classifier is the optional language-model hook.
type Classifier interface {
	Enabled() bool
	Classify(ctx context.Context, text string) (*llm.Classification, error)
}

// Report summarizes one ingestion pass. It is the sole error surface of a
// run; Run never fails outright.
type Report struct {
	Timestamp        string            `json:"timestamp"`
	Inserted         int               `json:"inserted"`
	Fetched          map[string]int    `json:"fetched"`
	InsertedBySource map[string]int    `json:"inserted_by_source"`
	Errors           map[string]string `json:"errors,omitempty"`
}

// Ingestor drives fetch, normalize, filter, score and insert for every
// source, isolating failures so one broken source never aborts a run.
type Ingestor struct {
	x          sources.Fetcher
	youtube    sources.Fetcher
	web        sources.Fetcher
	rss        sources.Fetcher
	extractor  ExcerptExtractor
	classifier Classifier
	store      ItemWriter
	policy     TimePolicy
	now        func() time.Time
}

// NewIngestor wires the pipeline. A nil now falls back to time.Now; tests
// inject a fixed clock.
func NewIngestor(x, youtube, web, rss sources.Fetcher, extractor ExcerptExtractor,
	classifier Classifier, store ItemWriter, policy TimePolicy, now func() time.Time) *Ingestor {
	if now == nil {
		now = time.Now
	}
	return &Ingestor{
		x:          x,
		youtube:    youtube,
		web:        web,
		rss:        rss,
		extractor:  extractor,
		classifier: classifier,
		store:      store,
		policy:     policy,
		now:        now,
	}
}

// Run processes all four sources sequentially. Web queries combine websites
// and X handles from the watchlist; domain-scoped "site:" queries were an
// abandoned variant and are deliberately not used.
func (in *Ingestor) Run(ctx context.Context, entries []watchlist.Entry) Report {
	report := Report{
		Timestamp:        FormatTimestamp(in.now()),
		Fetched:          make(map[string]int),
		InsertedBySource: make(map[string]int),
		Errors:           make(map[string]string),
	}

	webQueries := append(watchlist.Websites(entries), watchlist.XHandles(entries)...)

	in.runSource(ctx, &report, sources.SourceX, in.x, watchlist.XHandles(entries))
	in.runSource(ctx, &report, sources.SourceYouTube, in.youtube, watchlist.YouTubeChannels(entries))
	in.runSource(ctx, &report, sources.SourceWeb, in.web, webQueries)
	in.runSource(ctx, &report, sources.SourceRSS, in.rss, watchlist.RSSFeeds(entries))

	slog.Info("Ingestion run completed",
		"inserted", report.Inserted,
		"fetched", report.Fetched,
		"errors", len(report.Errors))

	return report
}

// runSource is the single fault-isolation wrapper every source goes
// through. Candidates fetched before a partial failure are still processed,
// and inserts committed before a processing failure still count.
func (in *Ingestor) runSource(ctx context.Context, report *Report, label string,
	fetcher sources.Fetcher, queries []string) {
	candidates, fetchErr := fetcher.Fetch(ctx, queries)
	report.Fetched[label] = len(candidates)

	inserted, processErr := in.processCandidates(ctx, candidates)
	report.InsertedBySource[label] = inserted
	report.Inserted += inserted

	if err := errors.Join(fetchErr, processErr); err != nil {
		report.Errors[label] = err.Error()
		slog.Error("Source ingestion failed", "source", label, "error", err)
	}
}

func (in *Ingestor) processCandidates(ctx context.Context, candidates []sources.Candidate) (int, error) {
	now := in.now()
	ingestedAt := FormatTimestamp(now)

	inserted := 0
	var errs []error

	for _, candidate := range candidates {
		published, ok := in.policy.NormalizePublishedAt(candidate.PublishedAt, now)
		if !ok {
			slog.Debug("Dropped candidate outside freshness window",
				"url", candidate.URL, "published_at", candidate.PublishedAt)
			continue
		}
		candidate.PublishedAt = published

		text := NormalizeText(candidate.Title, candidate.Excerpt, candidate.Content)
		result := RuleFilter(text)
		if !result.Keep {
			continue
		}

		in.backfillExcerpt(ctx, &candidate)

		item := database.Item{
			SourceType:  candidate.SourceType,
			Title:       candidate.Title,
			URL:         candidate.URL,
			Author:      candidate.Author,
			PublishedAt: candidate.PublishedAt,
			IngestedAt:  ingestedAt,
			Excerpt:     candidate.Excerpt,
			Content:     candidate.Content,
			Score:       RuleScore(candidate, now),
			Tags:        result.Tags,
			Metadata:    candidate.Metadata,
			DedupeHash:  sources.Fingerprint(candidate.DedupeSeed),
		}

		in.classify(ctx, &item, text)

		id, err := in.store.InsertItem(item)
		if err != nil {
			// One bad item must not stop its neighbors.
			errs = append(errs, fmt.Errorf("%s: %w", candidate.URL, err))
			continue
		}
		if id != 0 {
			inserted++
		}
	}

	return inserted, errors.Join(errs...)
}

// backfillExcerpt fetches page text for web and feed items that arrived
// without one. Best effort; extraction failure leaves the excerpt empty.
func (in *Ingestor) backfillExcerpt(ctx context.Context, candidate *sources.Candidate) {
	if candidate.Excerpt != "" || in.extractor == nil {
		return
	}
	if candidate.SourceType != sources.SourceWeb && candidate.SourceType != sources.SourceRSS {
		return
	}

	excerpt, err := in.extractor.Run(ctx, candidate.URL)
	if err != nil {
		slog.Debug("Excerpt backfill failed", "url", candidate.URL, "error", err)
		return
	}
	candidate.Excerpt = excerpt
}

func (in *Ingestor) classify(ctx context.Context, item *database.Item, text string) {
	if in.classifier == nil || !in.classifier.Enabled() {
		return
	}

	classification, err := in.classifier.Classify(ctx, text)
	if err != nil {
		slog.Warn("Classification failed", "url", item.URL, "error", err)
		return
	}

	item.Summary = classification.Summary
	item.Analysis = classification.Analysis
	item.Score = roundScore(item.Score + classification.ScoreAdjust)
}
