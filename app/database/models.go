package database

// Item is a stored radar item. Timestamps are canonical ISO-8601 UTC strings
// as produced by the pipeline; an empty PublishedAt maps to NULL.
type Item struct {
	ID          int64
	SourceType  string
	Title       string
	URL         string
	Author      string
	PublishedAt string
	IngestedAt  string
	Excerpt     string
	Content     string
	Summary     string
	Analysis    string
	Score       float64
	Tags        []string
	Metadata    map[string]string
	DedupeHash  string
}

// ItemFilter narrows ListItems. Zero values mean "no constraint".
type ItemFilter struct {
	SourceType string
	MinScore   float64
	StartDate  string // inclusive lower bound on published_at
	EndDate    string // inclusive upper bound on published_at
	Tag        string
	Search     string // substring over title, excerpt and content
	Limit      int
}
