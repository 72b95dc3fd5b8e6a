package domain

import "time"

// Article is a normalized, deduplicated unit of news content flowing through
// the pipeline. URL is the unique key within a run. Score, MatchedKeywords and
// the Summary fields are each set exactly once during the forward pass.
type Article struct {
	SourceID        string
	SourceName      string
	Title           string
	URL             string
	PublishedAt     time.Time
	RawContent      string
	Score           float64
	MatchedKeywords []string
	Summary         string
	SummaryError    string
}

// SummaryResult records the outcome of summarizing one article.
type SummaryResult struct {
	ArticleURL string
	Text       string
	Provider   string
	Attempts   int
}

// RawItem is a single entry as yielded by a feed source, before normalization.
type RawItem struct {
	Title       string
	URL         string
	PublishedAt time.Time
	Body        string
}

// DisplayRecord is one formatted entry of the outbound notification payload.
type DisplayRecord struct {
	SourceLabel string
	Title       string
	URL         string
	PublishedAt time.Time
	BodyText    string
	Keywords    []string
	Accent      int
}
