package notify

import (
	"technewsbot/internal/domain"
)

const (
	// MaxBodyRunes is the per-record body ceiling imposed by the sink.
	MaxBodyRunes = 1000

	// maxBatchSize is the sink's per-message record ceiling.
	maxBatchSize = 10

	// DefaultAccent is used for sources without a configured accent.
	DefaultAccent = 0x5865F2
)

// Formatter converts the final article sequence into display-record batches
// sized for the sink. It is a pure function of its inputs: no I/O, no clock.
type Formatter struct {
	accents map[string]int
}

// NewFormatter builds a formatter with the per-source accent mapping.
func NewFormatter(accents map[string]int) *Formatter {
	return &Formatter{accents: accents}
}

// Batches returns ordered display records chunked into sink-sized batches.
// Body text prefers the AI summary and falls back to the article's raw
// content; oversized bodies are truncated with an explicit ellipsis marker.
func (f *Formatter) Batches(articles []domain.Article) [][]domain.DisplayRecord {
	records := make([]domain.DisplayRecord, 0, len(articles))
	for _, article := range articles {
		records = append(records, f.record(article))
	}

	var batches [][]domain.DisplayRecord
	for len(records) > 0 {
		n := min(len(records), maxBatchSize)
		batches = append(batches, records[:n])
		records = records[n:]
	}
	return batches
}

func (f *Formatter) record(article domain.Article) domain.DisplayRecord {
	body := article.Summary
	if body == "" {
		body = article.RawContent
	}
	if body == "" {
		body = "no description"
	}

	accent, ok := f.accents[article.SourceID]
	if !ok {
		accent = DefaultAccent
	}

	return domain.DisplayRecord{
		SourceLabel: article.SourceName,
		Title:       truncateRunes(article.Title, 256),
		URL:         article.URL,
		PublishedAt: article.PublishedAt,
		BodyText:    truncateRunes(body, MaxBodyRunes),
		Keywords:    article.MatchedKeywords,
		Accent:      accent,
	}
}

// truncateRunes clips s to limit runes, appending an ellipsis when clipped.
func truncateRunes(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit]) + "…"
}
