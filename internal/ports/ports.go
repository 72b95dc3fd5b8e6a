package ports

import (
	"context"

	"technewsbot/internal/domain"
)

// FeedSource pulls raw items from one configured feed endpoint. Transport and
// parsing details are opaque to the pipeline.
type FeedSource interface {
	Fetch(ctx context.Context, sourceURL string) ([]domain.RawItem, error)
}

// Provider is one interchangeable AI summarization backend. Implementations
// are stateless per call and must map backend failures onto the
// summarizer error taxonomy.
type Provider interface {
	Name() string
	Summarize(ctx context.Context, content string, maxLen int) (string, error)
}

// NotificationSink delivers formatted record batches to the outbound channel.
// Announce posts the digest header before the first batch.
type NotificationSink interface {
	Announce(ctx context.Context, total int) error
	Deliver(ctx context.Context, batch []domain.DisplayRecord) error
}
