package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"technewsbot/internal/config"
	"technewsbot/internal/domain"
	"technewsbot/internal/ports"
)

// Aggregator merges raw items pulled from every configured source into one
// deduplicated Article sequence. Per-source fetches run concurrently, each
// with its own timeout; results are joined before merging so no shared state
// needs locking.
type Aggregator struct {
	source  ports.FeedSource
	sources []config.SourceConfig
	timeout time.Duration
	logger  *slog.Logger
}

// New wires the feed source collaborator with the configured source list.
func New(source ports.FeedSource, sources []config.SourceConfig, timeout time.Duration, logger *slog.Logger) *Aggregator {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Aggregator{
		source:  source,
		sources: sources,
		timeout: timeout,
		logger:  logger,
	}
}

// Collect fetches all sources, clips each to its item cap in source-declared
// order, normalizes text, and removes duplicate URLs (first occurrence wins,
// keeping the originating source's attribution). A single failing source is
// logged and skipped; Collect fails only when every source failed.
func (a *Aggregator) Collect(ctx context.Context) ([]domain.Article, error) {
	if len(a.sources) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}

	items := make([][]domain.RawItem, len(a.sources))
	errs := make([]error, len(a.sources))

	var wg sync.WaitGroup
	for i, src := range a.sources {
		wg.Add(1)
		go func(i int, src config.SourceConfig) {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()
			items[i], errs[i] = a.source.Fetch(fetchCtx, src.URL)
		}(i, src)
	}
	wg.Wait()

	var (
		merged []domain.Article
		seen   = map[string]struct{}{}
		failed int
	)

	for i, src := range a.sources {
		if errs[i] != nil {
			failed++
			a.logger.Warn("source unavailable, skipping", "source", src.ID, "error", errs[i])
			continue
		}

		clipped := items[i]
		if src.MaxItems > 0 && len(clipped) > src.MaxItems {
			clipped = clipped[:src.MaxItems]
		}

		for _, item := range clipped {
			article, ok := normalize(item, src)
			if !ok {
				continue
			}
			if _, dup := seen[article.URL]; dup {
				continue
			}
			seen[article.URL] = struct{}{}
			merged = append(merged, article)
		}
		a.logger.Debug("source merged", "source", src.ID, "items", len(clipped))
	}

	if failed == len(a.sources) {
		return nil, fmt.Errorf("all %d sources unreachable", failed)
	}

	a.logger.Info("aggregation done", "sources", len(a.sources), "skipped", failed, "articles", len(merged))
	return merged, nil
}

// normalize trims whitespace and strips feed-provided markup. Items without a
// title or URL carry nothing worth scoring and are dropped.
func normalize(item domain.RawItem, src config.SourceConfig) (domain.Article, bool) {
	title := cleanText(item.Title)
	url := strings.TrimSpace(item.URL)
	if title == "" || url == "" {
		return domain.Article{}, false
	}

	return domain.Article{
		SourceID:    src.ID,
		SourceName:  src.Name,
		Title:       title,
		URL:         url,
		PublishedAt: item.PublishedAt,
		RawContent:  cleanText(item.Body),
	}, true
}

// cleanText strips HTML markup and collapses runs of whitespace.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.ContainsRune(s, '<') {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}
