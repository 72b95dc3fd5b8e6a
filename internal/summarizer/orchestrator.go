package summarizer

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"technewsbot/internal/config"
	"technewsbot/internal/domain"
	"technewsbot/internal/ports"
)

const (
	// maxSummaryRunes is the response length ceiling handed to every backend.
	maxSummaryRunes = 800

	// maxBackoff caps the exponential retry delay.
	maxBackoff = 30 * time.Second

	defaultPrompt = "Summarize the following tech news article in two or three plain sentences.\n" +
		"Title: {{title}}\nDescription: {{description}}"
)

// Orchestrator drives the selected provider over the scored article sequence.
// Calls are strictly sequential against the single provider; a minimum
// inter-call delay and exponential retry backoff keep within burst limits.
type Orchestrator struct {
	provider ports.Provider
	cfg      config.AIConfig
	logger   *slog.Logger
	lastCall time.Time

	// injected for tests
	sleep func(time.Duration)
	now   func() time.Time
}

// New constructs the orchestration component around one provider.
func New(provider ports.Provider, cfg config.AIConfig, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
		sleep:    time.Sleep,
		now:      time.Now,
	}
}

// Run summarizes up to the configured maximum number of articles and returns
// the (possibly clipped) sequence plus one SummaryResult per successful call.
// Per-article failures set SummaryError and never abort the run.
func (o *Orchestrator) Run(ctx context.Context, articles []domain.Article) ([]domain.Article, []domain.SummaryResult) {
	if o.cfg.MaxArticles > 0 && len(articles) > o.cfg.MaxArticles {
		articles = articles[:o.cfg.MaxArticles]
	}

	results := make([]domain.SummaryResult, 0, len(articles))

	for i := range articles {
		text, attempts, err := o.summarizeOne(ctx, articles[i])
		if err != nil {
			articles[i].SummaryError = err.Error()
			o.logger.Warn("summarization failed", "url", articles[i].URL, "attempts", attempts, "error", err)
			continue
		}

		articles[i].Summary = text
		results = append(results, domain.SummaryResult{
			ArticleURL: articles[i].URL,
			Text:       text,
			Provider:   o.provider.Name(),
			Attempts:   attempts,
		})
		o.logger.Debug("article summarized", "url", articles[i].URL, "attempts", attempts)
	}

	return articles, results
}

// summarizeOne retries rate-limited and transient failures with exponential
// backoff; authentication and malformed-response failures are final.
func (o *Orchestrator) summarizeOne(ctx context.Context, article domain.Article) (string, int, error) {
	prompt := buildPrompt(article, o.cfg.SummaryPrompt)

	var lastErr error
	for attempt := 1; attempt <= o.cfg.MaxAttempts; attempt++ {
		var retryDelay time.Duration
		if attempt > 1 {
			retryDelay = backoff(o.cfg.RetryBaseDelay.Std(), attempt-1)
		}
		o.pace(retryDelay)

		text, err := o.provider.Summarize(ctx, prompt, maxSummaryRunes)
		if err == nil {
			return text, attempt, nil
		}
		lastErr = err

		if !retryable(KindOf(err)) {
			return "", attempt, err
		}
	}

	return "", o.cfg.MaxAttempts, lastErr
}

// pace blocks until both the retry delay and the minimum inter-call spacing
// have elapsed, then stamps the call time. Every provider call goes through
// here, so retries cannot burst past the configured interval either.
func (o *Orchestrator) pace(retryDelay time.Duration) {
	wait := retryDelay
	if !o.lastCall.IsZero() {
		if gap := o.cfg.CallInterval.Std() - o.now().Sub(o.lastCall); gap > wait {
			wait = gap
		}
	}
	if wait > 0 {
		o.sleep(wait)
	}
	o.lastCall = o.now()
}

func backoff(base time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func buildPrompt(article domain.Article, template string) string {
	if strings.TrimSpace(template) == "" {
		template = defaultPrompt
	}
	desc := article.RawContent
	if desc == "" {
		desc = "no description"
	}
	prompt := strings.ReplaceAll(template, "{{title}}", article.Title)
	return strings.ReplaceAll(prompt, "{{description}}", desc)
}
