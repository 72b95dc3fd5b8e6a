package app

import (
	"context"
	"fmt"
	"log/slog"

	"technewsbot/internal/aggregator"
	"technewsbot/internal/config"
	"technewsbot/internal/domain"
	"technewsbot/internal/infrastructure/discord"
	"technewsbot/internal/infrastructure/feed"
	"technewsbot/internal/infrastructure/llm"
	"technewsbot/internal/logging"
	"technewsbot/internal/notify"
	"technewsbot/internal/ports"
	"technewsbot/internal/scorer"
	"technewsbot/internal/summarizer"
)

// Deps carries the pluggable edges of the pipeline.
type Deps struct {
	Source   ports.FeedSource
	Provider ports.Provider // nil disables summarization
	Sink     ports.NotificationSink
	Logger   *slog.Logger
}

// Application wires config to the digest pipeline for a single run.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	aggregator *aggregator.Aggregator
	scorer     *scorer.Scorer
	summarizer *summarizer.Orchestrator
	formatter  *notify.Formatter
	sink       ports.NotificationSink
}

// New builds a runnable application from configuration, constructing the
// real feed, provider, and webhook adapters.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	if !cfg.DryRun && cfg.Discord.WebhookURL == "" {
		return nil, fmt.Errorf("discord webhook url is not set (set DISCORD_WEBHOOK_URL or enable dry run)")
	}

	var provider ports.Provider
	if cfg.AI.Enabled {
		p, err := llm.NewProvider(cfg.AI)
		if err != nil {
			return nil, fmt.Errorf("build ai provider: %w", err)
		}
		provider = p
	}

	return NewWithDeps(cfg, Deps{
		Source:   feed.NewRSSSource(cfg.FetchTimeout.Std(), baseLogger.With("component", "feed")),
		Provider: provider,
		Sink:     discord.NewNotifier(cfg.Discord, baseLogger.With("component", "discord")),
		Logger:   baseLogger,
	}), nil
}

// NewWithDeps assembles the pipeline around caller-supplied edges.
func NewWithDeps(cfg config.Config, deps Deps) *Application {
	a := &Application{
		cfg:        cfg,
		logger:     deps.Logger,
		aggregator: aggregator.New(deps.Source, cfg.Sources, cfg.FetchTimeout.Std(), deps.Logger.With("component", "aggregator")),
		scorer:     scorer.New(cfg.Keywords, cfg.Scoring),
		formatter:  notify.NewFormatter(cfg.Discord.Accents),
		sink:       deps.Sink,
	}
	if deps.Provider != nil {
		a.summarizer = summarizer.New(deps.Provider, cfg.AI, deps.Logger.With("component", "summarizer"))
	}
	return a
}

// Run executes one full digest cycle: collect, rank, summarize, deliver.
// An empty digest after filtering is a successful run.
func (a *Application) Run(ctx context.Context) error {
	articles, err := a.aggregator.Collect(ctx)
	if err != nil {
		return fmt.Errorf("collect articles: %w", err)
	}

	ranked := a.scorer.Rank(articles)
	a.logger.Info("articles ranked", "fetched", len(articles), "relevant", len(ranked))
	if len(ranked) == 0 {
		a.logger.Info("nothing to publish")
		return nil
	}

	if a.summarizer != nil {
		var results []domain.SummaryResult
		ranked, results = a.summarizer.Run(ctx, ranked)
		a.logger.Info("summarization finished", "summarized", len(results), "articles", len(ranked))
	} else if max := a.cfg.AI.MaxArticles; max > 0 && len(ranked) > max {
		ranked = ranked[:max]
	}

	batches := a.formatter.Batches(ranked)
	if a.cfg.DryRun {
		a.logDigest(batches)
		return nil
	}
	return a.deliver(ctx, batches, len(ranked))
}

func (a *Application) deliver(ctx context.Context, batches [][]domain.DisplayRecord, total int) error {
	if err := a.sink.Announce(ctx, total); err != nil {
		a.logger.Error("digest header failed", "error", err)
	}

	delivered := 0
	for i, batch := range batches {
		if err := a.sink.Deliver(ctx, batch); err != nil {
			a.logger.Error("batch delivery failed", "batch", i, "error", err)
			continue
		}
		delivered++
	}
	if delivered == 0 {
		return fmt.Errorf("all %d batches failed to deliver", len(batches))
	}
	a.logger.Info("digest delivered", "batches", delivered, "articles", total)
	return nil
}

// logDigest prints the digest instead of posting it. Used by dry runs.
func (a *Application) logDigest(batches [][]domain.DisplayRecord) {
	for i, batch := range batches {
		for _, rec := range batch {
			a.logger.Info("dry run record",
				"batch", i,
				"source", rec.SourceLabel,
				"title", rec.Title,
				"url", rec.URL,
				"body", rec.BodyText,
			)
		}
	}
	a.logger.Info("dry run complete", "batches", len(batches))
}
