package discord

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"technewsbot/internal/config"
	"technewsbot/internal/domain"
	"technewsbot/internal/ports"
)

// Notifier delivers digest batches to a Discord webhook.
type Notifier struct {
	client     *resty.Client
	webhookURL string
	username   string
	avatarURL  string
	logger     *slog.Logger
	now        func() time.Time
}

var _ ports.NotificationSink = (*Notifier)(nil)

// NewNotifier builds a webhook sink from configuration.
func NewNotifier(cfg config.DiscordConfig, logger *slog.Logger) *Notifier {
	return &Notifier{
		client:     resty.New().SetTimeout(15 * time.Second),
		webhookURL: cfg.WebhookURL,
		username:   cfg.Username,
		avatarURL:  cfg.AvatarURL,
		logger:     logger,
		now:        time.Now,
	}
}

type webhookPayload struct {
	Username  string  `json:"username,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Content   string  `json:"content,omitempty"`
	Embeds    []embed `json:"embeds,omitempty"`
}

type embed struct {
	Title       string       `json:"title,omitempty"`
	URL         string       `json:"url,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Footer      *embedFooter `json:"footer,omitempty"`
}

type embedFooter struct {
	Text string `json:"text"`
}

// Deliver posts one batch of records as a single webhook message.
func (n *Notifier) Deliver(ctx context.Context, batch []domain.DisplayRecord) error {
	if n.webhookURL == "" {
		return fmt.Errorf("discord webhook url is not set")
	}
	if len(batch) == 0 {
		return nil
	}

	payload := webhookPayload{
		Username:  n.username,
		AvatarURL: n.avatarURL,
		Embeds:    make([]embed, 0, len(batch)),
	}
	for _, rec := range batch {
		e := embed{
			Title:       rec.Title,
			URL:         rec.URL,
			Description: description(rec),
			Color:       rec.Accent,
			Footer:      &embedFooter{Text: rec.SourceLabel},
		}
		if !rec.PublishedAt.IsZero() {
			e.Timestamp = rec.PublishedAt.UTC().Format(time.RFC3339)
		}
		payload.Embeds = append(payload.Embeds, e)
	}

	if err := n.post(ctx, payload); err != nil {
		return err
	}

	n.logger.Debug("batch delivered", "embeds", len(batch))
	return nil
}

// description prefixes the body with the record's keyword tags, one backticked
// tag per matched keyword.
func description(rec domain.DisplayRecord) string {
	if len(rec.Keywords) == 0 {
		return rec.BodyText
	}
	tags := make([]string, 0, len(rec.Keywords))
	for _, kw := range rec.Keywords {
		tags = append(tags, "`"+kw+"`")
	}
	return strings.Join(tags, " ") + "\n" + rec.BodyText
}

func (n *Notifier) post(ctx context.Context, payload webhookPayload) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(n.webhookURL)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		body := strings.TrimSpace(string(resp.Body()))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode(), body)
	}
	return nil
}

// Announce posts the digest header message ahead of the article batches.
func (n *Notifier) Announce(ctx context.Context, total int) error {
	if total == 0 {
		return nil
	}
	payload := webhookPayload{
		Username:  n.username,
		AvatarURL: n.avatarURL,
		Content:   fmt.Sprintf("**Tech digest for %s**: %d article(s)", n.now().Format("2006-01-02"), total),
	}
	return n.post(ctx, payload)
}
