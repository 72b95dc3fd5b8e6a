package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"technewsbot/internal/config"
	"technewsbot/internal/ports"
	"technewsbot/internal/summarizer"
)

// ClaudeProvider summarizes via the Anthropic Messages API.
type ClaudeProvider struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

var _ ports.Provider = (*ClaudeProvider)(nil)

func newClaudeProvider(cfg config.AIConfig, apiKey string) *ClaudeProvider {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &ClaudeProvider{
		client:    &client,
		model:     anthropic.Model(cfg.Model),
		maxTokens: int64(cfg.MaxTokens),
	}
}

func (p *ClaudeProvider) Name() string { return config.ProviderClaude }

func (p *ClaudeProvider) Summarize(ctx context.Context, prompt string, maxLen int) (string, error) {
	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", summarizer.NewError(kindForStatus(apiErr.StatusCode), p.Name(), err)
		}
		return "", summarizer.NewError(summarizer.KindTransient, p.Name(), err)
	}
	if len(resp.Content) == 0 {
		return "", summarizer.NewError(summarizer.KindInvalidResponse, p.Name(),
			fmt.Errorf("response contains no content blocks"))
	}
	text := strings.TrimSpace(resp.Content[0].Text)
	if text == "" {
		return "", summarizer.NewError(summarizer.KindInvalidResponse, p.Name(),
			fmt.Errorf("response text is empty"))
	}
	return clipRunes(text, maxLen), nil
}
