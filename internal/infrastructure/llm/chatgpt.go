package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"technewsbot/internal/config"
	"technewsbot/internal/ports"
	"technewsbot/internal/summarizer"
)

// ChatGPTProvider summarizes via the OpenAI Chat Completions API.
type ChatGPTProvider struct {
	client    *openai.Client
	model     openai.ChatModel
	maxTokens int64
}

var _ ports.Provider = (*ChatGPTProvider)(nil)

func newChatGPTProvider(cfg config.AIConfig, apiKey string) *ChatGPTProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &ChatGPTProvider{
		client:    &client,
		model:     openai.ChatModel(cfg.Model),
		maxTokens: int64(cfg.MaxTokens),
	}
}

func (p *ChatGPTProvider) Name() string { return config.ProviderChatGPT }

func (p *ChatGPTProvider) Summarize(ctx context.Context, prompt string, maxLen int) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if p.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(p.maxTokens)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", summarizer.NewError(kindForStatus(apiErr.StatusCode), p.Name(), err)
		}
		return "", summarizer.NewError(summarizer.KindTransient, p.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return "", summarizer.NewError(summarizer.KindInvalidResponse, p.Name(),
			fmt.Errorf("response contains no choices"))
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", summarizer.NewError(summarizer.KindInvalidResponse, p.Name(),
			fmt.Errorf("response text is empty"))
	}
	return clipRunes(text, maxLen), nil
}
