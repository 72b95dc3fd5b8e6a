package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"technewsbot/internal/config"
	"technewsbot/internal/ports"
	"technewsbot/internal/summarizer"
)

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiProvider summarizes via the Google Generative Language REST API.
type GeminiProvider struct {
	baseURL    string
	model      string
	apiKey     string
	maxTokens  int
	httpClient *http.Client
}

var _ ports.Provider = (*GeminiProvider)(nil)

func newGeminiProvider(cfg config.AIConfig, apiKey string) *GeminiProvider {
	return &GeminiProvider{
		baseURL:   geminiEndpoint,
		model:     cfg.Model,
		apiKey:    apiKey,
		maxTokens: cfg.MaxTokens,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (p *GeminiProvider) Name() string { return config.ProviderGemini }

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
	Config   *geminiGenCfg   `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenCfg struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (p *GeminiProvider) Summarize(ctx context.Context, prompt string, maxLen int) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		Config:   &geminiGenCfg{MaxOutputTokens: p.maxTokens},
	})
	if err != nil {
		return "", summarizer.NewError(summarizer.KindTransient, p.Name(),
			fmt.Errorf("marshal gemini payload: %w", err))
	}

	url := fmt.Sprintf("%s/%s:generateContent", p.baseURL, p.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", summarizer.NewError(summarizer.KindTransient, p.Name(),
			fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", summarizer.NewError(summarizer.KindTransient, p.Name(),
			fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", summarizer.NewError(kindForStatus(resp.StatusCode), p.Name(),
			fmt.Errorf("gemini error %s: %s", resp.Status, strings.TrimSpace(string(payload))))
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", summarizer.NewError(summarizer.KindInvalidResponse, p.Name(),
			fmt.Errorf("decode response: %w", err))
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", summarizer.NewError(summarizer.KindInvalidResponse, p.Name(),
			fmt.Errorf("response contains no candidates"))
	}
	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", summarizer.NewError(summarizer.KindInvalidResponse, p.Name(),
			fmt.Errorf("response text is empty"))
	}
	return clipRunes(text, maxLen), nil
}
