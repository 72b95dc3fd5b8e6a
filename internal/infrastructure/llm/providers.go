package llm

import (
	"fmt"
	"net/http"
	"os"

	"technewsbot/internal/config"
	"technewsbot/internal/ports"
	"technewsbot/internal/summarizer"
)

// Credential environment variables per backend.
const (
	anthropicKeyEnv = "ANTHROPIC_API_KEY"
	openaiKeyEnv    = "OPENAI_API_KEY"
	geminiKeyEnv    = "GEMINI_API_KEY"
)

// NewProvider builds the summarization backend selected by configuration.
// A missing credential is reported before any article is processed.
func NewProvider(cfg config.AIConfig) (ports.Provider, error) {
	switch cfg.Provider {
	case config.ProviderClaude:
		key, err := credential(anthropicKeyEnv)
		if err != nil {
			return nil, err
		}
		return newClaudeProvider(cfg, key), nil
	case config.ProviderChatGPT:
		key, err := credential(openaiKeyEnv)
		if err != nil {
			return nil, err
		}
		return newChatGPTProvider(cfg, key), nil
	case config.ProviderGemini:
		key, err := credential(geminiKeyEnv)
		if err != nil {
			return nil, err
		}
		return newGeminiProvider(cfg, key), nil
	}
	return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
}

func credential(envName string) (string, error) {
	key := os.Getenv(envName)
	if key == "" {
		return "", fmt.Errorf("missing credential: %s is not set", envName)
	}
	return key, nil
}

func kindForStatus(status int) summarizer.ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return summarizer.KindUnauthorized
	case status == http.StatusTooManyRequests:
		return summarizer.KindRateLimited
	default:
		return summarizer.KindTransient
	}
}

// clipRunes trims a model response to the requested length. Responses are
// clipped rather than rejected so an overlong answer still yields a summary.
func clipRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
